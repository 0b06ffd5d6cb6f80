package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/trackgen/internal/api"
	"github.com/banshee-data/trackgen/internal/config"
	"github.com/banshee-data/trackgen/internal/trackdb"
	"github.com/banshee-data/trackgen/internal/version"
)

var (
	listen      = flag.String("listen", ":8080", "Listen address")
	dbPath      = flag.String("db", "tracks.db", "Path to the sqlite track archive")
	configPath  = flag.String("config", "", "Path to a JSON config file with generation defaults")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// Main
func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("trackgen %s\n", version.String())
		return
	}

	// The migrate subcommand manages the schema itself, without
	// starting the server.
	if flag.Arg(0) == "migrate" {
		trackdb.RunMigrateCommand(flag.Args()[1:], *dbPath)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyServerConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadServerConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	db, err := trackdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := api.NewServer(db, cfg.GetDefaultPreset(), cfg.ConeOptions()).ServeMux()

	// mount the admin debugging routes (tailsql console and on-demand
	// backups)
	db.AttachAdminRoutes(mux)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/preview", http.StatusFound)
	})

	server := &http.Server{
		Addr:    *listen,
		Handler: api.LoggingMiddleware(mux),
	}

	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("trackgen %s listening on %s", version.Version, *listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for context cancellation to shut down server
	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	// Create a shutdown context with a timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Printf("Graceful shutdown complete")
}
