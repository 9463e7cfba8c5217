package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsdesk-dev/newsdesk-queue/internal/api"
	"github.com/newsdesk-dev/newsdesk-queue/internal/engine"
)

func main() {
	fmt.Println("Starting Newsdesk Queue Daemon...")

	dataDir := os.Getenv("NEWSDESK_DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	httpPort := os.Getenv("NEWSDESK_HTTP_PORT")
	if httpPort == "" {
		httpPort = "7002"
	}

	seedCount := 200
	if v := os.Getenv("NEWSDESK_SEED"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid NEWSDESK_SEED %q: %v", v, err)
		}
		seedCount = n
	}

	ctx := context.Background()

	// 1. Pick the storage backend: Postgres when a DSN is given, otherwise
	// the in-memory engine with JSON file persistence.
	var storage engine.Storage
	var memStore *engine.MemStorage

	if dsn := os.Getenv("NEWSDESK_PG_DSN"); dsn != "" {
		pg, err := engine.OpenPostgres(dsn)
		if err != nil {
			log.Fatalf("Failed to open postgres: %v", err)
		}
		defer pg.Close()
		storage = pg
		fmt.Println("Storage: postgres")

		// Upgrade path: carry a previous file-backed data set into Postgres
		// the first time the daemon runs against an empty database.
		if existing, err := pg.All(ctx); err == nil && len(existing) == 0 {
			if persister, err := engine.NewPersistence(dataDir); err == nil {
				if prior, err := persister.Load(); err == nil && len(prior) > 0 {
					n, err := engine.CopyStorage(ctx, engine.NewMemStorage(prior, nil), pg)
					if err != nil {
						log.Fatalf("Failed to migrate file data into postgres: %v", err)
					}
					fmt.Printf("Migrated %d articles from %s into postgres.\n", n, dataDir)
				}
			}
		}
	} else {
		persister, err := engine.NewPersistence(dataDir)
		if err != nil {
			log.Fatalf("Failed to initialize persistence: %v", err)
		}
		initial, err := persister.Load()
		if err != nil {
			log.Printf("Warning: Could not load existing data: %v", err)
		}
		memStore = engine.NewMemStorage(initial, persister)
		storage = memStore
		fmt.Printf("Storage: %s (loaded %d articles)\n", dataDir, len(initial))
	}

	// 2. Seed an empty store so the dashboard has something to show.
	existing, err := storage.All(ctx)
	if err != nil {
		log.Fatalf("Failed to read storage: %v", err)
	}
	if len(existing) == 0 && seedCount > 0 {
		for _, a := range engine.SeedArticles(seedCount) {
			if err := storage.Upsert(ctx, a); err != nil {
				log.Fatalf("Failed to seed articles: %v", err)
			}
		}
		fmt.Printf("Seeded %d articles.\n", seedCount)
	}

	eng := engine.New(storage)

	// 3. HTTP API
	r := gin.Default()
	r.Use(api.CORS())
	r.Use(api.Metrics())
	r.GET("/metrics", api.MetricsHandler())

	h := &api.Handler{Engine: eng}
	h.Register(r.Group("/api"))

	srv := &http.Server{Addr: ":" + httpPort, Handler: r}

	go func() {
		fmt.Printf("Newsdesk API listening on :%s\n", httpPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 4. Graceful shutdown: stop accepting requests, then drain background
	// persistence writes.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutdown signal received. Finalizing disk writes...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: HTTP shutdown: %v", err)
	}
	if memStore != nil {
		memStore.Wait()
	}
	fmt.Println("Persistence complete. Exiting.")
}
