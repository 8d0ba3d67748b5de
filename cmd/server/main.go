/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the depreciation engine server.
  Handles configuration, system registration, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Register depreciation systems
  3. Initialize SQLite store
  4. Seed the book from a file or a sample (optional)
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: book.db)
           Use ":memory:" for in-memory database
  -seed    JSON or YAML book file stored at startup (by extension)
  -sample  Sample book to load at startup, replacing the stored book
  -cors    Comma-separated allowed CORS origins

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with a seeded in-memory book
  ./server -db=":memory:" -seed=./book.yaml

  # Demo
  ./server -db=":memory:" -sample=mixed-book

SEE ALSO:
  - api/server.go: Router configuration
  - timesystem/timesystem.go: The "time" system
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/depreciation-engine/api"
	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/factory"
	"github.com/warp/depreciation-engine/store/sqlite"
	"github.com/warp/depreciation-engine/timesystem"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "book.db", "SQLite database path")
	seed := flag.String("seed", "", "JSON or YAML book file to store at startup")
	sample := flag.String("sample", "", "sample book to load at startup")
	origins := flag.String("cors", "", "comma-separated allowed CORS origins")
	flag.Parse()

	// Register systems
	registry := book.NewRegistry()
	if err := timesystem.Register(registry); err != nil {
		log.Fatalf("Failed to register time system: %v", err)
	}
	log.Printf("Registered depreciation systems: %s", strings.Join(registry.Systems(), ", "))

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, registry)

	if *sample != "" {
		n, err := handler.LoadSample(context.Background(), *sample)
		if err != nil {
			log.Fatalf("Failed to load sample %q: %v", *sample, err)
		}
		log.Printf("Loaded sample %q (%d assets)", *sample, n)
	}
	if *seed != "" {
		n, err := seedBook(handler, *seed)
		if err != nil {
			log.Fatalf("Failed to seed book from %s: %v", *seed, err)
		}
		log.Printf("Seeded %d assets from %s", n, *seed)
	}

	// Create router
	router := api.NewRouter(handler, splitOrigins(*origins))

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedBook stores every asset of the book file at path. The whole file is
// hydrated first so one invalid record stores nothing.
func seedBook(h *api.Handler, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	assets, err := h.Factory.ParseBook(data, factory.FormatFor(path))
	if err != nil {
		return 0, err
	}
	if _, err := h.Registry.Hydrate(assets); err != nil {
		return 0, err
	}
	return len(assets), h.SaveBook(context.Background(), assets)
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
