package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardforge/deck-builder/backend/internal/api"
	"github.com/cardforge/deck-builder/backend/internal/database"
	"github.com/cardforge/deck-builder/backend/internal/services"
)

func main() {
	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./deck_builder.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize the catalog client layer. One client, one cache; every
	// component below shares them so the throttle and record cache are
	// global to the process.
	scryfallService := services.NewScryfallService(os.Getenv("SCRYFALL_BASE_URL"))
	recordCache := services.NewRecordCache()
	resolver := services.NewResolver(scryfallService, recordCache)
	batchResolver := services.NewBatchResolver(scryfallService, resolver, recordCache)
	partnerFinder := services.NewPartnerFinder(scryfallService, resolver)
	gameChangers := services.NewGameChangerSet(scryfallService)
	multiCopy := services.NewMultiCopySet(scryfallService)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start catalog warmer in background with panic recovery
	warmer := services.NewCatalogWarmer(gameChangers, multiCopy)
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in catalog warmer: %v - restarting in 30 seconds", r)
					}
				}()
				warmer.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Catalog warmer restarting after panic recovery...")
			}
		}
	}()

	// Setup router
	router := api.SetupRouter(scryfallService, resolver, batchResolver, partnerFinder, gameChangers, multiCopy)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the catalog warmer
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
