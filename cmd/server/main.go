package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/verdantlabs/herbarium/internal/catalog"
	"github.com/verdantlabs/herbarium/internal/config"
	"github.com/verdantlabs/herbarium/internal/contribution"
	"github.com/verdantlabs/herbarium/internal/db"
	"github.com/verdantlabs/herbarium/internal/history"
	"github.com/verdantlabs/herbarium/internal/ingest"
	"github.com/verdantlabs/herbarium/internal/middleware"
	"github.com/verdantlabs/herbarium/internal/notify"
	"github.com/verdantlabs/herbarium/internal/repository"
	"github.com/verdantlabs/herbarium/internal/storage"
	"github.com/verdantlabs/herbarium/internal/taxonomy"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	plantRepo := repository.NewPlantRepository(conn.Pool)
	contributionRepo := repository.NewContributionRepository(conn.Pool)
	historyRepo := repository.NewHistoryRepository(conn.Pool)
	familyRepo := repository.NewFamilyRepository(conn.Pool)
	attributeRepo := repository.NewAttributeRepository(conn.Pool)

	// Create services
	imageStore, err := storage.NewS3ImageStore(ctx, cfg.ObjectStore)
	if err != nil {
		log.Fatalf("Failed to configure image store: %v", err)
	}

	resolver := taxonomy.NewResolver(familyRepo, attributeRepo)
	taxonomyService := taxonomy.NewService(familyRepo, attributeRepo)
	historyService := history.NewService(historyRepo, plantRepo)
	catalogService := catalog.NewService(plantRepo, imageStore, historyService)
	contributionService := contribution.NewService(contributionRepo, catalogService, resolver, imageStore, notify.LogNotifier{})
	ingestService := ingest.NewService(catalogService, resolver)

	// Register routes
	mux := http.NewServeMux()
	catalog.NewHTTPHandler(catalogService, resolver).Register(mux)
	contribution.NewHTTPHandler(contributionService).Register(mux)
	history.NewHTTPHandler(historyService).Register(mux)
	taxonomy.NewHTTPHandler(taxonomyService).Register(mux)
	ingest.NewHTTPHandler(ingestService).Register(mux)

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			middleware.IdentityMiddleware(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting herbarium server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
