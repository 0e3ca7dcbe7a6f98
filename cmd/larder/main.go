package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/logging"
	"github.com/dukerupert/larder/internal/server"
)

func main() {
	port := os.Getenv("LARDER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("LARDER_DB_PATH")
	if dbPath == "" {
		dbPath = "larder.db"
	}

	logger := logging.Setup(os.Getenv("LARDER_LOG_LEVEL"), os.Getenv("LARDER_LOG_FORMAT"))

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	cfg := server.Config{
		Production: os.Getenv("LARDER_ENV") == "production",
		RateLimit:  true,
		StaticDir:  "web/static",
	}
	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Expired rate-limit entries accumulate otherwise
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	go func() {
		fmt.Printf("Larder running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
