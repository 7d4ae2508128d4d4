package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Moderated-Gallery/Gallery-Service/internal/api"
	"github.com/Moderated-Gallery/Gallery-Service/internal/api/handlers"
	"github.com/Moderated-Gallery/Gallery-Service/internal/configuration"
	"github.com/Moderated-Gallery/Gallery-Service/internal/services"
	"github.com/Moderated-Gallery/Gallery-Service/internal/storage"
	"github.com/Moderated-Gallery/Gallery-Service/internal/store"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configuration.Load()

	// Record store: loads data/images.json, falls back to empty on corruption
	imageStore := store.New(store.NewFileBackend(cfg.Storage.DataFile))

	blobs, err := newBlobStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize blob storage: %v", err)
	}

	// NATS is optional: without it the service runs with no event stream
	var events *services.EventService
	if cfg.NATSURL != "" {
		events, err = services.ConnectEvents(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: failed to connect to NATS: %v", err)
			log.Println("Continuing without event publishing...")
			events = nil
		} else {
			defer events.Close()
			audit := services.NewAuditLogger(cfg.AuditLog)
			if _, err := services.StartAuditConsumer(events, audit); err != nil {
				log.Printf("Warning: failed to start audit consumer: %v", err)
			}
		}
	}

	setupGracefulShutdown(events)

	r := gin.Default()
	api.RegisterRoutes(r, handlers.New(cfg, imageStore, blobs, events), cfg.Admin.Token)

	log.Printf("Server starting on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newBlobStorage(cfg *configuration.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "minio":
		return storage.NewMinioStorage(
			cfg.MinIO.Endpoint,
			cfg.MinIO.AccessKey,
			cfg.MinIO.SecretKey,
			cfg.MinIO.BucketName,
			cfg.MinIO.UseSSL,
		)
	default:
		return storage.NewLocalStorage(cfg.Storage.UploadDir)
	}
}

func setupGracefulShutdown(events *services.EventService) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Shutting down gracefully...")
		// The store persists on every mutation, so only the NATS
		// connection needs draining here
		if events != nil {
			events.Close()
		}
		os.Exit(0)
	}()
}
