package main

import (
	"log"

	"github.com/noznum/tracklab/internal/api"
	"github.com/noznum/tracklab/internal/config"
	"github.com/noznum/tracklab/internal/database"
	"github.com/noznum/tracklab/internal/repository"
	"github.com/noznum/tracklab/internal/service"
	"github.com/noznum/tracklab/internal/storage"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	store, err := storage.New(cfg.OutputDir)
	if err != nil {
		log.Fatal("Failed to open output directory:", err)
	}

	var catalog service.Catalog
	if cfg.DBPath != "" {
		if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer database.Close()
		catalog = repository.NewSegmentRepository(database.GetDB())
	} else {
		log.Printf("DB_PATH is empty, segment catalog disabled")
	}

	svc := service.NewTrackService(store, catalog, cfg.MapZoom)
	router := api.SetupRouter(cfg, svc)

	log.Printf("Server starting on port %s, writing segments to %s", cfg.Port, store.Dir())
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
