package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/noznum/tracklab/internal/render"
)

// Config holds application configuration
type Config struct {
	Port              string
	DBPath            string // Segment catalog; empty disables it
	OutputDir         string // Segment tables and stats.csv
	MapZoom           int
	EChartsAssetsHost string
}

// Load reads configuration from the environment
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath, ok := os.LookupEnv("DB_PATH")
	if !ok {
		dbPath = "./data/segments.db"
	}

	outputDir := os.Getenv("OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "./data/segments"
	}

	zoom := render.DefaultZoom
	if raw := os.Getenv("MAP_ZOOM"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("[Config] Ignoring invalid MAP_ZOOM %q, using %d", raw, render.DefaultZoom)
		} else {
			zoom = v
		}
	}

	return &Config{
		Port:              port,
		DBPath:            dbPath,
		OutputDir:         outputDir,
		MapZoom:           render.ClampZoom(zoom),
		EChartsAssetsHost: os.Getenv("ECHARTS_ASSETS_HOST"),
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	if c.MapZoom < render.MinZoom || c.MapZoom > render.MaxZoom {
		return fmt.Errorf("map zoom %d outside [%d, %d]", c.MapZoom, render.MinZoom, render.MaxZoom)
	}
	return nil
}
