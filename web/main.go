package main

import (
	"flag"
	"log"
	"os"

	"github.com/df07/go-pathtracer/pkg/config"
	"github.com/df07/go-pathtracer/pkg/storage"
	"github.com/df07/go-pathtracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 0, "Port to serve on (default from PT_PORT or 8080)")
	scenesDir := flag.String("scenes-dir", "", "Directory with JSON scene files (default from PT_SCENES_DIR or 'scenes')")
	envFile := flag.String("env", ".env", "Optional .env file with PT_* and S3_* settings")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *scenesDir != "" {
		cfg.ScenesDir = *scenesDir
	}

	var uploader *storage.S3Uploader
	if cfg.S3.Enabled() {
		uploader, err = storage.NewS3Uploader(cfg.S3, log.Default())
		if err != nil {
			log.Printf("Error configuring uploads: %v", err)
			os.Exit(1)
		}
		log.Printf("Uploads enabled to bucket %s", cfg.S3.Bucket)
	}

	// Create and start web server
	webServer := server.NewServer(cfg, uploader)

	log.Printf("Path Tracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", cfg.Port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
