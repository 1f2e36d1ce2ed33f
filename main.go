package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"metricsdash/internal/di"
	"metricsdash/internal/structures"
)

func main() {
	// Secrets (GITHUB_TOKEN, DUNE_API_KEY, ...) may live in .env during development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error loading .env file: %s", err)
	}

	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yml", "Path to configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "Mirror logs to stdout")
	flag.Parse()

	if _, err := di.InitApp(flags); err != nil {
		log.Fatalf("metricsdash: %s", err)
	}
}
