package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"croprotation/internal/config"
	"croprotation/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: seed <catalog.xlsx|catalog.csv>")
	}
	catalogPath := os.Args[1]

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !cfg.Database.Enabled() {
		log.Fatal("DATABASE_URL is required to seed the catalog")
	}

	ctx := context.Background()
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := c.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Shutdown(ctx)

	result, err := c.SeedCatalog(ctx, catalogPath)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Printf("Created: %d\n", len(result.Created))
	fmt.Printf("Skipped (already present): %d\n", len(result.Skipped))
	for _, f := range result.Failed {
		fmt.Printf("Failed: %s\n", f)
	}
}
