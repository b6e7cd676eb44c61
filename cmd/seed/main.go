package main

import (
	"fmt"
	"os"

	"github.com/banglehouse/bangles-backend/config"
	"github.com/banglehouse/bangles-backend/internal/app/repository"
	"github.com/banglehouse/bangles-backend/internal/app/service"
	"github.com/banglehouse/bangles-backend/internal/db"
	"github.com/banglehouse/bangles-backend/pkg/logger"
)

const batchSize = 500

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/seed/main.go <xlsx_file_path>")
		os.Exit(2)
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	bangleRepo := repository.NewBangleRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("Failed to open XLSX", err)
	}
	defer f.Close()

	bangles, rowErrors, err := service.ReadCatalog(f)
	if err != nil {
		logger.Fatal("Failed to read XLSX", err)
	}

	for _, rowErr := range rowErrors {
		fmt.Printf("  skipped row %d: %s\n", rowErr.Row, rowErr.Reason)
	}
	fmt.Printf("Total bangles to import: %d (skipped %d)\n", len(bangles), len(rowErrors))
	if len(bangles) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := bangleRepo.BulkCreate(bangles, batchSize); err != nil {
		logger.Fatal("Failed to bulk create bangles", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total bangles imported: %d\n", len(bangles))
}
