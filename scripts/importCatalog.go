package main

import (
	"context"
	"flag"
	"log"
	"os"

	"skillchain/config"
	"skillchain/database"
	"skillchain/services/catalog"
	"skillchain/services/stats"
)

func main() {
	path := flag.String("file", "catalog.csv", "catalog CSV to import")
	flag.Parse()

	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()
	db := database.Database.Db

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	rows, skipped, err := catalog.ReadCSV(file)
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	for _, e := range skipped {
		log.Printf("Skipped %v", e)
	}
	log.Printf("Total rows to import: %d", len(rows))

	ctx := context.Background()
	report, err := catalog.Import(ctx, db, rows)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	// Student counters of re-imported courses are recomputed from enrollments
	fixed, err := stats.RebuildCourseCounters(ctx, db)
	if err != nil {
		log.Printf("Counter rebuild failed: %v", err)
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Courses: %d", report.Courses)
	log.Printf("Modules: %d", report.Modules)
	log.Printf("Lessons: %d", report.Lessons)
	log.Printf("Skipped: %d", len(skipped))
	log.Printf("Counters fixed: %d", fixed)
}
