package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/siherrmann/anonymizer"
	"github.com/siherrmann/anonymizer/content"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

// Processes a PDF given on the command line, prints the detected entities
// and writes the anonymized text next to the input file.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <document.pdf>", os.Args[0])
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}

	cont, err := content.ExtractPDF(data)
	if err != nil {
		log.Fatalf("Failed to extract PDF text: %v", err)
	}
	fmt.Printf("Extracted %d pages, %d words\n", cont.PageCount, cont.WordCount)

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Name:     "test",
		User:     "test",
		Password: "test",
	}

	a, err := anonymizer.NewAnonymizer(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create anonymizer: %v", err)
	}
	defer a.Close()

	ctx := context.Background()

	session, err := a.ProcessDocument(ctx, cont, path, "pdf", model.ModeStandard)
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}

	fmt.Printf("Detected %d entities:\n", len(session.Entities))
	for entityType, count := range session.Statistics.EntitiesByType {
		fmt.Printf("  %s: %d\n", entityType, count)
	}

	result, err := a.Anonymize(ctx, session.ID)
	if err != nil {
		log.Fatalf("Failed to anonymize: %v", err)
	}

	outPath := path + ".anonymized.txt"
	if err := os.WriteFile(outPath, []byte(result), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", outPath, err)
	}
	fmt.Printf("Anonymized text written to %s\n", outPath)
}
