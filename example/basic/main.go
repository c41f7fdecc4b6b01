package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/anonymizer"
	"github.com/siherrmann/anonymizer/content"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

const sampleLetter = `Tribunal judiciaire de Lyon

Affaire : Jean Dupont contre SARL Exemple

Monsieur Jean Dupont, demeurant 12 rue de la République 69002 Lyon,
joignable au 06 12 34 56 78 ou par courriel à jean.dupont@exemple.fr,
a assigné la société immatriculée sous le SIREN 552 100 554.

Le virement a été effectué depuis le compte FR76 3000 6000 0112 3456 7890 189
en date du 12/03/2024.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
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

	// Process the document with the pattern source only
	fmt.Println("Processing document...")
	session, err := a.ProcessDocument(ctx, content.FromPlainText(sampleLetter), "assignation.txt", "txt", model.ModeStandard)
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}
	fmt.Printf("Session created with ID: %s\n", session.ID)
	fmt.Printf("Detected %d entities:\n", len(session.Entities))
	for _, entity := range session.Entities {
		fmt.Printf("  [%s] %q -> %q (page %d)\n", entity.Type, entity.Value, entity.Replacement, entity.Page)
	}

	// Produce the anonymized text
	result, err := a.Anonymize(ctx, session.ID)
	if err != nil {
		log.Fatalf("Failed to anonymize: %v", err)
	}
	fmt.Println("\n--- Anonymized document ---")
	fmt.Println(result)

	// Render the audit report
	report, err := a.AuditReport(ctx, session.ID)
	if err != nil {
		log.Fatalf("Failed to render audit report: %v", err)
	}
	fmt.Println("\n--- Audit report ---")
	fmt.Println(report)

	fmt.Println("Basic example completed successfully!")
}
