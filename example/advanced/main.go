package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/anonymizer"
	"github.com/siherrmann/anonymizer/content"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

const sampleContract = `Contrat de bail commercial

Entre les soussignés :
Monsieur Jean Dupont, demeurant 12 rue de la République 69002 Lyon,
ci-après dénommé le bailleur,

et

Monsieur Jean Dupond, demeurant 4 avenue Victor Hugo 75116 Paris,
ci-après dénommé le preneur.

Article 1 - Durée

Le présent bail est consenti pour une durée de neuf années entières
et consécutives à compter du 01/01/2024.

Article 2 - Loyer

Le loyer annuel est payable par virement sur le compte
FR76 3000 6000 0112 3456 7890 189. Toute question peut être adressée
à gestion@exemple.fr ou au 01 23 45 67 89.

Article 3 - Résiliation

Le preneur pourra donner congé à l'expiration de chaque période
triennale.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration
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

	// Set up the local NER model and embedder. The model files are
	// downloaded on first use, so this can take a moment.
	if err := a.UseDefaultModelExtractor(); err != nil {
		log.Fatalf("Failed to set up model extractor: %v", err)
	}
	if err := a.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	ctx := context.Background()

	// 1. Process in ai mode: pattern detection plus the NER model source
	fmt.Println("=== 1. Processing Document (ai mode) ===")
	session, err := a.ProcessDocument(ctx, content.FromPlainText(sampleContract), "bail.txt", "txt", model.ModeAI)
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}
	fmt.Printf("Session %s: %d entities detected\n", session.ID, len(session.Entities))
	for _, entity := range session.Entities {
		fmt.Printf("  [%s/%s] %q -> %q\n", entity.Type, entity.Source, entity.Value, entity.Replacement)
	}

	// 2. Add an entity the detectors missed
	fmt.Println("\n=== 2. Manual Entity ===")
	start := strings.Index(sampleContract, "bail commercial")
	manual, err := a.AddEntity(ctx, session.ID, "ORG", "bail commercial", "", start, start+len("bail commercial"))
	if err != nil {
		log.Fatalf("Failed to add entity: %v", err)
	}
	fmt.Printf("Added [%s] %q -> %q\n", manual.Type, manual.Value, manual.Replacement)

	// 3. Cluster similar person names and group them
	fmt.Println("\n=== 3. Similarity Clustering and Grouping ===")
	clusters, err := a.FindSimilarEntities(ctx, session.ID, model.EntityTypePerson, 0.85)
	if err != nil {
		log.Fatalf("Failed to cluster entities: %v", err)
	}
	for _, cluster := range clusters {
		fmt.Printf("Cluster around %q with %d members\n", cluster.Representative.Value, len(cluster.Entities))

		ids := make([]uuid.UUID, 0, len(cluster.Entities))
		for _, entity := range cluster.Entities {
			ids = append(ids, entity.ID)
		}
		group, err := a.CreateGroup(ctx, session.ID, cluster.Representative.Value, ids, "PARTIE_[INDEX]")
		if err != nil {
			log.Fatalf("Failed to create group: %v", err)
		}
		fmt.Printf("Grouped as %q with pattern %q\n", group.Name, group.ReplacementPattern)
	}

	// 4. Literal and regex search over the document text
	fmt.Println("\n=== 4. Text Search ===")
	config := model.DefaultSearchConfig()
	results, err := a.SearchText(ctx, session.ID, "résiliation", config)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	for _, result := range results {
		fmt.Printf("  %q at offset %d (page %d): %s\n", result.Text, result.Start, result.Page, result.Context)
	}

	// 5. Semantic search over the indexed passages
	fmt.Println("\n=== 5. Semantic Search ===")
	matches, err := a.SemanticSearch(ctx, session.ID, "conditions de fin de contrat", 3)
	if err != nil {
		log.Fatalf("Failed to run semantic search: %v", err)
	}
	for i, match := range matches {
		fmt.Printf("  Match %d (similarity %.4f, page %d): %s\n", i+1, match.Similarity, match.Page, truncate(match.Content, 80))
	}

	// 6. Switch the passage index type for larger corpora
	fmt.Println("\n=== 6. Changing Index Type ===")
	err = a.Passages.ChangeIndexType(ctx, "ivfflat", map[string]interface{}{
		"lists": 100,
	})
	if err != nil {
		log.Printf("Warning: Index change failed (this is okay for small datasets): %v", err)
	} else {
		fmt.Println("Successfully switched to IVFFlat index")
	}

	// 7. Highlight for review, then anonymize
	fmt.Println("\n=== 7. Highlight and Anonymize ===")
	highlighted, err := a.HighlightDocument(ctx, session.ID)
	if err != nil {
		log.Fatalf("Failed to highlight: %v", err)
	}
	fmt.Printf("Highlighted document is %d characters\n", len(highlighted))

	result, err := a.Anonymize(ctx, session.ID)
	if err != nil {
		log.Fatalf("Failed to anonymize: %v", err)
	}
	fmt.Println("\n--- Anonymized document ---")
	fmt.Println(result)

	fmt.Println("\n=== Advanced Example Completed Successfully! ===")
}

func truncate(text string, max int) string {
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}
