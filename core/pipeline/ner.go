package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/anonymizer/core/patterns"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

// DefaultModelExtractor creates a local model entity source using a NER model
// Uses distilbert-NER for named entity recognition
// Detects: PERSON, ORGANIZATION, LOCATION, MISC entities
func DefaultModelExtractor() (ExtractFunc, error) {
	// Prepare model (download if needed)
	// Using KnightsAnalytics optimized distilbert-NER model
	modelName := "KnightsAnalytics/distilbert-NER"
	modelPath, err := helper.PrepareModel(modelName, "model.onnx")
	if err != nil {
		return nil, err
	}

	// Initialize hugot session with Go backend
	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	// Create token classification pipeline for NER
	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "ner-pipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}), // Ignore non-entity tokens
		},
	}
	nerPipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create NER pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create NER pipeline: %w", err)
	}

	return func(ctx context.Context, text string) ([]*model.Entity, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Run NER on the text
		result, err := nerPipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to run NER: %w", err)
		}

		if len(result.Entities) == 0 {
			return nil, nil
		}

		// Convert NER results into the entity schema
		var entities []*model.Entity
		for _, nerEntity := range result.Entities[0] {
			entityType := model.EntityTypeFromLabel(normalizeNERLabel(nerEntity.Entity))
			value := strings.TrimSpace(nerEntity.Word)

			entity := model.NewEntity(
				entityType,
				value,
				patterns.ReplacementFor(entityType, value),
				model.SourceModel,
				int(nerEntity.Start),
				int(nerEntity.End),
			)
			confidence := float64(nerEntity.Score)
			entity.Confidence = &confidence

			entities = append(entities, entity)
		}

		return entities, nil
	}, nil
}

// normalizeNERLabel removes BIO tagging prefixes (B- for beginning, I- for inside)
func normalizeNERLabel(label string) string {
	if strings.HasPrefix(label, "B-") {
		return label[2:]
	}
	if strings.HasPrefix(label, "I-") {
		return label[2:]
	}
	return label
}
