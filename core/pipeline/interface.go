package pipeline

import (
	"context"

	"github.com/siherrmann/anonymizer/model"
)

// ExtractFunc scans a text snapshot and returns position-tagged entities.
// Implementations must be pure over the given text: no match state may be
// carried between invocations. The context is checked at coarse granularity
// so long extractions can be cancelled.
type ExtractFunc func(ctx context.Context, text string) ([]*model.Entity, error)

// EmbedFunc generates an embedding for a text passage.
type EmbedFunc func(text string) ([]float32, error)

// SplitFunc splits a document text into passages for semantic indexing.
type SplitFunc func(text string) []*model.Passage

// Pipeline bundles the entity sources and the optional semantic indexing
// functions of a document.
type Pipeline struct {
	Pattern  ExtractFunc
	Model    ExtractFunc // Optional
	Embedder EmbedFunc   // Optional
	Splitter SplitFunc   // Optional
}

// NewPipeline creates a pipeline with the pattern source only.
func NewPipeline(pattern ExtractFunc) *Pipeline {
	return &Pipeline{
		Pattern:  pattern,
		Splitter: ParagraphSplitter(),
	}
}

// SetModelExtractor sets the model entity source (local NER or remote service).
func (p *Pipeline) SetModelExtractor(extractor ExtractFunc) {
	p.Model = extractor
}

// SetEmbedder sets the embedding function used for semantic passage indexing.
func (p *Pipeline) SetEmbedder(embedder EmbedFunc) {
	p.Embedder = embedder
}

// Merge concatenates pattern and model entities. There is no automatic
// de-duplication between the two sources: a pattern hit and a model hit on
// the same span both survive, so a human can resolve the redundancy. The
// result length is always len(patternEntities) + len(modelEntities).
func Merge(patternEntities, modelEntities []*model.Entity) []*model.Entity {
	merged := make([]*model.Entity, 0, len(patternEntities)+len(modelEntities))
	merged = append(merged, patternEntities...)
	merged = append(merged, modelEntities...)
	return merged
}

// Extract runs the pattern source and, when useModel is set and a model
// source is configured, merges its results in.
func (p *Pipeline) Extract(ctx context.Context, text string, useModel bool) ([]*model.Entity, error) {
	entities, err := p.Pattern(ctx, text)
	if err != nil {
		return nil, err
	}

	if useModel && p.Model != nil {
		modelEntities, err := p.Model(ctx, text)
		if err != nil {
			return nil, err
		}
		entities = Merge(entities, modelEntities)
	}

	return entities, nil
}
