// Package nerclient talks to the remote NER analysis service and maps its
// detections into the entity schema. The core algorithms never touch the
// network; they consume the entities this client produces through the
// pipeline's model source.
package nerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/siherrmann/anonymizer/core/patterns"
	"github.com/siherrmann/anonymizer/core/pipeline"
	"github.com/siherrmann/anonymizer/helper"
	"github.com/siherrmann/anonymizer/model"
)

// AnalyzeRequest is the payload of the /analyze endpoint.
type AnalyzeRequest struct {
	Text                string  `json:"text"`
	Language            string  `json:"language"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

// Detection is one entity as reported by the service.
type Detection struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
}

// AnalyzeResponse is the response of the /analyze endpoint.
type AnalyzeResponse struct {
	Entities       []Detection `json:"entities"`
	ProcessingTime float64     `json:"processing_time"`
	ModelInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"model_info"`
}

// Client is an HTTP client for the NER analysis service.
type Client struct {
	baseURL             string
	language            string
	confidenceThreshold float64
	httpClient          *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:             baseURL,
		language:            "fr",
		confidenceThreshold: 0.5,
		httpClient:          &http.Client{Timeout: timeout},
	}
}

// Analyze sends the text to the service and returns the mapped entities.
// Unknown labels map to LOC; replacements are computed with the same policy
// as pattern detections.
func (c *Client) Analyze(ctx context.Context, text string) ([]*model.Entity, error) {
	payload, err := json.Marshal(AnalyzeRequest{
		Text:                text,
		Language:            c.language,
		ConfidenceThreshold: c.confidenceThreshold,
	})
	if err != nil {
		return nil, helper.NewError("marshal analyze request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return nil, helper.NewError("create analyze request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, helper.NewError("analyze request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, helper.NewError("analyze request", fmt.Errorf("service returned %d: %s", resp.StatusCode, body))
	}

	var analyzeResp AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&analyzeResp); err != nil {
		return nil, helper.NewError("decode analyze response", err)
	}

	entities := make([]*model.Entity, 0, len(analyzeResp.Entities))
	for _, detection := range analyzeResp.Entities {
		entityType := model.EntityTypeFromLabel(detection.Label)

		entity := model.NewEntity(
			entityType,
			detection.Text,
			patterns.ReplacementFor(entityType, detection.Text),
			model.SourceModel,
			detection.Start,
			detection.End,
		)
		confidence := detection.Confidence
		entity.Confidence = &confidence

		entities = append(entities, entity)
	}

	return entities, nil
}

// Health reports whether the service answers its health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// ExtractFunc adapts the client into a pipeline model source.
func (c *Client) ExtractFunc() pipeline.ExtractFunc {
	return func(ctx context.Context, text string) ([]*model.Entity, error) {
		return c.Analyze(ctx, text)
	}
}
