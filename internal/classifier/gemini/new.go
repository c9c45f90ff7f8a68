// Package gemini implements classifier.Classifier on the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

type Options struct {
	APIKeys    []string
	Model      string
	Categories meeting.CategorySet
	// BaseURL overrides the API endpoint.
	BaseURL string
}

type implClassifier struct {
	clients    []*genai.Client
	mu         sync.Mutex
	currentKey int
	logger     logger.Logger
	model      string
	categories meeting.CategorySet
}

// New creates a Classifier that rotates through the supplied Gemini API keys.
func New(ctx context.Context, opts Options, log logger.Logger) (classifier.Classifier, error) {
	if len(opts.APIKeys) == 0 {
		return nil, fmt.Errorf("at least one Gemini API key is required")
	}

	clients := make([]*genai.Client, 0, len(opts.APIKeys))
	for i, key := range opts.APIKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      key,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
		})
		if err != nil {
			return nil, fmt.Errorf("create client for key %d: %w", i+1, err)
		}
		clients = append(clients, client)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &implClassifier{
		clients:    clients,
		logger:     log,
		model:      model,
		categories: opts.Categories,
	}, nil
}
