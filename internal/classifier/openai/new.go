// Package openai implements classifier.Classifier on the OpenAI chat API.
package openai

import (
	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/logger"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/sashabaranov/go-openai"
)

const DefaultModel = "gpt-4o-mini"

type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Categories meeting.CategorySet
}

type implClassifier struct {
	client     *openai.Client
	model      string
	categories meeting.CategorySet
	logger     logger.Logger
}

func New(opts Options, log logger.Logger) classifier.Classifier {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}

	return &implClassifier{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		categories: opts.Categories,
		logger:     log,
	}
}
