package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"google.golang.org/genai"
)

func (c *implClassifier) Classify(ctx context.Context, doc meeting.Document) (meeting.Classification, error) {
	prompt := classifier.ClassificationPrompt(c.categories, doc)

	raw, err := c.callGemini(ctx, prompt, c.classifyConfig())
	if err != nil {
		return meeting.Classification{}, fmt.Errorf("classify %q: %w: %w", doc.Name, meeting.ErrClassification, err)
	}

	result := classifier.ParseAnswer(raw, c.categories)
	c.logger.Debug(ctx, "gemini: %q -> %s (%.2f)", doc.Name, result.Category, result.Confidence)
	return result, nil
}

func (c *implClassifier) Summarize(ctx context.Context, doc meeting.Document, kind classifier.SummaryKind) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.7)}

	text, err := c.callGemini(ctx, classifier.SummaryPrompt(kind, doc), cfg)
	if err != nil {
		return "", fmt.Errorf("summarize %q (%s): %w", doc.Name, kind, err)
	}
	return strings.TrimSpace(text), nil
}

func (c *implClassifier) classifyConfig() *genai.GenerateContentConfig {
	labels := make([]string, 0, len(c.categories.Categories()))
	for _, cat := range c.categories.Categories() {
		labels = append(labels, string(cat))
	}

	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"category":   {Type: genai.TypeString, Enum: labels},
				"confidence": {Type: genai.TypeNumber},
			},
			Required: []string{"category", "confidence"},
		},
	}
}

// callGemini sends the prompt and returns the response text.
// Rotates API keys on 429 / quota errors.
func (c *implClassifier) callGemini(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	attempts := len(c.clients)
	var lastErr error

	for range attempts {
		idx := c.key()

		result, err := c.clients[idx].Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
		if err != nil {
			if isQuotaError(err) {
				c.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				c.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return text, nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (c *implClassifier) key() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentKey
}

// rotateKey advances past idx unless another call already rotated.
func (c *implClassifier) rotateKey(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentKey == idx {
		c.currentKey = (c.currentKey + 1) % len(c.clients)
	}
}

func isQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
