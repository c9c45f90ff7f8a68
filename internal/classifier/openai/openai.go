package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/meetsort/internal/classifier"
	"github.com/nguyentantai21042004/meetsort/internal/meeting"
	"github.com/sashabaranov/go-openai"
)

const (
	maxTokens        = 256
	maxSummaryTokens = 1024
	systemPrompt     = "You sort meeting transcripts into a fixed set of categories. Reply with JSON only."
)

func (c *implClassifier) Classify(ctx context.Context, doc meeting.Document) (meeting.Classification, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: classifier.ClassificationPrompt(c.categories, doc)},
		},
	}
	c.setTokenLimit(&req, maxTokens)

	raw, err := c.complete(ctx, req)
	if err != nil {
		return meeting.Classification{}, fmt.Errorf("classify %q: %w: %w", doc.Name, meeting.ErrClassification, err)
	}

	result := classifier.ParseAnswer(raw, c.categories)
	c.logger.Debug(ctx, "openai: %q -> %s (%.2f)", doc.Name, result.Category, result.Confidence)
	return result, nil
}

func (c *implClassifier) Summarize(ctx context.Context, doc meeting.Document, kind classifier.SummaryKind) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: classifier.SummaryPrompt(kind, doc)},
		},
	}
	c.setTokenLimit(&req, maxSummaryTokens)

	text, err := c.complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarize %q (%s): %w", doc.Name, kind, err)
	}
	return strings.TrimSpace(text), nil
}

func (c *implClassifier) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// Reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens.
func (c *implClassifier) setTokenLimit(req *openai.ChatCompletionRequest, n int) {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(c.model, prefix) {
			req.MaxCompletionTokens = n
			return
		}
	}
	req.MaxTokens = n
}
