package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/tidyroom/internal/domain/analysis"
	"github.com/bryanwahyu/tidyroom/internal/infra/ai/prompt"
)

const (
	maxTokens    = 512
	defaultModel = "gpt-4o-mini"
)

// Client implements analysis.Model with a vision chat completion.
type Client struct {
	*openai.Client
	Model  string
	Labels []analysis.Label
}

func NewClient(apiKey, model string, labels []analysis.Label) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model, Labels: labels}
}

// NewClientWithConfig is NewClient for a custom base URL or HTTP client.
func NewClientWithConfig(cfg openai.ClientConfig, model string, labels []analysis.Label) *Client {
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, Labels: labels}
}

func (c *Client) Predict(ctx context.Context, s analysis.Sample) ([]float32, error) {
	if s.Image == nil {
		return nil, fmt.Errorf("%w: sample has no image", analysis.ErrInvalidImage)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, s.Image, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encode sample: %w", err)
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt(c.Labels)},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt.GetUserPrompt()},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURL,
					Detail: openai.ImageURLDetailLow,
				}},
			}},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", analysis.ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return prompt.ParseScores(resp.Choices[0].Message.Content, c.Labels)
}

// Close is a no-op; nothing is held locally.
func (c *Client) Close() error { return nil }
