package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// TextGenerator produces free text for a prompt. Implementations make a single attempt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// ErrEmptyGeneration is returned when the model answers without any text part
var ErrEmptyGeneration = errors.New("generation returned no text")

// GeminiClient generates text with a Gemini model
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates a client for modelName authenticated with apiKey
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"component": "GeminiClient",
		"model":     modelName,
	}).Info("Gemini client initialized")

	return &GeminiClient{client: client, modelName: modelName}, nil
}

// GenerateContent sends one prompt. A model handle is built per call so system instructions never leak between requests.
func (g *GeminiClient) GenerateContent(ctx context.Context, systemInstruction, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(0.7)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.ResponseMIMEType = "application/json"
	if systemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(systemInstruction))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyGeneration
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyGeneration
	}
	return sb.String(), nil
}

// Close releases the underlying connection
func (g *GeminiClient) Close() error {
	return g.client.Close()
}
