// Package gemini adapts the Gemini API to the pipeline's vision and
// text capabilities.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

type Adapter struct {
	client *genai.Client
	model  string
}

func New(ctx context.Context, apiKey, model string) (*Adapter, error) {
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Adapter{client: client, model: model}, nil
}

func (a *Adapter) Close() error { return a.client.Close() }

func (a *Adapter) AnalyzeImage(ctx context.Context, prompt string, imagePNG []byte, temperature float32) (string, error) {
	m := a.generativeModel(temperature)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt), genai.ImageData("png", imagePNG))
	if err != nil {
		return "", fmt.Errorf("gemini vision: %w", err)
	}
	return responseText(resp)
}

func (a *Adapter) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	m := a.generativeModel(temperature)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

func (a *Adapter) generativeModel(temperature float32) *genai.GenerativeModel {
	m := a.client.GenerativeModel(a.model)
	m.SetTemperature(temperature)
	return m
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	s := strings.TrimSpace(b.String())
	if s == "" {
		return "", errors.New("gemini: empty response")
	}
	return s, nil
}
