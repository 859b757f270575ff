package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/npcxlate/internal/apperrors"
	"github.com/oukeidos/npcxlate/internal/glossary"
	"github.com/oukeidos/npcxlate/internal/httpclient"
	"github.com/oukeidos/npcxlate/internal/metadata"
	"google.golang.org/api/option"
)

// generator is the part of genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini translates through the Gemini API.
type Gemini struct {
	usageMeter
	client   *genai.Client
	model    string
	glossary *glossary.Glossary

	mu     sync.Mutex
	models map[string]generator
	// newModel is replaced in tests.
	newModel func(target string) generator
}

// NewGemini opens a Gemini client for model (default when empty).
func NewGemini(ctx context.Context, apiKey, model string, g *glossary.Glossary) (*Gemini, error) {
	if model == "" {
		model = metadata.DefaultModel(NameGemini)
	}
	// option.WithHTTPClient would bypass genai's API key header injection,
	// so timeouts are enforced per call through the context instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c := &Gemini{
		client:   client,
		model:    model,
		glossary: g,
		models:   map[string]generator{},
	}
	c.newModel = c.configureModel
	return c, nil
}

func (c *Gemini) configureModel(target string) generator {
	m := c.client.GenerativeModel(c.model)
	m.ResponseMIMEType = "text/plain"
	m.SetTemperature(0.2)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt(target, c.glossary))},
	}
	return m
}

func (c *Gemini) modelFor(target string) generator {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.models[target]
	if !ok {
		m = c.newModel(target)
		c.models[target] = m
	}
	return m
}

// Model returns the configured model ID.
func (c *Gemini) Model() string { return c.model }

func (c *Gemini) Translate(ctx context.Context, text, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	resp, err := c.modelFor(target).GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp != nil && resp.UsageMetadata != nil {
		c.record(
			int(resp.UsageMetadata.PromptTokenCount),
			int(resp.UsageMetadata.CandidatesTokenCount),
			int(resp.UsageMetadata.TotalTokenCount),
		)
	}
	out, err := extractResponseText(resp)
	if err != nil {
		return "", apperrors.New(apperrors.KindTransient, "Gemini returned no usable text.", err)
	}
	return strings.TrimRight(out, "\r\n"), nil
}

func (c *Gemini) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String(), nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
