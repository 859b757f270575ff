package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/oukeidos/npcxlate/internal/apperrors"
	"github.com/oukeidos/npcxlate/internal/glossary"
	"github.com/oukeidos/npcxlate/internal/httpclient"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/metadata"
)

type openAIRequest struct {
	Model        string            `json:"model"`
	Instructions string            `json:"instructions,omitempty"`
	Input        []openAIInputItem `json:"input"`
}

type openAIInputItem struct {
	Type    string `json:"type"`
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type openAIResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details,omitempty"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type openAIErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// OpenAI translates through the OpenAI Responses API.
type OpenAI struct {
	usageMeter
	apiKey   string
	model    string
	baseURL  string
	glossary *glossary.Glossary
}

// NewOpenAI returns a client for model (default when empty).
func NewOpenAI(apiKey, model string, g *glossary.Glossary) *OpenAI {
	if model == "" {
		model = metadata.DefaultModel(NameOpenAI)
	}
	return &OpenAI{
		apiKey:   apiKey,
		model:    model,
		baseURL:  "https://api.openai.com/v1",
		glossary: g,
	}
}

// Model returns the configured model ID.
func (c *OpenAI) Model() string { return c.model }

func (c *OpenAI) Translate(ctx context.Context, text, target string) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:        c.model,
		Instructions: SystemPrompt(target, c.glossary),
		Input:        []openAIInputItem{{Type: "message", Role: "user", Content: text}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	body, resp, err := httpclient.DoAndRead(httpclient.GetDefaultClient(), req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.New(apperrors.KindTransient, "OpenAI request failed due to a temporary network error.", fmt.Errorf("request failed: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyOpenAIError(resp.StatusCode, resp.Status, body)
	}

	var result openAIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperrors.New(apperrors.KindTransient, "OpenAI response format was invalid.", fmt.Errorf("failed to decode response: %w", err))
	}
	c.record(result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)
	logger.Debug("openai response", "status", result.Status, "usage_total", result.Usage.TotalTokens, "response_id", result.ID)

	if result.Status == "incomplete" {
		reason := ""
		if result.IncompleteDetails != nil {
			reason = result.IncompleteDetails.Reason
		}
		return "", apperrors.New(apperrors.KindTransient, "OpenAI response was incomplete.", fmt.Errorf("incomplete response: %s", reason))
	}

	var b strings.Builder
	for _, item := range result.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			if content.Type == "output_text" {
				b.WriteString(content.Text)
			}
		}
	}
	if b.Len() == 0 {
		return "", apperrors.New(apperrors.KindTransient, "OpenAI returned no usable text.", fmt.Errorf("no output_text in response"))
	}
	return strings.TrimRight(b.String(), "\r\n"), nil
}

func (c *OpenAI) Close() error { return nil }

func classifyOpenAIError(statusCode int, status string, body []byte) error {
	var envelope openAIErrorEnvelope
	_ = json.Unmarshal(body, &envelope)
	code := ""
	if envelope.Error.Code != nil {
		code = fmt.Sprint(envelope.Error.Code)
	}
	cause := fmt.Errorf("openai status=%s type=%s code=%s message=%s", status, envelope.Error.Type, code, envelope.Error.Message)

	if statusCode == http.StatusNotFound {
		needle := strings.ToLower(code + " " + envelope.Error.Message)
		if strings.Contains(needle, "model_not_found") || strings.Contains(needle, "does not exist") {
			return apperrors.New(apperrors.KindBadRequest, "The model does not exist or you do not have access to it.", cause)
		}
	}
	base := classifyHTTPStatus("OpenAI", statusCode, status)
	kind, _ := apperrors.KindOf(base)
	return apperrors.New(kind, apperrors.PublicMessage(base), cause)
}
