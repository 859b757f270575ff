package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oukeidos/npcxlate/internal/apperrors"
)

func TestOpenAI_Translate(t *testing.T) {
	var req openAIRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"id":"resp_1","status":"completed","output":[{"type":"reasoning"},{"type":"message","content":[{"type":"output_text","text":"안녕<<<SEP>>>잘 가\n"}]}],"usage":{"input_tokens":12,"output_tokens":5,"total_tokens":17}}`)
	}))
	defer server.Close()

	client := NewOpenAI("test-key", "", nil)
	client.baseURL = server.URL

	out, err := client.Translate(context.Background(), "Hello<<<SEP>>>Bye", "ko")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "안녕<<<SEP>>>잘 가" {
		t.Errorf("got %q", out)
	}
	if auth != "Bearer test-key" {
		t.Errorf("unexpected auth header %q", auth)
	}
	if req.Model != client.Model() || client.Model() == "" {
		t.Errorf("unexpected model %q", req.Model)
	}
	if !strings.Contains(req.Instructions, "Korean") {
		t.Errorf("instructions should name the target language: %q", req.Instructions)
	}
	if len(req.Input) != 1 || req.Input[0].Content != "Hello<<<SEP>>>Bye" {
		t.Errorf("unexpected input %+v", req.Input)
	}
	if u := client.Usage(); u.InputTokens != 12 || u.OutputTokens != 5 || u.TotalTokens != 17 {
		t.Errorf("unexpected usage %+v", u)
	}
}

func TestOpenAI_TranslateErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		responseBody  string
		kind          apperrors.Kind
		expectedMsg   string
		sensitiveMark string
	}{
		{
			name:          "429 Too Many Requests",
			status:        http.StatusTooManyRequests,
			responseBody:  `{"error": {"message": "Rate limit reached: SECRET_NPC_LINE", "type": "rate_limit_error", "code": "rate_limit_exceeded"}}`,
			kind:          apperrors.KindRateLimit,
			expectedMsg:   "OpenAI rate limit exceeded (429)",
			sensitiveMark: "SECRET_NPC_LINE",
		},
		{
			name:          "401 Unauthorized",
			status:        http.StatusUnauthorized,
			responseBody:  `{"error": {"message": "Invalid API Key: SECRET_NPC_LINE", "type": "auth_error"}}`,
			kind:          apperrors.KindAuth,
			expectedMsg:   "OpenAI authentication failed (401)",
			sensitiveMark: "SECRET_NPC_LINE",
		},
		{
			name:          "500 Internal Server Error",
			status:        http.StatusInternalServerError,
			responseBody:  "server down SECRET_NPC_LINE",
			kind:          apperrors.KindTransient,
			expectedMsg:   "OpenAI server error (500)",
			sensitiveMark: "SECRET_NPC_LINE",
		},
		{
			name:         "404 model not found",
			status:       http.StatusNotFound,
			responseBody: `{"error": {"message": "The model does not exist", "code": "model_not_found"}}`,
			kind:         apperrors.KindBadRequest,
			expectedMsg:  "model does not exist",
		},
		{
			name:         "incomplete response",
			status:       http.StatusOK,
			responseBody: `{"status":"incomplete","incomplete_details":{"reason":"max_output_tokens"}}`,
			kind:         apperrors.KindTransient,
			expectedMsg:  "incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.responseBody)
			}))
			defer server.Close()

			client := NewOpenAI("test-key", "test-model", nil)
			client.baseURL = server.URL

			_, err := client.Translate(context.Background(), "Hello", "ja")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if kind, _ := apperrors.KindOf(err); kind != tt.kind {
				t.Errorf("expected kind %q, got %q", tt.kind, kind)
			}
			if !strings.Contains(err.Error(), tt.expectedMsg) {
				t.Errorf("Expected error message to contain %q, got %q", tt.expectedMsg, err.Error())
			}
			if tt.sensitiveMark != "" && strings.Contains(err.Error(), tt.sensitiveMark) {
				t.Errorf("Expected error message to redact sensitive content, got %q", err.Error())
			}
		})
	}
}
