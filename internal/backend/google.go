package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/oukeidos/npcxlate/internal/apperrors"
	"github.com/oukeidos/npcxlate/internal/httpclient"
)

const googleEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google translates through the public Google Translate web endpoint. It
// needs no key and reports no usage.
type Google struct {
	endpoint string
}

func NewGoogle() *Google {
	return &Google{endpoint: googleEndpoint}
}

func (g *Google) Translate(ctx context.Context, text, target string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+query.Encode(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	body, resp, err := httpclient.DoAndRead(httpclient.GetDefaultClient(), req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", apperrors.New(apperrors.KindTransient, "Google Translate request failed due to a temporary network error.", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPStatus("Google Translate", resp.StatusCode, resp.Status)
	}
	out, err := parseGoogleResponse(body)
	if err != nil {
		return "", apperrors.New(apperrors.KindTransient, "Google Translate response format was invalid.", err)
	}
	return out, nil
}

// parseGoogleResponse joins the translated sentence pieces of a gtx
// response: [[["译文","source",...],...],null,"en",...].
func parseGoogleResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("empty response")
	}
	var sentences [][]any
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("failed to decode sentences: %w", err)
	}
	var b strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		if piece, ok := s[0].(string); ok {
			b.WriteString(piece)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no translated text in response")
	}
	return b.String(), nil
}

func (g *Google) Usage() Usage { return Usage{} }

func (g *Google) Close() error { return nil }

func classifyHTTPStatus(service string, code int, status string) error {
	cause := fmt.Errorf("%s status=%s", strings.ToLower(service), status)
	switch {
	case code == http.StatusTooManyRequests:
		return apperrors.New(apperrors.KindRateLimit, fmt.Sprintf("%s rate limit exceeded (429).", service), cause)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return apperrors.New(apperrors.KindAuth, fmt.Sprintf("%s authentication failed (%d).", service, code), cause)
	case code >= 500:
		return apperrors.New(apperrors.KindTransient, fmt.Sprintf("%s server error (%d).", service, code), cause)
	default:
		return apperrors.New(apperrors.KindBadRequest, fmt.Sprintf("%s API error (%d).", service, code), cause)
	}
}
