// Package batch sends several protected fragments to a translation backend
// in one request and maps the response back to the fragments one to one.
package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oukeidos/npcxlate/internal/apperrors"
	"github.com/oukeidos/npcxlate/internal/chunker"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/protect"
	"github.com/oukeidos/npcxlate/internal/textutil"
	"golang.org/x/time/rate"
)

// Separator joins fragments in a combined request. Protected fragments never
// contain "<<" outside a token, so it cannot occur in fragment content.
const Separator = "<<<SEP>>>"

// ErrSplitMismatch means a combined response did not split into as many
// parts as fragments were sent.
var ErrSplitMismatch = errors.New("translation response split count mismatch")

// Backend translates text into the target locale. Returning the input
// unchanged is allowed and treated as "no translation".
type Backend interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

const (
	DefaultMaxAttempts  = 3
	DefaultMaxFragments = 32
)

// Options tunes request behaviour.
type Options struct {
	// MaxAttempts bounds tries per request; 1 disables retries.
	MaxAttempts int
	// QPS caps requests per second; 0 means unlimited.
	QPS float64
	// MaxFragments caps fragments joined into one request; 0 means no cap.
	MaxFragments int
}

func DefaultOptions() Options {
	return Options{MaxAttempts: DefaultMaxAttempts, MaxFragments: DefaultMaxFragments}
}

// Stats counts what happened to requests over a translator's lifetime.
type Stats struct {
	Requests  int
	Retries   int
	Fallbacks int
	Failures  int
	Echoes    int
}

// Translator is safe for concurrent use.
type Translator struct {
	backend Backend
	target  string
	opts    Options
	limiter *rate.Limiter

	mu    sync.Mutex
	stats Stats
}

// New returns a Translator sending requests for target to backend.
func New(backend Backend, target string, opts Options) (*Translator, error) {
	if backend == nil {
		return nil, fmt.Errorf("translation backend is required")
	}
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("target locale is required")
	}
	if opts.MaxAttempts <= 0 {
		return nil, fmt.Errorf("max attempts must be greater than 0, got %d", opts.MaxAttempts)
	}
	if opts.QPS < 0 {
		return nil, fmt.Errorf("qps must not be negative, got %v", opts.QPS)
	}
	t := &Translator{backend: backend, target: target, opts: opts}
	if opts.QPS > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(opts.QPS), 1)
	}
	return t, nil
}

// Target returns the locale passed to the backend.
func (t *Translator) Target() string { return t.target }

// Stats returns a snapshot of the counters.
func (t *Translator) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *Translator) count(f func(*Stats)) {
	t.mu.Lock()
	f(&t.stats)
	t.mu.Unlock()
}

// IsNoop reports whether result is an echo of input.
func IsNoop(result, input string) bool {
	return strings.TrimSpace(result) == strings.TrimSpace(input)
}

// TranslateBatch returns one result per fragment, in order. A result equal
// to its fragment means "keep the source". Service failures never surface
// here; the only error is the context's.
func (t *Translator) TranslateBatch(ctx context.Context, fragments []string) ([]string, error) {
	if len(fragments) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(fragments))
	for _, c := range chunker.Split(fragments, t.opts.MaxFragments) {
		res, err := t.translateJoined(ctx, c.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

func (t *Translator) translateJoined(ctx context.Context, items []string) ([]string, error) {
	resp, err := t.call(ctx, strings.Join(items, Separator))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return append([]string(nil), items...), nil
	}

	parts := strings.Split(resp, Separator)
	if len(parts) != len(items) {
		logger.Debug("falling back to per-fragment requests",
			"error", ErrSplitMismatch, "sent", len(items), "received", len(parts))
		t.count(func(s *Stats) { s.Fallbacks++ })
		return t.translateEach(ctx, items)
	}

	out := make([]string, len(items))
	for i, part := range parts {
		out[i] = t.choose(items[i], part)
	}
	return out, nil
}

func (t *Translator) translateEach(ctx context.Context, items []string) ([]string, error) {
	out := make([]string, len(items))
	for i, item := range items {
		if protect.IsEllipsis(item) {
			out[i] = item
			continue
		}
		resp, err := t.call(ctx, item)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			out[i] = item
			continue
		}
		out[i] = t.choose(item, resp)
	}
	return out, nil
}

func (t *Translator) choose(input, result string) string {
	if IsNoop(result, input) {
		t.count(func(s *Stats) { s.Echoes++ })
		logger.Debug("translation echoed input", "text", textutil.Preview(input, 40))
		return input
	}
	return result
}

// call sends one request, retrying retryable failures.
func (t *Translator) call(ctx context.Context, text string) (string, error) {
	for attempt := 1; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}
		t.count(func(s *Stats) { s.Requests++ })
		resp, err := t.backend.Translate(ctx, text, t.target)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		retry, backoff := retryDecision(ctx, err, attempt, t.opts.MaxAttempts)
		if !retry {
			t.count(func(s *Stats) { s.Failures++ })
			t.logFailure(err, attempt, text)
			return "", err
		}
		t.count(func(s *Stats) { s.Retries++ })
		logger.Debug("retrying translation request", "attempt", attempt, "backoff", backoff, "error", apperrors.PublicMessage(err))
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (t *Translator) logFailure(err error, attempts int, text string) {
	kind, _ := apperrors.KindOf(err)
	args := []any{
		"attempts", attempts,
		"kind", string(kind),
		"error", apperrors.PublicMessage(err),
		"text", textutil.Preview(text, 40),
	}
	if apperrors.IsService(err) {
		logger.Warn("translation failed, keeping source text", args...)
		return
	}
	logger.Error("translation failed, keeping source text", args...)
}
