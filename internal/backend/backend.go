// Package backend adapts external translation services to the single
// text-in, text-out call the batch translator needs.
package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oukeidos/npcxlate/internal/glossary"
)

const (
	NameGoogle = "google"
	NameGemini = "gemini"
	NameOpenAI = "openai"
)

// Usage counts tokens reported by LLM services. Google reports none.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func (u *Usage) add(in, out, total int) {
	u.InputTokens += in
	u.OutputTokens += out
	u.TotalTokens += total
}

// Client is a translation service connection.
type Client interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Usage() Usage
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Name     string
	Model    string
	APIKey   string
	Glossary *glossary.Glossary
}

// RequiresKey reports whether the named backend needs an API key.
func RequiresKey(name string) bool {
	return name == NameGemini || name == NameOpenAI
}

// Names returns every backend name, sorted.
func Names() []string {
	names := []string{NameGoogle, NameGemini, NameOpenAI}
	sort.Strings(names)
	return names
}

// New opens the backend named in cfg.
func New(ctx context.Context, cfg Config) (Client, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Name))
	if RequiresKey(name) && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%s backend requires an API key", name)
	}
	switch name {
	case NameGoogle:
		return NewGoogle(), nil
	case NameGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Glossary)
	case NameOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.Glossary), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (available: %s)", cfg.Name, strings.Join(Names(), ", "))
	}
}

// usageMeter is embedded by clients that report token usage.
type usageMeter struct {
	mu    sync.Mutex
	usage Usage
}

func (m *usageMeter) record(in, out, total int) {
	m.mu.Lock()
	m.usage.add(in, out, total)
	m.mu.Unlock()
}

func (m *usageMeter) Usage() Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}
