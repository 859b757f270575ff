// Package pipeline translates NPC script files line by line, appending each
// finished line to the output so an interrupted run can be resumed.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/protect"
	"github.com/oukeidos/npcxlate/internal/script"
)

// Batcher translates protected fragments, one result per input. Results
// equal to their input mean "keep the source".
type Batcher interface {
	TranslateBatch(ctx context.Context, fragments []string) ([]string, error)
}

// shielder lifts nested-call literals out of a line body.
type shielder interface {
	Shield(line string) protect.Shielded
}

// Processor turns one input line into its translated form.
type Processor struct {
	batcher Batcher
	nested  shielder
}

// NewProcessor returns a Processor. A nil nested matcher disables
// nested-call shielding.
func NewProcessor(batcher Batcher, nested *protect.NestedCalls) (*Processor, error) {
	if batcher == nil {
		return nil, fmt.Errorf("batch translator is required")
	}
	return &Processor{batcher: batcher, nested: nested}, nil
}

// TranslateLine returns line with its translatable literals replaced. The
// line terminator is kept, and a line with nothing to translate is returned
// unchanged. The only error is the context's.
func (p *Processor) TranslateLine(ctx context.Context, line string) (string, error) {
	body, eol := script.SplitEOL(line)
	if strings.TrimSpace(body) == "" || script.IsComment(body) {
		return line, nil
	}

	shielded := p.shield(body)
	st := script.Extract(shielded.Text)

	rebuilt := st.Text
	if fragments := st.Protected(); len(fragments) > 0 {
		results, err := p.batcher.TranslateBatch(ctx, fragments)
		if err != nil {
			return "", err
		}
		rebuilt = script.Rebuild(st, results)
	}

	if len(shielded.Slots) > 0 {
		contents, err := p.translateSlots(ctx, shielded.Slots)
		if err != nil {
			return "", err
		}
		out, err := shielded.Unshield(rebuilt, contents)
		if err != nil {
			logger.Warn("Nested call restore failed, keeping line", "error", err)
			return line, nil
		}
		rebuilt = out
	}
	if rebuilt == body {
		return line, nil
	}
	return rebuilt + eol, nil
}

// translateSlots translates each nested-call literal in a request of its
// own and returns the escaped contents for Unshield.
func (p *Processor) translateSlots(ctx context.Context, slots []protect.Slot) ([]string, error) {
	contents := make([]string, len(slots))
	for i, s := range slots {
		contents[i] = s.Content
		if strings.TrimSpace(s.Content) == "" {
			continue
		}
		prot, rem := protect.Protect(s.Content)
		results, err := p.batcher.TranslateBatch(ctx, []string{prot})
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			contents[i] = script.Finish(s.Content, prot, rem, results[0])
		}
	}
	return contents, nil
}

// shield runs nested-call shielding, falling back to the plain body if the
// matcher panics.
func (p *Processor) shield(body string) (s protect.Shielded) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Nested call shielding failed, line left unshielded", "panic", fmt.Sprint(r))
			s = protect.Shielded{Text: body}
		}
	}()
	return p.nested.Shield(body)
}
