package protect

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultNestedCalls lists the helper functions whose first string argument
// is translated on its own.
var DefaultNestedCalls = []string{"F_Navi"}

var (
	identRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	literalRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// Slot is a literal lifted out of a nested call.
type Slot struct {
	// Placeholder replaced the whole quoted literal in the shielded line.
	Placeholder string
	// Content is the raw text between the quotes.
	Content string
}

// Shielded is a line with nested-call literals replaced by placeholders.
type Shielded struct {
	Text  string
	Slots []Slot
}

// NestedCalls finds calls to a fixed set of helpers and lifts the first
// string literal inside each call's balanced parentheses.
type NestedCalls struct {
	callRe *regexp.Regexp
}

// NewNestedCalls compiles a matcher for the named helpers. An empty list
// disables shielding.
func NewNestedCalls(names []string) (*NestedCalls, error) {
	if len(names) == 0 {
		return &NestedCalls{}, nil
	}
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if !identRe.MatchString(name) {
			return nil, fmt.Errorf("invalid nested call name %q", name)
		}
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	re, err := regexp.Compile(`\b(?:` + strings.Join(quoted, "|") + `)\s*\(`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile nested call pattern: %w", err)
	}
	return &NestedCalls{callRe: re}, nil
}

// NestedPlaceholder returns the identifier standing in for the n-th slot.
func NestedPlaceholder(n int) string {
	return fmt.Sprintf("__NCALL_%d__", n)
}

// Shield replaces the first literal of every recognised call in line with a
// placeholder. Calls without a literal are left alone.
func (n *NestedCalls) Shield(line string) Shielded {
	if n == nil || n.callRe == nil {
		return Shielded{Text: line}
	}
	spans := literalRe.FindAllStringIndex(line, -1)
	var b strings.Builder
	var slots []Slot
	pos := 0
	for pos < len(line) {
		loc := n.callRe.FindStringIndex(line[pos:])
		if loc == nil {
			break
		}
		callStart := pos + loc[0]
		open := pos + loc[1]
		end := closingParen(line, open, spans)

		lit := literalRe.FindStringSubmatchIndex(line[callStart:end])
		if lit == nil {
			b.WriteString(line[pos:end])
			pos = end
			continue
		}
		litStart, litEnd := callStart+lit[0], callStart+lit[1]
		placeholder := NestedPlaceholder(len(slots))
		slots = append(slots, Slot{
			Placeholder: placeholder,
			Content:     line[callStart+lit[2] : callStart+lit[3]],
		})
		b.WriteString(line[pos:litStart])
		b.WriteString(placeholder)
		b.WriteString(line[litEnd:end])
		pos = end
	}
	if len(slots) == 0 {
		return Shielded{Text: line}
	}
	b.WriteString(line[pos:])
	return Shielded{Text: b.String(), Slots: slots}
}

// Unshield replaces each slot placeholder in text with the quoted
// replacement of the same index. contents must be already escaped.
func (s Shielded) Unshield(text string, contents []string) (string, error) {
	if len(contents) != len(s.Slots) {
		return "", fmt.Errorf("nested call slots: got %d replacements for %d slots", len(contents), len(s.Slots))
	}
	for i, slot := range s.Slots {
		if !strings.Contains(text, slot.Placeholder) {
			return "", fmt.Errorf("nested call placeholder %s missing from rebuilt line", slot.Placeholder)
		}
		text = strings.Replace(text, slot.Placeholder, `"`+contents[i]+`"`, 1)
	}
	return text, nil
}

// closingParen returns the index just past the ')' closing the call whose
// body starts at open, or len(s) when the call is unterminated. Literals
// starting inside the call are skipped whole.
func closingParen(s string, open int, spans [][]int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		if end, ok := literalAt(spans, i); ok {
			i = end - 1
			continue
		}
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				return i + 1
			}
			depth--
		}
	}
	return len(s)
}

func literalAt(spans [][]int, i int) (int, bool) {
	for _, sp := range spans {
		if sp[0] == i {
			return sp[1], true
		}
	}
	return 0, false
}
