// Package script recognises the dialogue statements of rAthena NPC scripts,
// extracts their translatable string literals and splices translations back.
package script

import (
	"regexp"
	"strings"

	"github.com/oukeidos/npcxlate/internal/protect"
)

// Kind is the category of a script line.
type Kind int

const (
	// KindPassthrough lines are copied unchanged.
	KindPassthrough Kind = iota
	// KindMessage is a `mes` statement; every literal is translatable.
	KindMessage
	// KindTalk is an `npctalk` statement; only the first two literals are.
	KindTalk
	// KindChoice is a `select` or `menu` choice list; literals with ASCII
	// letters are.
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindTalk:
		return "talk"
	case KindChoice:
		return "choice"
	default:
		return "passthrough"
	}
}

var (
	literalRe = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	letterRe  = regexp.MustCompile(`[A-Za-z]`)

	keywords = []struct {
		kind Kind
		re   *regexp.Regexp
	}{
		{kind: KindMessage, re: regexp.MustCompile(`\bmes\b`)},
		{kind: KindTalk, re: regexp.MustCompile(`\bnpctalk\b`)},
		{kind: KindChoice, re: regexp.MustCompile(`\bselect\b`)},
		{kind: KindChoice, re: regexp.MustCompile(`\bmenu\b`)},
	}
)

// Fragment is one string literal of a statement.
type Fragment struct {
	// Start and End delimit Raw within Statement.Text (quotes excluded).
	Start, End int
	// Raw is the literal content exactly as written.
	Raw string
	// Eligible reports whether Source is sent for translation.
	Eligible bool
	// Source is the translatable part of Raw.
	Source string
	// Suffix follows Source inside the literal and is never translated.
	Suffix string
	// Protected is Source with fragile substrings replaced by tokens.
	Protected string
	Removals  protect.Removals
}

// Statement is a classified line body (no terminator) and its literals.
type Statement struct {
	Kind      Kind
	Text      string
	Fragments []Fragment
}

// Protected returns the protected source of every eligible fragment, in
// span order.
func (s Statement) Protected() []string {
	var out []string
	for _, f := range s.Fragments {
		if f.Eligible {
			out = append(out, f.Protected)
		}
	}
	return out
}

// Classify returns the statement kind of a line body.
func Classify(text string) Kind {
	if IsComment(text) {
		return KindPassthrough
	}
	kind, _ := classify(text, literalSpans(text))
	return kind
}

// Extract classifies text and collects the literals that follow the
// statement keyword. Literals after a trailing "//" comment are ignored.
func Extract(text string) Statement {
	st := Statement{Kind: KindPassthrough, Text: text}
	if IsComment(text) {
		return st
	}
	spans := literalSpans(text)
	kind, exprStart := classify(text, spans)
	if kind == KindPassthrough {
		return st
	}
	st.Kind = kind

	for _, sp := range spans {
		if sp[0] < exprStart {
			continue
		}
		st.Fragments = append(st.Fragments, newFragment(kind, len(st.Fragments), text, sp))
	}
	return st
}

func newFragment(kind Kind, idx int, text string, sp []int) Fragment {
	raw := text[sp[2]:sp[3]]
	f := Fragment{Start: sp[2], End: sp[3], Raw: raw, Source: raw}

	switch kind {
	case KindMessage:
		f.Eligible = true
	case KindTalk:
		f.Eligible = idx <= 1
		if idx == 1 {
			if before, after, ok := strings.Cut(raw, "#"); ok {
				f.Source = before
				f.Suffix = "#" + after
			}
		}
	case KindChoice:
		f.Eligible = letterRe.MatchString(raw)
	}
	if strings.TrimSpace(f.Source) == "" {
		f.Eligible = false
	}
	if f.Eligible {
		f.Protected, f.Removals = protect.Protect(f.Source)
	}
	return f
}

// literalSpans returns submatch indexes of every literal that starts before
// the first "//" outside a literal.
func literalSpans(text string) [][]int {
	all := literalRe.FindAllStringSubmatchIndex(text, -1)
	cut := commentStart(text, all)
	out := all[:0]
	for _, sp := range all {
		if sp[0] >= cut {
			break
		}
		out = append(out, sp)
	}
	return out
}

func commentStart(text string, spans [][]int) int {
	from := 0
	for {
		i := strings.Index(text[from:], "//")
		if i < 0 {
			return len(text)
		}
		i += from
		if !insideAny(i, spans) {
			return i
		}
		from = i + 2
	}
}

func insideAny(pos int, spans [][]int) bool {
	for _, sp := range spans {
		if pos >= sp[0] && pos < sp[1] {
			return true
		}
	}
	return false
}

// classify finds the first statement keyword outside a literal that is
// followed by an expression. It returns where the expression may start.
func classify(text string, spans [][]int) (Kind, int) {
	cut := commentStart(text, spans)
	for _, kw := range keywords {
		for _, m := range kw.re.FindAllStringIndex(text[:cut], -1) {
			if insideAny(m[0], spans) || m[1] >= len(text) {
				continue
			}
			return kw.kind, m[1]
		}
	}
	return KindPassthrough, 0
}
