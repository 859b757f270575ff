package script

import (
	"strings"

	"github.com/oukeidos/npcxlate/internal/protect"
)

// Rebuild splices translations into the eligible fragments of st, in span
// order, and returns the new line body. translated holds one protected-form
// result per eligible fragment; a missing or empty entry keeps the source.
// Text outside fragment spans is copied unchanged.
func Rebuild(st Statement, translated []string) string {
	var b strings.Builder
	last := 0
	k := 0
	for _, f := range st.Fragments {
		if !f.Eligible {
			continue
		}
		var candidate string
		if k < len(translated) {
			candidate = translated[k]
		}
		k++
		b.WriteString(st.Text[last:f.Start])
		b.WriteString(Finish(f.Source, f.Protected, f.Removals, candidate))
		b.WriteString(f.Suffix)
		last = f.End
	}
	if last == 0 && k == 0 {
		return st.Text
	}
	b.WriteString(st.Text[last:])
	return b.String()
}

// Finish turns one translation result back into literal content: ellipsis
// sources and blank or echoed results keep the source, tokens are restored,
// the source's surrounding whitespace is kept and bare quotes are escaped.
// Line breaks become spaces so a rebuilt line stays one line.
func Finish(source, protected string, removals protect.Removals, translated string) string {
	if protect.IsEllipsis(source) || strings.TrimSpace(translated) == "" ||
		strings.TrimSpace(translated) == strings.TrimSpace(protected) {
		return source
	}
	out := lineBreakReplacer.Replace(translated)
	out = protect.Restore(out, removals)
	out = keepPadding(source, out)
	return closeEscapes(EscapeQuotes(out))
}

// closeEscapes doubles a dangling trailing backslash so it cannot escape the
// literal's closing quote.
func closeEscapes(s string) string {
	if n := len(s) - len(strings.TrimRight(s, `\`)); n%2 == 1 {
		return s + `\`
	}
	return s
}

var lineBreakReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func keepPadding(source, translated string) string {
	lead := source[:len(source)-len(strings.TrimLeft(source, " \t"))]
	trail := source[len(strings.TrimRight(source, " \t")):]
	if strings.TrimSpace(source) == "" {
		return translated
	}
	return lead + strings.TrimSpace(translated) + trail
}

// EscapeQuotes escapes every '"' in s that is not already escaped.
func EscapeQuotes(s string) string {
	if !strings.Contains(s, `"`) {
		return s
	}
	var b strings.Builder
	backslashes := 0
	for _, r := range s {
		if r == '"' && backslashes%2 == 0 {
			b.WriteByte('\\')
		}
		if r == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		b.WriteRune(r)
	}
	return b.String()
}
