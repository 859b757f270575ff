// Package textutil measures and shortens text for terminal output.
package textutil

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Preview shortens s to at most max user-perceived characters, appending
// "…" when it was cut, and folds line breaks so it fits on one log line.
func Preview(s string, max int) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	if max <= 0 || uniseg.GraphemeClusterCount(s) <= max {
		return s
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for n := 0; n < max && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString("…")
	return b.String()
}

// Width returns the monospace display width of s, counting wide CJK
// characters as two cells.
func Width(s string) int {
	return uniseg.StringWidth(s)
}
