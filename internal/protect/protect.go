// Package protect shields substrings of script text that a translation
// service must not alter, and puts them back afterwards.
package protect

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Class names a kind of protected substring. It is also the token prefix.
type Class string

const (
	// ClassColor is a color escape: '^' followed by six hex digits.
	ClassColor Class = "CLR"
	// ClassBracket is a single '[' or ']'.
	ClassBracket Class = "BR"
	// ClassLiteral is a "<<" already present in the source text. Lifting it
	// keeps every "<<" in shielded text the start of a token.
	ClassLiteral Class = "LT"
)

var (
	fragileRe  = regexp.MustCompile(`\^[0-9a-fA-F]{6}|[\[\]]|<<`)
	tokenRe    = regexp.MustCompile(`<<(CLR|BR|LT)(\d+)>>`)
	ellipsisRe = regexp.MustCompile(`^[.．。…]+$`)
)

// Removals holds the substrings lifted out of one fragment, per class, in the
// order they were found. Index i of a class corresponds to token <<CLASSi>>.
type Removals map[Class][]string

// Len returns the total number of removed substrings.
func (r Removals) Len() int {
	n := 0
	for _, v := range r {
		n += len(v)
	}
	return n
}

// Token returns the placeholder for the i-th removal of class c.
func Token(c Class, i int) string {
	return fmt.Sprintf("<<%s%d>>", c, i)
}

func classOf(s string) Class {
	switch {
	case s == "<<":
		return ClassLiteral
	case s == "[" || s == "]":
		return ClassBracket
	default:
		return ClassColor
	}
}

// Protect replaces color escapes, brackets and literal "<<" in text with
// indexed tokens. Restore(Protect(text)) always returns text.
func Protect(text string) (string, Removals) {
	removals := Removals{}
	shielded := fragileRe.ReplaceAllStringFunc(text, func(m string) string {
		c := classOf(m)
		removals[c] = append(removals[c], m)
		return Token(c, len(removals[c])-1)
	})
	return shielded, removals
}

// Restore puts removed substrings back in place of their tokens. Tokens whose
// index is out of range for their class are left as they are.
func Restore(text string, removals Removals) string {
	if removals.Len() == 0 {
		return text
	}
	return tokenRe.ReplaceAllStringFunc(text, func(tok string) string {
		m := tokenRe.FindStringSubmatch(tok)
		idx, err := strconv.Atoi(m[2])
		if err != nil {
			return tok
		}
		list := removals[Class(m[1])]
		if idx < 0 || idx >= len(list) {
			return tok
		}
		return list[idx]
	})
}

// IsEllipsis reports whether s, ignoring surrounding whitespace, consists
// only of '.', '．', '。' or '…'. Such fragments are never translated.
func IsEllipsis(s string) bool {
	return ellipsisRe.MatchString(strings.TrimSpace(s))
}
