// Package locale resolves user-supplied target locale codes to the form the
// translation backends expect.
package locale

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Default is the target used when none is configured.
const Default = "zh-cn"

// Locale is a supported translation target.
type Locale struct {
	// Code is the backend form, e.g. "zh-CN".
	Code string
	// Name is the English language name used in LLM prompts.
	Name string
}

// Suffix returns the infix used in output file names, e.g. "zh-cn".
func (l Locale) Suffix() string {
	return strings.ToLower(l.Code)
}

var supported = map[string]Locale{
	"zh-CN": {Code: "zh-CN", Name: "Chinese (Simplified)"},
	"zh-TW": {Code: "zh-TW", Name: "Chinese (Traditional)"},
	"ja":    {Code: "ja", Name: "Japanese"},
	"ko":    {Code: "ko", Name: "Korean"},
	"en":    {Code: "en", Name: "English"},
	"th":    {Code: "th", Name: "Thai"},
	"vi":    {Code: "vi", Name: "Vietnamese"},
	"id":    {Code: "id", Name: "Indonesian"},
	"ms":    {Code: "ms", Name: "Malay"},
	"tl":    {Code: "tl", Name: "Filipino"},
	"es":    {Code: "es", Name: "Spanish"},
	"pt":    {Code: "pt", Name: "Portuguese"},
	"fr":    {Code: "fr", Name: "French"},
	"de":    {Code: "de", Name: "German"},
	"it":    {Code: "it", Name: "Italian"},
	"ru":    {Code: "ru", Name: "Russian"},
	"pl":    {Code: "pl", Name: "Polish"},
	"tr":    {Code: "tr", Name: "Turkish"},
	"ar":    {Code: "ar", Name: "Arabic"},
}

// Spellings that are not valid BCP 47 but appear in existing scripts and
// file names.
var aliases = map[string]string{
	"zhcn": "zh-CN",
	"zhtw": "zh-TW",
	"cn":   "zh-CN",
	"tw":   "zh-TW",
	"fil":  "tl",
}

// Normalize maps code to a supported Locale. Case and '_' versus '-' are
// ignored, so "zh", "zh_cn", "zhcn" and "ZH-CN" all resolve to zh-CN.
func Normalize(code string) (Locale, error) {
	raw := strings.ToLower(strings.TrimSpace(code))
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" {
		return Locale{}, fmt.Errorf("target locale is empty")
	}
	if alias, ok := aliases[raw]; ok {
		return supported[alias], nil
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return Locale{}, fmt.Errorf("invalid target locale %q: %w", code, err)
	}
	base, _ := tag.Base()
	key := base.String()
	if key == "zh" {
		key = "zh-CN"
		script, _ := tag.Script()
		if script.String() == "Hant" {
			key = "zh-TW"
		}
	}
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	loc, ok := supported[key]
	if !ok {
		return Locale{}, fmt.Errorf("unsupported target locale %q (see 'npcxlate list')", code)
	}
	return loc, nil
}

// Supported returns every supported locale sorted by code.
func Supported() []Locale {
	out := make([]Locale, 0, len(supported))
	for _, l := range supported {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
