// Package glossary loads fixed term translations that LLM backends are told
// to respect, such as NPC and map names.
package glossary

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/oukeidos/npcxlate/internal/locale"
	"gopkg.in/yaml.v3"
)

// SourceKey is the field holding the English term in every entry.
const SourceKey = "en"

// Entry maps one source term to its fixed translation.
type Entry struct {
	Source string
	Target string
}

// Glossary holds the entries for one target locale.
type Glossary struct {
	Target  locale.Locale
	Entries []Entry
}

// Decode parses a list of objects keyed by locale code, for example
//
//	- en: Kafra
//	  zh-cn: 卡普拉
//
// JSON input works too. Keys are matched after locale normalisation, so
// "zh_cn" and "zh-CN" select the same column. Entries without a value for
// the target are skipped.
func Decode(data []byte, target locale.Locale) (*Glossary, error) {
	var raw []map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	g := &Glossary{Target: target}
	for i, entry := range raw {
		var src, tgt string
		for key, val := range entry {
			if strings.EqualFold(key, SourceKey) {
				src = strings.TrimSpace(val)
				continue
			}
			loc, err := locale.Normalize(key)
			if err == nil && loc.Code == target.Code {
				tgt = strings.TrimSpace(val)
			}
		}
		if src == "" {
			return nil, fmt.Errorf("entry %d: missing %q field", i+1, SourceKey)
		}
		if tgt == "" {
			continue
		}
		g.Entries = append(g.Entries, Entry{Source: src, Target: tgt})
	}
	sort.SliceStable(g.Entries, func(i, j int) bool {
		return g.Entries[i].Source < g.Entries[j].Source
	})
	return g, nil
}

// Load reads and decodes the glossary file at path.
func Load(path string, target locale.Locale) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary %s: %w", path, err)
	}
	g, err := Decode(data, target)
	if err != nil {
		return nil, fmt.Errorf("failed to parse glossary %s: %w", path, err)
	}
	return g, nil
}

// Len returns the number of entries; a nil glossary is empty.
func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Entries)
}

// Lines renders the entries as "Source => Target" lines for prompts.
func (g *Glossary) Lines() []string {
	if g.Len() == 0 {
		return nil
	}
	out := make([]string, 0, len(g.Entries))
	for _, e := range g.Entries {
		out = append(out, e.Source+" => "+e.Target)
	}
	return out
}
