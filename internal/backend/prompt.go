package backend

import (
	"fmt"
	"strings"

	"github.com/oukeidos/npcxlate/internal/glossary"
	"github.com/oukeidos/npcxlate/internal/locale"
)

// SystemPrompt returns the instruction given to LLM backends for target.
// Unknown targets fall back to the code itself.
func SystemPrompt(target string, g *glossary.Glossary) string {
	name := target
	if loc, err := locale.Normalize(target); err == nil {
		name = loc.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You translate dialogue from a fantasy MMORPG's NPC scripts into %s.\n", name)
	b.WriteString(`Rules:
- Output only the translation. No quotes around it, no notes, no explanations.
- Text may contain several segments joined by <<<SEP>>>. Translate each segment
  separately and join them with <<<SEP>>> again, keeping the exact same number
  of segments in the same order.
- Placeholders such as <<CLR0>>, <<BR1>> or <<LT0>> stand for color codes and
  brackets. Copy every placeholder unchanged, in a sensible position.
- Keep the register of the source: casual NPC chatter stays casual.
- If a segment is a name, number or symbol that should not be translated,
  return it unchanged.
`)
	if lines := g.Lines(); len(lines) > 0 {
		b.WriteString("Always use these fixed translations:\n")
		for _, l := range lines {
			b.WriteString("- ")
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
	return b.String()
}
