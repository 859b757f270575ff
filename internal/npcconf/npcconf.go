// Package npcconf checks the "npc: <path>" entries of a server .conf file
// against translated script files and can point them at the translations.
package npcconf

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oukeidos/npcxlate/internal/files"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/script"
)

var npcRe = regexp.MustCompile(`(?i)\bnpc\s*:\s*(.+)`)

// Entry is one script reference that does not name a translation yet.
type Entry struct {
	// Line is 1-based.
	Line int
	Ref  string
	// Translated is the resolved path of the translated counterpart.
	Translated string
	Exists     bool

	// refStart and refEnd delimit Ref (without quotes) in the line.
	refStart, refEnd int
}

// Report is the result of scanning one .conf file.
type Report struct {
	Path string
	// Total counts every active npc: line.
	Total int
	// Converted counts references that already name a translated file.
	Converted int
	Entries   []Entry
}

// Missing returns the entries whose translation does not exist.
func (r *Report) Missing() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Exists {
			out = append(out, e)
		}
	}
	return out
}

// Checked counts the entries whose translation exists.
func (r *Report) Checked() int {
	return len(r.Entries) - len(r.Missing())
}

// Summary renders the one-line report footer.
func (r *Report) Summary() string {
	return fmt.Sprintf("All %d, Checked %d files, missing: %d, converted: %d",
		r.Total, r.Checked(), len(r.Missing()), r.Converted)
}

// Scan reads confPath. References starting with "npc/" resolve against
// root, others against the conf file's directory.
func Scan(confPath, root, suffix string) (*Report, error) {
	data, err := os.ReadFile(confPath)
	if err != nil {
		return nil, err
	}
	r := &Report{Path: confPath}
	for i, line := range script.SplitLines(string(data)) {
		ref, start, end, ok := parseRef(line)
		if !ok {
			continue
		}
		r.Total++
		if ref == "" {
			continue
		}
		if script.IsTranslatedName(ref, suffix) {
			r.Converted++
			continue
		}
		translated := script.OutputPath(resolve(confPath, root, ref), suffix)
		_, statErr := os.Stat(translated)
		r.Entries = append(r.Entries, Entry{
			Line:       i + 1,
			Ref:        ref,
			Translated: translated,
			Exists:     statErr == nil,
			refStart:   start,
			refEnd:     end,
		})
	}
	return r, nil
}

// parseRef extracts the referenced path of an active npc: line. Inline
// comments and surrounding quotes are dropped.
func parseRef(line string) (ref string, start, end int, ok bool) {
	body, _ := script.SplitEOL(line)
	trimmed := strings.TrimLeft(body, " \t")
	if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		return "", 0, 0, false
	}
	m := npcRe.FindStringSubmatchIndex(body)
	if m == nil {
		return "", 0, 0, false
	}
	start, end = m[2], m[3]
	value := body[start:end]
	cut := len(value)
	for _, sep := range []string{"//", "#", ";"} {
		if i := strings.Index(value, sep); i >= 0 && i < cut {
			cut = i
		}
	}
	value = value[:cut]
	lead := len(value) - len(strings.TrimLeft(value, " \t"))
	value = strings.TrimSpace(value)
	start += lead
	end = start + len(value)

	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		start++
		end--
		value = value[1 : len(value)-1]
	}
	return strings.TrimSpace(value), start, end, true
}

func resolve(confPath, root, ref string) string {
	normalized := strings.TrimLeft(ref, `/\`)
	lower := strings.ToLower(normalized)
	if lower == "npc" || strings.HasPrefix(lower, "npc/") || strings.HasPrefix(lower, `npc\`) {
		return filepath.Join(root, filepath.FromSlash(normalized))
	}
	return filepath.Join(filepath.Dir(confPath), filepath.FromSlash(ref))
}

// translatedRef returns ref renamed to its translated counterpart.
func translatedRef(ref, suffix string) string {
	if strings.HasSuffix(strings.ToLower(ref), ".txt") {
		return ref[:len(ref)-len(".txt")] + "." + suffix + ".txt"
	}
	return ref + "." + suffix + ".txt"
}

// Rewrite points every entry whose translation exists at the translated
// file. The original is kept next to it as a backup before the new content
// is written atomically. It returns the number of rewritten references and
// the backup path.
func Rewrite(r *Report, suffix string) (int, string, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return 0, "", err
	}
	lines := script.SplitLines(string(data))

	changed := 0
	for _, e := range r.Entries {
		if !e.Exists || e.Line-1 >= len(lines) {
			continue
		}
		line := lines[e.Line-1]
		if e.refEnd > len(line) || line[e.refStart:e.refEnd] != e.Ref {
			logger.Warn("Conf line changed since scan, skipping", "path", r.Path, "line", e.Line)
			continue
		}
		lines[e.Line-1] = line[:e.refStart] + translatedRef(e.Ref, suffix) + line[e.refEnd:]
		changed++
	}
	if changed == 0 {
		return 0, "", nil
	}

	backup, err := files.FreePath(r.Path + ".bak")
	if err != nil {
		return 0, "", fmt.Errorf("failed to choose backup path: %w", err)
	}
	info, err := os.Stat(r.Path)
	if err != nil {
		return 0, "", err
	}
	if err := files.AtomicWrite(backup, data, info.Mode().Perm()); err != nil {
		return 0, "", fmt.Errorf("failed to write backup: %w", err)
	}
	if err := files.AtomicWrite(r.Path, []byte(strings.Join(lines, "")), info.Mode().Perm()); err != nil {
		return 0, backup, fmt.Errorf("failed to rewrite %s: %w", r.Path, err)
	}
	logger.Info("Conf rewritten", "path", r.Path, "references", changed, "backup", backup)
	return changed, backup, nil
}
