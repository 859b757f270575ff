// Package settings loads the optional npcxlate.yaml defaults file.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oukeidos/npcxlate/internal/backend"
	"github.com/oukeidos/npcxlate/internal/batch"
	"github.com/oukeidos/npcxlate/internal/locale"
	"github.com/oukeidos/npcxlate/internal/protect"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "npcxlate.yaml"

// Settings are the defaults for command-line flags.
type Settings struct {
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
	Target  string `yaml:"target"`
	// Suffix names translated files; empty means the lowercase target.
	Suffix   string `yaml:"suffix"`
	Glossary string `yaml:"glossary"`

	Attempts     int      `yaml:"attempts"`
	QPS          float64  `yaml:"qps"`
	MaxFragments int      `yaml:"max_fragments"`
	NestedCalls  []string `yaml:"nested_calls"`
	Jobs         int      `yaml:"jobs"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Backend:      backend.NameGoogle,
		Target:       locale.Default,
		Attempts:     batch.DefaultMaxAttempts,
		MaxFragments: batch.DefaultMaxFragments,
		NestedCalls:  append([]string(nil), protect.DefaultNestedCalls...),
		Jobs:         1,
	}
}

// LoadFromFile overlays the YAML file at path on Defaults. Unknown keys are
// rejected. A relative glossary path is resolved against the file's
// directory.
func LoadFromFile(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.Glossary != "" && !filepath.IsAbs(s.Glossary) {
		s.Glossary = filepath.Join(filepath.Dir(path), s.Glossary)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Load reads path, or DefaultFile when path is empty. A missing default
// file yields Defaults; a missing explicit file is an error. The returned
// string is the file actually read, empty when none was.
func Load(path string) (Settings, string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	s, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return Defaults(), "", nil
	}
	if err != nil {
		return s, "", err
	}
	return s, path, nil
}

// Validate checks value ranges and names.
func (s Settings) Validate() error {
	known := false
	for _, n := range backend.Names() {
		if strings.EqualFold(s.Backend, n) {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (available: %s)", s.Backend, strings.Join(backend.Names(), ", "))
	}
	if _, err := locale.Normalize(s.Target); err != nil {
		return err
	}
	if s.Attempts < 1 {
		return fmt.Errorf("attempts must be 1 or greater, got %d", s.Attempts)
	}
	if s.QPS < 0 {
		return fmt.Errorf("qps must not be negative, got %v", s.QPS)
	}
	if s.MaxFragments < 0 {
		return fmt.Errorf("max_fragments must not be negative, got %d", s.MaxFragments)
	}
	if s.Jobs < 1 {
		return fmt.Errorf("jobs must be 1 or greater, got %d", s.Jobs)
	}
	if strings.ContainsAny(s.Suffix, `/\`) {
		return fmt.Errorf("suffix must not contain path separators: %q", s.Suffix)
	}
	if _, err := protect.NewNestedCalls(s.NestedCalls); err != nil {
		return err
	}
	return nil
}
