package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/oukeidos/npcxlate/internal/backend"
	"github.com/oukeidos/npcxlate/internal/batch"
	"github.com/oukeidos/npcxlate/internal/cleanup"
	"github.com/oukeidos/npcxlate/internal/glossary"
	"github.com/oukeidos/npcxlate/internal/locale"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/metadata"
	"github.com/oukeidos/npcxlate/internal/pipeline"
	"github.com/oukeidos/npcxlate/internal/protect"
	"github.com/oukeidos/npcxlate/internal/settings"
	"github.com/spf13/cobra"
)

// runOptions are the flags shared by translate and batch.
type runOptions struct {
	configPath   string
	backendName  string
	modelName    string
	target       string
	suffix       string
	glossaryPath string
	attempts     int
	qps          float64
	maxFragments int
	nestedCalls  []string
	allowEnv     bool
	envOnly      bool
	debug        bool
	logFilePath  string
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	d := settings.Defaults()
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Settings file (default: ./"+settings.DefaultFile+" if present)")
	cmd.Flags().StringVar(&opts.backendName, "backend", d.Backend, "Translation backend ("+strings.Join(backend.Names(), ", ")+")")
	cmd.Flags().StringVar(&opts.modelName, "model", d.Model, "Model for LLM backends (default depends on backend)")
	cmd.Flags().StringVar(&opts.target, "target", d.Target, "Target locale (see 'npcxlate list')")
	cmd.Flags().StringVar(&opts.suffix, "suffix", d.Suffix, "Translated file suffix (default: lowercase target)")
	cmd.Flags().StringVar(&opts.glossaryPath, "glossary", d.Glossary, "YAML/JSON glossary of fixed term translations for LLM backends")
	cmd.Flags().IntVar(&opts.attempts, "attempts", d.Attempts, "Tries per translation request (1 disables retries)")
	cmd.Flags().Float64Var(&opts.qps, "qps", d.QPS, "Maximum translation requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&opts.maxFragments, "max-fragments", d.MaxFragments, "Maximum fragments joined into one request")
	cmd.Flags().StringSliceVar(&opts.nestedCalls, "nested-call", d.NestedCalls, "Helper functions whose first string argument is translated separately")
	cmd.Flags().BoolVar(&opts.allowEnv, "allow-env", false, "Allow reading API keys from environment variables and .env")
	cmd.Flags().BoolVar(&opts.envOnly, "env-only", false, "Use only environment variables for API keys")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFilePath, "log-file", "", "Path to save machine-readable JSONL logs")
}

// applySettings fills every flag the user did not set from the settings
// file.
func applySettings(cmd *cobra.Command, opts *runOptions) error {
	s, used, err := settings.Load(opts.configPath)
	if err != nil {
		return err
	}
	if used != "" {
		logger.Debug("Loaded settings", "path", used)
	}
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	set("backend", func() { opts.backendName = s.Backend })
	set("model", func() { opts.modelName = s.Model })
	set("target", func() { opts.target = s.Target })
	set("suffix", func() { opts.suffix = s.Suffix })
	set("glossary", func() { opts.glossaryPath = s.Glossary })
	set("attempts", func() { opts.attempts = s.Attempts })
	set("qps", func() { opts.qps = s.QPS })
	set("max-fragments", func() { opts.maxFragments = s.MaxFragments })
	set("nested-call", func() { opts.nestedCalls = s.NestedCalls })
	return nil
}

// resolveTarget normalizes the target locale and the output suffix.
func resolveTarget(opts *runOptions) (locale.Locale, string, error) {
	target, err := locale.Normalize(opts.target)
	if err != nil {
		return locale.Locale{}, "", err
	}
	suffix := strings.TrimSpace(opts.suffix)
	if suffix == "" {
		suffix = target.Suffix()
	}
	if strings.ContainsAny(suffix, `/\`) {
		return locale.Locale{}, "", fmt.Errorf("suffix must not contain path separators: %q", suffix)
	}
	return target, suffix, nil
}

// session is an open backend wired to a line processor.
type session struct {
	backendName string
	model       string
	target      locale.Locale
	client      backend.Client
	translator  *batch.Translator
	processor   *pipeline.Processor
}

func openSession(ctx context.Context, opts *runOptions, target locale.Locale) (*session, error) {
	name := strings.ToLower(strings.TrimSpace(opts.backendName))
	cfg := backend.Config{Name: name, Model: opts.modelName}
	if backend.RequiresKey(name) {
		if cfg.Model == "" {
			cfg.Model = metadata.DefaultModel(name)
		}
		if opts.allowEnv || opts.envOnly {
			loadEnvFile()
		}
		key, source, err := resolveAPIKey(name, opts.allowEnv, opts.envOnly)
		if err != nil {
			return nil, err
		}
		logger.Info("Using API Key", "service", name, "source", source)
		cfg.APIKey = key
	} else if cfg.Model != "" {
		logger.Warn("Model is ignored by this backend", "backend", name, "model", cfg.Model)
		cfg.Model = ""
	}

	if opts.glossaryPath != "" {
		g, err := glossary.Load(opts.glossaryPath, target)
		if err != nil {
			return nil, err
		}
		if !backend.RequiresKey(name) {
			logger.Warn("Glossary is only used by LLM backends", "backend", name)
		}
		logger.Info("Loaded glossary", "path", opts.glossaryPath, "entries", g.Len())
		cfg.Glossary = g
	}

	client, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cleanup.Register(client.Close)

	tr, err := batch.New(client, target.Code, batch.Options{
		MaxAttempts:  opts.attempts,
		QPS:          opts.qps,
		MaxFragments: opts.maxFragments,
	})
	if err != nil {
		return nil, err
	}
	nested, err := protect.NewNestedCalls(opts.nestedCalls)
	if err != nil {
		return nil, err
	}
	proc, err := pipeline.NewProcessor(tr, nested)
	if err != nil {
		return nil, err
	}
	return &session{
		backendName: name,
		model:       cfg.Model,
		target:      target,
		client:      client,
		translator:  tr,
		processor:   proc,
	}, nil
}

func (s *session) fileConfig(input, output string) pipeline.Config {
	return pipeline.Config{
		InputPath:  input,
		OutputPath: output,
		Target:     s.target.Code,
		Backend:    s.backendName,
	}
}
