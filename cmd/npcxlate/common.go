package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oukeidos/npcxlate/internal/auth"
	"github.com/oukeidos/npcxlate/internal/backend"
	"github.com/oukeidos/npcxlate/internal/cleanup"
	"github.com/oukeidos/npcxlate/internal/files"
	"github.com/oukeidos/npcxlate/internal/logger"
	"github.com/oukeidos/npcxlate/internal/metadata"
	"github.com/oukeidos/npcxlate/internal/prompt"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	promptForKey = auth.PromptForAPIKey
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	newBackend   = backend.New
	loadDotEnv   = func() error { return godotenv.Load() }
	newConfirmer = prompt.DefaultConfirmer
)

func serviceLabel(service string) string {
	switch service {
	case backend.NameOpenAI:
		return "OpenAI"
	case backend.NameGemini:
		return "Gemini"
	default:
		return service
	}
}

// resolveAPIKey finds the key for service: keychain first, then the
// environment when allowed, then an interactive prompt.
func resolveAPIKey(service string, allowEnv, envOnly bool) (string, string, error) {
	if envOnly {
		if key, ok := getEnvKey(service); ok {
			return key, auth.SourceEnv, nil
		}
		return "", "", fmt.Errorf("env-only set but %s is not set", auth.EnvVar(service))
	}

	if key, source := getKey(service, false); key != "" {
		return key, source, nil
	}
	if allowEnv {
		if key, ok := getEnvKey(service); ok {
			return key, auth.SourceEnv, nil
		}
	}

	if !isTerminal(int(os.Stdin.Fd())) {
		return "", "", fmt.Errorf("no API key available (non-interactive shell); run 'npcxlate env setup --service %s' or use --allow-env", service)
	}
	key, err := promptForKey(os.Stderr, fmt.Sprintf("%s API Key (press Enter to skip): ", serviceLabel(service)))
	if err != nil {
		return "", "", fmt.Errorf("error reading API key: %w", err)
	}
	if key = strings.TrimSpace(key); key != "" {
		return key, auth.SourcePrompt, nil
	}
	if allowEnv {
		return "", "", fmt.Errorf("API key is required; not found in keychain or environment")
	}
	return "", "", fmt.Errorf("API key is required; not found in keychain (environment disabled by default; use --allow-env)")
}

// loadEnvFile reads a .env file from the working directory into the process
// environment. Existing variables win; a missing file is not an error.
func loadEnvFile() {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", "error", err)
	}
}

func initLogging(debug bool, logFilePath string) error {
	level := logger.LevelInfo
	if debug {
		level = logger.LevelDebug
	}
	var jsonl io.Writer
	if logFilePath != "" {
		if err := files.RejectSymlinkPath(logFilePath); err != nil {
			return err
		}
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register(f.Close)
		jsonl = f
	}
	logger.Init(level, jsonl)
	return nil
}

func printUsageStats(w io.Writer, s *session, duration time.Duration) {
	stats := s.translator.Stats()
	fmt.Fprintln(w, "\n--- Execution Stats ---")
	fmt.Fprintf(w, "Time: %s\n", duration.Round(time.Millisecond))
	if s.model != "" {
		fmt.Fprintf(w, "Backend: %s (%s)\n", s.backendName, s.model)
	} else {
		fmt.Fprintf(w, "Backend: %s\n", s.backendName)
	}
	fmt.Fprintf(w, "Requests: %d (retries=%d, fallbacks=%d, failures=%d, echoes=%d)\n",
		stats.Requests, stats.Retries, stats.Fallbacks, stats.Failures, stats.Echoes)

	usage := s.client.Usage()
	if usage.TotalTokens > 0 {
		// Reasoning tokens are billed as output.
		reasoning := usage.TotalTokens - (usage.InputTokens + usage.OutputTokens)
		if reasoning < 0 {
			reasoning = 0
		}
		cost := metadata.EstimateCost(s.backendName, s.model, usage.InputTokens, usage.OutputTokens+reasoning)
		fmt.Fprintf(w, "Tokens: In=%d, Out=%d, Total=%d\n", usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
		fmt.Fprintf(w, "Estimated Cost: $%.5f (Reasoning Tokens: %d)\n", cost, reasoning)
	}
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested; the current line is dropped and the next run resumes after the last written line")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}
