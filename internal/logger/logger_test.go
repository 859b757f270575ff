package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestPrettyHandler_Structural(t *testing.T) {
	var buf bytes.Buffer
	opts := &slog.HandlerOptions{Level: LevelDebug}
	h := NewPrettyHandler(&buf, opts, false)
	l := slog.New(h)

	t.Run("WithAttrs", func(t *testing.T) {
		buf.Reset()
		l2 := l.With("request_id", "abc-123")
		l2.Info("test message", "user", "alice")

		output := buf.String()
		if !strings.Contains(output, "request_id=") || !strings.Contains(output, "abc-123") {
			t.Errorf("output missing persistent attr: %q", output)
		}
		if !strings.Contains(output, "user=") || !strings.Contains(output, "alice") {
			t.Errorf("output missing record attr: %q", output)
		}
	})

	t.Run("WithGroup", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("billing").With("amount", 100)
		l2.Info("payment processing", "currency", "USD")

		output := buf.String()
		if !strings.Contains(output, "billing.amount=") || !strings.Contains(output, "100") {
			t.Errorf("output missing grouped persistent attr: %q", output)
		}
		if !strings.Contains(output, "billing.currency=") || !strings.Contains(output, "USD") {
			t.Errorf("output missing grouped record attr: %q", output)
		}
	})

	t.Run("NestedGroups", func(t *testing.T) {
		buf.Reset()
		l2 := l.WithGroup("outer").WithGroup("inner").With("key", "val")
		l2.Info("msg")

		output := buf.String()
		if !strings.Contains(output, "outer.inner.key=") || !strings.Contains(output, "val") {
			t.Errorf("output missing nested grouped attr: %q", output)
		}
	})
}

func TestRedactAttr(t *testing.T) {
	cases := []struct {
		name   string
		attr   slog.Attr
		redact bool
	}{
		{name: "api_key_key", attr: slog.String("api_key", "abc"), redact: true},
		{name: "authorization_substring", attr: slog.String("http_authorization", "x"), redact: true},
		{name: "bearer_value", attr: slog.String("message", "bearer sk-1234567890abcdef"), redact: true},
		{name: "google_key_value", attr: slog.String("detail", "AIzaSyA1234567890abcdef"), redact: true},
		{name: "query_key_value", attr: slog.String("url", "https://x.test/v1?alt=json&key=abc123"), redact: true},
		{name: "script_text", attr: slog.String("text", "Hello, adventurer!"), redact: false},
		{name: "file_path", attr: slog.String("file", "npc/custom/healer.txt"), redact: false},
		{name: "line_number", attr: slog.Int("line", 42), redact: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RedactAttr(nil, tc.attr)
			redacted := got.Value.String() == "[REDACTED]"
			if redacted != tc.redact {
				t.Fatalf("RedactAttr(%s) redacted=%v, want %v (value %q)", tc.attr.Key, redacted, tc.redact, got.Value.String())
			}
		})
	}
}

func TestPrettyHandler_NoColorWhenNotTTY(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return false }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	Init(LevelInfo, nil)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestPrettyHandler_NoColorWhenLogFileEnabled(t *testing.T) {
	prevIsTerminal := isTerminal
	isTerminal = func(_ int) bool { return true }
	defer func() { isTerminal = prevIsTerminal }()

	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() { os.Stderr = prevStderr }()

	var logBuf bytes.Buffer
	Init(LevelInfo, &logBuf)
	Info("test message", "key", "value")

	_ = w.Close()
	out, _ := io.ReadAll(r)
	if strings.Contains(string(out), "\033[") {
		t.Fatalf("unexpected ANSI codes in output: %q", string(out))
	}
}

func TestJSONLSinkReceivesRecords(t *testing.T) {
	prevStderr := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stderr = w
	defer func() {
		os.Stderr = prevStderr
		_ = w.Close()
		_ = r.Close()
		Init(LevelInfo, nil)
	}()

	var logBuf bytes.Buffer
	Init(LevelDebug, &logBuf)
	With("file", "prontera.txt").Debug("line translated", "line", 7)

	out := logBuf.String()
	if !strings.Contains(out, `"file":"prontera.txt"`) || !strings.Contains(out, `"line":7`) {
		t.Fatalf("jsonl output missing attrs: %q", out)
	}
	if !Enabled(LevelDebug) {
		t.Fatalf("expected debug level to be enabled")
	}
}
