package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/oukeidos/npcxlate/internal/protect"
)

// fakeBatcher translates each fragment with fn, or through dict when fn is
// nil. Unknown fragments are echoed.
type fakeBatcher struct {
	mu    sync.Mutex
	fn    func(string) string
	dict  map[string]string
	calls [][]string
	// cancelAfter cancels cancel once that many calls have been served.
	cancelAfter int
	cancel      context.CancelFunc
}

func (b *fakeBatcher) TranslateBatch(ctx context.Context, fragments []string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.calls = append(b.calls, append([]string(nil), fragments...))
	out := make([]string, len(fragments))
	for i, f := range fragments {
		switch {
		case b.fn != nil:
			out[i] = b.fn(f)
		case b.dict != nil:
			if v, ok := b.dict[f]; ok {
				out[i] = v
			} else {
				out[i] = f
			}
		default:
			out[i] = f
		}
	}
	if b.cancel != nil && len(b.calls) >= b.cancelAfter {
		b.cancel()
	}
	return out, nil
}

func (b *fakeBatcher) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func newTestProcessor(t *testing.T, b Batcher) *Processor {
	t.Helper()
	nested, err := protect.NewNestedCalls(protect.DefaultNestedCalls)
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewProcessor(b, nested)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewProcessor_RequiresBatcher(t *testing.T) {
	if _, err := NewProcessor(nil, nil); err == nil {
		t.Fatal("expected error for nil batcher")
	}
}

func TestTranslateLine(t *testing.T) {
	dict := map[string]string{
		"Hello":               "你好",
		"Hi there":            "嗨",
		"Guard":               "卫兵",
		"<<BR0>>Guide<<BR1>>": "<<BR0>>向导<<BR1>>",
		"Welcome to <<CLR0>>Prontera<<CLR1>>!": "欢迎来到<<CLR0>>普隆德拉<<CLR1>>！",
		"Go to ":              "前往",
		"Prontera":            "普隆德拉",
		" now":                "吧",
		"Yes:No":              "是:否",
		"Say \\\"hi\\\"":      `说"嗨"`,
		"...":                 "。。。",
	}

	tests := []struct {
		name      string
		line      string
		want      string
		wantCalls int
	}{
		{
			name:      "message with expression",
			line:      "\tmes \"Hello\" + strcharinfo(0) + \"!\";\n",
			want:      "\tmes \"你好\" + strcharinfo(0) + \"!\";\n",
			wantCalls: 1,
		},
		{
			name:      "brackets",
			line:      "\tmes \"[Guide]\";\r\n",
			want:      "\tmes \"[向导]\";\r\n",
			wantCalls: 1,
		},
		{
			name:      "color codes",
			line:      "\tmes \"Welcome to ^0000FFProntera^000000!\";\n",
			want:      "\tmes \"欢迎来到^0000FF普隆德拉^000000！\";\n",
			wantCalls: 1,
		},
		{
			name:      "talk keeps tag suffix",
			line:      "\tnpctalk \"Hi there\", \"Guard#pront1\";",
			want:      "\tnpctalk \"嗨\", \"卫兵#pront1\";",
			wantCalls: 1,
		},
		{
			name:      "choice",
			line:      "\tselect(\"Yes:No\");\n",
			want:      "\tselect(\"是:否\");\n",
			wantCalls: 1,
		},
		{
			name:      "nested call literal",
			line:      "\tmes \"Go to \" + F_Navi(\"Prontera\", \"prontera,150,150\") + \" now\";\n",
			want:      "\tmes \"前往 \" + F_Navi(\"普隆德拉\", \"prontera,150,150\") + \" 吧\";\n",
			wantCalls: 2,
		},
		{
			name:      "quotes in translation are escaped",
			line:      "\tmes \"Say \\\"hi\\\"\";\n",
			want:      "\tmes \"说\\\"嗨\\\"\";\n",
			wantCalls: 1,
		},
		{
			name:      "ellipsis kept",
			line:      "\tmes \"...\";\n",
			want:      "\tmes \"...\";\n",
			wantCalls: 1,
		},
		{
			name: "comment line",
			line: "//\tmes \"Hello\";\n",
			want: "//\tmes \"Hello\";\n",
		},
		{
			name: "no literals",
			line: "\tclose;\n",
			want: "\tclose;\n",
		},
		{
			name: "blank line",
			line: "\r\n",
			want: "\r\n",
		},
		{
			name: "unknown statement",
			line: "\tset .@name$, \"Hello\";\n",
			want: "\tset .@name$, \"Hello\";\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBatcher{dict: dict}
			p := newTestProcessor(t, b)
			got, err := p.TranslateLine(context.Background(), tt.line)
			if err != nil {
				t.Fatalf("TranslateLine failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
			if b.callCount() != tt.wantCalls {
				t.Errorf("expected %d batch calls, got %d", tt.wantCalls, b.callCount())
			}
		})
	}
}

func TestTranslateLine_NestedLiteralTranslatedAlone(t *testing.T) {
	b := &fakeBatcher{}
	p := newTestProcessor(t, b)
	line := "mes \"A\" + F_Navi(\"B\", \"c,1,1\") + \"D\" + F_Navi(\"^FF0000E^000000\", \"e,1,1\");"
	got, err := p.TranslateLine(context.Background(), line)
	if err != nil {
		t.Fatal(err)
	}
	if got != line {
		t.Errorf("echoed translations must leave the line unchanged, got %q", got)
	}
	want := [][]string{{"A", "c,1,1", "D", "e,1,1"}, {"B"}, {"<<CLR0>>E<<CLR1>>"}}
	if len(b.calls) != len(want) {
		t.Fatalf("expected %d requests, got %q", len(want), b.calls)
	}
	for i := range want {
		if strings.Join(b.calls[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("request %d = %q, want %q", i, b.calls[i], want[i])
		}
	}
}

func TestTranslateLine_NestedCallOnlyLine(t *testing.T) {
	b := &fakeBatcher{dict: map[string]string{"Prontera": "普隆德拉"}}
	p := newTestProcessor(t, b)
	got, err := p.TranslateLine(context.Background(), "\tset .@s$, F_Navi(\"Prontera\", \"prt,1,1\");\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "\tset .@s$, F_Navi(\"普隆德拉\", \"prt,1,1\");\n" {
		t.Errorf("got %q", got)
	}
	if b.callCount() != 1 {
		t.Errorf("expected one request, got %q", b.calls)
	}
}

func TestTranslateLine_NestedRestoreFailureKeepsLine(t *testing.T) {
	// The helper name sits inside a literal, so the placeholder ends up in
	// translated text and the lowercasing batcher destroys it.
	b := &fakeBatcher{fn: strings.ToLower}
	p := newTestProcessor(t, b)
	line := "\tmes \"see F_Navi(\" + \"Prontera\" + \")\";\n"
	got, err := p.TranslateLine(context.Background(), line)
	if err != nil {
		t.Fatal(err)
	}
	if got != line {
		t.Errorf("expected the line untouched, got %q", got)
	}
}

type panicShielder struct{}

func (panicShielder) Shield(string) protect.Shielded { panic("boom") }

func TestTranslateLine_ShieldPanicFallsBack(t *testing.T) {
	b := &fakeBatcher{fn: strings.ToUpper}
	p := &Processor{batcher: b, nested: panicShielder{}}
	got, err := p.TranslateLine(context.Background(), `mes "go" + F_Navi("here") + "!";`)
	if err != nil {
		t.Fatal(err)
	}
	if got != `mes "GO" + F_Navi("HERE") + "!";` {
		t.Errorf("got %q", got)
	}
}

func TestTranslateLine_WithoutNestedCalls(t *testing.T) {
	b := &fakeBatcher{fn: strings.ToUpper}
	p, err := NewProcessor(b, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := p.TranslateLine(context.Background(), `mes "go" + F_Navi("here") + "!";`)
	if err != nil {
		t.Fatal(err)
	}
	if got != `mes "GO" + F_Navi("HERE") + "!";` {
		t.Errorf("got %q", got)
	}
}

func TestTranslateLine_ContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestProcessor(t, &fakeBatcher{})
	if _, err := p.TranslateLine(ctx, `mes "Hello";`); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
