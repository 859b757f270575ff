package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		interactive bool
		assumeYes   bool
		want        bool
		wantErr     bool
	}{
		{name: "assume yes", input: "n\n", assumeYes: true, want: true},
		{name: "non-interactive", input: "y\n", wantErr: true},
		{name: "yes", input: "y\n", interactive: true, want: true},
		{name: "long yes", input: "YES\n", interactive: true, want: true},
		{name: "no", input: "n\n", interactive: true},
		{name: "eof", input: "", interactive: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := Confirmer{
				In:            strings.NewReader(tt.input),
				Out:           &out,
				IsInteractive: func() bool { return tt.interactive },
			}
			got, err := c.Confirm("Re-translate 3 files?", tt.assumeYes)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Confirm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
			if tt.interactive && !strings.Contains(out.String(), "Re-translate 3 files? (y/n)") {
				t.Errorf("question not shown: %q", out.String())
			}
		})
	}
}
