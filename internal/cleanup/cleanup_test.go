package cleanup

import (
	"errors"
	"strings"
	"testing"
)

func TestRunAll(t *testing.T) {
	var order []string
	Register(func() error { order = append(order, "first"); return nil })
	Register(nil)
	Register(func() error { order = append(order, "second"); return errors.New("close failed") })

	err := RunAll()
	if err == nil || !strings.Contains(err.Error(), "close failed") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if strings.Join(order, ",") != "second,first" {
		t.Errorf("hooks ran in order %v", order)
	}
	if err := RunAll(); err != nil {
		t.Errorf("hooks must run once, got %v", err)
	}
}
