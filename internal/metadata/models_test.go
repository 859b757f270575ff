package metadata

import (
	"math"
	"testing"
)

func TestPricing_Default(t *testing.T) {
	m, ok := Pricing("gemini", "unknown-model")
	if ok {
		t.Fatalf("expected default pricing for unknown model")
	}
	if m.InputPerMillion != 2.00 || m.OutputPerMillion != 12.00 {
		t.Fatalf("unexpected default gemini pricing: %+v", m)
	}
	if _, ok := Pricing("openai", "gpt-5.2"); !ok {
		t.Fatalf("expected known openai model")
	}
}

func TestDefaultModelIsKnown(t *testing.T) {
	for _, provider := range []string{"gemini", "openai"} {
		id := DefaultModel(provider)
		if _, ok := Pricing(provider, id); !ok {
			t.Fatalf("default model %q of %s missing from table", id, provider)
		}
	}
	if DefaultModel("google") != "" {
		t.Fatalf("google has no models")
	}
}

func TestEstimateCost(t *testing.T) {
	got := EstimateCost("openai", "gpt-5.2", 1_000_000, 500_000)
	if math.Abs(got-8.75) > 1e-9 {
		t.Fatalf("EstimateCost() = %v, want 8.75", got)
	}
}

func TestModelIDs(t *testing.T) {
	ids := ModelIDs("gemini")
	if len(ids) != 3 || ids[0] != "gemini-2.5-flash" {
		t.Fatalf("ModelIDs(gemini) = %q", ids)
	}
}
