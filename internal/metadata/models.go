// Package metadata lists known LLM models and their list prices, used to
// pick defaults and to estimate the cost of a run.
package metadata

// Model describes one LLM model offered by a provider.
type Model struct {
	Provider         string
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

var Models = []Model{
	{Provider: "gemini", ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", InputPerMillion: 0.30, OutputPerMillion: 2.50},
	{Provider: "gemini", ID: "gemini-3-flash-preview", Label: "Gemini 3 Flash (preview)", InputPerMillion: 0.50, OutputPerMillion: 3.00},
	{Provider: "gemini", ID: "gemini-3-pro-preview", Label: "Gemini 3 Pro (preview)", InputPerMillion: 2.00, OutputPerMillion: 12.00},
	{Provider: "openai", ID: "gpt-5-mini", Label: "GPT-5 mini", InputPerMillion: 0.25, OutputPerMillion: 2.00},
	{Provider: "openai", ID: "gpt-5.2", Label: "GPT-5.2", InputPerMillion: 1.75, OutputPerMillion: 14.00},
}

var defaults = map[string]string{
	"gemini": "gemini-2.5-flash",
	"openai": "gpt-5-mini",
}

// Fallback prices for models missing from Models.
var fallback = map[string]Model{
	"gemini": {Provider: "gemini", ID: "default", Label: "Default Gemini", InputPerMillion: 2.00, OutputPerMillion: 12.00},
	"openai": {Provider: "openai", ID: "default", Label: "Default OpenAI", InputPerMillion: 2.50, OutputPerMillion: 10.00},
}

// DefaultModel returns the model used when none is configured, or "" for
// providers without models.
func DefaultModel(provider string) string {
	return defaults[provider]
}

// ModelIDs returns the known model IDs of provider in table order.
func ModelIDs(provider string) []string {
	var ids []string
	for _, m := range Models {
		if m.Provider == provider {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Pricing returns the model entry, or the provider fallback and false.
func Pricing(provider, modelID string) (Model, bool) {
	for _, m := range Models {
		if m.Provider == provider && m.ID == modelID {
			return m, true
		}
	}
	return fallback[provider], false
}

// EstimateCost returns the USD list price of the given token counts.
func EstimateCost(provider, modelID string, inputTokens, outputTokens int) float64 {
	m, _ := Pricing(provider, modelID)
	return float64(inputTokens)/1e6*m.InputPerMillion + float64(outputTokens)/1e6*m.OutputPerMillion
}
