package assembler

import (
	"fmt"
	"sort"

	"github.com/harun/chatclone/pkg/session"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// DefaultModel is the model used when none is configured
const DefaultModel = "gpt-3.5-turbo"

// DefaultMaxTokens bounds replies for providers that require a limit
const DefaultMaxTokens = 1024

// Model describes a supported model identifier
type Model struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
}

var supportedModels = map[string]Model{
	"gpt-3.5-turbo":            {ID: "gpt-3.5-turbo", Provider: ProviderOpenAI},
	"gpt-4":                    {ID: "gpt-4", Provider: ProviderOpenAI},
	"gpt-4-turbo":              {ID: "gpt-4-turbo", Provider: ProviderOpenAI},
	"gpt-4o":                   {ID: "gpt-4o", Provider: ProviderOpenAI},
	"gpt-4o-mini":              {ID: "gpt-4o-mini", Provider: ProviderOpenAI},
	"claude-3-5-haiku-latest":  {ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic},
	"claude-3-5-sonnet-latest": {ID: "claude-3-5-sonnet-latest", Provider: ProviderAnthropic},
	"claude-sonnet-4-0":        {ID: "claude-sonnet-4-0", Provider: ProviderAnthropic},
}

// LookupModel returns the model entry for an identifier
func LookupModel(id string) (Model, bool) {
	m, ok := supportedModels[id]
	return m, ok
}

// SupportedModels returns every supported model sorted by provider then ID
func SupportedModels() []Model {
	models := make([]Model, 0, len(supportedModels))
	for _, m := range supportedModels {
		models = append(models, m)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].ID < models[j].ID
	})
	return models
}

// Options configures a single completion stream
type Options struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
}

// DefaultOptions returns the default gpt-3.5-turbo / 0.7 options
func DefaultOptions() Options {
	return Options{
		Model:       DefaultModel,
		Temperature: 0.7,
	}
}

// Validate rejects options that must never reach a provider
func (o Options) Validate() error {
	if o.Temperature < 0 || o.Temperature > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidTemperature, o.Temperature)
	}
	if _, ok := LookupModel(o.Model); !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, o.Model)
	}
	if o.MaxTokens < 0 {
		return fmt.Errorf("max tokens cannot be negative")
	}
	return nil
}

// Request is what a provider receives for one stream
type Request struct {
	Model        string
	Messages     []session.Turn
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Fragments is a lazy, single-use sequence of generated text pieces.
// Next advances; Current returns the fragment Next moved to; Err reports why
// the sequence ended early, or nil after normal exhaustion.
type Fragments interface {
	Next() bool
	Current() string
	Err() error
	Close() error
}
