package assembler

import (
	"context"
	"fmt"
)

// Provider streams completions from one remote service
type Provider interface {
	// Stream opens a completion stream for the request
	Stream(ctx context.Context, request Request) (Fragments, error)

	// Name returns the provider name
	Name() string
}

// ProviderCreator resolves a provider by name
type ProviderCreator interface {
	NewProvider(name string) (Provider, error)
}

// Credentials holds the connection settings of one provider
type Credentials struct {
	APIKey  string
	BaseURL string
}

// ProviderFactory creates SDK-backed providers
type ProviderFactory struct {
	OpenAI    Credentials
	Anthropic Credentials
}

// NewProvider creates a provider by name.
// A missing API key is reported as an authentication failure.
func (f *ProviderFactory) NewProvider(name string) (Provider, error) {
	switch name {
	case ProviderOpenAI:
		if f.OpenAI.APIKey == "" {
			return nil, &StreamError{Kind: KindAuthentication, Provider: name, Err: ErrMissingAPIKey}
		}
		return NewOpenAIProvider(f.OpenAI), nil
	case ProviderAnthropic:
		if f.Anthropic.APIKey == "" {
			return nil, &StreamError{Kind: KindAuthentication, Provider: name, Err: ErrMissingAPIKey}
		}
		return NewAnthropicProvider(f.Anthropic), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
