package assembler

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/harun/chatclone/pkg/session"
)

// AnthropicProvider streams messages from Anthropic Claude
type AnthropicProvider struct {
	client anthropic.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
// SDK retries are disabled; a failed attempt is reported to the caller.
func NewAnthropicProvider(creds Credentials) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(creds.APIKey),
		option.WithMaxRetries(0),
	}
	if creds.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(creds.BaseURL))
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
	}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Stream opens a streaming message request
func (p *AnthropicProvider) Stream(ctx context.Context, request Request) (Fragments, error) {
	messages := make([]anthropic.MessageParam, 0, len(request.Messages))
	for _, turn := range request.Messages {
		switch turn.Role {
		case session.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		case session.RoleAssistant:
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(turn.Content),
				},
			})
		}
	}

	// Anthropic requires an explicit output limit
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(request.Model),
		Messages:    messages,
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(request.Temperature),
	}
	if request.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemPrompt},
		}
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	return newDeltaFragments[anthropic.MessageStreamEventUnion](stream, anthropicDelta, p.classify), nil
}

func anthropicDelta(event anthropic.MessageStreamEventUnion) string {
	ev, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
	if !ok {
		return ""
	}
	if text, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
		return text.Text
	}
	return ""
}

func (p *AnthropicProvider) classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classify(ProviderAnthropic, apiErr.StatusCode, err)
	}
	return classify(ProviderAnthropic, 0, err)
}
