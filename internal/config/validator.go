package config

import (
	"fmt"
	"strings"

	"github.com/harun/chatclone/pkg/assembler"
	"github.com/robfig/cron/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAPIKey validates an API key format
func (v *Validator) ValidateAPIKey(key string, provider string) error {
	if key == "" {
		return fmt.Errorf("%s API key cannot be empty", provider)
	}

	switch provider {
	case assembler.ProviderAnthropic:
		if !strings.HasPrefix(key, "sk-ant-") {
			return fmt.Errorf("invalid Anthropic API key format (should start with sk-ant-)")
		}
	case assembler.ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format (should start with sk-)")
		}
	}

	return nil
}

// ValidateModel validates a model name against the supported set
func (v *Validator) ValidateModel(model string) error {
	if model == "" {
		return fmt.Errorf("model name cannot be empty")
	}

	if _, ok := assembler.LookupModel(model); ok {
		return nil
	}

	known := make([]string, 0)
	for _, m := range assembler.SupportedModels() {
		known = append(known, m.ID)
	}
	return fmt.Errorf("unsupported model: %s (must be one of: %s)", model, strings.Join(known, ", "))
}

// ValidateTemperature validates temperature value
func (v *Validator) ValidateTemperature(temp float64) error {
	if temp < 0 || temp > 1 {
		return fmt.Errorf("temperature must be between 0 and 1, got %f", temp)
	}
	return nil
}

// ValidateMaxTokens validates max tokens value. Zero leaves the limit to the provider.
func (v *Validator) ValidateMaxTokens(tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("max tokens cannot be negative, got %d", tokens)
	}
	if tokens > 200000 {
		return fmt.Errorf("max tokens too large (max 200000), got %d", tokens)
	}
	return nil
}

// ValidateHistoryPairs validates the history cap
func (v *Validator) ValidateHistoryPairs(pairs int) error {
	if pairs <= 0 {
		return fmt.Errorf("max history pairs must be positive, got %d", pairs)
	}
	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateReapSchedule validates a cron expression or descriptor
func (v *Validator) ValidateReapSchedule(schedule string) error {
	if schedule == "" {
		return nil // Use default
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid reap schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidateModel(cfg.Chat.Model); err != nil {
		errors = append(errors, fmt.Errorf("chat: %w", err))
	}
	if err := v.ValidateTemperature(cfg.Chat.Temperature); err != nil {
		errors = append(errors, fmt.Errorf("chat: %w", err))
	}
	if err := v.ValidateMaxTokens(cfg.Chat.MaxTokens); err != nil {
		errors = append(errors, fmt.Errorf("chat: %w", err))
	}
	if err := v.ValidateHistoryPairs(cfg.Chat.MaxHistoryPairs); err != nil {
		errors = append(errors, fmt.Errorf("chat: %w", err))
	}

	// Keys are optional individually, but the selected model needs one
	if cfg.Providers.OpenAI.APIKey != "" {
		if err := v.ValidateAPIKey(cfg.Providers.OpenAI.APIKey, assembler.ProviderOpenAI); err != nil {
			errors = append(errors, fmt.Errorf("providers.openai: %w", err))
		}
	}
	if cfg.Providers.Anthropic.APIKey != "" {
		if err := v.ValidateAPIKey(cfg.Providers.Anthropic.APIKey, assembler.ProviderAnthropic); err != nil {
			errors = append(errors, fmt.Errorf("providers.anthropic: %w", err))
		}
	}
	if model, ok := assembler.LookupModel(cfg.Chat.Model); ok {
		key := cfg.Providers.OpenAI.APIKey
		if model.Provider == assembler.ProviderAnthropic {
			key = cfg.Providers.Anthropic.APIKey
		}
		if key == "" {
			errors = append(errors, fmt.Errorf("providers.%s: api_key is required for model %s", model.Provider, model.ID))
		}
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errors = append(errors, fmt.Errorf("server: invalid port %d", cfg.Server.Port))
	}
	if err := v.ValidateReapSchedule(cfg.Server.ReapSchedule); err != nil {
		errors = append(errors, fmt.Errorf("server: %w", err))
	}

	return errors
}
