package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harun/chatclone/pkg/assembler"
)

// Wizard provides an interactive configuration wizard
type Wizard struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewWizard creates a new configuration wizard
func NewWizard(in io.Reader, out io.Writer) *Wizard {
	return &Wizard{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run walks through the settings, starting from base
func (w *Wizard) Run(base *Config) (*Config, error) {
	w.println("=== chatclone configuration ===")
	w.println("")

	cfg := *base
	validator := NewValidator()

	w.println("API Keys (at least one is required):")

	key, err := w.askKey("OpenAI API Key", assembler.ProviderOpenAI, cfg.Providers.OpenAI.APIKey, validator)
	if err != nil {
		return nil, err
	}
	cfg.Providers.OpenAI.APIKey = key

	key, err = w.askKey("Anthropic API Key", assembler.ProviderAnthropic, cfg.Providers.Anthropic.APIKey, validator)
	if err != nil {
		return nil, err
	}
	cfg.Providers.Anthropic.APIKey = key

	if cfg.Providers.OpenAI.APIKey == "" && cfg.Providers.Anthropic.APIKey == "" {
		return nil, fmt.Errorf("at least one API key is required")
	}

	w.println("")
	w.println("Supported models:")
	for _, m := range assembler.SupportedModels() {
		w.printf("  %-26s %s\n", m.ID, m.Provider)
	}
	for {
		w.printf("Model [%s]: ", cfg.Chat.Model)
		model, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if model == "" {
			break
		}
		if err := validator.ValidateModel(model); err != nil {
			w.printf("Error: %v\n", err)
			continue
		}
		cfg.Chat.Model = model
		break
	}

	for {
		w.printf("Temperature (0.0-1.0) [%.1f]: ", cfg.Chat.Temperature)
		raw, err := w.readLine()
		if err != nil {
			return nil, err
		}
		if raw == "" {
			break
		}
		temp, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			w.printf("Error: not a number: %s\n", raw)
			continue
		}
		if err := validator.ValidateTemperature(temp); err != nil {
			w.printf("Error: %v\n", err)
			continue
		}
		cfg.Chat.Temperature = temp
		break
	}

	w.println("")
	w.printf("Log level (debug/info/warn/error) [%s]: ", cfg.Logging.Level)
	level, err := w.readLine()
	if err != nil {
		return nil, err
	}
	if level != "" {
		if err := validator.ValidateLogLevel(level); err != nil {
			w.printf("Warning: %v, keeping %s\n", err, cfg.Logging.Level)
		} else {
			cfg.Logging.Level = level
		}
	}

	w.println("")
	w.println("Configuration complete!")

	return &cfg, nil
}

// askKey prompts until the key is valid or skipped. Enter keeps the current value.
func (w *Wizard) askKey(label, provider, current string, validator *Validator) (string, error) {
	for {
		if current != "" {
			w.printf("%s (press Enter to keep current): ", label)
		} else {
			w.printf("%s (press Enter to skip): ", label)
		}

		key, err := w.readLine()
		if err != nil {
			return "", err
		}
		if key == "" {
			return current, nil
		}
		if err := validator.ValidateAPIKey(key, provider); err != nil {
			w.printf("Error: %v\n", err)
			continue
		}
		return key, nil
	}
}

func (w *Wizard) readLine() (string, error) {
	line, err := w.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (w *Wizard) println(s string) {
	fmt.Fprintln(w.out, s)
}

func (w *Wizard) printf(format string, args ...any) {
	fmt.Fprintf(w.out, format, args...)
}
