// Package config loads application settings from environment variables,
// with optional overrides from a .env file in the working directory.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/adorton/fileprompt/llm"
)

// LLMConfig holds provider connection settings.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int64
	Temperature float64
}

// FileConfig holds file discovery and reading settings.
type FileConfig struct {
	InputDirectory string
	Extensions     []string
	Recursive      bool
	MaxFileSize    int64
	Encoding       string
}

// Config is the full application configuration.
type Config struct {
	LLM   LLMConfig
	Files FileConfig
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win over
// it. Load performs basic sanity checks only; credential checks happen in
// Validate so read-only commands can run without an API key.
func Load() (*Config, error) {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("LLM_PROVIDER", llm.ProviderOpenAI)
	v.SetDefault("LLM_MODEL", "gpt-3.5-turbo")
	v.SetDefault("LLM_MAX_TOKENS", 1000)
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("INPUT_DIRECTORY", "./input")
	v.SetDefault("FILE_EXTENSIONS", ".txt,.md")
	v.SetDefault("RECURSIVE", true)
	v.SetDefault("MAX_FILE_SIZE", 1048576)
	v.SetDefault("FILE_ENCODING", "utf-8")

	cfg := &Config{
		LLM: LLMConfig{
			Provider:    strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
			APIKey:      v.GetString("LLM_API_KEY"),
			Model:       v.GetString("LLM_MODEL"),
			BaseURL:     v.GetString("LLM_BASE_URL"),
			MaxTokens:   v.GetInt64("LLM_MAX_TOKENS"),
			Temperature: v.GetFloat64("LLM_TEMPERATURE"),
		},
		Files: FileConfig{
			InputDirectory: v.GetString("INPUT_DIRECTORY"),
			Extensions:     splitExtensions(v.GetString("FILE_EXTENSIONS")),
			Recursive:      v.GetBool("RECURSIVE"),
			MaxFileSize:    v.GetInt64("MAX_FILE_SIZE"),
			Encoding:       strings.ToLower(strings.TrimSpace(v.GetString("FILE_ENCODING"))),
		},
	}

	if !llm.IsSupportedProvider(cfg.LLM.Provider) {
		return nil, llm.NewConfigError(fmt.Sprintf(
			"unsupported provider %q (supported: %s)",
			cfg.LLM.Provider, strings.Join(llm.SupportedProviders(), ", ")))
	}
	if cfg.LLM.MaxTokens <= 0 {
		return nil, llm.NewConfigError("LLM_MAX_TOKENS must be positive")
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return nil, llm.NewConfigError("LLM_TEMPERATURE must be between 0 and 2")
	}
	if cfg.Files.MaxFileSize <= 0 {
		return nil, llm.NewConfigError("MAX_FILE_SIZE must be positive")
	}
	if len(cfg.Files.Extensions) == 0 {
		return nil, llm.NewConfigError("FILE_EXTENSIONS must list at least one extension")
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to call the
// configured provider.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" && llm.RequiresAPIKey(c.LLM.Provider) {
		return llm.NewConfigError(fmt.Sprintf(
			"LLM_API_KEY is required for provider %q", c.LLM.Provider))
	}
	if c.LLM.Provider == llm.ProviderCustom && c.LLM.BaseURL == "" {
		return llm.NewConfigError("LLM_BASE_URL is required for the custom provider")
	}
	return nil
}

// MaskedAPIKey returns the API key with its middle elided, suitable for
// display.
func (c *Config) MaskedAPIKey() string {
	key := c.LLM.APIKey
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 12 {
		return "****"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

// splitExtensions parses a comma-separated extension list, normalizing each
// entry to a lowercase ".ext" form.
func splitExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, part := range parts {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}
