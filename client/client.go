// Package client constructs a provider-specific llm.Client from
// configuration.
package client

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adorton/fileprompt/config"
	"github.com/adorton/fileprompt/llm"
	"github.com/adorton/fileprompt/llm/anthropic"
	"github.com/adorton/fileprompt/llm/custom"
	"github.com/adorton/fileprompt/llm/ollama"
	"github.com/adorton/fileprompt/llm/openai"
)

// FromConfig builds the llm.Client named by cfg.LLM.Provider, wrapped with
// request/response logging.
func FromConfig(cfg *config.Config, logger zerolog.Logger) (llm.Client, error) {
	var base llm.Client
	var err error

	switch cfg.LLM.Provider {
	case llm.ProviderOpenAI:
		base, err = openai.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, "")
	case llm.ProviderAnthropic:
		base, err = anthropic.New(cfg.LLM.APIKey, cfg.LLM.Model, logger)
	case llm.ProviderCustom:
		base, err = custom.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model)
	case llm.ProviderOllama:
		base, err = ollama.New(cfg.LLM.BaseURL, cfg.LLM.Model)
	default:
		return nil, llm.NewConfigError(fmt.Sprintf(
			"unsupported provider %q (supported: %s)",
			cfg.LLM.Provider, strings.Join(llm.SupportedProviders(), ", ")))
	}
	if err != nil {
		return nil, err
	}

	return llm.WrapWithMiddleware(base, llm.NewLoggingMiddleware(logger)), nil
}
