package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adorton/fileprompt/llm"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, int64(1000), cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, "./input", cfg.Files.InputDirectory)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Files.Extensions)
	assert.True(t, cfg.Files.Recursive)
	assert.Equal(t, int64(1048576), cfg.Files.MaxFileSize)
	assert.Equal(t, "utf-8", cfg.Files.Encoding)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("LLM_API_KEY", "sk-ant-test")
	t.Setenv("LLM_MODEL", "claude-3-haiku-20240307")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("FILE_EXTENSIONS", "txt, .LOG ,md")
	t.Setenv("RECURSIVE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.LLM.Model)
	assert.Equal(t, int64(2048), cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, []string{".txt", ".log", ".md"}, cfg.Files.Extensions)
	assert.False(t, cfg.Files.Recursive)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "cohere")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, llm.IsConfigError(err))
}

func TestLoad_RejectsBadTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "3.5")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, llm.IsConfigError(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "openai with key",
			cfg: Config{LLM: LLMConfig{
				Provider: llm.ProviderOpenAI, APIKey: "sk-test",
			}},
		},
		{
			name: "openai without key",
			cfg: Config{LLM: LLMConfig{
				Provider: llm.ProviderOpenAI,
			}},
			wantErr: true,
		},
		{
			name: "ollama needs no key",
			cfg: Config{LLM: LLMConfig{
				Provider: llm.ProviderOllama,
			}},
		},
		{
			name: "custom needs base url",
			cfg: Config{LLM: LLMConfig{
				Provider: llm.ProviderCustom, APIKey: "token",
			}},
			wantErr: true,
		},
		{
			name: "custom with base url",
			cfg: Config{LLM: LLMConfig{
				Provider: llm.ProviderCustom, APIKey: "token", BaseURL: "http://localhost:8080/v1",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, llm.IsConfigError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaskedAPIKey(t *testing.T) {
	cfg := Config{LLM: LLMConfig{APIKey: "sk-proj-abcdefghijklmnop"}}
	assert.Equal(t, "sk-proj-...mnop", cfg.MaskedAPIKey())

	cfg.LLM.APIKey = "short"
	assert.Equal(t, "****", cfg.MaskedAPIKey())

	cfg.LLM.APIKey = ""
	assert.Equal(t, "(not set)", cfg.MaskedAPIKey())
}

func TestSplitExtensions(t *testing.T) {
	assert.Equal(t, []string{".txt", ".md"}, splitExtensions(".txt,.md"))
	assert.Equal(t, []string{".txt", ".log"}, splitExtensions("txt, LOG"))
	assert.Empty(t, splitExtensions(" , "))
}
