package llm

// Provider names accepted in configuration. The custom provider speaks the
// OpenAI chat-completions wire format against a caller-supplied base URL.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCustom    = "custom"
	ProviderOllama    = "ollama"
)

// SupportedProviders returns the provider names the dispatch layer recognizes,
// in display order.
func SupportedProviders() []string {
	return []string{ProviderOpenAI, ProviderAnthropic, ProviderCustom, ProviderOllama}
}

// IsSupportedProvider reports whether name is a recognized provider.
func IsSupportedProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderCustom, ProviderOllama:
		return true
	default:
		return false
	}
}

// RequiresAPIKey reports whether the provider needs an API key to operate.
// Ollama talks to a local daemon and is keyless.
func RequiresAPIKey(name string) bool {
	return name != ProviderOllama
}
