package provider

import (
	"fmt"
	"strings"

	"github.com/julianshen/wikimaint/internal/config"
)

// ProviderConstructor is a function that creates a new LLMProvider.
type ProviderConstructor func(baseURL, apiKey string, extraHeaders map[string]string) LLMProvider

// registry holds registered provider constructors.
var registry = map[string]ProviderConstructor{}

// RegisterProvider registers a provider constructor by name.
func RegisterProvider(name string, constructor ProviderConstructor) {
	registry[name] = constructor
}

// NewProvider creates an LLMProvider based on the given configuration.
// "ollama" selects the local Ollama server; any other name is looked up
// among the OpenAI-compatible configurations.
func NewProvider(cfg *config.Config) (LLMProvider, error) {
	if cfg.Provider.Default == "ollama" {
		constructor, ok := registry["ollama"]
		if !ok {
			return nil, fmt.Errorf("ollama provider not registered")
		}
		return constructor(cfg.Provider.Ollama.BaseURL, "", nil), nil
	}
	return newOpenAIProvider(cfg)
}

func newOpenAIProvider(cfg *config.Config) (LLMProvider, error) {
	name := cfg.Provider.Default

	constructor, ok := registry["openai"]
	if !ok {
		return nil, fmt.Errorf("openai provider not registered")
	}

	for _, oc := range cfg.Provider.OpenAI {
		if oc.Name == name {
			envVar := strings.ToUpper(name) + "_API_KEY"
			apiKey, err := config.ResolveAPIKey(oc.APIKeySource, oc.APIKey, envVar)
			if err != nil {
				return nil, fmt.Errorf("resolving %s API key: %w", name, err)
			}

			return constructor(oc.BaseURL, apiKey, oc.ExtraHeaders), nil
		}
	}

	return nil, fmt.Errorf("unknown provider: %q", name)
}
