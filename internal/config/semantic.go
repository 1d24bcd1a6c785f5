package config

import (
	"fmt"
	"os"

	"github.com/coinsort/coinsort/internal/semantic"
	"github.com/spf13/viper"
)

// LoadSemanticConfig loads semantic classifier configuration from Viper
// and environment variables. It follows this precedence:
// 1. Viper configuration (from config file or COINSORT_ env vars)
// 2. Direct environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY)
// 3. Default values
func LoadSemanticConfig() (semantic.Config, error) {
	provider := viper.GetString("semantic.provider")
	if provider == "" {
		provider = "openai"
	}

	cfg := semantic.Config{
		Provider:    provider,
		Model:       viper.GetString("semantic.model"),
		Temperature: viper.GetFloat64("semantic.temperature"),
		MaxTokens:   viper.GetInt("semantic.max_tokens"),
		Timeout:     viper.GetDuration("semantic.timeout"),
		RateLimit:   viper.GetInt("semantic.rate_limit"),
	}

	switch provider {
	case "openai":
		apiKey := viper.GetString("semantic.openai_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return semantic.Config{}, fmt.Errorf("OpenAI API key not found in config or OPENAI_API_KEY environment variable")
		}
		cfg.APIKey = apiKey

	case "anthropic":
		apiKey := viper.GetString("semantic.anthropic_api_key")
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return semantic.Config{}, fmt.Errorf("anthropic API key not found in config or ANTHROPIC_API_KEY environment variable")
		}
		cfg.APIKey = apiKey

	default:
		return semantic.Config{}, fmt.Errorf("unsupported semantic provider: %s", provider)
	}

	return cfg, nil
}
