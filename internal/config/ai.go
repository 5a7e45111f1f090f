package config

import (
	"time"
)

// AIConfig configures the conversational providers. Providers lists
// failover order; adding a provider is a configuration change, not a
// structural one.
type AIConfig struct {
	Providers      []string         `yaml:"providers"`
	Groq           *GroqConfig      `yaml:"groq"`
	Anthropic      *AnthropicConfig `yaml:"anthropic"`
	RequestTimeout time.Duration    `yaml:"request_timeout"`
}

type GroqConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		Providers: getEnvAsSlice("AI_PROVIDERS", []string{"groq", "anthropic"}),
		Groq: &GroqConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			Model:   getEnv("GROQ_MODEL", "llama3-8b-8192"),
			BaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		},
		Anthropic: &AnthropicConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		},
		RequestTimeout: getEnvAsDuration("AI_REQUEST_TIMEOUT", 15*time.Second),
	}
}
