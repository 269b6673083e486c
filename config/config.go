package config

import (
	"log"
	"os"

	"github.com/spf13/viper"
)

// LLMProvider defines the configuration for one LLM provider.
// APIKeyEnv names the environment variable holding the credential; APIKey is
// filled in from it by LoadConfig. A provider with an empty APIKey is treated
// as not configured.
type LLMProvider struct {
	APIKey    string `mapstructure:"api_key"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	BaseURL   string `mapstructure:"base_url"`
}

// LLMConfig holds everything the completion dispatcher needs.
type LLMConfig struct {
	DefaultProvider string                 `mapstructure:"default_provider"`
	DefaultModel    string                 `mapstructure:"default_model"`
	Providers       map[string]LLMProvider `mapstructure:"providers"`
	// FallbackOrder is the cascade priority after a failed primary attempt.
	FallbackOrder  []string          `mapstructure:"fallback_order"`
	FallbackModels map[string]string `mapstructure:"fallback_models"`
}

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Database struct {
		DSN string `mapstructure:"dsn"` // "memory" or a SQLite file path
	} `mapstructure:"database"`
	Client struct {
		ServerURL        string `mapstructure:"server_url"`
		TypingIntervalMs int    `mapstructure:"typing_interval_ms"`
	} `mapstructure:"client"`
	LLM LLMConfig `mapstructure:"llm"`
}

// AppConfig is the global configuration instance.
var AppConfig Config

// LoadConfig loads configuration from config.yaml and environment variables.
// Missing files are fine: every key has a default, and provider credentials
// come from the environment anyway.
func LoadConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../config") // for running from test directories

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.dsn", "data/chatbot.db")
	viper.SetDefault("client.server_url", "http://localhost:8080")
	viper.SetDefault("client.typing_interval_ms", 18)

	viper.SetDefault("llm.default_provider", "openai")
	viper.SetDefault("llm.default_model", "gpt-4o-mini")
	viper.SetDefault("llm.fallback_order", []string{"mistral", "openai", "google"})
	viper.SetDefault("llm.fallback_models", map[string]string{
		"mistral": "mistral-small-latest",
		"openai":  "gpt-4o-mini",
		"google":  "gemini-1.5-flash",
	})
	viper.SetDefault("llm.providers", map[string]interface{}{
		"openai": map[string]interface{}{
			"api_key_env": "OPENAI_API_KEY",
			"base_url":    "https://api.openai.com/v1",
		},
		"mistral": map[string]interface{}{
			"api_key_env": "MISTRAL_API_KEY",
			"base_url":    "https://api.mistral.ai/v1",
		},
		"google": map[string]interface{}{
			"api_key_env": "GOOGLE_API_KEY",
			"base_url":    "https://generativelanguage.googleapis.com",
		},
	})

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("WARN: [Config] Configuration file (config.yaml) not found. Using environment variables and defaults.")
		} else {
			log.Fatalf("FATAL: [Config] Error reading configuration file: %v", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("FATAL: [Config] Failed to unmarshal configuration into AppConfig struct: %v", err)
	}

	// Environment variable overrides
	if port := os.Getenv("SERVER_PORT"); port != "" {
		AppConfig.Server.Port = port
		log.Printf("INFO: [Config] Server port overridden by environment variable SERVER_PORT: %s", port)
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		AppConfig.Database.DSN = dsn
		log.Printf("INFO: [Config] Database DSN overridden by environment variable DATABASE_DSN.")
	}
	if url := os.Getenv("CHATBOT_SERVER_URL"); url != "" {
		AppConfig.Client.ServerURL = url
	}

	// Resolve provider API keys from their environment variables.
	for providerKey, providerConfig := range AppConfig.LLM.Providers {
		if providerConfig.APIKeyEnv == "" {
			continue
		}
		if envValue := os.Getenv(providerConfig.APIKeyEnv); envValue != "" {
			updated := providerConfig
			updated.APIKey = envValue
			AppConfig.LLM.Providers[providerKey] = updated
			log.Printf("INFO: [Config] Loaded API key for provider '%s' from environment variable '%s'.", providerKey, providerConfig.APIKeyEnv)
		} else if providerConfig.APIKey == "" {
			log.Printf("WARN: [Config] API key for provider '%s' (env var '%s') is not set. Provider will be unavailable.", providerKey, providerConfig.APIKeyEnv)
		}
	}

	log.Println("INFO: [Config] Configuration loading complete.")
}
