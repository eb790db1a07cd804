package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the process-wide settings read from the environment.
// The Ultravox API key is deliberately absent: see UltravoxAPIKey.
type Config struct {
	Port             string        `envconfig:"PORT" default:"8080"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON          bool          `envconfig:"LOG_JSON" default:"true"`
	UltravoxAPIURL   string        `envconfig:"ULTRAVOX_API_URL" default:"https://api.ultravox.ai/api"`
	RequestTimeout   time.Duration `envconfig:"ULTRAVOX_REQUEST_TIMEOUT" default:"15s"`
	CallTemplatePath string        `envconfig:"CALL_TEMPLATE_PATH"`
}

const apiKeyEnv = "ULTRAVOX_API_KEY"

// LoadEnv loads variables from a .env file in the working directory.
// A missing file is not an error; the process environment is used as is.
func LoadEnv() error {
	err := godotenv.Load(".env")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		log.Printf("Failed to load .env file: %v", err)
		return err
	}
	return nil
}

// Load fills a Config from the environment, applying defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// UltravoxAPIKey returns the service credential for outbound call creation.
// It is read at request time and must only be used by the Ultravox provider.
func UltravoxAPIKey() string {
	return os.Getenv(apiKeyEnv)
}

// GetEnv returns the value of key, or fallback when it is unset.
func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
