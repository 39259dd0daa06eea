package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type EnvVars struct {
	AppEnv       string        `envconfig:"APP_ENV" default:"dev"`
	Port         int           `envconfig:"PORT" default:"8000"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"120s"`

	// openai | ollama | goopenai
	LLMProvider    string        `envconfig:"LLM_PROVIDER" default:"openai"`
	LLMApiKey      string        `envconfig:"LLM_API_KEY"`
	LLMBaseURL     string        `envconfig:"LLM_BASE_URL" default:"https://openrouter.ai/api/v1"`
	LLMModel       string        `envconfig:"LLM_MODEL" default:"mistralai/mistral-small-3.2-24b-instruct:free"`
	LLMTimeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	LLMTemperature float64       `envconfig:"LLM_TEMPERATURE" default:"0.1"`

	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"mistral"`

	// memory | redis
	SessionStore  string        `envconfig:"SESSION_STORE" default:"memory"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// Empty means the embedded definitions.
	PromptsDir string `envconfig:"PROMPTS_DIR"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads .env (when present) into the process environment and then
// decodes EnvVars from it. Variables already set win over the file.
func LoadEnv() (*EnvVars, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *EnvVars) Validate() error {
	v.LLMProvider = strings.ToLower(strings.TrimSpace(v.LLMProvider))
	v.SessionStore = strings.ToLower(strings.TrimSpace(v.SessionStore))

	switch v.LLMProvider {
	case "openai", "goopenai":
		if v.LLMApiKey == "" {
			return errors.New("LLM_API_KEY is required for provider " + v.LLMProvider)
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", v.LLMProvider)
	}

	switch v.SessionStore {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", v.SessionStore)
	}

	if v.Port <= 0 || v.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", v.Port)
	}
	return nil
}
