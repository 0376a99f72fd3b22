package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	UseLLM            bool    `yaml:"use_llm"`
	LLMProvider       string  `yaml:"llm_provider"`
	LLMModel          string  `yaml:"llm_model"`
	LLMMaxTokens      int     `yaml:"llm_max_tokens"`
	LLMTemperature    float64 `yaml:"llm_temperature"`
	LLMTimeoutSeconds int     `yaml:"llm_timeout_seconds"`
	OpenAIAPIKey      string  `yaml:"openai_api_key"`
	AnthropicAPIKey   string  `yaml:"anthropic_api_key"`

	StorageDriver string `yaml:"storage_driver"` // "sqlite" or "postgres"
	DatabaseURL   string `yaml:"database_url"`
	DBPath        string `yaml:"db_path"`

	CustomersCSV   string `yaml:"customers_csv"`
	TagCatalogPath string `yaml:"tag_catalog_path"`
	ExportPath     string `yaml:"export_path"`

	WindowSize           int     `yaml:"window_size"`
	BatchLogInterval     int     `yaml:"batch_log_interval"`
	DelayBetweenRequests float64 `yaml:"delay_between_requests_seconds"`

	// Declared for operators but not consumed by the classifiers:
	// a failed LLM call falls back to keywords instead of retrying,
	// and unresolved customers are retried by rerunning the batch.
	RetryAttempts     int `yaml:"retry_attempts"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`

	RunSchedule    string `yaml:"run_schedule"`
	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`
}

func LoadConfig() Config {
	// .env first, so both the YAML path and the overrides can come
	// from it. Missing file is fine.
	_ = godotenv.Load()

	cfg := Config{UseLLM: true}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverrideBool(&cfg.UseLLM, "USE_LLM")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMMaxTokens, "LLM_MAX_TOKENS")
	envOverrideFloat(&cfg.LLMTemperature, "LLM_TEMPERATURE")
	envOverrideInt(&cfg.LLMTimeoutSeconds, "LLM_TIMEOUT_SECONDS")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.StorageDriver, "STORAGE_DRIVER")
	envOverride(&cfg.DatabaseURL, "DATABASE_URL")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.CustomersCSV, "CUSTOMERS_CSV")
	envOverride(&cfg.TagCatalogPath, "TAG_CATALOG_PATH")
	envOverride(&cfg.ExportPath, "EXPORT_PATH")
	envOverrideInt(&cfg.WindowSize, "WINDOW_SIZE")
	envOverrideInt(&cfg.BatchLogInterval, "BATCH_LOG_INTERVAL")
	envOverrideFloat(&cfg.DelayBetweenRequests, "DELAY_BETWEEN_REQUESTS_SECONDS")
	envOverrideInt(&cfg.RetryAttempts, "RETRY_ATTEMPTS")
	envOverrideInt(&cfg.RetryDelaySeconds, "RETRY_DELAY_SECONDS")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "openai"
	}
	if cfg.LLMMaxTokens == 0 {
		cfg.LLMMaxTokens = 150
	}
	if cfg.LLMTemperature == 0 {
		cfg.LLMTemperature = 0.3
	}
	if cfg.LLMTimeoutSeconds == 0 {
		cfg.LLMTimeoutSeconds = 30
	}
	if cfg.StorageDriver == "" {
		cfg.StorageDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./classifier.db"
	}
	if cfg.CustomersCSV == "" {
		cfg.CustomersCSV = "customers.csv"
	}
	if cfg.ExportPath == "" {
		cfg.ExportPath = "classificacoes_completas.csv"
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = 25
	}
	if cfg.BatchLogInterval == 0 {
		cfg.BatchLogInterval = 10
	}
	if cfg.DelayBetweenRequests == 0 {
		cfg.DelayBetweenRequests = 1.0
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelaySeconds == 0 {
		cfg.RetryDelaySeconds = 5
	}

	// Validate
	switch cfg.StorageDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatalf("database_url is required when storage_driver=postgres")
		}
	default:
		log.Fatalf("storage_driver must be 'sqlite' or 'postgres', got '%s'", cfg.StorageDriver)
	}

	if cfg.UseLLM {
		switch cfg.LLMProvider {
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				log.Fatalf("openai_api_key is required when llm_provider=openai")
			}
		case "anthropic":
			if cfg.AnthropicAPIKey == "" {
				log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
			}
		default:
			log.Fatalf("llm_provider must be 'openai' or 'anthropic', got '%s'", cfg.LLMProvider)
		}
	}

	if cfg.WindowSize < 1 {
		log.Fatalf("invalid window_size '%d': must be >= 1", cfg.WindowSize)
	}
	if cfg.BatchLogInterval < 1 {
		log.Fatalf("invalid batch_log_interval '%d': must be >= 1", cfg.BatchLogInterval)
	}
	if cfg.DelayBetweenRequests < 0 {
		log.Fatalf("invalid delay_between_requests_seconds '%f': must be >= 0", cfg.DelayBetweenRequests)
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		log.Fatalf("invalid llm_temperature '%f': must be between 0 and 2", cfg.LLMTemperature)
	}
	if cfg.TagCatalogPath != "" {
		if _, err := LoadTagCatalog(cfg.TagCatalogPath); err != nil {
			log.Fatalf("invalid tag_catalog_path '%s': %v", cfg.TagCatalogPath, err)
		}
	}

	return cfg
}

func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.DelayBetweenRequests * float64(time.Second))
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
