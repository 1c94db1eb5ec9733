// Package config handles loading and validating the advisory engine's
// configuration using Viper: a typed Config struct with mapstructure tags,
// defaults set before Unmarshal, and environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the advisory engine.
type Config struct {
	// Profile selects the deployment profile: "development" relaxes secret
	// validation and wires stdout tracing; any other value is treated as
	// production and requires every secret below to be present.
	Profile string `mapstructure:"profile" validate:"required,oneof=development staging production"`

	Server struct {
		Addr         string        `mapstructure:"addr" validate:"required"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	LLM struct {
		Provider string `mapstructure:"provider" validate:"required,oneof=openai anthropic bedrock azure bifrost cerebras cohere deepseek fireworks google groq huggingface litellm llama mistral ollama openrouter perplexity qwen sambanova together xai"`
		Model    string `mapstructure:"model" validate:"required"`
		APIKey   string `mapstructure:"-"` // LLM_API_KEY, env only
	} `mapstructure:"llm"`

	Embedding struct {
		Provider string `mapstructure:"provider" validate:"required,oneof=inmemory openai"`
		Model    string `mapstructure:"model"`
		APIKey   string `mapstructure:"-"` // EMBEDDING_API_KEY, env only
	} `mapstructure:"embedding"`

	VectorStore struct {
		Provider         string `mapstructure:"provider" validate:"required,oneof=inmemory pgvector"`
		ConnectionString string `mapstructure:"connection_string"`
		Token            string `mapstructure:"-"` // VECTORSTORE_TOKEN, env only
	} `mapstructure:"vectorstore"`

	Cache struct {
		Provider string `mapstructure:"provider" validate:"required,oneof=inmemory redis"`
		Addr     string `mapstructure:"addr"`
	} `mapstructure:"cache"`

	Retrieval struct {
		KFetch          int     `mapstructure:"k_fetch" validate:"gt=0"`
		KRetrieve       int     `mapstructure:"k_retrieve" validate:"gt=0"`
		KContext        int     `mapstructure:"k_context" validate:"gt=0"`
		MinDocs         int     `mapstructure:"min_docs" validate:"gt=0"`
		MinAvgSim       float64 `mapstructure:"min_avg_sim" validate:"gte=0,lte=1"`
		MinKeywordRatio float64 `mapstructure:"min_keyword_ratio" validate:"gte=0,lte=1"`
	} `mapstructure:"retrieval"`

	Evaluation struct {
		MinFaithfulness float64 `mapstructure:"min_faithfulness" validate:"gte=0,lte=1"`
		MinRelevancy    float64 `mapstructure:"min_relevancy" validate:"gte=0,lte=1"`
	} `mapstructure:"evaluation"`

	Orchestration struct {
		Deadline time.Duration `mapstructure:"deadline"`
	} `mapstructure:"orchestration"`

	Persistence struct {
		TemporalHostPort string `mapstructure:"temporal_host_port"`
		TemporalQueue    string `mapstructure:"temporal_queue"`
	} `mapstructure:"persistence"`

	RateLimit struct {
		RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
		Burst             int           `mapstructure:"burst" validate:"gte=0"`
		Generation        ServiceLimits `mapstructure:"generation"`
		Judge             ServiceLimits `mapstructure:"judge"`
		Embedding         ServiceLimits `mapstructure:"embedding"`
	} `mapstructure:"rate_limit"`

	CircuitBreaker struct {
		FailureThreshold int           `mapstructure:"failure_threshold" validate:"gte=0"`
		ResetTimeout     time.Duration `mapstructure:"reset_timeout"`
	} `mapstructure:"circuit_breaker"`
}

// ServiceLimits configures a per-external-service token-bucket budget: a
// request-per-minute ceiling and a concurrency cap. Zero in either field
// means that dimension is unlimited, matching resilience.ProviderLimits.
type ServiceLimits struct {
	RPM           int `mapstructure:"rpm" validate:"gte=0"`
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"gte=0"`
}

// Cfg is the process-wide configuration, populated by Load.
var Cfg Config

// Load reads configuration from an optional YAML file plus environment
// variables (prefix RAGCORE_, "." replaced with "_"), validates the result,
// and stores it in Cfg. Secrets are read from the environment only — they
// are deliberately absent from the mapstructure-tagged fields Viper would
// otherwise source from a config file.
func Load(configPaths ...string) error {
	v := viper.New()

	v.SetDefault("profile", "development")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("embedding.provider", "inmemory")
	v.SetDefault("vectorstore.provider", "inmemory")
	v.SetDefault("cache.provider", "inmemory")
	v.SetDefault("retrieval.k_fetch", 20)
	v.SetDefault("retrieval.k_retrieve", 10)
	v.SetDefault("retrieval.k_context", 5)
	v.SetDefault("retrieval.min_docs", 3)
	v.SetDefault("retrieval.min_avg_sim", 0.35)
	v.SetDefault("retrieval.min_keyword_ratio", 0.2)
	v.SetDefault("evaluation.min_faithfulness", 0.8)
	v.SetDefault("evaluation.min_relevancy", 0.7)
	v.SetDefault("orchestration.deadline", 60*time.Second)
	v.SetDefault("persistence.temporal_queue", "ragadvisor-persistence")
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("rate_limit.generation.rpm", 60)
	v.SetDefault("rate_limit.generation.max_concurrent", 10)
	v.SetDefault("rate_limit.judge.rpm", 60)
	v.SetDefault("rate_limit.judge.max_concurrent", 10)
	v.SetDefault("rate_limit.embedding.rpm", 120)
	v.SetDefault("rate_limit.embedding.max_concurrent", 20)
	v.SetDefault("circuit_breaker.failure_threshold", 5)
	v.SetDefault("circuit_breaker.reset_timeout", 30*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ragadvisor/")
	v.AddConfigPath("$HOME/.ragadvisor")
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config: reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("RAGCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&Cfg); err != nil {
		return fmt.Errorf("config: decoding into struct: %w", err)
	}

	Cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	Cfg.Embedding.APIKey = os.Getenv("EMBEDDING_API_KEY")
	Cfg.VectorStore.Token = os.Getenv("VECTORSTORE_TOKEN")

	if err := validator.New().Struct(Cfg); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}

	if Cfg.Profile != "development" {
		if err := requireSecrets(Cfg); err != nil {
			return err
		}
	}

	return nil
}

func requireSecrets(cfg Config) error {
	var missing []string
	if cfg.LLM.APIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}
	if cfg.Embedding.Provider != "inmemory" && cfg.Embedding.APIKey == "" {
		missing = append(missing, "EMBEDDING_API_KEY")
	}
	if cfg.VectorStore.Provider != "inmemory" && cfg.VectorStore.Token == "" {
		missing = append(missing, "VECTORSTORE_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required secrets for profile %q: %s", cfg.Profile, strings.Join(missing, ", "))
	}
	return nil
}
