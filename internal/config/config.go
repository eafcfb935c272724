// Package config loads configuration from the environment with an
// optional YAML overlay.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM or embedding backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port string

	// SurrealDB user records
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string

	// Qdrant vector store
	QdrantURL    string
	QdrantAPIKey string

	// S3 blob store
	S3Bucket  string
	AWSRegion string

	// Embedding
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int

	// Generation
	LLMProvider     Provider
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	MaxTokens       int

	// Feed fetching
	FetchPageSize    int
	FetchTimeout     time.Duration
	FetchMaxAttempts int
	FetchRateLimit   float64 // requests per second

	// Chunking
	MaxChunkSize     int
	ChunkOverlap     int
	OverlapSentences int

	// Retrieval
	SearchTopK       int
	MaxContextChunks int
	HistoryWindow    int
	MaxConversations int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, then applies the
// YAML file named by SITEASSIST_CONFIG on top if set.
func Load() (Config, error) {
	cfg := Config{
		Port: getEnv("SITEASSIST_PORT", "8080"),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "siteassist"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "users"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),

		QdrantURL:    getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey: getEnv("QDRANT_API_KEY", ""),

		S3Bucket:  getEnv("S3_BUCKET_NAME", ""),
		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		EmbedProvider:  Provider(getEnv("SITEASSIST_EMBED_PROVIDER", "ollama")),
		EmbedModel:     getEnv("SITEASSIST_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("SITEASSIST_EMBED_DIMENSION", 384),

		LLMProvider:     Provider(getEnv("SITEASSIST_LLM_PROVIDER", "anthropic")),
		LLMModel:        getEnv("SITEASSIST_LLM_MODEL", "claude-3-5-sonnet-latest"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		MaxTokens:       getEnvInt("SITEASSIST_MAX_TOKENS", 1000),

		FetchPageSize:    getEnvInt("SITEASSIST_FETCH_PAGE_SIZE", 100),
		FetchTimeout:     getEnvDuration("SITEASSIST_FETCH_TIMEOUT", 30*time.Second),
		FetchMaxAttempts: getEnvInt("SITEASSIST_FETCH_MAX_ATTEMPTS", 3),
		FetchRateLimit:   getEnvFloat("SITEASSIST_FETCH_RATE_LIMIT", 5),

		MaxChunkSize:     getEnvInt("SITEASSIST_MAX_CHUNK_SIZE", 1000),
		ChunkOverlap:     getEnvInt("SITEASSIST_CHUNK_OVERLAP", 100),
		OverlapSentences: getEnvInt("SITEASSIST_OVERLAP_SENTENCES", 2),

		SearchTopK:       getEnvInt("SITEASSIST_SEARCH_TOP_K", 5),
		MaxContextChunks: getEnvInt("SITEASSIST_MAX_CONTEXT_CHUNKS", 3),
		HistoryWindow:    getEnvInt("SITEASSIST_HISTORY_WINDOW", 4),
		MaxConversations: getEnvInt("SITEASSIST_MAX_CONVERSATIONS", 1000),

		LogFile:  getEnv("SITEASSIST_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("SITEASSIST_LOG_LEVEL", "INFO")),
	}

	if path := os.Getenv("SITEASSIST_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	return cfg, nil
}

// fileConfig is the YAML overlay. Only a subset of settings makes sense
// in a file; secrets stay in the environment.
type fileConfig struct {
	Port             string  `yaml:"port"`
	QdrantURL        string  `yaml:"qdrant_url"`
	S3Bucket         string  `yaml:"s3_bucket"`
	EmbedProvider    string  `yaml:"embed_provider"`
	EmbedModel       string  `yaml:"embed_model"`
	EmbedDimension   int     `yaml:"embed_dimension"`
	LLMProvider      string  `yaml:"llm_provider"`
	LLMModel         string  `yaml:"llm_model"`
	MaxTokens        int     `yaml:"max_tokens"`
	FetchPageSize    int     `yaml:"fetch_page_size"`
	FetchRateLimit   float64 `yaml:"fetch_rate_limit"`
	MaxChunkSize     int     `yaml:"max_chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	OverlapSentences int     `yaml:"overlap_sentences"`
	SearchTopK       int     `yaml:"search_top_k"`
	MaxContextChunks int     `yaml:"max_context_chunks"`
	HistoryWindow    int     `yaml:"history_window"`
	MaxConversations int     `yaml:"max_conversations"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.QdrantURL, fc.QdrantURL)
	setString(&c.S3Bucket, fc.S3Bucket)
	if fc.EmbedProvider != "" {
		c.EmbedProvider = Provider(fc.EmbedProvider)
	}
	setString(&c.EmbedModel, fc.EmbedModel)
	setInt(&c.EmbedDimension, fc.EmbedDimension)
	if fc.LLMProvider != "" {
		c.LLMProvider = Provider(fc.LLMProvider)
	}
	setString(&c.LLMModel, fc.LLMModel)
	setInt(&c.MaxTokens, fc.MaxTokens)
	setInt(&c.FetchPageSize, fc.FetchPageSize)
	if fc.FetchRateLimit > 0 {
		c.FetchRateLimit = fc.FetchRateLimit
	}
	setInt(&c.MaxChunkSize, fc.MaxChunkSize)
	setInt(&c.ChunkOverlap, fc.ChunkOverlap)
	setInt(&c.OverlapSentences, fc.OverlapSentences)
	setInt(&c.SearchTopK, fc.SearchTopK)
	setInt(&c.MaxContextChunks, fc.MaxContextChunks)
	setInt(&c.HistoryWindow, fc.HistoryWindow)
	setInt(&c.MaxConversations, fc.MaxConversations)

	return nil
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func setInt(dst *int, val int) {
	if val > 0 {
		*dst = val
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
