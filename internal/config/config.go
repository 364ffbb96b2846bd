package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the assessrec configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	LLM        LLMConfig        `yaml:"llm"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Cache      CacheConfig      `yaml:"cache"`
	Trace      TraceConfig      `yaml:"trace"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Corpus sources.
const (
	CorpusSourceCSV      = "csv"
	CorpusSourcePostgres = "postgres"
)

// CorpusConfig selects where the assessment catalog is loaded from.
type CorpusConfig struct {
	Source string `yaml:"source"` // csv (default), postgres
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
	Table  string `yaml:"table"`
}

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// EmbeddingConfig holds the embedding provider settings. The model name is the
// snapshot identity; changing it forces a rebuild.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai (any compatible endpoint), gemini
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TaskType   string `yaml:"task_type"` // gemini only
	ChunkSize  int    `yaml:"chunk_size"`
	TimeoutSec int    `yaml:"timeout_sec"` // per provider request
	// QueryInstruction is prepended to query texts only, for instruction-tuned models.
	QueryInstruction string `yaml:"query_instruction"`
}

// LLMConfig holds the text completion provider settings.
type LLMConfig struct {
	Provider       string  `yaml:"provider"` // gemini (default), openai
	APIKey         string  `yaml:"api_key"`
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	Temperature    float32 `yaml:"temperature"`
	MaxTokens      int     `yaml:"max_tokens"`
	TimeoutSec     int     `yaml:"timeout_sec"`
	RequestsPerSec float64 `yaml:"requests_per_sec"` // 0 = unlimited
	Burst          int     `yaml:"burst"`
}

// PipelineConfig tunes the recommendation pipeline.
type PipelineConfig struct {
	Budget          int `yaml:"budget"`
	MaxBudget       int `yaml:"max_budget"`
	OverFetchFactor int `yaml:"over_fetch_factor"`
}

// CacheConfig holds embedding cache settings. Empty Addrs disables the Redis layer.
type CacheConfig struct {
	Addrs               []string `yaml:"addrs"`
	Password            string   `yaml:"password"`
	TTLHours            int      `yaml:"ttl_hours"` // 0 = no expiry
	ReadinessTimeoutSec int      `yaml:"readiness_timeout_sec"`
	QueryLRUSize        int      `yaml:"query_lru_size"` // 0 disables the in-process layer
}

// TraceConfig selects trace sinks.
type TraceConfig struct {
	File    string `yaml:"file"`     // empty disables the file sink
	Logger  bool   `yaml:"logger"`   // also write traces through the app logger
	Disable bool   `yaml:"disabled"` // drop traces entirely
}

// EvaluationConfig tunes the offline evaluation harness.
type EvaluationConfig struct {
	K           int `yaml:"k"`
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables, decodes YAML, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Corpus.Source == "" {
		c.Corpus.Source = CorpusSourceCSV
	}
	if c.Corpus.Source == CorpusSourceCSV && c.Corpus.Path == "" {
		c.Corpus.Path = "data/shl_assessments.csv"
	}
	if c.Corpus.Source == CorpusSourcePostgres && c.Corpus.Table == "" {
		c.Corpus.Table = "assessments"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.ChunkSize <= 0 {
		c.Embedding.ChunkSize = 96
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 15
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderGemini
	}
	if c.LLM.Model == "" && c.LLM.Provider == ProviderGemini {
		c.LLM.Model = "gemini-2.0-flash"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 20
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.Pipeline.Budget <= 0 {
		c.Pipeline.Budget = 10
	}
	if c.Pipeline.MaxBudget <= 0 {
		c.Pipeline.MaxBudget = 50
	}
	if c.Pipeline.OverFetchFactor <= 0 {
		c.Pipeline.OverFetchFactor = 2
	}
	if c.Cache.ReadinessTimeoutSec <= 0 {
		c.Cache.ReadinessTimeoutSec = 10
	}
	if c.Evaluation.K <= 0 {
		c.Evaluation.K = 3
	}
	if c.Evaluation.Concurrency <= 0 {
		c.Evaluation.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Corpus.Source {
	case CorpusSourceCSV:
		if c.Corpus.Path == "" {
			return fmt.Errorf("corpus.path is required for csv source")
		}
	case CorpusSourcePostgres:
		if c.Corpus.DSN == "" {
			return fmt.Errorf("corpus.dsn is required for postgres source")
		}
	default:
		return fmt.Errorf("corpus.source must be %q or %q, got %q",
			CorpusSourceCSV, CorpusSourcePostgres, c.Corpus.Source)
	}

	if err := validateProvider("embedding.provider", c.Embedding.Provider); err != nil {
		return err
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}

	if err := validateProvider("llm.provider", c.LLM.Provider); err != nil {
		return err
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.LLM.RequestsPerSec < 0 {
		return fmt.Errorf("llm.requests_per_sec must not be negative, got %v", c.LLM.RequestsPerSec)
	}

	if c.Pipeline.Budget > c.Pipeline.MaxBudget {
		return fmt.Errorf("pipeline.budget (%d) must not exceed pipeline.max_budget (%d)",
			c.Pipeline.Budget, c.Pipeline.MaxBudget)
	}
	if c.Pipeline.OverFetchFactor < 2 {
		return fmt.Errorf("pipeline.over_fetch_factor must be at least 2, got %d", c.Pipeline.OverFetchFactor)
	}

	if c.Cache.TTLHours < 0 {
		return fmt.Errorf("cache.ttl_hours must not be negative, got %d", c.Cache.TTLHours)
	}
	if c.Cache.QueryLRUSize < 0 {
		return fmt.Errorf("cache.query_lru_size must not be negative, got %d", c.Cache.QueryLRUSize)
	}
	return nil
}

func validateProvider(key, p string) error {
	switch p {
	case ProviderOpenAI, ProviderGemini:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q, got %q", key, ProviderOpenAI, ProviderGemini, p)
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
