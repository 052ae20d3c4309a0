package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Claude  ClaudeConfig  `toml:"claude"`
	SearXNG SearXNGConfig `toml:"searxng"`
	Scraper ScraperConfig `toml:"scraper"`
	Search  SearchConfig  `toml:"search"`
	Agent   AgentConfig   `toml:"agent"`
	Ingest  IngestConfig  `toml:"ingest"`
}

// Duration wraps time.Duration so TOML values like "10s" decode through
// encoding.TextUnmarshaler.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                       // "stdout", "file"
}

type StorageConfig struct {
	Path string `toml:"path"` // BadgerDB directory path
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"` // "gemini" or "claude"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "gemini-3-flash-preview")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Default max tokens when a request doesn't set one (default: 2048)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// SearXNGConfig contains the web search engine endpoint configuration
type SearXNGConfig struct {
	URL            string   `toml:"url"`              // Base URL of the SearXNG instance
	ResultsPerPage int      `toml:"results_per_page"` // Default result count per search
	Timeout        Duration `toml:"timeout"`          // HTTP request timeout
}

// ScraperConfig contains web page fetching configuration
type ScraperConfig struct {
	UserAgent        string   `toml:"user_agent"`         // User agent sent with page fetches
	RequestTimeout   Duration `toml:"request_timeout"`    // HTTP request timeout (default: 10s)
	MaxContentLength int      `toml:"max_content_length"` // Max extracted characters per page (default: 100000)
	MaxBodySize      int      `toml:"max_body_size"`      // Max response body size in bytes
	Workers          int      `toml:"workers" validate:"min=1"` // Bounded pool size for multi-URL fetches (default: 3)
	RequestDelay     Duration `toml:"request_delay"`      // Minimum delay between requests to the same domain
}

// SearchConfig selects and sizes the retrieval backend
type SearchConfig struct {
	Backend        string `toml:"backend" validate:"oneof=document web deep_web"` // "document", "web", or "deep_web"
	MaxResults     int    `toml:"max_results" validate:"min=1"`                   // Results per subquery
	DeepWebMaxURLs int    `toml:"deep_web_max_urls" validate:"min=1"`             // Pages fetched per deep web subquery (default: 5)
}

// AgentConfig tunes the decompose/fan-out/synthesize pipeline
type AgentConfig struct {
	Strategy              string `toml:"strategy" validate:"oneof=blind informed"` // Decomposition strategy
	ContextBudget         int    `toml:"context_budget" validate:"min=1"`          // Char budget for the final synthesis context (default: 4000)
	InformedContextBudget int    `toml:"informed_context_budget" validate:"min=1"` // Char budget for informed decomposition context (default: 2000)
}

// IngestConfig sets the default chunking parameters for document ingestion
type IngestConfig struct {
	ChunkStrategy string `toml:"chunk_strategy" validate:"oneof=sentence paragraph fixed"`
	ChunkSize     int    `toml:"chunk_size" validate:"min=1"`
	ChunkOverlap  int    `toml:"chunk_overlap" validate:"min=0"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Path: "./data",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GEMINI_API_KEY or config)
			Model:       "gemini-3-flash-preview",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		SearXNG: SearXNGConfig{
			URL:            "http://localhost:8080",
			ResultsPerPage: 10,
			Timeout:        Duration{10 * time.Second},
		},
		Scraper: ScraperConfig{
			UserAgent:        "Mozilla/5.0 (compatible; WebRAgent/1.0)",
			RequestTimeout:   Duration{10 * time.Second},
			MaxContentLength: 100000,
			MaxBodySize:      10 * 1024 * 1024, // 10MB
			Workers:          3,
			RequestDelay:     Duration{1 * time.Second},
		},
		Search: SearchConfig{
			Backend:        "document",
			MaxResults:     5,
			DeepWebMaxURLs: 5,
		},
		Agent: AgentConfig{
			Strategy:              "blind",
			ContextBudget:         4000,
			InformedContextBudget: 2000,
		},
		Ingest: IngestConfig{
			ChunkStrategy: "sentence",
			ChunkSize:     1000,
			ChunkOverlap:  200,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> environment variables.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Logging configuration
	if level := os.Getenv("WEBRAGENT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("WEBRAGENT_LOG_OUTPUT"); output != "" {
		var outputs []string
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Storage configuration
	if path := os.Getenv("WEBRAGENT_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}

	// LLM configuration
	if provider := os.Getenv("WEBRAGENT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if model := os.Getenv("WEBRAGENT_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if model := os.Getenv("WEBRAGENT_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// SearXNG configuration
	if url := os.Getenv("SEARXNG_URL"); url != "" {
		config.SearXNG.URL = url
	}
	if perPage := os.Getenv("SEARXNG_RESULTS_PER_PAGE"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil {
			config.SearXNG.ResultsPerPage = n
		}
	}

	// Scraper configuration
	if timeout := os.Getenv("WEBRAGENT_SCRAPER_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Scraper.RequestTimeout = Duration{d}
		}
	}
	if workers := os.Getenv("WEBRAGENT_SCRAPER_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Scraper.Workers = n
		}
	}

	// Search configuration
	if backend := os.Getenv("WEBRAGENT_SEARCH_BACKEND"); backend != "" {
		config.Search.Backend = strings.ToLower(backend)
	}
	if maxResults := os.Getenv("WEBRAGENT_SEARCH_MAX_RESULTS"); maxResults != "" {
		if n, err := strconv.Atoi(maxResults); err == nil {
			config.Search.MaxResults = n
		}
	}
	if maxURLs := os.Getenv("DEEP_SEARCH_MAX_URLS"); maxURLs != "" {
		if n, err := strconv.Atoi(maxURLs); err == nil {
			config.Search.DeepWebMaxURLs = n
		}
	}

	// Agent configuration
	if strategy := os.Getenv("WEBRAGENT_AGENT_STRATEGY"); strategy != "" {
		config.Agent.Strategy = strings.ToLower(strategy)
	}
}
