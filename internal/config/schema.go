package config

// Config holds serica configuration.
// Loaded from config.yaml with SERICA_-prefixed environment overrides.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Pipeline     PipelineCfg               `mapstructure:"pipeline" yaml:"pipeline"`
	Jobs         JobsCfg                   `mapstructure:"jobs" yaml:"jobs"`
	Database     DatabaseCfg               `mapstructure:"database" yaml:"database"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	BaseURL   string  `mapstructure:"base_url" yaml:"base_url"`     // Override endpoint (optional)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// PipelineCfg selects providers and tunes prompt context for the
// analysis/translation pipeline.
type PipelineCfg struct {
	AnalysisProvider    string  `mapstructure:"analysis_provider" yaml:"analysis_provider"`
	TranslationProvider string  `mapstructure:"translation_provider" yaml:"translation_provider"`
	AnalysisMaxTokens   int     `mapstructure:"analysis_max_tokens" yaml:"analysis_max_tokens"`
	TranslationMax      int     `mapstructure:"translation_max_tokens" yaml:"translation_max_tokens"`
	Temperature         float64 `mapstructure:"temperature" yaml:"temperature"`
	// ContextChapters caps how many previous translated chapters a
	// translation prompt quotes.
	ContextChapters     int `mapstructure:"context_chapters" yaml:"context_chapters"`
	ContextExcerptRunes int `mapstructure:"context_excerpt_runes" yaml:"context_excerpt_runes"`
}

// JobsCfg tunes background job execution.
type JobsCfg struct {
	MaxAttempts       int `mapstructure:"max_attempts" yaml:"max_attempts"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
	LaneQueueSize     int `mapstructure:"lane_queue_size" yaml:"lane_queue_size"`
}

// DatabaseCfg holds Postgres connection settings. When URL is empty the
// server runs on in-memory stores, which is fine for local development and
// tests but loses everything on restart.
type DatabaseCfg struct {
	URL string `mapstructure:"url" yaml:"url"` // supports ${ENV_VAR} syntax
}

// ServerCfg holds HTTP server settings.
type ServerCfg struct {
	Listen string `mapstructure:"listen" yaml:"listen"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:      "openrouter",
				Model:     "anthropic/claude-sonnet-4",
				APIKey:    "${OPENROUTER_API_KEY}",
				RateLimit: 2.0,
				Enabled:   true,
			},
			"openai": {
				Type:      "openai",
				Model:     "gpt-4o",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 2.0,
				Enabled:   false,
			},
		},
		Pipeline: PipelineCfg{
			AnalysisProvider:    "openrouter",
			TranslationProvider: "openrouter",
			AnalysisMaxTokens:   4096,
			TranslationMax:      16384,
			ContextChapters:     5,
			ContextExcerptRunes: 1500,
		},
		Jobs: JobsCfg{
			MaxAttempts:       3,
			RetryDelaySeconds: 2,
			LaneQueueSize:     100,
		},
		Database: DatabaseCfg{
			URL: "${SERICA_DATABASE_URL}",
		},
		Server: ServerCfg{
			Listen: ":8080",
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
