// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	LLM         LLMConfig        `mapstructure:"llm"`
	Trading     TradingConfig    `mapstructure:"trading"`
	DataSources DataSourceConfig `mapstructure:"data_sources"`
	Store       StoreConfig      `mapstructure:"store"`
	Log         LogSettings      `mapstructure:"log"`
}

// LLMConfig holds language model provider configuration.
type LLMConfig struct {
	Provider        string  `mapstructure:"provider"` // "ollama", "openai", "lmstudio"
	Model           string  `mapstructure:"model"`
	Temperature     float64 `mapstructure:"temperature"`
	OllamaBaseURL   string  `mapstructure:"ollama_base_url"`
	LMStudioBaseURL string  `mapstructure:"lmstudio_base_url"`
	OpenAIAPIKey    string  `mapstructure:"openai_api_key"`
}

// TradingConfig holds pipeline behavior configuration.
type TradingConfig struct {
	RiskTolerance      string   `mapstructure:"risk_tolerance"` // conservative, moderate, aggressive
	MaxDebateRounds    int      `mapstructure:"max_debate_rounds"`
	MaxParallelAgents  int      `mapstructure:"max_parallel_agents"`
	AnalysisPeriodDays int      `mapstructure:"analysis_period_days"`
	Tickers            []string `mapstructure:"tickers"`
}

// DataSourceConfig holds per-source enable toggles and fetch parameters.
// A disabled source contributes an empty input field; every consumer
// degrades rather than fails.
type DataSourceConfig struct {
	EnableGoogleNews   bool   `mapstructure:"enable_google_news"`
	EnableSECEdgar     bool   `mapstructure:"enable_sec_edgar"`
	EnableGoogleTrends bool   `mapstructure:"enable_google_trends"`
	GoogleNewsMax      int    `mapstructure:"google_news_max_results"`
	SECEdgarMaxFilings int    `mapstructure:"sec_edgar_max_filings"`
	TrendsTimeframe    string `mapstructure:"google_trends_timeframe"`
}

// StoreConfig holds decision persistence configuration.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogSettings holds logging configuration.
type LogSettings struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "opentrade")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        "ollama",
			Model:           "llama3",
			Temperature:     0.3,
			OllamaBaseURL:   "http://localhost:11434",
			LMStudioBaseURL: "http://localhost:1234/v1",
		},
		Trading: TradingConfig{
			RiskTolerance:      "moderate",
			MaxDebateRounds:    2,
			MaxParallelAgents:  2,
			AnalysisPeriodDays: 90,
			Tickers:            []string{"AAPL", "MSFT", "GOOGL", "NVDA", "AMZN"},
		},
		DataSources: DataSourceConfig{
			EnableGoogleNews:   true,
			EnableSECEdgar:     true,
			EnableGoogleTrends: true,
			GoogleNewsMax:      10,
			SECEdgarMaxFilings: 5,
			TrendsTimeframe:    "today 3-m",
		},
		Store: StoreConfig{
			Path: filepath.Join(DefaultConfigDir(), "opentrade.db"),
		},
		Log: LogSettings{
			Level:   "info",
			Console: true,
			File:    true,
		},
	}
}

// Load reads configuration from the given directory (config.toml), applies
// .env and environment overrides, and validates the result. A missing
// config file is not an error: defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env in the working directory, if present. Values never override an
	// already-set environment variable.
	_ = godotenv.Load()

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.LLM.OllamaBaseURL = v
	}
	if v := os.Getenv("LMSTUDIO_BASE_URL"); v != "" {
		cfg.LLM.LMStudioBaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIAPIKey = v
	}
	if v := os.Getenv("RISK_TOLERANCE"); v != "" {
		cfg.Trading.RiskTolerance = v
	}
	if v := os.Getenv("MAX_DEBATE_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Trading.MaxDebateRounds = n
		}
	}
	if v := os.Getenv("MAX_PARALLEL_AGENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Trading.MaxParallelAgents = n
		}
	}
	if v := os.Getenv("ENABLE_GOOGLE_NEWS"); v != "" {
		cfg.DataSources.EnableGoogleNews = parseBool(v, cfg.DataSources.EnableGoogleNews)
	}
	if v := os.Getenv("ENABLE_SEC_EDGAR"); v != "" {
		cfg.DataSources.EnableSECEdgar = parseBool(v, cfg.DataSources.EnableSECEdgar)
	}
	if v := os.Getenv("ENABLE_GOOGLE_TRENDS"); v != "" {
		cfg.DataSources.EnableGoogleTrends = parseBool(v, cfg.DataSources.EnableGoogleTrends)
	}
}

func parseBool(raw string, fallback bool) bool {
	switch raw {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return fallback
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "ollama", "openai", "lmstudio":
	default:
		return fmt.Errorf("invalid llm provider: %s", c.LLM.Provider)
	}
	switch c.Trading.RiskTolerance {
	case "conservative", "moderate", "aggressive":
	default:
		return fmt.Errorf("risk_tolerance must be conservative, moderate, or aggressive")
	}
	if c.Trading.MaxDebateRounds < 1 || c.Trading.MaxDebateRounds > 5 {
		return fmt.Errorf("max_debate_rounds must be between 1 and 5")
	}
	if c.Trading.MaxParallelAgents < 1 || c.Trading.MaxParallelAgents > 4 {
		return fmt.Errorf("max_parallel_agents must be between 1 and 4")
	}
	if c.Trading.AnalysisPeriodDays < 7 {
		return fmt.Errorf("analysis_period_days must be >= 7")
	}
	if len(c.Trading.Tickers) == 0 {
		return fmt.Errorf("tickers list cannot be empty")
	}
	return nil
}
