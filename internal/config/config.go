package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	AI      AI      `mapstructure:"ai"`
	Search  Search  `mapstructure:"search"`
	Catalog Catalog `mapstructure:"catalog"`
	Enrich  Enrich  `mapstructure:"enrich"`
	Reviews Reviews `mapstructure:"reviews"`
	Store   Store   `mapstructure:"store"`
	Output  Output  `mapstructure:"output"`
	Logging Logging `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	LogLevel   string `mapstructure:"log_level"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// Search holds search provider configuration
type Search struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	MaxResults      int             `mapstructure:"max_results"`
	SnippetCount    int             `mapstructure:"snippet_count"`
	FetchPages      bool            `mapstructure:"fetch_pages"`
	Timeout         string          `mapstructure:"timeout"`
	Language        string          `mapstructure:"language"`
	Providers       SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all search providers
type SearchProviders struct {
	Serper     SerperConfig       `mapstructure:"serper"`
	Google     GoogleSearchConfig `mapstructure:"google"`
	DuckDuckGo DuckDuckGoConfig   `mapstructure:"duckduckgo"`
}

// SerperConfig holds Serper.dev configuration
type SerperConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// DuckDuckGoConfig holds DuckDuckGo configuration
type DuckDuckGoConfig struct {
	RateLimit string `mapstructure:"rate_limit"`
}

// Catalog holds source catalog configuration
type Catalog struct {
	Path string `mapstructure:"path"`
	Kind string `mapstructure:"kind"`
}

// Enrich holds enrichment pipeline configuration
type Enrich struct {
	Delay             string `mapstructure:"delay"`
	WatchURLTemplate  string `mapstructure:"watch_url_template"`
	PosterURLTemplate string `mapstructure:"poster_url_template"`
}

// Reviews holds review synthesis configuration
type Reviews struct {
	Seed int64 `mapstructure:"seed"`
}

// Store holds content store configuration
type Store struct {
	Backend  string         `mapstructure:"backend"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds Postgres backend configuration
type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

// Output holds output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
	Format    string `mapstructure:"format"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".marquee")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.data_dir", ".marquee")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 1024)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	// Search defaults
	viper.SetDefault("search.default_provider", "duckduckgo")
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.snippet_count", 3)
	viper.SetDefault("search.fetch_pages", false)
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.language", "en")
	viper.SetDefault("search.providers.duckduckgo.rate_limit", "1s")

	// Catalog defaults
	viper.SetDefault("catalog.path", "catalog.json")
	viper.SetDefault("catalog.kind", "")

	// Enrich defaults
	viper.SetDefault("enrich.delay", "2s")
	viper.SetDefault("enrich.watch_url_template", "https://watch.marquee.local/titles/%s")
	viper.SetDefault("enrich.poster_url_template", "https://images.marquee.local/posters/%s.jpg")

	// Reviews defaults (0 seeds from the clock)
	viper.SetDefault("reviews.seed", 0)

	// Store defaults
	viper.SetDefault("store.backend", "sqlite")

	// Output defaults
	viper.SetDefault("output.directory", "enriched")
	viper.SetDefault("output.format", "markdown")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stderr")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Serper
	bindEnvKeys("search.providers.serper.api_key", []string{
		"SERPER_API_KEY",
		"SERPER_KEY",
	})

	// Google Custom Search - support multiple formats
	bindEnvKeys("search.providers.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"GOOGLE_SEARCH_API_KEY",
	})

	bindEnvKeys("search.providers.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
		"GOOGLE_SEARCH_ENGINE_ID",
	})

	// Postgres backend
	bindEnvKeys("store.postgres.url", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"MARQUEE_DEBUG",
	})

	bindEnvKeys("search.default_provider", []string{
		"SEARCH_PROVIDER",
		"DEFAULT_SEARCH_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	// Expand paths
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}
	if config.Catalog.Path != "" {
		config.Catalog.Path = expandPath(config.Catalog.Path)
	}

	// Validate durations
	durations := map[string]string{
		"ai.gemini.timeout": config.AI.Gemini.Timeout,
		"search.timeout":    config.Search.Timeout,
		"enrich.delay":      config.Enrich.Delay,
	}
	if config.Search.Providers.DuckDuckGo.RateLimit != "" {
		durations["search.providers.duckduckgo.rate_limit"] = config.Search.Providers.DuckDuckGo.RateLimit
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	// Gemini API key is required for the generative fallback
	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}

	// Validate search provider configuration
	if config.Search.DefaultProvider != "" {
		switch config.Search.DefaultProvider {
		case "serper":
			if config.Search.Providers.Serper.APIKey == "" {
				errors = append(errors, "Serper requires an API key. Set SERPER_API_KEY environment variable")
			}
		case "google":
			if config.Search.Providers.Google.APIKey == "" || config.Search.Providers.Google.SearchID == "" {
				errors = append(errors, "Google Custom Search requires both API key and Search ID. Set GOOGLE_CUSTOM_SEARCH_API_KEY and GOOGLE_CUSTOM_SEARCH_ID")
			}
		case "duckduckgo", "mock":
			// No validation needed for these providers
		default:
			errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: serper, google, duckduckgo, mock", config.Search.DefaultProvider))
		}
	}

	// Validate store backend
	switch config.Store.Backend {
	case "", "sqlite":
		// Default backend needs no extra settings
	case "postgres":
		if config.Store.Postgres.URL == "" {
			errors = append(errors, "Postgres backend requires a connection string. Set DATABASE_URL or store.postgres.url")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store backend: %s. Supported: sqlite, postgres", config.Store.Backend))
	}

	// Validate catalog kind when set
	if config.Catalog.Kind != "" && config.Catalog.Kind != "movie" && config.Catalog.Kind != "show" {
		errors = append(errors, fmt.Sprintf("Unknown catalog kind: %s. Supported: movie, show", config.Catalog.Kind))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App         { return Get().App }
func GetAI() AI           { return Get().AI }
func GetSearch() Search   { return Get().Search }
func GetCatalog() Catalog { return Get().Catalog }
func GetEnrich() Enrich   { return Get().Enrich }
func GetReviews() Reviews { return Get().Reviews }
func GetStore() Store     { return Get().Store }
func GetOutput() Output   { return Get().Output }
func GetLogging() Logging { return Get().Logging }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string   { return Get().AI.Gemini.APIKey }
func GetGeminiModel() string    { return Get().AI.Gemini.Model }
func GetSearchProvider() string { return Get().Search.DefaultProvider }
func GetGoogleSearchConfig() (string, string) {
	c := Get().Search.Providers.Google
	return c.APIKey, c.SearchID
}
func GetSerperAPIKey() string    { return Get().Search.Providers.Serper.APIKey }
func GetOutputDirectory() string { return Get().Output.Directory }
func GetDataDirectory() string   { return Get().App.DataDir }
func IsDebugMode() bool          { return Get().App.Debug }

// GetEnrichDelay returns the configured inter-title delay. The duration is
// validated at load time, so parse failures only happen for the zero config.
func GetEnrichDelay() time.Duration {
	d, err := time.ParseDuration(Get().Enrich.Delay)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// HasValidGoogleSearch returns true if Google Custom Search is properly configured
func HasValidGoogleSearch() bool {
	apiKey, searchID := GetGoogleSearchConfig()
	return isValidAPIKey(apiKey) && isValidSearchID(searchID)
}

// HasValidSerper returns true if Serper is properly configured
func HasValidSerper() bool {
	return isValidAPIKey(GetSerperAPIKey())
}

// GetSearchProviderConfig returns configuration for creating a search provider
func GetSearchProviderConfig(providerType string) map[string]string {
	config := Get()

	switch providerType {
	case "serper":
		return map[string]string{
			"api_key": config.Search.Providers.Serper.APIKey,
		}
	case "google":
		return map[string]string{
			"api_key":   config.Search.Providers.Google.APIKey,
			"search_id": config.Search.Providers.Google.SearchID,
		}
	default:
		return map[string]string{}
	}
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-google-key", "your-google-api-key", "your-serper-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// isValidSearchID checks if a search ID is valid (not empty and not a placeholder)
func isValidSearchID(searchID string) bool {
	if searchID == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-search-engine-id", "your-search-id", "your-cse-id",
		"YOUR_SEARCH_ID", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if searchID == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
