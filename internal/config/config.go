package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	LogLevel  string
	JWTSecret string
	EncKey    string
	Database  DatabaseConfig
	Etsy      EtsyConfig
	AI        AIConfig
	Server    ServerConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// EtsyConfig holds marketplace OAuth and API settings.
// RedirectURI is used verbatim for both the authorization URL and the code exchange.
type EtsyConfig struct {
	APIKey       string
	APISecret    string
	RedirectURI  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
	SyncInterval int // in minutes, 0 disables the background loop
}

// AIConfig holds language model settings
type AIConfig struct {
	Provider        string // "openai" or "gemini"
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModel     string
	GeminiAPIKey    string
	GeminiModel     string
	Temperature     float32
	MaxTokens       int
	BusinessContext string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	PathPrefix  string
	CORSOrigins []string
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.NodeEnv == "development"
}

// Enabled reports whether marketplace credentials are configured
func (e EtsyConfig) Enabled() bool {
	return e.APIKey != "" && e.APISecret != ""
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	syncInterval, err := strconv.Atoi(getEnv("ETSY_SYNC_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid ETSY_SYNC_INTERVAL: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("AI_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TEMPERATURE: %w", err)
	}

	maxTokens, err := strconv.Atoi(getEnv("AI_MAX_TOKENS", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_MAX_TOKENS: %w", err)
	}

	return &Config{
		NodeEnv:   getEnv("NODE_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTSecret: jwtSecret,
		EncKey:    os.Getenv("ENC_KEY"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "shopdesk"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Etsy: EtsyConfig{
			APIKey:       os.Getenv("ETSY_API_KEY"),
			APISecret:    os.Getenv("ETSY_API_SECRET"),
			RedirectURI:  os.Getenv("ETSY_REDIRECT_URI"),
			Scopes:       strings.Fields(getEnv("ETSY_SCOPES", "listings_r listings_w shops_r")),
			AuthURL:      getEnv("ETSY_AUTH_URL", "https://www.etsy.com/oauth/connect"),
			TokenURL:     getEnv("ETSY_TOKEN_URL", "https://api.etsy.com/v3/public/oauth/token"),
			APIBaseURL:   getEnv("ETSY_API_BASE_URL", "https://openapi.etsy.com/v3/application"),
			SyncInterval: syncInterval,
		},
		AI: AIConfig{
			Provider:        getEnv("AI_PROVIDER", "openai"),
			OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
			OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
			GeminiModel:     os.Getenv("GEMINI_MODEL"),
			Temperature:     float32(temperature),
			MaxTokens:       maxTokens,
			BusinessContext: getEnv("BUSINESS_CONTEXT", "small business"),
		},
		Server: ServerConfig{
			Port:        getEnv("PORT", "3210"),
			PathPrefix:  strings.TrimSuffix(os.Getenv("PATH_PREFIX"), "/"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
