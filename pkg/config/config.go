package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"podcast-search/pkg/domain"
)

// Config holds every environment-provided setting of the search service.
//
// Store credentials are not checked by Validate. The server starts without them
// and each request fails until they are present (see SupabaseCredentials).
type Config struct {
	// Supabase settings
	SupabaseURL            string
	SupabaseAPIKey         string
	SupabaseServiceRoleKey string
	// SupabaseDBURL enables the direct Postgres gateway instead of the REST RPC.
	SupabaseDBURL  string
	SearchFunction string

	// Embedding settings
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModel     string
	EmbeddingDimension int
	EmbeddingTimeout   time.Duration

	// HTTP settings
	Port               string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string

	// Search defaults
	DefaultLimit     int
	DefaultThreshold float64
	VideoHost        string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseAPIKey:         os.Getenv("SUPABASE_API_KEY"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseDBURL:          os.Getenv("SUPABASE_DB_URL"),
		SearchFunction:         getEnv("SEARCH_FUNCTION", "search_chunks"),

		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8080/v1"),
		EmbeddingAPIKey:    os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "intfloat/multilingual-e5-small"),
		EmbeddingDimension: getEnvInt("EMBEDDING_DIMENSION", 384),
		EmbeddingTimeout:   getEnvDuration("EMBEDDING_TIMEOUT", 30*time.Second),

		Port:               getEnv("SEARCH_API_PORT", "8082"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DefaultLimit:     getEnvInt("DEFAULT_LIMIT", 10),
		DefaultThreshold: getEnvFloat("DEFAULT_THRESHOLD", 0.3),
		VideoHost:        getEnv("VIDEO_HOST", domain.DefaultVideoHost),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("DEFAULT_LIMIT must be positive, got %d", c.DefaultLimit)
	}
	if c.DefaultThreshold < 0 || c.DefaultThreshold > 1 {
		return fmt.Errorf("DEFAULT_THRESHOLD must be 0-1, got %f", c.DefaultThreshold)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// SupabaseKey returns SUPABASE_API_KEY, falling back to SUPABASE_SERVICE_ROLE_KEY.
func (c *Config) SupabaseKey() string {
	if c.SupabaseAPIKey != "" {
		return c.SupabaseAPIKey
	}
	return c.SupabaseServiceRoleKey
}

// SupabaseCredentials returns the store URL and key, or ErrMissingConfig when either is empty.
func (c *Config) SupabaseCredentials() (string, string, error) {
	url, key := c.SupabaseURL, c.SupabaseKey()
	if url == "" || key == "" {
		return "", "", fmt.Errorf("%w: SUPABASE_URL and SUPABASE_API_KEY (or SUPABASE_SERVICE_ROLE_KEY) must be set", domain.ErrMissingConfig)
	}
	return url, key, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
