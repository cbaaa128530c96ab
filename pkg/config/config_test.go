package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-search/pkg/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SUPABASE_URL", "SUPABASE_API_KEY", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_DB_URL",
		"SEARCH_FUNCTION", "EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL",
		"EMBEDDING_DIMENSION", "EMBEDDING_TIMEOUT", "SEARCH_API_PORT", "REQUEST_TIMEOUT",
		"CORS_ALLOWED_ORIGINS", "DEFAULT_LIMIT", "DEFAULT_THRESHOLD", "VIDEO_HOST",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "search_chunks", cfg.SearchFunction)
	assert.Equal(t, "intfloat/multilingual-e5-small", cfg.EmbeddingModel)
	assert.Equal(t, 384, cfg.EmbeddingDimension)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, 10, cfg.DefaultLimit)
	assert.InDelta(t, 0.3, cfg.DefaultThreshold, 1e-9)
	assert.Equal(t, domain.DefaultVideoHost, cfg.VideoHost)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMBEDDING_DIMENSION", "768")
	t.Setenv("DEFAULT_LIMIT", "20")
	t.Setenv("DEFAULT_THRESHOLD", "0.5")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 768, cfg.EmbeddingDimension)
	assert.Equal(t, 20, cfg.DefaultLimit)
	assert.InDelta(t, 0.5, cfg.DefaultThreshold, 1e-9)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"threshold above one", "DEFAULT_THRESHOLD", "1.5"},
		{"negative limit", "DEFAULT_LIMIT", "-1"},
		{"zero dimension", "EMBEDDING_DIMENSION", "0"},
		{"unknown log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSupabaseKey_Fallback(t *testing.T) {
	cfg := &Config{SupabaseServiceRoleKey: "service"}
	assert.Equal(t, "service", cfg.SupabaseKey())

	cfg.SupabaseAPIKey = "api"
	assert.Equal(t, "api", cfg.SupabaseKey(), "SUPABASE_API_KEY wins when both are set")
}

func TestSupabaseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{SupabaseURL: "https://x.supabase.co", SupabaseAPIKey: "k"}, false},
		{"service role only", Config{SupabaseURL: "https://x.supabase.co", SupabaseServiceRoleKey: "k"}, false},
		{"missing url", Config{SupabaseAPIKey: "k"}, true},
		{"missing key", Config{SupabaseURL: "https://x.supabase.co"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.cfg.SupabaseCredentials()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrMissingConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}
