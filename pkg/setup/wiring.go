package setup

import (
	"context"

	"github.com/rs/zerolog"

	"podcast-search/pkg/config"
	"podcast-search/pkg/db"
	"podcast-search/pkg/embedder"
	"podcast-search/pkg/httpclient"
	"podcast-search/pkg/search"
)

// Version is overridden at build time with -ldflags "-X podcast-search/pkg/setup.Version=...".
var Version = "dev"

type Dependencies struct {
	Config   *config.Config
	Service  *search.Service
	Embedder *embedder.QueryEmbedder
	Store    *db.SupabaseClient
	Logger   *zerolog.Logger
}

// Wire builds the search pipeline. Nothing is dialed here: the embedding model
// loads on the first query and the store connects on the first search.
func Wire(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Dependencies, error) {
	store := db.NewSupabaseClient(db.SupabaseConfig{
		ConnectionString: cfg.SupabaseDBURL,
		SupabaseURL:      cfg.SupabaseURL,
		SupabaseKey:      cfg.SupabaseKey(),
		Logger:           logger,
	})

	gateway, err := newGateway(cfg, store, logger)
	if err != nil {
		return nil, err
	}

	if _, _, err := cfg.SupabaseCredentials(); err != nil && cfg.SupabaseDBURL == "" {
		logger.Warn().Err(err).Msg("Search store not configured, searches will fail until it is")
	}

	load := embedder.NewOpenAILoader(embedder.OpenAIConfig{
		BaseURL:    cfg.EmbeddingBaseURL,
		APIKey:     cfg.EmbeddingAPIKey,
		Model:      cfg.EmbeddingModel,
		HTTPClient: httpclient.NewClient(httpclient.JSONClient, cfg.EmbeddingTimeout),
	})
	emb := embedder.NewQueryEmbedder(load, cfg.EmbeddingDimension, logger)

	service := search.NewService(emb, gateway, gateway, search.Defaults{
		Limit:     cfg.DefaultLimit,
		Threshold: cfg.DefaultThreshold,
	}, logger)

	return &Dependencies{
		Config:   cfg,
		Service:  service,
		Embedder: emb,
		Store:    store,
		Logger:   logger,
	}, nil
}

type storeGateway interface {
	search.Gateway
	search.EpisodeCatalog
}

// newGateway picks direct SQL when SUPABASE_DB_URL is set and the REST RPC otherwise.
func newGateway(cfg *config.Config, store *db.SupabaseClient, logger *zerolog.Logger) (storeGateway, error) {
	if cfg.SupabaseDBURL != "" {
		logger.Info().Str("function", cfg.SearchFunction).Msg("Using direct Postgres search")
		return db.NewPostgresGateway(store, cfg.SearchFunction)
	}
	logger.Info().Str("function", cfg.SearchFunction).Msg("Using Supabase RPC search")
	return db.NewSupabaseGateway(store, cfg.SearchFunction, logger)
}

func (d *Dependencies) Close() error {
	return d.Store.Close()
}
