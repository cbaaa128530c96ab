// Package search answers free-text queries against the transcript index:
// validate, embed, rank through the store, report timings.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/embedder"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Embedder turns query text into a normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Gateway runs the similarity search in the vector store.
type Gateway interface {
	SearchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.SearchResult, error)
}

// EpisodeCatalog reads episode metadata.
type EpisodeCatalog interface {
	ListEpisodes(ctx context.Context) ([]domain.Episode, error)
	GetEpisode(ctx context.Context, id string) (*domain.Episode, error)
}

type Meta struct {
	Query           string `json:"query"`
	ResultCount     int    `json:"resultCount"`
	EmbeddingTimeMs int64  `json:"embeddingTimeMs"`
	TotalTimeMs     int64  `json:"totalTimeMs"`
}

// Response carries the ranked results exactly as the store returned them.
type Response struct {
	Results []domain.SearchResult `json:"results"`
	Meta    Meta                  `json:"meta"`
}

type DebugResponse struct {
	Query           string             `json:"query"`
	Embedding       embedder.DebugInfo `json:"embedding"`
	EmbeddingTimeMs int64              `json:"embeddingTimeMs"`
}

type Service struct {
	embedder Embedder
	gateway  Gateway
	catalog  EpisodeCatalog
	defaults Defaults
	logger   *zerolog.Logger
}

// NewService wires the search pipeline. catalog may be nil when episode
// listing is not needed.
func NewService(emb Embedder, gateway Gateway, catalog EpisodeCatalog, defaults Defaults, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{
		embedder: emb,
		gateway:  gateway,
		catalog:  catalog,
		defaults: defaults.orBuiltin(),
		logger:   logger,
	}
}

// Defaults returns the limit and threshold used when a caller omits them.
func (s *Service) Defaults() Defaults {
	return s.defaults
}

// NewRequest builds a Request from raw parameter strings. Unparseable numbers
// fall back to the defaults and are logged.
func (s *Service) NewRequest(query, limit, threshold string) Request {
	l, err := ParseLimit(limit, s.defaults.Limit)
	if err != nil {
		s.logger.Warn().Err(err).Int("default", l).Msg("Using default limit")
	}
	th, err := ParseThreshold(threshold, s.defaults.Threshold)
	if err != nil {
		s.logger.Warn().Err(err).Float64("default", th).Msg("Using default threshold")
	}
	return Request{Query: query, Limit: l, Threshold: th}
}

// Search validates the query, embeds it and returns the store's ranked matches.
// Validation failures return a *BadRequestError without touching the embedder
// or the store.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	query, err := ValidateQuery(req.Query)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("query", query).
		Int("limit", req.Limit).
		Float64("threshold", req.Threshold).
		Msg("Searching")

	start := time.Now()
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Embedding failed")
		return nil, fmt.Errorf("embed query: %w", err)
	}
	embeddingTime := time.Since(start)
	s.logger.Debug().Dur("embeddingTime", embeddingTime).Int("dimension", len(vec)).Msg("Embedding generated")

	results, err := s.gateway.SearchChunks(ctx, vec, req.Threshold, req.Limit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Search failed")
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	totalTime := time.Since(start)

	s.logger.Info().
		Str("query", query).
		Int("results", len(results)).
		Dur("embeddingTime", embeddingTime).
		Dur("totalTime", totalTime).
		Msg("Search completed")

	return &Response{
		Results: results,
		Meta: Meta{
			Query:           query,
			ResultCount:     len(results),
			EmbeddingTimeMs: embeddingTime.Milliseconds(),
			TotalTimeMs:     totalTime.Milliseconds(),
		},
	}, nil
}

// Debug embeds the query and summarizes the vector instead of searching.
func (s *Service) Debug(ctx context.Context, rawQuery string) (*DebugResponse, error) {
	query, err := ValidateQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Embedding failed")
		return nil, fmt.Errorf("embed query: %w", err)
	}

	return &DebugResponse{
		Query:           query,
		Embedding:       embedder.ComputeDebugInfo(vec),
		EmbeddingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

var errNoCatalog = fmt.Errorf("%w: no episode catalog configured", domain.ErrMissingConfig)

func (s *Service) ListEpisodes(ctx context.Context) ([]domain.Episode, error) {
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	episodes, err := s.catalog.ListEpisodes(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("List episodes failed")
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	return episodes, nil
}

func (s *Service) GetEpisode(ctx context.Context, id string) (*domain.Episode, error) {
	if s.catalog == nil {
		return nil, errNoCatalog
	}
	ep, err := s.catalog.GetEpisode(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrEpisodeNotFound) {
			s.logger.Error().Err(err).Str("episode", id).Msg("Get episode failed")
		}
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return ep, nil
}
