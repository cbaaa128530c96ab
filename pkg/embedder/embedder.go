// Package embedder turns query text into unit-length vectors comparable with
// the passage embeddings stored in the search index.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"podcast-search/pkg/domain"
)

// QueryPrefix is required by E5-family models, which were trained with
// "query: " for searches and "passage: " for indexed text.
const QueryPrefix = "query: "

// ErrZeroVector is returned when a vector has no direction to normalize.
var ErrZeroVector = errors.New("zero-length vector")

// Embedder converts query text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Model is a loaded embedding backend. Encode receives the already-prefixed input.
type Model interface {
	Encode(ctx context.Context, input string) ([]float32, error)
}

// Loader loads a Model. It is called at most once at a time and only until it succeeds.
type Loader func(ctx context.Context) (Model, error)

// QueryEmbedder prefixes, encodes and normalizes query text.
// The model is loaded on first use and shared by all callers for the life of the process.
type QueryEmbedder struct {
	load      Loader
	dimension int
	logger    *zerolog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	model Model
}

// NewQueryEmbedder creates a lazily loading embedder. dimension <= 0 disables the
// dimension check.
func NewQueryEmbedder(load Loader, dimension int, logger *zerolog.Logger) *QueryEmbedder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &QueryEmbedder{
		load:      load,
		dimension: dimension,
		logger:    logger,
	}
}

// Embed returns the L2-normalized embedding of QueryPrefix+text. Every call runs inference.
func (e *QueryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model, err := e.getModel(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := model.Encode(ctx, QueryPrefix+text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	if e.dimension > 0 && len(raw) != e.dimension {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrEmbeddingFailure, e.dimension, len(raw))
	}

	vec, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	return vec, nil
}

// Loaded reports whether the model has been initialized.
func (e *QueryEmbedder) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model != nil
}

func (e *QueryEmbedder) getModel(ctx context.Context) (Model, error) {
	e.mu.RLock()
	model := e.model
	e.mu.RUnlock()
	if model != nil {
		return model, nil
	}

	v, err, _ := e.group.Do("model", func() (interface{}, error) {
		e.mu.RLock()
		loaded := e.model
		e.mu.RUnlock()
		if loaded != nil {
			return loaded, nil
		}

		e.logger.Info().Msg("Loading embedding model")

		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		m, err := e.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, errors.New("loader returned no model")
		}

		e.mu.Lock()
		e.model = m
		e.mu.Unlock()

		e.logger.Info().Msg("Embedding model loaded")
		return m, nil
	})
	if err != nil {
		e.logger.Error().Err(err).Msg("Embedding model load failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	return v.(Model), nil
}

// Normalize returns a copy of vec scaled to unit Euclidean length.
func Normalize(vec []float32) ([]float32, error) {
	norm := Norm(vec)
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return nil, ErrZeroVector
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out, nil
}

// Norm is the Euclidean length of vec.
func Norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
