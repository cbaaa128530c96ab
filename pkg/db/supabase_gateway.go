package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"podcast-search/pkg/domain"
)

const episodeColumns = "id,title,episode_number,upload_date,duration_seconds"

// SupabaseGateway searches through the Supabase REST API by calling the
// search procedure as an RPC.
type SupabaseGateway struct {
	client   *SupabaseClient
	function string
	logger   *zerolog.Logger
}

// postgrestError is the error body PostgREST and the Supabase API gateway return.
type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func NewSupabaseGateway(client *SupabaseClient, function string, logger *zerolog.Logger) (*SupabaseGateway, error) {
	if client == nil {
		return nil, errors.New("supabase client is required")
	}
	fn, err := validateFunctionName(function)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &SupabaseGateway{
		client:   client,
		function: fn,
		logger:   logger,
	}, nil
}

func (g *SupabaseGateway) ensureSDK(ctx context.Context) error {
	if err := g.client.EnsureConnected(ctx); err != nil {
		return err
	}
	if g.client.SDK() == nil {
		return fmt.Errorf("%w: SUPABASE_URL and SUPABASE_API_KEY are required for REST search", domain.ErrMissingConfig)
	}
	return nil
}

// SearchChunks calls the search procedure and returns its rows best match first.
func (g *SupabaseGateway) SearchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.SearchResult, error) {
	if err := g.ensureSDK(ctx); err != nil {
		return nil, err
	}
	sdk := g.client.SDK()

	params := searchChunksParams{
		QueryEmbedding: embedding,
		MatchThreshold: threshold,
		MatchCount:     limit,
	}

	raw, err := withContext(ctx, func() (string, error) {
		return sdk.Rpc(g.function, "", params), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: rpc %s: %w", domain.ErrSearchUnavailable, g.function, err)
	}

	results, err := decodeSearchResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", g.function, err)
	}

	orderResults(results)
	return results, nil
}

// decodeSearchResponse turns the raw RPC body into rows or a classified error.
// The SDK reports transport failures as an empty body.
func decodeSearchResponse(raw string) ([]domain.SearchResult, error) {
	body := strings.TrimSpace(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrSearchUnavailable)
	}

	if strings.HasPrefix(body, "{") {
		var apiErr postgrestError
		if err := json.Unmarshal([]byte(body), &apiErr); err != nil || apiErr.Message == "" {
			return nil, fmt.Errorf("%w: unexpected object response", domain.ErrSearchError)
		}
		return nil, classifyAPIError(apiErr)
	}

	var results []domain.SearchResult
	if err := json.Unmarshal([]byte(body), &results); err != nil {
		return nil, fmt.Errorf("%w: decode rows: %w", domain.ErrSearchError, err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	return results, nil
}

// classifyAPIError separates credential problems from query errors.
// PGRST3xx codes are PostgREST's JWT/authentication family.
func classifyAPIError(e postgrestError) error {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}

	lower := strings.ToLower(e.Message)
	if strings.HasPrefix(e.Code, "PGRST3") || strings.Contains(lower, "api key") || strings.Contains(lower, "jwt") {
		return fmt.Errorf("%w: %s", domain.ErrSearchUnavailable, msg)
	}
	return fmt.Errorf("%w: %s", domain.ErrSearchError, msg)
}

// ListEpisodes returns the episode catalog ordered by episode number.
func (g *SupabaseGateway) ListEpisodes(ctx context.Context) ([]domain.Episode, error) {
	if err := g.ensureSDK(ctx); err != nil {
		return nil, err
	}
	sdk := g.client.SDK()

	episodes, err := withContext(ctx, func() ([]domain.Episode, error) {
		var out []domain.Episode
		_, err := sdk.From("episodes").Select(episodeColumns, "", false).ExecuteTo(&out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list episodes: %w", domain.ErrSearchError, err)
	}
	if episodes == nil {
		episodes = []domain.Episode{}
	}

	sortEpisodes(episodes)
	return episodes, nil
}

// GetEpisode returns one episode or ErrEpisodeNotFound.
func (g *SupabaseGateway) GetEpisode(ctx context.Context, id string) (*domain.Episode, error) {
	if err := g.ensureSDK(ctx); err != nil {
		return nil, err
	}
	sdk := g.client.SDK()

	episodes, err := withContext(ctx, func() ([]domain.Episode, error) {
		var out []domain.Episode
		_, err := sdk.From("episodes").Select(episodeColumns, "", false).Eq("id", id).ExecuteTo(&out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get episode %s: %w", domain.ErrSearchError, id, err)
	}
	if len(episodes) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEpisodeNotFound, id)
	}

	return &episodes[0], nil
}
