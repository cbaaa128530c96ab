package db

import (
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"

	"podcast-search/pkg/domain"
)

// DefaultSearchFunction is the stored procedure that ranks chunks by similarity.
const DefaultSearchFunction = "search_chunks"

var functionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// searchChunksParams is the argument object of the search procedure.
type searchChunksParams struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

func validateFunctionName(name string) (string, error) {
	if name == "" {
		return DefaultSearchFunction, nil
	}
	if !functionNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid search function name %q", name)
	}
	return name, nil
}

// orderResults applies a deterministic order on top of the store's ranking:
// similarity descending, then chunk id ascending for ties.
func orderResults(results []domain.SearchResult) {
	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// sortEpisodes orders the catalog by episode number (unnumbered last), then id.
func sortEpisodes(episodes []domain.Episode) {
	slices.SortStableFunc(episodes, func(a, b domain.Episode) int {
		switch {
		case a.EpisodeNumber != nil && b.EpisodeNumber != nil:
			if c := cmp.Compare(*a.EpisodeNumber, *b.EpisodeNumber); c != 0 {
				return c
			}
		case a.EpisodeNumber != nil:
			return -1
		case b.EpisodeNumber != nil:
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// withContext runs a blocking call that takes no context and abandons it when ctx ends.
// The abandoned goroutine lives until fn returns. supabase-go v0.0.4 gives no access
// to its HTTP client, so a hung store connection holds one goroutine per abandoned
// request until the TCP connection fails.
func withContext[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.value, r.err
	}
}
