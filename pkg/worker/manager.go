package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"podcast-search/pkg/search"
)

// Searcher runs one search.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// Result is the outcome of one query of a batch. Index is the query's position
// in the input.
type Result struct {
	Index    int              `json:"index"`
	Query    string           `json:"query"`
	Response *search.Response `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`

	Err error `json:"-"`
}

// Manager manages workers and distributes queries to them
type Manager struct {
	workerCount int
	searcher    Searcher
	logger      *zerolog.Logger
}

// NewManager creates a new manager. workerCount < 1 runs a single worker.
func NewManager(workerCount int, searcher Searcher, logger *zerolog.Logger) *Manager {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		workerCount: workerCount,
		searcher:    searcher,
		logger:      logger,
	}
}

// ProcessQueries runs the requests concurrently and returns one Result per
// request in input order. It fails only when every request failed.
func (m *Manager) ProcessQueries(ctx context.Context, reqs []search.Request) ([]Result, error) {
	type job struct {
		index int
		req   search.Request
	}

	jobChan := make(chan job, len(reqs))
	for i, req := range reqs {
		jobChan <- job{index: i, req: req}
	}
	close(jobChan)

	resultsChan := make(chan Result, len(reqs))

	var wg sync.WaitGroup
	for i := 0; i < m.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for j := range jobChan {
				res := Result{Index: j.index, Query: j.req.Query}
				if err := ctx.Err(); err != nil {
					res.Err = err
				} else {
					res.Response, res.Err = m.searcher.Search(ctx, j.req)
				}
				if res.Err != nil {
					res.Error = search.PublicMessage(res.Err)
					m.logger.Debug().Int("worker", workerID).Err(res.Err).Str("query", j.req.Query).Msg("Query failed")
				}
				resultsChan <- res
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Single reader, so no locking on the slice or the counters.
	results := make([]Result, len(reqs))
	var successCount, errorCount int
	for res := range resultsChan {
		results[res.Index] = res
		if res.Err == nil {
			successCount++
			if successCount%100 == 0 {
				m.logger.Info().Int("successful", successCount).Int("errors", errorCount).Msg("Progress")
			}
		} else {
			errorCount++
		}
	}

	m.logger.Info().
		Int("successful", successCount).
		Int("errors", errorCount).
		Int("total", len(reqs)).
		Msg("Batch completed")

	if errorCount > 0 && successCount == 0 {
		return results, fmt.Errorf("all %d queries failed", errorCount)
	}
	return results, nil
}
