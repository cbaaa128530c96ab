package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"podcast-search/pkg/domain"
)

// PostgresGateway calls the search procedure over a direct Postgres connection.
type PostgresGateway struct {
	conn     Connector
	function string
}

func NewPostgresGateway(conn Connector, function string) (*PostgresGateway, error) {
	if conn == nil {
		return nil, errors.New("postgres connector is required")
	}
	fn, err := validateFunctionName(function)
	if err != nil {
		return nil, err
	}
	return &PostgresGateway{conn: conn, function: fn}, nil
}

func searchQuery(function string) string {
	return fmt.Sprintf(`
	SELECT
	  id,
	  episode_id,
	  episode_title,
	  episode_number,
	  chunk_index,
	  start_time,
	  end_time,
	  text,
	  similarity
	FROM %s(query_embedding => $1::vector, match_threshold => $2, match_count => $3)`, function)
}

func (g *PostgresGateway) db(ctx context.Context) (*sql.DB, error) {
	if err := g.conn.EnsureConnected(ctx); err != nil {
		if errors.Is(err, domain.ErrMissingConfig) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
	}
	db := g.conn.DB()
	if db == nil {
		if err := g.conn.DBErr(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
		}
		return nil, fmt.Errorf("%w: SUPABASE_DB_URL is required for direct search", domain.ErrMissingConfig)
	}
	return db, nil
}

// SearchChunks runs the search procedure and returns its rows best match first.
func (g *PostgresGateway) SearchChunks(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.SearchResult, error) {
	db, err := g.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, searchQuery(g.function), pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, classifyPGError(err)
	}
	defer rows.Close()

	results := []domain.SearchResult{}
	for rows.Next() {
		var (
			r       domain.SearchResult
			title   sql.NullString
			episode sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.EpisodeID, &title, &episode, &r.ChunkIndex, &r.StartTime, &r.EndTime, &r.Text, &r.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", domain.ErrSearchError, err)
		}
		r.EpisodeTitle = title.String
		if episode.Valid {
			n := int(episode.Int64)
			r.EpisodeNumber = &n
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyPGError(err)
	}

	orderResults(results)
	return results, nil
}

// ListEpisodes returns the episode catalog ordered by episode number.
func (g *PostgresGateway) ListEpisodes(ctx context.Context) ([]domain.Episode, error) {
	db, err := g.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
	SELECT id, title, episode_number, upload_date::text, duration_seconds::float8
	FROM episodes`)
	if err != nil {
		return nil, classifyPGError(err)
	}
	defer rows.Close()

	episodes := []domain.Episode{}
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, err
		}
		episodes = append(episodes, *ep)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPGError(err)
	}

	sortEpisodes(episodes)
	return episodes, nil
}

// GetEpisode returns one episode or ErrEpisodeNotFound.
func (g *PostgresGateway) GetEpisode(ctx context.Context, id string) (*domain.Episode, error) {
	db, err := g.db(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx, `
	SELECT id, title, episode_number, upload_date::text, duration_seconds::float8
	FROM episodes
	WHERE id = $1`, id)

	ep, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrEpisodeNotFound, id)
	}
	return ep, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEpisode(row rowScanner) (*domain.Episode, error) {
	var (
		ep       domain.Episode
		number   sql.NullInt64
		uploaded sql.NullString
		duration sql.NullFloat64
	)
	if err := row.Scan(&ep.ID, &ep.Title, &number, &uploaded, &duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: scan episode: %w", domain.ErrSearchError, err)
	}

	if number.Valid {
		n := int(number.Int64)
		ep.EpisodeNumber = &n
	}
	if uploaded.Valid {
		ep.UploadDate = &uploaded.String
	}
	if duration.Valid {
		ep.DurationSeconds = &duration.Float64
	}
	return &ep, nil
}

// classifyPGError maps connection and authorization failures (SQLSTATE classes
// 08 and 28) to ErrSearchUnavailable and other server errors to ErrSearchError.
func classifyPGError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "28") {
			return fmt.Errorf("%w: %s: %s", domain.ErrSearchUnavailable, pgErr.Code, pgErr.Message)
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrSearchError, pgErr.Code, pgErr.Message)
	}
	return fmt.Errorf("%w: %w", domain.ErrSearchUnavailable, err)
}
