package domain

import "errors"

var (
	// ErrModelUnavailable means the embedding model could not be loaded.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrEmbeddingFailure means inference failed on a loaded model.
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrSearchUnavailable means the search store could not be reached or rejected our credentials.
	ErrSearchUnavailable = errors.New("search store unavailable")
	// ErrSearchError means the search store answered with an error or a malformed payload.
	ErrSearchError = errors.New("search store error")

	ErrMissingConfig   = errors.New("missing configuration")
	ErrEpisodeNotFound = errors.New("episode not found")
)
