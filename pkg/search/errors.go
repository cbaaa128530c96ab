package search

import (
	"errors"

	"podcast-search/pkg/domain"
)

const (
	MsgQueryRequired = "Query is required (use ?q=...)"
	MsgQueryTooLong  = "Query too long (max 500 characters)"
	MsgSearchFailed  = "Search failed"
	MsgInternalError = "Internal server error"
)

// BadRequestError is a caller mistake. Its message is safe to return as is.
type BadRequestError struct {
	Message string
}

func (e *BadRequestError) Error() string {
	return e.Message
}

// IsBadRequest reports whether err is, or wraps, a BadRequestError.
func IsBadRequest(err error) bool {
	var br *BadRequestError
	return errors.As(err, &br)
}

// PublicMessage returns the message a caller may see for err. Downstream causes
// are never exposed; the search store's own failures read "Search failed" and
// everything else "Internal server error".
func PublicMessage(err error) string {
	var br *BadRequestError
	switch {
	case errors.As(err, &br):
		return br.Message
	case errors.Is(err, domain.ErrSearchError), errors.Is(err, domain.ErrSearchUnavailable):
		return MsgSearchFailed
	default:
		return MsgInternalError
	}
}
