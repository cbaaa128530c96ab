package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"podcast-search/pkg/search"
)

const (
	HeaderRequestID    = "X-Request-ID"
	attributeRequestID = "requestID"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError writes the error envelope.
func HandleError(resp *restful.Response, status int, message string) {
	_ = resp.WriteHeaderAndEntity(status, ErrorResponse{Error: message})
}

// RequestID tags the request with the caller's X-Request-ID or a fresh one and
// echoes it on the response.
func RequestID(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	id := req.HeaderParameter(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	req.SetAttribute(attributeRequestID, id)
	resp.AddHeader(HeaderRequestID, id)
	chain.ProcessFilter(req, resp)
}

func requestID(req *restful.Request) string {
	id, _ := req.Attribute(attributeRequestID).(string)
	return id
}

// Logger logs every request once it has been served.
func Logger(logger *zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		start := time.Now()
		chain.ProcessFilter(req, resp)

		event := logger.Info()
		if resp.StatusCode() >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("requestID", requestID(req)).
			Str("method", req.Request.Method).
			Str("path", req.Request.URL.Path).
			Int("status", resp.StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	}
}

// RecoverPanic turns a panic in a handler into a 500 response.
func RecoverPanic(logger *zerolog.Logger) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("requestID", requestID(req)).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				HandleError(resp, http.StatusInternalServerError, search.MsgInternalError)
			}
		}()
		chain.ProcessFilter(req, resp)
	}
}

// Timeout bounds the request context. Downstream calls observe the deadline.
func Timeout(d time.Duration) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		if d <= 0 {
			chain.ProcessFilter(req, resp)
			return
		}
		ctx, cancel := context.WithTimeout(req.Request.Context(), d)
		defer cancel()
		req.Request = req.Request.WithContext(ctx)
		chain.ProcessFilter(req, resp)
	}
}
