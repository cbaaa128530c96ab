package api

import (
	"errors"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
)

const msgEpisodeNotFound = "Episode not found"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type EpisodesResponse struct {
	Episodes []domain.Episode `json:"episodes"`
	Count    int              `json:"count"`
}

type Handler struct {
	service *search.Service
	version string
	logger  *zerolog.Logger
}

func NewHandler(service *search.Service, version string, logger *zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		version: version,
		logger:  logger,
	}
}

// GET /api/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	_ = resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// GET /api/search?q=&limit=&threshold=
func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	request := h.service.NewRequest(
		req.QueryParameter("q"),
		req.QueryParameter("limit"),
		req.QueryParameter("threshold"),
	)

	result, err := h.service.Search(req.Request.Context(), request)
	if err != nil {
		h.writeError(req, resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/embedding/debug?q=
func (h *Handler) EmbeddingDebug(req *restful.Request, resp *restful.Response) {
	result, err := h.service.Debug(req.Request.Context(), req.QueryParameter("q"))
	if err != nil {
		h.writeError(req, resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/episodes
func (h *Handler) Episodes(req *restful.Request, resp *restful.Response) {
	episodes, err := h.service.ListEpisodes(req.Request.Context())
	if err != nil {
		h.writeError(req, resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, EpisodesResponse{Episodes: episodes, Count: len(episodes)})
}

// GET /api/episodes/{episode_id}
func (h *Handler) Episode(req *restful.Request, resp *restful.Response) {
	episode, err := h.service.GetEpisode(req.Request.Context(), req.PathParameter("episode_id"))
	if err != nil {
		h.writeError(req, resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusOK, episode)
}

func (h *Handler) writeError(req *restful.Request, resp *restful.Response, err error) {
	switch {
	case search.IsBadRequest(err):
		HandleError(resp, http.StatusBadRequest, search.PublicMessage(err))
	case errors.Is(err, domain.ErrEpisodeNotFound):
		HandleError(resp, http.StatusNotFound, msgEpisodeNotFound)
	default:
		h.logger.Error().
			Err(err).
			Str("requestID", requestID(req)).
			Str("path", req.Request.URL.Path).
			Msg("Request failed")
		HandleError(resp, http.StatusInternalServerError, search.PublicMessage(err))
	}
}
