package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
)

const OpenAPIPath = "/api/openapi.json"

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.GET("/search").
			To(handler.Search).
			Doc("Semantic search over transcript segments").
			Metadata(restfulspec.KeyOpenAPITags, []string{"search"}).
			Param(ws.QueryParameter("q", "Search text (required, max 500 characters)").DataType("string").Required(true)).
			Param(ws.QueryParameter("limit", "Maximum number of results (default: 10)").DataType("integer").Required(false)).
			Param(ws.QueryParameter("threshold", "Minimum similarity (default: 0.3)").DataType("number").Required(false)).
			Writes(search.Response{}).
			Returns(200, "OK", search.Response{}).
			Returns(400, "Bad Request", ErrorResponse{}).
			Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.GET("/embedding/debug").
			To(handler.EmbeddingDebug).
			Doc("Embed a query and summarize the vector").
			Metadata(restfulspec.KeyOpenAPITags, []string{"debug"}).
			Param(ws.QueryParameter("q", "Text to embed").DataType("string").Required(true)).
			Writes(search.DebugResponse{}).
			Returns(200, "OK", search.DebugResponse{}).
			Returns(400, "Bad Request", ErrorResponse{}).
			Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.GET("/episodes").
			To(handler.Episodes).
			Doc("List transcribed episodes").
			Metadata(restfulspec.KeyOpenAPITags, []string{"episodes"}).
			Writes(EpisodesResponse{}).
			Returns(200, "OK", EpisodesResponse{}).
			Returns(500, "Internal Server Error", ErrorResponse{}))

	ws.
		Route(ws.GET("/episodes/{episode_id}").
			To(handler.Episode).
			Doc("Get one episode").
			Metadata(restfulspec.KeyOpenAPITags, []string{"episodes"}).
			Param(ws.PathParameter("episode_id", "Episode (video) id").DataType("string")).
			Writes(domain.Episode{}).
			Returns(200, "OK", domain.Episode{}).
			Returns(404, "Episode Not Found", ErrorResponse{}).
			Returns(500, "Internal Server Error", ErrorResponse{}))

	container.Add(ws)
}

// RegisterOpenAPI serves the OpenAPI document for every web service registered so far.
func RegisterOpenAPI(container *restful.Container, version string) {
	config := restfulspec.Config{
		WebServices: container.RegisteredWebServices(),
		APIPath:     OpenAPIPath,
		PostBuildSwaggerObjectHandler: func(swo *spec.Swagger) {
			enrichSwaggerObject(swo, version)
		},
	}
	container.Add(restfulspec.NewOpenAPIService(config))
}

func enrichSwaggerObject(swo *spec.Swagger, version string) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Podcast Search API",
			Description: "Semantic search over podcast transcripts",
			Version:     version,
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "search", Description: "Transcript search"}},
		{TagProps: spec.TagProps{Name: "episodes", Description: "Episode catalog"}},
		{TagProps: spec.TagProps{Name: "debug", Description: "Embedding inspection"}},
	}
}
