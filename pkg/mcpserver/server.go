// Package mcpserver exposes transcript search as MCP tools.
package mcpserver

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"podcast-search/pkg/aggregator"
	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
)

const (
	ToolSearch       = "search_transcripts"
	ToolListEpisodes = "list_episodes"
)

// SearchInput is the search_transcripts argument schema.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"what to look for, in natural language (max 500 characters)"`
	Limit     int      `json:"limit,omitempty" jsonschema:"maximum number of scenes (default: 10)"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity between 0 and 1 (default: 0.3)"`
}

// SearchOutput carries the ranked scenes and the same scenes grouped by episode.
type SearchOutput struct {
	Results  []domain.SearchResult   `json:"results"`
	Episodes []domain.GroupedEpisode `json:"episodes"`
	Meta     search.Meta             `json:"meta"`
}

type ListEpisodesInput struct{}

type ListEpisodesOutput struct {
	Episodes []domain.Episode `json:"episodes"`
	Count    int              `json:"count"`
}

func NewServer(service *search.Service, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "podcast-search",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Find podcast scenes by meaning. Returns transcript segments ranked by similarity with playback offsets, also grouped by episode.",
	}, NewSearchHandler(service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListEpisodes,
		Description: "List the transcribed podcast episodes ordered by episode number.",
	}, NewListEpisodesHandler(service))

	return server
}

// NewSearchHandler returns the search_transcripts handler. Pass it to mcp.AddTool.
func NewSearchHandler(service *search.Service) func(context.Context, *mcp.CallToolRequest, SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
		defaults := service.Defaults()
		request := search.Request{
			Query:     input.Query,
			Limit:     input.Limit,
			Threshold: defaults.Threshold,
		}
		if request.Limit == 0 {
			request.Limit = defaults.Limit
		}
		if input.Threshold != nil {
			request.Threshold = *input.Threshold
		}

		resp, err := service.Search(ctx, request)
		if err != nil {
			return nil, SearchOutput{}, errors.New(search.PublicMessage(err))
		}

		return nil, SearchOutput{
			Results:  resp.Results,
			Episodes: aggregator.GroupByEpisode(resp.Results),
			Meta:     resp.Meta,
		}, nil
	}
}

// NewListEpisodesHandler returns the list_episodes handler. Pass it to mcp.AddTool.
func NewListEpisodesHandler(service *search.Service) func(context.Context, *mcp.CallToolRequest, ListEpisodesInput) (*mcp.CallToolResult, ListEpisodesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListEpisodesInput) (*mcp.CallToolResult, ListEpisodesOutput, error) {
		episodes, err := service.ListEpisodes(ctx)
		if err != nil {
			return nil, ListEpisodesOutput{}, errors.New(search.PublicMessage(err))
		}
		return nil, ListEpisodesOutput{Episodes: episodes, Count: len(episodes)}, nil
	}
}
