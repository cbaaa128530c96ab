package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
	"podcast-search/pkg/search/mocks"
)

type fixture struct {
	session  *mcp.ClientSession
	embedder *mocks.MockEmbedder
	gateway  *mocks.MockGateway
	catalog  *mocks.MockEpisodeCatalog
}

func connect(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	f := &fixture{
		embedder: mocks.NewMockEmbedder(ctrl),
		gateway:  mocks.NewMockGateway(ctrl),
		catalog:  mocks.NewMockEpisodeCatalog(ctrl),
	}
	svc := search.NewService(f.embedder, f.gateway, f.catalog, search.Defaults{}, nil)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := NewServer(svc, "test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	f.session, err = client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.session.Close() })

	return f
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestTools_Listed(t *testing.T) {
	f := connect(t)

	res, err := f.session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolSearch, ToolListEpisodes}, names)
}

func TestSearchTool(t *testing.T) {
	f := connect(t)

	rows := []domain.SearchResult{
		{ID: 1, EpisodeID: "a", EpisodeTitle: "A", Text: "one", Similarity: 0.9},
		{ID: 2, EpisodeID: "b", EpisodeTitle: "B", Text: "two", Similarity: 0.8},
		{ID: 3, EpisodeID: "a", EpisodeTitle: "A", Text: "three", Similarity: 0.7},
	}
	f.embedder.EXPECT().Embed(gomock.Any(), "anime").Return([]float32{1}, nil)
	f.gateway.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), 0.3, 5).Return(rows, nil)

	res, err := f.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearch,
		Arguments: map[string]any{"query": "anime", "limit": 5},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := decode[SearchOutput](t, res)
	assert.Len(t, out.Results, 3)
	assert.Equal(t, 3, out.Meta.ResultCount)
	require.Len(t, out.Episodes, 2)
	assert.Equal(t, "a", out.Episodes[0].EpisodeID)
	assert.Len(t, out.Episodes[0].Chunks, 2)
}

func TestSearchTool_ExplicitZeroThreshold(t *testing.T) {
	f := connect(t)

	f.embedder.EXPECT().Embed(gomock.Any(), "x").Return([]float32{1}, nil)
	f.gateway.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), 0.0, 10).Return([]domain.SearchResult{}, nil)

	res, err := f.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearch,
		Arguments: map[string]any{"query": "x", "threshold": 0},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
}

func TestSearchTool_Errors(t *testing.T) {
	f := connect(t)

	res, err := f.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearch,
		Arguments: map[string]any{"query": "   "},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	assert.Equal(t, search.MsgQueryRequired, res.Content[0].(*mcp.TextContent).Text)

	f.embedder.EXPECT().Embed(gomock.Any(), "q").Return([]float32{1}, nil)
	f.gateway.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: secret host", domain.ErrSearchError))

	res, err = f.session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSearch,
		Arguments: map[string]any{"query": "q"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, search.MsgSearchFailed, res.Content[0].(*mcp.TextContent).Text)
}

func TestListEpisodesTool(t *testing.T) {
	f := connect(t)
	one := 1

	f.catalog.EXPECT().ListEpisodes(gomock.Any()).Return([]domain.Episode{{ID: "a", Title: "First", EpisodeNumber: &one}}, nil)

	res, err := f.session.CallTool(context.Background(), &mcp.CallToolParams{Name: ToolListEpisodes, Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	out := decode[ListEpisodesOutput](t, res)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "First", out.Episodes[0].Title)
}
