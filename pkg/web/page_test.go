package web

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
	"podcast-search/pkg/search/mocks"
)

func newTestPage(t *testing.T) (*Page, *mocks.MockEmbedder, *mocks.MockGateway) {
	t.Helper()
	ctrl := gomock.NewController(t)
	emb := mocks.NewMockEmbedder(ctrl)
	gw := mocks.NewMockGateway(ctrl)
	svc := search.NewService(emb, gw, nil, search.Defaults{}, nil)
	return NewPage(svc, Options{Title: "Test Search"}, nil), emb, gw
}

func render(t *testing.T, p *Page, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	recorder := httptest.NewRecorder()
	p.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, target, nil))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(recorder.Body.String()))
	require.NoError(t, err)
	return recorder, doc
}

func TestPage_Initial(t *testing.T) {
	p, _, _ := newTestPage(t)

	recorder, doc := render(t, p, "/")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Test Search", doc.Find("h1").Text())
	assert.Equal(t, 0, doc.Find("article.episode").Length())
	assert.Contains(t, doc.Find(".empty").Text(), "検索キーワードを入力してください")
}

func TestPage_GroupedResults(t *testing.T) {
	p, emb, gw := newTestPage(t)
	seven := 7

	rows := []domain.SearchResult{
		{ID: 1, EpisodeID: "vidA", EpisodeTitle: "Taxi", EpisodeNumber: &seven, StartTime: 125.9, EndTime: 140, Text: "昨日タクシーに乗った", Similarity: 0.8123},
		{ID: 2, EpisodeID: "vidB", EpisodeTitle: "Bonus", StartTime: 5, EndTime: 9, Text: "no match here", Similarity: 0.5},
		{ID: 3, EpisodeID: "vidA", EpisodeTitle: "Taxi", EpisodeNumber: &seven, StartTime: 600, EndTime: 615, Text: "TAXI and タクシー", Similarity: 0.4},
	}
	emb.EXPECT().Embed(gomock.Any(), "タクシー taxi").Return([]float32{1}, nil)
	gw.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), 0.3, 20).Return(rows, nil)

	recorder, doc := render(t, p, "/?q=%E3%82%BF%E3%82%AF%E3%82%B7%E3%83%BC+taxi")
	require.Equal(t, http.StatusOK, recorder.Code)

	episodes := doc.Find("article.episode")
	require.Equal(t, 2, episodes.Length())

	first := episodes.Eq(0)
	assert.Equal(t, "#7", first.Find(".badge").Text())
	assert.Equal(t, "Taxi", first.Find("h2").Text())
	assert.Equal(t, "2件のシーン", first.Find(".scenes").Text())
	assert.Equal(t, 2, first.Find(".chunk").Length())

	chunk := first.Find(".chunk").Eq(0)
	assert.Equal(t, "タクシー", chunk.Find("mark").Text())
	assert.Equal(t, "2:05 - 2:20", chunk.Find(".time").Text())
	assert.Equal(t, "類似度: 81.2%", chunk.Find(".similarity").Text())
	href, _ := chunk.Find("a.play").Attr("href")
	assert.Equal(t, "https://www.youtube.com/watch?v=vidA&t=125s", href)
	assert.Equal(t, "2:05", chunk.Find("a.play").Text())

	var marks []string
	first.Find(".chunk").Eq(1).Find("mark").Each(func(_ int, s *goquery.Selection) {
		marks = append(marks, s.Text())
	})
	assert.Equal(t, []string{"TAXI", "タクシー"}, marks)

	second := episodes.Eq(1)
	assert.Equal(t, "EP", second.Find(".badge").Text())
	assert.Equal(t, 0, second.Find("mark").Length())

	assert.Contains(t, doc.Find(".meta").Text(), "3件")
}

func TestPage_NoResults(t *testing.T) {
	p, emb, gw := newTestPage(t)
	emb.EXPECT().Embed(gomock.Any(), "zzz").Return([]float32{1}, nil)
	gw.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.SearchResult{}, nil)

	_, doc := render(t, p, "/?q=zzz")
	assert.Contains(t, doc.Find(".empty").Text(), "該当する結果が見つかりませんでした")
}

func TestPage_EscapesText(t *testing.T) {
	p, emb, gw := newTestPage(t)
	emb.EXPECT().Embed(gomock.Any(), "b").Return([]float32{1}, nil)
	gw.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]domain.SearchResult{
		{ID: 1, EpisodeID: "x", EpisodeTitle: "<i>t</i>", Text: "<script>b</script>", Similarity: 0.9},
	}, nil)

	recorder, doc := render(t, p, "/?q=b")
	assert.NotContains(t, recorder.Body.String(), "<script>b")
	assert.Equal(t, 0, doc.Find("article script").Length())
	assert.Equal(t, "<i>t</i>", doc.Find("h2").Text())
}

func TestPage_Errors(t *testing.T) {
	p, emb, gw := newTestPage(t)

	recorder, doc := render(t, p, "/?q="+strings.Repeat("x", 501))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Query too long (max 500 characters)", doc.Find(".error").Text())

	emb.EXPECT().Embed(gomock.Any(), "ok").Return([]float32{1}, nil)
	gw.EXPECT().SearchChunks(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: down", domain.ErrSearchUnavailable))

	recorder, doc = render(t, p, "/?q=ok")
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "検索に失敗しました", doc.Find(".error").Text())
	assert.NotContains(t, recorder.Body.String(), "down")
}

func TestPage_UnknownPath(t *testing.T) {
	p, _, _ := newTestPage(t)

	recorder := httptest.NewRecorder()
	p.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestBadgeAndSimilarity(t *testing.T) {
	n, zero := 12, 0
	assert.Equal(t, "#12", Badge(&n))
	assert.Equal(t, "EP", Badge(nil))
	assert.Equal(t, "EP", Badge(&zero))

	assert.Equal(t, "30.0%", FormatSimilarity(0.3))
	assert.Equal(t, "100.0%", FormatSimilarity(1))
}
