// Package web renders the search page: results grouped by episode with
// highlighted keywords and links that start playback at each scene.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"podcast-search/pkg/aggregator"
	"podcast-search/pkg/domain"
	"podcast-search/pkg/search"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

const (
	pageLimit     = 20
	pageThreshold = 0.3

	msgSearchFailed = "検索に失敗しました"
)

type Options struct {
	Title     string
	VideoHost string
}

type Page struct {
	service *search.Service
	opts    Options
	logger  *zerolog.Logger
}

func NewPage(service *search.Service, opts Options, logger *zerolog.Logger) *Page {
	if opts.Title == "" {
		opts.Title = "Podcast Search"
	}
	if opts.VideoHost == "" {
		opts.VideoHost = domain.DefaultVideoHost
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Page{service: service, opts: opts, logger: logger}
}

type pageData struct {
	Title    string
	Query    string
	Error    string
	Searched bool
	Meta     search.Meta
	Episodes []episodeView
}

type episodeView struct {
	Badge  string
	Title  string
	Scenes int
	Chunks []chunkView
}

type chunkView struct {
	Segments   []Segment
	TimeRange  string
	Start      string
	Similarity string
	URL        string
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	data := pageData{
		Title: p.opts.Title,
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}
	status := http.StatusOK

	if data.Query != "" {
		resp, err := p.service.Search(r.Context(), search.Request{
			Query:     data.Query,
			Limit:     pageLimit,
			Threshold: pageThreshold,
		})
		if err != nil {
			status = http.StatusInternalServerError
			data.Error = msgSearchFailed
			if search.IsBadRequest(err) {
				status = http.StatusBadRequest
				data.Error = search.PublicMessage(err)
			}
		} else {
			data.Searched = true
			data.Meta = resp.Meta
			data.Episodes = p.episodes(aggregator.GroupByEpisode(resp.Results), resp.Meta.Query)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		p.logger.Error().Err(err).Msg("Render search page failed")
	}
}

func (p *Page) episodes(groups []domain.GroupedEpisode, query string) []episodeView {
	views := make([]episodeView, 0, len(groups))
	for _, g := range groups {
		v := episodeView{
			Badge:  Badge(g.EpisodeNumber),
			Title:  g.EpisodeTitle,
			Scenes: len(g.Chunks),
		}
		for _, c := range g.Chunks {
			v.Chunks = append(v.Chunks, chunkView{
				Segments:   Highlight(c.Text, query),
				TimeRange:  domain.FormatTimestamp(c.StartTime) + " - " + domain.FormatTimestamp(c.EndTime),
				Start:      domain.FormatTimestamp(c.StartTime),
				Similarity: FormatSimilarity(c.Similarity),
				URL:        c.VideoURL(p.opts.VideoHost),
			})
		}
		views = append(views, v)
	}
	return views
}

// Badge is "#N" for numbered episodes and "EP" otherwise.
func Badge(number *int) string {
	if number == nil || *number == 0 {
		return "EP"
	}
	return fmt.Sprintf("#%d", *number)
}

// FormatSimilarity renders a similarity as a percentage with one decimal.
func FormatSimilarity(s float64) string {
	return fmt.Sprintf("%.1f%%", s*100)
}
