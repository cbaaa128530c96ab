package web

import (
	"regexp"
	"strings"
)

// Segment is a run of text that either matched a query keyword or did not.
type Segment struct {
	Text  string
	Match bool
}

// Highlight splits text around case-insensitive occurrences of any
// whitespace-separated keyword of query. Keywords are matched literally.
func Highlight(text, query string) []Segment {
	keywords := strings.Fields(query)
	if len(keywords) == 0 || text == "" {
		return []Segment{{Text: text}}
	}

	quoted := make([]string, len(keywords))
	for i, k := range keywords {
		quoted[i] = regexp.QuoteMeta(k)
	}
	re := regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`)

	var segments []Segment
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}
