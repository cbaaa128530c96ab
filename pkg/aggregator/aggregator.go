package aggregator

import "podcast-search/pkg/domain"

// GroupByEpisode groups ranked results by episode in one pass. Groups appear in
// the order their episode was first seen and keep the input order of their
// chunks, so the first group holds the best match. The input is not modified.
func GroupByEpisode(results []domain.SearchResult) []domain.GroupedEpisode {
	groups := make([]domain.GroupedEpisode, 0)
	index := make(map[string]int)

	for _, r := range results {
		i, ok := index[r.EpisodeID]
		if !ok {
			i = len(groups)
			index[r.EpisodeID] = i
			groups = append(groups, domain.GroupedEpisode{
				EpisodeID:     r.EpisodeID,
				EpisodeTitle:  r.EpisodeTitle,
				EpisodeNumber: r.EpisodeNumber,
			})
		}
		groups[i].Chunks = append(groups[i].Chunks, r)
	}

	return groups
}

// Count returns the number of chunks across all groups.
func Count(groups []domain.GroupedEpisode) int {
	n := 0
	for _, g := range groups {
		n += len(g.Chunks)
	}
	return n
}
