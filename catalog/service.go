package catalog

import (
	"sort"
	"strings"

	"github.com/karaokehub/songbot/store"
)

// SearchType selects how query parts are matched against titles and
// artists.
type SearchType string

const (
	SearchExact    SearchType = "exact"
	SearchContains SearchType = "contains"
	SearchSimilar  SearchType = "similar"
)

// Default thresholds and limits, mirroring the search endpoints.
const (
	DefaultMinScore      = 0.3
	DefaultTitleMinScore = 0.7
	DefaultLimit         = 50
	artistMatchThreshold = 0.7
)

// Service ranks songs from a SongLoader. Title matches weigh 0.6 and artist
// matches 0.4 in the combined score.
type Service struct {
	Loader *SongLoader
}

func NewService(loader *SongLoader) *Service {
	return &Service{Loader: loader}
}

// Search scores every song against the query and returns those at or above
// minScore, best first. Songs whose artist is close to the whole query
// (similarity > 0.7) are included even below the threshold. withBacking,
// when non-nil, filters by the backing flag before scoring.
func (s *Service) Search(query string, searchType SearchType, minScore float64, limit int, withBacking *bool) ([]Song, error) {
	if strings.TrimSpace(query) == "" {
		return nil, store.ErrValidation
	}

	var results []Song
	for _, song := range s.Loader.Songs() {
		if withBacking != nil && song.HasBacking != *withBacking {
			continue
		}
		score := relevance(song, query, searchType)
		if score >= minScore {
			song.Score = score
			results = append(results, song)
		}
	}

	// Close artist matches against the full query are kept regardless of
	// the combined score.
	artistQuery := strings.ToLower(query)
	for _, song := range s.Loader.Songs() {
		if withBacking != nil && song.HasBacking != *withBacking {
			continue
		}
		if song.Artist != "" && similarity(artistQuery, strings.ToLower(song.Artist)) > artistMatchThreshold {
			song.Score = similarity(artistQuery, strings.ToLower(song.Artist))
			results = append(results, song)
		}
	}

	results = dedupeByID(results)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return clip(results, limit), nil
}

// ByArtist returns all songs whose artist contains the given name,
// best match first.
func (s *Service) ByArtist(name string, limit int) ([]Song, error) {
	if strings.TrimSpace(name) == "" {
		return nil, store.ErrValidation
	}

	name = strings.ToLower(name)
	var results []Song
	for _, song := range s.Loader.Songs() {
		if song.Artist != "" && strings.Contains(strings.ToLower(song.Artist), name) {
			song.Score = similarity(name, strings.ToLower(song.Artist))
			results = append(results, song)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return clip(results, limit), nil
}

// ByTitle returns songs whose title is similar to the given one at or above
// minScore, best match first.
func (s *Service) ByTitle(title string, minScore float64, limit int) ([]Song, error) {
	if strings.TrimSpace(title) == "" {
		return nil, store.ErrValidation
	}

	title = strings.ToLower(title)
	var results []Song
	for _, song := range s.Loader.Songs() {
		score := similarity(title, strings.ToLower(song.Title))
		if score >= minScore {
			song.Score = score
			results = append(results, song)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return clip(results, limit), nil
}

// WithBacking lists songs that have backing vocals.
func (s *Service) WithBacking(limit int) []Song {
	var results []Song
	for _, song := range s.Loader.Songs() {
		if song.HasBacking {
			results = append(results, song)
		}
	}
	return clip(results, limit)
}

// All returns the whole catalog.
func (s *Service) All() []Song {
	return s.Loader.Songs()
}

// SearchFreeText implements Client with the default similar-match settings.
func (s *Service) SearchFreeText(query string) ([]Song, error) {
	return s.Search(query, SearchSimilar, DefaultMinScore, DefaultLimit, nil)
}

// SearchByArtist implements Client.
func (s *Service) SearchByArtist(name string) ([]Song, error) {
	return s.ByArtist(name, DefaultLimit)
}

// SearchByTitle implements Client.
func (s *Service) SearchByTitle(title string) ([]Song, error) {
	return s.ByTitle(title, DefaultTitleMinScore, DefaultLimit)
}

// FindByID implements Client.
func (s *Service) FindByID(id int) (*Song, error) {
	for _, song := range s.Loader.Songs() {
		if song.ID == id {
			return &song, nil
		}
	}
	return nil, store.ErrNotFound
}

// relevance combines the best title and artist match for the query.
func relevance(song Song, query string, searchType SearchType) float64 {
	part := strings.ToLower(query)
	titleLower := strings.ToLower(song.Title)
	artistLower := strings.ToLower(song.Artist)

	var titleScore, artistScore float64
	switch searchType {
	case SearchExact:
		if part == titleLower {
			titleScore = 1.0
		}
		if artistLower != "" && part == artistLower {
			artistScore = 1.0
		}
	case SearchContains:
		if strings.Contains(titleLower, part) {
			titleScore = 0.8
		}
		if artistLower != "" && strings.Contains(artistLower, part) {
			artistScore = 0.8
		}
	default:
		titleScore = similarity(part, titleLower)
		if artistLower != "" {
			artistScore = similarity(part, artistLower)
		}
	}

	return titleScore*0.6 + artistScore*0.4
}

// similarity is the ratio of the longest common subsequence to the combined
// length of both strings, in [0, 1]. Equal strings score 1.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

func dedupeByID(songs []Song) []Song {
	seen := make(map[int]bool, len(songs))
	out := songs[:0]
	for _, song := range songs {
		if seen[song.ID] {
			continue
		}
		seen[song.ID] = true
		out = append(out, song)
	}
	return out
}

func clip(songs []Song, limit int) []Song {
	if limit > 0 && len(songs) > limit {
		return songs[:limit]
	}
	return songs
}
