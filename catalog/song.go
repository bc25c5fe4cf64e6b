// Package catalog holds the song catalog: the CSV-backed loader, the search
// service ranking songs by relevance, and the Client interface the
// conversation engine talks to. The engine can use the in-process Service
// directly or reach a remote instance through HTTPClient.
package catalog

// Song is one searchable catalog entry. HasBacking marks songs that come
// with backing vocals. Score is filled in by search and carried to the
// caller for ranking.
type Song struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	HasBacking bool    `json:"has_backing"`
	Type       string  `json:"type,omitempty"`
	Score      float64 `json:"similarity_score,omitempty"`
}

// Client is the catalog boundary consumed by the conversation engine.
type Client interface {
	SearchFreeText(query string) ([]Song, error)
	SearchByArtist(name string) ([]Song, error)
	SearchByTitle(title string) ([]Song, error)
	FindByID(id int) (*Song, error)
}
