package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

// HTTPClient is a thin adapter over a remote catalog service exposing the
// same /songs endpoints this package serves. Any transport or decode
// failure is reported as store.ErrUpstream; the engine turns that into a
// retry prompt without advancing the conversation.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (hc *HTTPClient) SearchFreeText(query string) ([]Song, error) {
	return hc.getSongs("/songs/search/", url.Values{"query": {query}})
}

func (hc *HTTPClient) SearchByArtist(name string) ([]Song, error) {
	return hc.getSongs("/songs/by-artist/", url.Values{"artist": {name}})
}

func (hc *HTTPClient) SearchByTitle(title string) ([]Song, error) {
	return hc.getSongs("/songs/by-title/", url.Values{"title": {title}})
}

func (hc *HTTPClient) FindByID(id int) (*Song, error) {
	resp, err := hc.Client.Get(fmt.Sprintf("%s/songs/id/%d", hc.BaseURL, id))
	if err != nil {
		utils.ErrorLogger.Printf("catalog request failed: %v", err)
		return nil, store.ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, store.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, store.ErrUpstream
	}

	var song Song
	if err := json.NewDecoder(resp.Body).Decode(&song); err != nil {
		return nil, store.ErrUpstream
	}
	return &song, nil
}

func (hc *HTTPClient) getSongs(path string, params url.Values) ([]Song, error) {
	resp, err := hc.Client.Get(hc.BaseURL + path + "?" + params.Encode())
	if err != nil {
		utils.ErrorLogger.Printf("catalog request failed: %v", err)
		return nil, store.ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, store.ErrValidation
	}
	if resp.StatusCode != http.StatusOK {
		return nil, store.ErrUpstream
	}

	var songs []Song
	if err := json.NewDecoder(resp.Body).Decode(&songs); err != nil {
		return nil, store.ErrUpstream
	}
	return songs, nil
}
