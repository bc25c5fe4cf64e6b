package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/karaokehub/songbot/catalog"
	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

// CatalogController exposes the song search service over HTTP, so a bot
// engine running elsewhere can use it through catalog.HTTPClient.
type CatalogController struct {
	Service *catalog.Service
}

func NewCatalogController(service *catalog.Service) *CatalogController {
	return &CatalogController{Service: service}
}

// GetAllSongs -> the whole catalog.
func (cc *CatalogController) GetAllSongs(c *gin.Context) {
	c.JSON(http.StatusOK, cc.Service.All())
}

// GetSongByID -> one song.
func (cc *CatalogController) GetSongByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("song_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid song id"))
		return
	}
	song, err := cc.Service.FindByID(id)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

// SearchSongs -> ranked multi-word search over titles and artists.
func (cc *CatalogController) SearchSongs(c *gin.Context) {
	query := c.Query("query")
	searchType := catalog.SearchType(c.DefaultQuery("search_type", string(catalog.SearchSimilar)))
	minScore := floatQuery(c, "min_similarity", catalog.DefaultMinScore)
	limit := intQuery(c, "limit", catalog.DefaultLimit)

	var withBacking *bool
	if raw := c.Query("with_backing"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid with_backing value"))
			return
		}
		withBacking = &b
	}

	songs, err := cc.Service.Search(query, searchType, minScore, limit, withBacking)
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("search query must not be empty"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

// SearchByArtist -> all songs of one artist.
func (cc *CatalogController) SearchByArtist(c *gin.Context) {
	songs, err := cc.Service.ByArtist(c.Query("artist"), intQuery(c, "limit", catalog.DefaultLimit))
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("artist name must not be empty"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

// SearchByTitle -> songs with a similar title.
func (cc *CatalogController) SearchByTitle(c *gin.Context) {
	songs, err := cc.Service.ByTitle(c.Query("title"), floatQuery(c, "min_similarity", catalog.DefaultTitleMinScore), intQuery(c, "limit", catalog.DefaultLimit))
	if err != nil {
		if errors.Is(err, store.ErrValidation) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("song title must not be empty"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

// SongsWithBacking -> songs that have backing vocals.
func (cc *CatalogController) SongsWithBacking(c *gin.Context) {
	c.JSON(http.StatusOK, cc.Service.WithBacking(intQuery(c, "limit", catalog.DefaultLimit)))
}

// ReloadCatalog re-reads the song file without a restart. Admin-gated.
func (cc *CatalogController) ReloadCatalog(c *gin.Context) {
	if err := cc.Service.Loader.Reload(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catalog reloaded", gin.H{"songs": len(cc.Service.All())})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func floatQuery(c *gin.Context, name string, fallback float64) float64 {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			return v
		}
	}
	return fallback
}
