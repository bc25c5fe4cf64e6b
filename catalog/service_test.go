package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karaokehub/songbot/store"
	"github.com/karaokehub/songbot/utils"
)

const testCSV = `id;title;artist;backing;type
1;Rolling in the Deep;Adele;x;pop
2;Someone Like You;Adele;;pop
3;Bohemian Rhapsody;Queen;x;rock
4;Under Pressure;Queen;;rock
bad;row;;
5;Pressure;Billy Joel;;rock
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	utils.InitLogger()

	path := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0o644))

	loader, err := NewSongLoader(path)
	require.NoError(t, err)
	return NewService(loader)
}

func TestLoaderSkipsMalformedRows(t *testing.T) {
	svc := newTestService(t)
	assert.Len(t, svc.All(), 5)

	song, err := svc.FindByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Rolling in the Deep", song.Title)
	assert.True(t, song.HasBacking)

	song, err = svc.FindByID(2)
	require.NoError(t, err)
	assert.False(t, song.HasBacking)

	_, err = svc.FindByID(99)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoaderReload(t *testing.T) {
	utils.InitLogger()
	path := filepath.Join(t.TempDir(), "songs.csv")
	require.NoError(t, os.WriteFile(path, []byte("id;title;artist;backing\n1;One;A;\n"), 0o644))

	loader, err := NewSongLoader(path)
	require.NoError(t, err)
	assert.Len(t, loader.Songs(), 1)

	require.NoError(t, os.WriteFile(path, []byte("id;title;artist;backing\n1;One;A;\n2;Two;B;x\n"), 0o644))
	require.NoError(t, loader.Reload())
	assert.Len(t, loader.Songs(), 2)
}

func TestSearchExactAndContains(t *testing.T) {
	svc := newTestService(t)

	exact, err := svc.Search("pressure", SearchExact, 0.5, DefaultLimit, nil)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "Pressure", exact[0].Title)

	contains, err := svc.Search("pressure", SearchContains, 0.4, DefaultLimit, nil)
	require.NoError(t, err)
	ids := songIDs(contains)
	assert.Contains(t, ids, 4)
	assert.Contains(t, ids, 5)
}

func TestSearchSimilarRanksAndDedupes(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.Search("adele", SearchSimilar, 0.3, DefaultLimit, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Both Adele songs come back once each, best match first.
	ids := songIDs(results)
	assert.Contains(t, ids, 1)
	assert.Contains(t, ids, 2)
	seen := make(map[int]int)
	for _, id := range ids {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "song %d duplicated", id)
	}
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchValidatesQuery(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Search("   ", SearchSimilar, 0.3, DefaultLimit, nil)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.ByArtist("", DefaultLimit)
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.ByTitle("", DefaultTitleMinScore, DefaultLimit)
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestSearchWithBackingFilter(t *testing.T) {
	svc := newTestService(t)

	yes := true
	results, err := svc.Search("queen", SearchSimilar, 0.3, DefaultLimit, &yes)
	require.NoError(t, err)
	for _, song := range results {
		if song.Artist == "Queen" {
			assert.True(t, song.HasBacking)
		}
	}

	backing := svc.WithBacking(DefaultLimit)
	assert.Len(t, backing, 2)
}

func TestByArtistSubstring(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.ByArtist("quee", DefaultLimit)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, song := range results {
		assert.Equal(t, "Queen", song.Artist)
	}
}

func TestByTitleSimilarity(t *testing.T) {
	svc := newTestService(t)

	results, err := svc.ByTitle("bohemian rhapsody", 0.7, DefaultLimit)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 3, results[0].ID)
}

func TestSimilarityBounds(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("", "abc"))
	assert.Greater(t, similarity("pressure", "under pressure"), 0.6)
	assert.Less(t, similarity("xyz", "abc"), 0.1)
}

func songIDs(songs []Song) []int {
	ids := make([]int, 0, len(songs))
	for _, song := range songs {
		ids = append(ids, song.ID)
	}
	return ids
}
