package catalog

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/karaokehub/songbot/utils"
)

// SongLoader reads the song list from a ;-separated CSV file
// (id;title;artist;backing;type). Malformed rows are logged and skipped.
// The loader is constructed and injected explicitly; Reload swaps in a
// fresh copy of the file without restarting the process.
type SongLoader struct {
	path  string
	mu    sync.RWMutex
	songs []Song
}

func NewSongLoader(path string) (*SongLoader, error) {
	sl := &SongLoader{path: path}
	if err := sl.Reload(); err != nil {
		return nil, err
	}
	return sl, nil
}

// Songs returns the current song list. The returned slice must not be
// mutated by the caller.
func (sl *SongLoader) Songs() []Song {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.songs
}

// Reload re-reads the CSV file and replaces the in-memory list.
func (sl *SongLoader) Reload() error {
	f, err := os.Open(sl.path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return err
	}

	var songs []Song
	for i, row := range records {
		if i == 0 {
			// header
			continue
		}
		if len(row) < 3 {
			utils.ErrorLogger.Printf("songs.csv: skipping short row %d: %v", i+1, row)
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			utils.ErrorLogger.Printf("songs.csv: skipping row %d with bad id %q", i+1, row[0])
			continue
		}
		song := Song{
			ID:     id,
			Title:  strings.TrimSpace(row[1]),
			Artist: strings.TrimSpace(row[2]),
		}
		if len(row) > 3 {
			song.HasBacking = strings.TrimSpace(row[3]) != ""
		}
		if len(row) > 4 {
			song.Type = strings.TrimSpace(row[4])
		}
		songs = append(songs, song)
	}

	sl.mu.Lock()
	sl.songs = songs
	sl.mu.Unlock()

	utils.InfoLogger.Printf("Loaded %d songs from %s", len(songs), sl.path)
	return nil
}
