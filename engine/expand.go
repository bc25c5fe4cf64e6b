package engine

import (
	"strings"

	"github.com/karaokehub/songbot/catalog"
)

// maxExpandTokens caps subsequence expansion; beyond it the query is used
// as-is to keep the number of catalog calls bounded.
const maxExpandTokens = 5

// tokenCombos expands a free-text query into every subsequence of its
// whitespace-separated tokens (length 1..N, original order preserved), so
// partial or reordered queries still hit. The full query always comes
// first.
func tokenCombos(query string) []string {
	tokens := strings.Fields(query)
	if len(tokens) <= 1 || len(tokens) > maxExpandTokens {
		return []string{strings.TrimSpace(query)}
	}

	full := strings.Join(tokens, " ")
	combos := []string{full}
	for mask := 1; mask < (1 << len(tokens)); mask++ {
		var picked []string
		for i, token := range tokens {
			if mask&(1<<i) != 0 {
				picked = append(picked, token)
			}
		}
		combo := strings.Join(picked, " ")
		if combo != full {
			combos = append(combos, combo)
		}
	}
	return combos
}

// artistVariants tries the artist query as given, every word rotation of
// it, and the fully reversed word order, so "Bowie David" still finds
// "David Bowie".
func artistVariants(query string) []string {
	tokens := strings.Fields(query)
	if len(tokens) <= 1 {
		return []string{strings.TrimSpace(query)}
	}

	seen := make(map[string]bool)
	var variants []string
	add := func(words []string) {
		v := strings.Join(words, " ")
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	add(tokens)
	for shift := 1; shift < len(tokens); shift++ {
		rotated := append(append([]string{}, tokens[shift:]...), tokens[:shift]...)
		add(rotated)
	}
	reversed := make([]string, len(tokens))
	for i, token := range tokens {
		reversed[len(tokens)-1-i] = token
	}
	add(reversed)

	return variants
}

// dedupeSongs keeps the first occurrence of each song id, preserving order.
func dedupeSongs(songs []catalog.Song) []catalog.Song {
	seen := make(map[int]bool, len(songs))
	var out []catalog.Song
	for _, song := range songs {
		if seen[song.ID] {
			continue
		}
		seen[song.ID] = true
		out = append(out, song)
	}
	return out
}

func clipSongs(songs []catalog.Song, limit int) []catalog.Song {
	if limit > 0 && len(songs) > limit {
		return songs[:limit]
	}
	return songs
}
