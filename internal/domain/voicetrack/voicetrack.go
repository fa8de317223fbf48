// Package voicetrack maintains the voice manifest ordering invariant
// and answers playback-time lookups against it.
package voicetrack

import (
	"errors"
	"sort"

	"github.com/railbirdlabs/railbird/internal/types"
)

// ErrNoMatch is returned by Lookup when no clip covers the requested
// playback time.
var ErrNoMatch = errors.New("voicetrack: no clip covers requested time")

// Match is a resolved playback query: the clip to play and how far
// into it playback already is.
type Match struct {
	Filename string  `json:"filename"`
	Offset   float64 `json:"offset"`
}

// Lookup returns the first entry, in store order, whose half-open
// interval [Start, End) covers t.
func Lookup(entries []types.VoiceManifestEntry, t float64) (Match, error) {
	for _, e := range entries {
		if e.Start <= t && t < e.End {
			return Match{Filename: e.Filename, Offset: t - e.Start}, nil
		}
	}
	return Match{}, ErrNoMatch
}

// Insert adds e keeping the manifest sorted by start time, so store
// order and timeline order coincide and first-match lookups are
// deterministic.
func Insert(entries []types.VoiceManifestEntry, e types.VoiceManifestEntry) []types.VoiceManifestEntry {
	i := sort.Search(len(entries), func(i int) bool { return entries[i].Start > e.Start })
	entries = append(entries, types.VoiceManifestEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = e
	return entries
}

// Overlapping reports whether any two entries intersect. The builder
// never produces overlapping intervals; tests assert this.
func Overlapping(entries []types.VoiceManifestEntry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Start < entries[i-1].End {
			return true
		}
	}
	return false
}
