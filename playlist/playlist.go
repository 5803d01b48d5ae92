package playlist

import (
	"github.com/rayhong24/MP3-Embedded-System/audio"
)

type Id string

// PlayList is an ordered set of tracks from the manifest.
type PlayList struct {
	Id     Id
	Tracks []*Track
}

// Track is one manifest entry. Title, Artist and Album override the ID3
// tags of the file when set.
type Track struct {
	Path   string
	Title  string
	Artist string
	Album  string
	music  *audio.MusicTrack
}

// Music returns the decoded track, or nil if the playlist failed to load.
func (t *Track) Music() *audio.MusicTrack { return t.music }

// Enqueuer accepts tracks for playback. *playback.Facade implements it.
type Enqueuer interface {
	Enqueue(track *audio.MusicTrack) bool
}

// Enqueue adds every track of the playlist in order and returns how many
// were accepted. It stops at the first rejected track.
func (pl *PlayList) Enqueue(q Enqueuer) int {
	n := 0
	for _, t := range pl.Tracks {
		if !q.Enqueue(t.music) {
			break
		}
		n++
	}
	return n
}

func (pl *PlayList) release() {
	for _, t := range pl.Tracks {
		if t.music != nil {
			t.music.Release()
		}
	}
}
