package playlist

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/loaders/mp3"
	"golang.org/x/tools/godoc/vfs"
)

// ManifestName is the registry file expected at the root of a music folder.
const ManifestName = "playlist.json"

type decoder func(rc io.ReadSeekCloser, name string, sampleRate int) (*audio.MusicTrack, error)

// decoders maps lower-case file extensions to decoders.
var decoders = map[string]decoder{
	".mp3": mp3.Decode,
}

// decodeTrack picks a decoder by the extension of name. rc is always
// closed.
func decodeTrack(rc io.ReadSeekCloser, name string, sampleRate int) (*audio.MusicTrack, error) {
	dec, ok := decoders[strings.ToLower(path.Ext(name))]
	if !ok {
		_ = rc.Close()
		return nil, fmt.Errorf("playlist: %s: unsupported format", name)
	}
	return dec(rc, name, sampleRate)
}

// Library is the set of playlists loaded from one manifest.
type Library struct {
	playlists []*PlayList
	byId      map[Id]*PlayList
}

// LoadFolder loads playlists from a regular folder.
// See Load for more information.
func LoadFolder(folder string, sampleRate int) (*Library, error) {
	return Load(vfs.OS(folder), sampleRate)
}

// Load loads playlists from a virtual filesystem.
// At the root of the filesystem there must be a "playlist.json" file, which
// references any files to be loaded. A playlist with a track that cannot
// be read or decoded is skipped as a whole.
func Load(fileSystem vfs.Opener, sampleRate int) (*Library, error) {
	start := time.Now()
	playlists, err := loadRegistry(fileSystem, ManifestName)
	if err != nil {
		return nil, err
	}

	lib := &Library{byId: make(map[Id]*PlayList, len(playlists))}
playlistLoop:
	for _, pl := range playlists {
		if _, dup := lib.byId[pl.Id]; dup {
			slog.Warn("playlist: duplicate id", "id", pl.Id)
			continue
		}
		for _, track := range pl.Tracks {
			file, err := fileSystem.Open(track.Path)
			if err != nil {
				slog.Warn("playlist: failed to read music track", "path", track.Path, "err", err)
				pl.release()
				continue playlistLoop
			}
			music, err := decodeTrack(file, track.Path, sampleRate)
			if err != nil {
				slog.Warn("playlist: failed to decode music", "path", track.Path, "err", err)
				pl.release()
				continue playlistLoop
			}
			track.music = withOverrides(music, track)
		}
		lib.playlists = append(lib.playlists, pl)
		lib.byId[pl.Id] = pl
	}

	slog.Info("playlist: loaded playlists",
		"count", len(lib.playlists),
		"tracks", len(lib.Tracks()),
		"seconds", time.Since(start).Seconds())
	return lib, nil
}

func withOverrides(music *audio.MusicTrack, t *Track) *audio.MusicTrack {
	if t.Title == "" && t.Artist == "" && t.Album == "" {
		return music
	}
	meta := music.Metadata()
	if t.Title != "" {
		meta.Title = t.Title
	}
	if t.Artist != "" {
		meta.Artist = t.Artist
	}
	if t.Album != "" {
		meta.Album = t.Album
	}
	return audio.NewMusicTrack(meta, music.PCM())
}

// Playlist returns the playlist with the given id.
func (l *Library) Playlist(id Id) (*PlayList, bool) {
	pl, ok := l.byId[id]
	return pl, ok
}

// Playlists returns the loaded playlists in manifest order.
func (l *Library) Playlists() []*PlayList {
	return l.playlists
}

// Tracks returns every loaded track in manifest order.
func (l *Library) Tracks() []*audio.MusicTrack {
	var out []*audio.MusicTrack
	for _, pl := range l.playlists {
		for _, t := range pl.Tracks {
			out = append(out, t.music)
		}
	}
	return out
}

// Release drops all decoded audio. Tracks must no longer be queued.
func (l *Library) Release() {
	for _, pl := range l.playlists {
		pl.release()
	}
}

func loadRegistry(fs vfs.Opener, path string) (registry []*PlayList, err error) {
	file, err := fs.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open %s: %w", path, err)
		return
	}
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", path, err)
		return
	}
	err = json.Unmarshal(data, &registry)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return
}
