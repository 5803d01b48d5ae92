// Package mp3 decodes MP3 files into music tracks, reading title, artist
// and album from ID3 tags when present.
package mp3

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dhowden/tag"
	beepmp3 "github.com/gopxl/beep/v2/mp3"
	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/loaders/pcm"
)

// ReadMetadata reads ID3 tags from r. Missing tags are not an error: the
// returned fields are left empty and audio.NewMusicTrack fills them in.
func ReadMetadata(r io.ReadSeeker) (audio.Metadata, error) {
	m, err := tag.ReadFrom(r)
	if err == tag.ErrNoTagsFound {
		return audio.Metadata{}, nil
	}
	if err != nil {
		return audio.Metadata{}, err
	}
	return audio.Metadata{
		Title:  m.Title(),
		Artist: m.Artist(),
		Album:  m.Album(),
	}, nil
}

// Decode reads tags from rc, then decodes the whole stream to stereo int16
// at sampleRate. rc is closed when Decode returns.
func Decode(rc io.ReadSeekCloser, name string, sampleRate int) (*audio.MusicTrack, error) {
	defer rc.Close()

	meta, err := ReadMetadata(rc)
	if err != nil {
		slog.Warn("mp3: unreadable tags", "file", name, "err", err)
		meta = audio.Metadata{}
	}
	if _, err := rc.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mp3: %s: %w", name, err)
	}

	s, format, err := beepmp3.Decode(io.NopCloser(rc))
	if err != nil {
		return nil, fmt.Errorf("mp3: %s: %w", name, err)
	}
	data, err := pcm.ReadAll(s, format.SampleRate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("mp3: %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("mp3: %s: no audio data", name)
	}

	meta.Duration = time.Duration(len(data)/audio.ChannelCount) * time.Second / time.Duration(sampleRate)
	return audio.NewMusicTrack(meta, data), nil
}

// Load decodes the file at path.
func Load(path string, sampleRate int) (*audio.MusicTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return Decode(f, path, sampleRate)
}
