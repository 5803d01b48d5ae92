package sfx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/loaders/wav"
	"golang.org/x/tools/godoc/vfs"
)

// ManifestName is the registry file expected at the root of an sfx folder.
const ManifestName = "sfx.json"

// EffectQueuer starts effect clips. *audio.Engine implements it.
type EffectQueuer interface {
	QueueEffect(clip *audio.SoundClip) bool
}

// Bank holds the loaded effects and plays them into an engine.
type Bank struct {
	engine EffectQueuer

	lock    sync.Mutex
	effects map[Id]*Sfx
	now     func() time.Time
	random  func() float64
}

// LoadFolder loads sound effects from a regular folder.
// See Load for more information.
func LoadFolder(folder string, engine EffectQueuer, sampleRate int) (*Bank, error) {
	return Load(vfs.OS(folder), engine, sampleRate)
}

// Load loads sound effects from a virtual filesystem.
// At the root of the filesystem there must be a "sfx.json" file, which
// references any files to be loaded. Variations that fail to load are
// logged and skipped.
func Load(fileSystem vfs.Opener, engine EffectQueuer, sampleRate int) (*Bank, error) {
	start := time.Now()
	soundEffects, err := loadRegistry(fileSystem, ManifestName)
	if err != nil {
		return nil, err
	}

	cachedDiskReads := make(map[string]*audio.SoundClip)
	effects := make(map[Id]*Sfx, len(soundEffects))
	for _, e := range soundEffects {
		for _, v := range e.Variations {
			clip, ok := cachedDiskReads[v.Path]
			if !ok {
				raw, err := readFile(fileSystem, v.Path)
				if err != nil {
					slog.Warn("sfx: failed to read sound effect", "path", v.Path, "err", err)
					continue
				}
				clip, err = wav.Decode(bytes.NewReader(raw), string(e.Id), sampleRate)
				if err != nil {
					slog.Warn("sfx: failed to decode sound effect", "path", v.Path, "err", err)
					continue
				}
				cachedDiskReads[v.Path] = clip
			}
			if g := gain(e.Volume, v.Volume); g != 1 {
				clip = audio.NewSoundClip(clip.Name(), scaled(clip.PCM(), g))
			}
			v.clip = clip
		}
		effects[e.Id] = e
	}

	slog.Info("sfx: loaded sound effects",
		"count", len(effects),
		"seconds", time.Since(start).Seconds())
	return &Bank{
		engine:  engine,
		effects: effects,
		now:     time.Now,
		random:  rand.Float64,
	}, nil
}

// Play queues a variation of id into the engine. It returns false when id
// is unknown, throttled, or the engine had no free slot.
func (b *Bank) Play(id Id) bool {
	b.lock.Lock()
	e, ok := b.effects[id]
	if !ok {
		b.lock.Unlock()
		slog.Warn("sfx: not loaded", "id", id)
		return false
	}
	now := b.now()
	v := e.pick(now, b.random())
	if v == nil {
		b.lock.Unlock()
		return false
	}
	e.lastPlayed = now
	v.lastPlayed = now
	b.lock.Unlock()

	return b.engine.QueueEffect(v.clip)
}

// Ids returns the loaded effect ids in sorted order.
func (b *Bank) Ids() []Id {
	b.lock.Lock()
	defer b.lock.Unlock()
	ids := make([]Id, 0, len(b.effects))
	for id := range b.effects {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func readFile(fs vfs.Opener, path string) (data []byte, err error) {
	file, err := fs.Open(path)
	if err != nil {
		return
	}
	data, err = io.ReadAll(file)
	_ = file.Close()
	return
}

func loadRegistry(fs vfs.Opener, path string) (registry []*Sfx, err error) {
	data, err := readFile(fs, path)
	if err != nil {
		err = fmt.Errorf("failed to open %s: %w", path, err)
		return
	}
	err = json.Unmarshal(data, &registry)
	if err != nil {
		err = fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return
}
