// Copyright 2016 Hajime Hoshi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wav loads WAV (RIFF) files into sound effect clips.
package wav

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	beepwav "github.com/gopxl/beep/v2/wav"
	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/loaders/pcm"
)

// Decode reads a whole WAV stream and converts it to stereo int16 at
// sampleRate. Mono input is duplicated into both channels.
func Decode(r io.Reader, name string, sampleRate int) (*audio.SoundClip, error) {
	s, format, err := beepwav.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("wav: %s: %w", name, err)
	}
	data, err := pcm.ReadAll(s, format.SampleRate, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("wav: %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("wav: %s: no audio data", name)
	}
	return audio.NewSoundClip(name, data), nil
}

// Load decodes the file at path. The clip is named after the file.
func Load(path string, sampleRate int) (*audio.SoundClip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(f, name, sampleRate)
}
