// Copyright 2021 The Oto Authors
// Copyright 2025 Lundis
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

//go:build linux

package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// ALSA constants from <alsa/pcm.h>.
const (
	sndPCMStreamPlayback     = 0
	sndPCMFormatS16LE        = 2
	sndPCMAccessRWInterleave = 3
)

// libasound entry points, bound once at first use. C long and
// snd_pcm_uframes_t map to int and uint.
var alsa struct {
	once sync.Once
	err  error

	pcmOpen      func(pcm *uintptr, name string, stream, mode int32) int32
	pcmSetParams func(pcm uintptr, format, access int32, channels, rate uint32, softResample int32, latencyUs uint32) int32
	pcmGetParams func(pcm uintptr, bufferSize, periodSize *uint) int32
	pcmWritei    func(pcm uintptr, buf *int16, frames uint) int
	pcmRecover   func(pcm uintptr, err, silent int32) int32
	pcmDrain     func(pcm uintptr) int32
	pcmClose     func(pcm uintptr) int32
	strerror     func(errnum int32) string

	mixerOpen           func(mixer *uintptr, mode int32) int32
	mixerAttach         func(mixer uintptr, name string) int32
	mixerSelemRegister  func(mixer, options, classp uintptr) int32
	mixerLoad           func(mixer uintptr) int32
	mixerClose          func(mixer uintptr) int32
	selemIDMalloc       func(id *uintptr) int32
	selemIDFree         func(id uintptr)
	selemIDSetIndex     func(id uintptr, index uint32)
	selemIDSetName      func(id uintptr, name string)
	mixerFindSelem      func(mixer, id uintptr) uintptr
	selemGetVolumeRange func(elem uintptr, min, max *int) int32
	selemSetVolumeAll   func(elem uintptr, value int) int32
}

func loadALSA() error {
	alsa.once.Do(func() {
		lib, err := purego.Dlopen("libasound.so.2", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			alsa.err = fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
			return
		}
		for name, fptr := range map[string]any{
			"snd_pcm_open":                              &alsa.pcmOpen,
			"snd_pcm_set_params":                        &alsa.pcmSetParams,
			"snd_pcm_get_params":                        &alsa.pcmGetParams,
			"snd_pcm_writei":                            &alsa.pcmWritei,
			"snd_pcm_recover":                           &alsa.pcmRecover,
			"snd_pcm_drain":                             &alsa.pcmDrain,
			"snd_pcm_close":                             &alsa.pcmClose,
			"snd_strerror":                              &alsa.strerror,
			"snd_mixer_open":                            &alsa.mixerOpen,
			"snd_mixer_attach":                          &alsa.mixerAttach,
			"snd_mixer_selem_register":                  &alsa.mixerSelemRegister,
			"snd_mixer_load":                            &alsa.mixerLoad,
			"snd_mixer_close":                           &alsa.mixerClose,
			"snd_mixer_selem_id_malloc":                 &alsa.selemIDMalloc,
			"snd_mixer_selem_id_free":                   &alsa.selemIDFree,
			"snd_mixer_selem_id_set_index":              &alsa.selemIDSetIndex,
			"snd_mixer_selem_id_set_name":               &alsa.selemIDSetName,
			"snd_mixer_find_selem":                      &alsa.mixerFindSelem,
			"snd_mixer_selem_get_playback_volume_range": &alsa.selemGetVolumeRange,
			"snd_mixer_selem_set_playback_volume_all":   &alsa.selemSetVolumeAll,
		} {
			sym, err := purego.Dlsym(lib, name)
			if err != nil {
				alsa.err = fmt.Errorf("%w: %s: %v", ErrDeviceNotFound, name, err)
				return
			}
			purego.RegisterFunc(fptr, sym)
		}
	})
	return alsa.err
}

// alsaError carries the negative errno returned by libasound.
type alsaError struct {
	op   string
	code int32
}

func (e *alsaError) Error() string {
	return fmt.Sprintf("alsa: %s: %s", e.op, alsa.strerror(e.code))
}

func (e *alsaError) Unwrap() error {
	switch unix.Errno(-e.code) {
	case unix.ENOENT, unix.ENODEV:
		return ErrDeviceNotFound
	}
	return nil
}

type alsaSink struct {
	pcm          uintptr
	periodFrames int
	m            sync.Mutex
}

func openALSA(options SinkOptions) (Sink, error) {
	if err := loadALSA(); err != nil {
		return nil, err
	}
	device := options.Device
	if device == "" {
		device = "default"
	}

	var pcm uintptr
	if code := alsa.pcmOpen(&pcm, device, sndPCMStreamPlayback, 0); code < 0 {
		return nil, &alsaError{op: "snd_pcm_open", code: code}
	}

	latencyUs := uint32(options.Latency.Microseconds())
	if code := alsa.pcmSetParams(pcm, sndPCMFormatS16LE, sndPCMAccessRWInterleave,
		ChannelCount, uint32(options.SampleRate), 1, latencyUs); code < 0 {
		alsa.pcmClose(pcm)
		return nil, &alsaError{op: "snd_pcm_set_params", code: code}
	}

	var bufferSize, periodSize uint
	if code := alsa.pcmGetParams(pcm, &bufferSize, &periodSize); code < 0 {
		alsa.pcmClose(pcm)
		return nil, &alsaError{op: "snd_pcm_get_params", code: code}
	}
	if periodSize == 0 {
		periodSize = DefaultPeriodFrames
	}

	return &alsaSink{pcm: pcm, periodFrames: int(periodSize)}, nil
}

func (s *alsaSink) Write(buf []int16) (int, error) {
	if len(buf) < ChannelCount {
		return 0, nil
	}
	s.m.Lock()
	defer s.m.Unlock()
	n := alsa.pcmWritei(s.pcm, &buf[0], uint(len(buf)/ChannelCount))
	if n < 0 {
		return 0, &alsaError{op: "snd_pcm_writei", code: int32(n)}
	}
	return n, nil
}

func (s *alsaSink) Recover(cause error) error {
	var ae *alsaError
	if !errors.As(cause, &ae) {
		return cause
	}
	s.m.Lock()
	defer s.m.Unlock()
	if code := alsa.pcmRecover(s.pcm, ae.code, 0); code < 0 {
		return &alsaError{op: "snd_pcm_recover", code: code}
	}
	return nil
}

func (s *alsaSink) PeriodFrames() int { return s.periodFrames }

func (s *alsaSink) Drain() error {
	s.m.Lock()
	defer s.m.Unlock()
	if code := alsa.pcmDrain(s.pcm); code < 0 {
		return &alsaError{op: "snd_pcm_drain", code: code}
	}
	return nil
}

func (s *alsaSink) Close() error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.pcm == 0 {
		return nil
	}
	code := alsa.pcmClose(s.pcm)
	s.pcm = 0
	if code < 0 {
		return &alsaError{op: "snd_pcm_close", code: code}
	}
	return nil
}

// MixerControl sets the playback volume of one simple mixer element.
type MixerControl struct {
	mixer    uintptr
	elem     uintptr
	min, max int
	m        sync.Mutex
}

// OpenMixerControl finds the simple element named element on card, e.g.
// "PCM" on "default".
func OpenMixerControl(card, element string) (*MixerControl, error) {
	if err := loadALSA(); err != nil {
		return nil, err
	}

	var mixer uintptr
	if code := alsa.mixerOpen(&mixer, 0); code < 0 {
		return nil, &alsaError{op: "snd_mixer_open", code: code}
	}
	fail := func(op string, code int32) (*MixerControl, error) {
		alsa.mixerClose(mixer)
		return nil, &alsaError{op: op, code: code}
	}
	if code := alsa.mixerAttach(mixer, card); code < 0 {
		return fail("snd_mixer_attach", code)
	}
	if code := alsa.mixerSelemRegister(mixer, 0, 0); code < 0 {
		return fail("snd_mixer_selem_register", code)
	}
	if code := alsa.mixerLoad(mixer); code < 0 {
		return fail("snd_mixer_load", code)
	}

	var id uintptr
	if code := alsa.selemIDMalloc(&id); code < 0 {
		return fail("snd_mixer_selem_id_malloc", code)
	}
	defer alsa.selemIDFree(id)
	alsa.selemIDSetIndex(id, 0)
	alsa.selemIDSetName(id, element)

	elem := alsa.mixerFindSelem(mixer, id)
	if elem == 0 {
		alsa.mixerClose(mixer)
		return nil, fmt.Errorf("%w: mixer element %q on %q", ErrDeviceNotFound, element, card)
	}

	c := &MixerControl{mixer: mixer, elem: elem}
	if code := alsa.selemGetVolumeRange(elem, &c.min, &c.max); code < 0 {
		return fail("snd_mixer_selem_get_playback_volume_range", code)
	}
	return c, nil
}

// SetVolume maps percent (0-100) onto the element's range.
func (c *MixerControl) SetVolume(percent int) error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.mixer == 0 {
		return errors.New("audio: mixer control is closed")
	}
	value := c.min + (c.max-c.min)*percent/100
	if code := alsa.selemSetVolumeAll(c.elem, value); code < 0 {
		return &alsaError{op: "snd_mixer_selem_set_playback_volume_all", code: code}
	}
	return nil
}

func (c *MixerControl) Close() error {
	c.m.Lock()
	defer c.m.Unlock()
	if c.mixer == 0 {
		return nil
	}
	code := alsa.mixerClose(c.mixer)
	c.mixer = 0
	if code < 0 {
		return &alsaError{op: "snd_mixer_close", code: code}
	}
	return nil
}
