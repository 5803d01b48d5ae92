// Package pcm converts between beep streams and interleaved stereo int16
// sample slices.
package pcm

import (
	"errors"
	"math"

	"github.com/gopxl/beep/v2"
)

// resampleQuality is passed to beep.Resample. 4 is beep's usual choice for
// offline conversion.
const resampleQuality = 4

const chunkFrames = 4096

// ReadAll drains s into interleaved stereo int16 samples at rate to. The
// stream is resampled when from differs from to.
func ReadAll(s beep.Streamer, from beep.SampleRate, to int) ([]int16, error) {
	if to <= 0 {
		return nil, errors.New("pcm: target sample rate must be positive")
	}
	if int(from) != to {
		s = beep.Resample(resampleQuality, from, beep.SampleRate(to), s)
	}

	var out []int16
	buf := make([][2]float64, chunkFrames)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			out = append(out, ToInt16(f[0]), ToInt16(f[1]))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ToInt16 scales a [-1, 1] sample to int16, clamping out of range input.
func ToInt16(v float64) int16 {
	v = math.Round(v * math.MaxInt16)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// ToFloat is the inverse of ToInt16.
func ToFloat(v int16) float64 {
	return float64(v) / math.MaxInt16
}
