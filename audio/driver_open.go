package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// SinkOptions selects and configures the output device.
type SinkOptions struct {
	// Device is the ALSA PCM name, e.g. "default" or "hw:0,0".
	Device string

	SampleRate int

	// Latency is the requested device buffer length. The period used for
	// mixing is negotiated from it.
	Latency time.Duration

	// Null forces the pacing null sink.
	Null bool
}

// OpenSink opens the hardware device. When no device is present it logs a
// warning and falls back to a null sink that keeps real-time pacing.
func OpenSink(options SinkOptions, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if options.SampleRate == 0 {
		options.SampleRate = DefaultSampleRate
	}
	if options.Null {
		return NewNullSink(options.SampleRate, DefaultPeriodFrames), nil
	}

	sink, err := openALSA(options)
	if err == nil {
		logger.Info("audio: device opened",
			"device", options.Device,
			"rate", options.SampleRate,
			"period_frames", sink.PeriodFrames())
		return sink, nil
	}
	if errors.Is(err, ErrDeviceNotFound) {
		logger.Warn("audio: no output device, using null sink", "device", options.Device, "err", err)
		return NewNullSink(options.SampleRate, DefaultPeriodFrames), nil
	}
	return nil, fmt.Errorf("audio: open %q: %w", options.Device, err)
}
