package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults used by [ApplyDefaults].
const (
	DefaultDevice        = "default"
	DefaultMixerCard     = "default"
	DefaultMixerElement  = "PCM"
	DefaultSampleRate    = 44100
	DefaultLatency       = 50 * time.Millisecond
	DefaultEffectSlots   = 30
	DefaultQueueCapacity = 30
	DefaultVolume        = 80
	DefaultVolumeStep    = 5
	DefaultMemDevice     = "/dev/mem"
	DefaultBaseAddress   = 0x79026000
	DefaultRefresh       = 30 * time.Millisecond
	DefaultColorPeriod   = 3 * time.Second
)

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, fills in defaults and
// validates the result. An empty document yields the default config.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	ApplyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}

	a := &cfg.Audio
	if a.Device == "" {
		a.Device = DefaultDevice
	}
	if a.MixerCard == "" {
		a.MixerCard = DefaultMixerCard
	}
	if a.MixerElement == "" {
		a.MixerElement = DefaultMixerElement
	}
	if a.SampleRate == 0 {
		a.SampleRate = DefaultSampleRate
	}
	if a.Latency == 0 {
		a.Latency = DefaultLatency
	}
	if a.EffectSlots == 0 {
		a.EffectSlots = DefaultEffectSlots
	}
	if a.QueueCapacity == 0 {
		a.QueueCapacity = DefaultQueueCapacity
	}
	if a.DefaultVolume == 0 {
		a.DefaultVolume = DefaultVolume
	}
	if a.VolumeStep == 0 {
		a.VolumeStep = DefaultVolumeStep
	}

	v := &cfg.Visualizer
	if v.MemDevice == "" {
		v.MemDevice = DefaultMemDevice
	}
	if v.BaseAddress == 0 {
		v.BaseAddress = DefaultBaseAddress
	}
	if v.Refresh == 0 {
		v.Refresh = DefaultRefresh
	}
	if v.ColorPeriod == 0 {
		v.ColorPeriod = DefaultColorPeriod
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	a := cfg.Audio
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d is outside 8000-192000", a.SampleRate))
	}
	if a.Latency < 0 {
		errs = append(errs, fmt.Errorf("audio.latency %s must not be negative", a.Latency))
	}
	if a.EffectSlots < 1 {
		errs = append(errs, fmt.Errorf("audio.effect_slots must be at least 1, got %d", a.EffectSlots))
	}
	if a.QueueCapacity < 2 {
		errs = append(errs, fmt.Errorf("audio.queue_capacity must be at least 2, got %d", a.QueueCapacity))
	}
	if a.DefaultVolume < 0 || a.DefaultVolume > 100 {
		errs = append(errs, fmt.Errorf("audio.default_volume %d is outside 0-100", a.DefaultVolume))
	}
	if a.VolumeStep < 1 || a.VolumeStep > 100 {
		errs = append(errs, fmt.Errorf("audio.volume_step %d is outside 1-100", a.VolumeStep))
	}
	if a.Nice < -20 || a.Nice > 19 {
		errs = append(errs, fmt.Errorf("audio.nice %d is outside -20-19", a.Nice))
	}

	v := cfg.Visualizer
	if v.Enabled {
		if v.BaseAddress < 0 || v.BaseAddress%4096 != 0 {
			errs = append(errs, fmt.Errorf("visualizer.base_address %#x must be a page aligned address", v.BaseAddress))
		}
		if v.Refresh <= 0 {
			errs = append(errs, fmt.Errorf("visualizer.refresh must be positive"))
		}
		if v.ColorPeriod <= 0 {
			errs = append(errs, fmt.Errorf("visualizer.color_period must be positive"))
		}
	}

	for i, b := range cfg.Input.Buttons {
		if b.Path == "" {
			errs = append(errs, fmt.Errorf("input.buttons[%d].path is required", i))
		}
		if !b.Action.IsValid() {
			errs = append(errs, fmt.Errorf("input.buttons[%d].action %q is invalid", i, b.Action))
		}
	}
	if r := cfg.Input.Rotary; r != nil && (r.APath == "" || r.BPath == "") {
		errs = append(errs, fmt.Errorf("input.rotary needs both a_path and b_path"))
	}

	return errors.Join(errs...)
}
