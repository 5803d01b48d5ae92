// Package config provides the configuration schema and loader for the
// jukebox.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Action names a playback command bound to an input.
type Action string

const (
	ActionToggle     Action = "toggle"
	ActionNext       Action = "next"
	ActionPrevious   Action = "prev"
	ActionRestart    Action = "restart"
	ActionVolumeUp   Action = "vol+"
	ActionVolumeDown Action = "vol-"
)

// IsValid reports whether a is a recognised action.
func (a Action) IsValid() bool {
	switch a {
	case ActionToggle, ActionNext, ActionPrevious, ActionRestart, ActionVolumeUp, ActionVolumeDown:
		return true
	}
	return false
}

// Config is the root configuration structure.
type Config struct {
	LogLevel   LogLevel         `yaml:"log_level"`
	Audio      AudioConfig      `yaml:"audio"`
	Library    LibraryConfig    `yaml:"library"`
	Visualizer VisualizerConfig `yaml:"visualizer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Input      InputConfig      `yaml:"input"`
}

// AudioConfig configures the output device and the mixing engine.
type AudioConfig struct {
	// Device is the ALSA PCM name.
	Device string `yaml:"device"`

	// NullSink discards audio instead of opening a device.
	NullSink bool `yaml:"null_sink"`

	// MixerCard and MixerElement select the hardware volume control.
	MixerCard    string `yaml:"mixer_card"`
	MixerElement string `yaml:"mixer_element"`

	SampleRate int `yaml:"sample_rate"`

	// Latency is the requested device buffer length.
	Latency time.Duration `yaml:"latency"`

	EffectSlots   int `yaml:"effect_slots"`
	QueueCapacity int `yaml:"queue_capacity"`

	DefaultVolume int `yaml:"default_volume"`
	VolumeStep    int `yaml:"volume_step"`

	// Nice is applied to the playback thread. 0 leaves it unchanged.
	Nice int `yaml:"nice"`
}

// LibraryConfig points at the asset folders. Each folder carries its own
// JSON manifest.
type LibraryConfig struct {
	MusicDir string `yaml:"music_dir"`
	SfxDir   string `yaml:"sfx_dir"`

	// Autoplay is a playlist id queued at startup.
	Autoplay string `yaml:"autoplay"`
}

// VisualizerConfig configures the LED level meter.
type VisualizerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MemDevice   string        `yaml:"mem_device"`
	BaseAddress int64         `yaml:"base_address"`
	Refresh     time.Duration `yaml:"refresh"`
	ColorPeriod time.Duration `yaml:"color_period"`
}

// MetricsConfig configures the Prometheus endpoint. An empty ListenAddr
// disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// InputConfig binds hardware and console inputs to actions.
type InputConfig struct {
	// Console reads commands from stdin.
	Console bool `yaml:"console"`

	Buttons []ButtonConfig `yaml:"buttons"`
	Rotary  *RotaryConfig  `yaml:"rotary"`
}

// ButtonConfig binds a sysfs GPIO value file to an action fired on
// release.
type ButtonConfig struct {
	Name   string `yaml:"name"`
	Path   string `yaml:"path"`
	Action Action `yaml:"action"`

	// ActiveHigh inverts the default where a pressed button reads 0.
	ActiveHigh bool `yaml:"active_high"`
}

// RotaryConfig names the sysfs GPIO value files of a quadrature encoder.
// Clockwise turns raise the volume.
type RotaryConfig struct {
	APath string `yaml:"a_path"`
	BPath string `yaml:"b_path"`
}
