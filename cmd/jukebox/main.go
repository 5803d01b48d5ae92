// Command jukebox plays MP3 playlists and sound effects through ALSA and
// drives the LED level meter and GPIO controls of the board.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/internal/config"
	"github.com/rayhong24/MP3-Embedded-System/internal/input"
	"github.com/rayhong24/MP3-Embedded-System/internal/observe"
	"github.com/rayhong24/MP3-Embedded-System/playback"
	"github.com/rayhong24/MP3-Embedded-System/playlist"
	"github.com/rayhong24/MP3-Embedded-System/sfx"
	"github.com/rayhong24/MP3-Embedded-System/visualizer"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file; built-in defaults when empty")
	null := flag.Bool("null", false, "discard audio instead of opening a device")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "jukebox: %v\n", err)
			return 1
		}
	}
	if *null {
		cfg.Audio.NullSink = true
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	slog.Info("jukebox starting", "config", *configPath, "log_level", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx)
	if err != nil {
		slog.Error("failed to initialise metrics", "err", err)
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(sctx); err != nil {
			slog.Warn("metrics shutdown", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	sink, err := audio.OpenSink(audio.SinkOptions{
		Device:     cfg.Audio.Device,
		SampleRate: cfg.Audio.SampleRate,
		Latency:    cfg.Audio.Latency,
		Null:       cfg.Audio.NullSink,
	}, logger)
	if err != nil {
		slog.Error("failed to open audio output", "err", err)
		return 1
	}
	defer func() {
		if err := sink.Close(); err != nil {
			slog.Warn("audio close", "err", err)
		}
	}()

	var vis *visualizer.Visualizer
	var levels audio.LevelSink
	if cfg.Visualizer.Enabled {
		vis = visualizer.New(openStrip(cfg.Visualizer), visualizer.Options{
			Refresh:     cfg.Visualizer.Refresh,
			ColorPeriod: cfg.Visualizer.ColorPeriod,
			Logger:      logger,
		})
		levels = vis
		defer func() {
			if err := vis.Close(); err != nil {
				slog.Warn("LED strip close", "err", err)
			}
		}()
	}

	engine, err := audio.NewEngine(audio.EngineOptions{
		SampleRate:    cfg.Audio.SampleRate,
		PeriodFrames:  sink.PeriodFrames(),
		EffectSlots:   cfg.Audio.EffectSlots,
		QueueCapacity: cfg.Audio.QueueCapacity,
		Levels:        levels,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		slog.Error("failed to create mixing engine", "err", err)
		return 1
	}

	var volume playback.VolumeControl
	if mc, err := audio.OpenMixerControl(cfg.Audio.MixerCard, cfg.Audio.MixerElement); err != nil {
		slog.Warn("no hardware volume control", "card", cfg.Audio.MixerCard, "element", cfg.Audio.MixerElement, "err", err)
	} else {
		volume = mc
		defer mc.Close()
	}
	player := playback.New(engine, playback.Options{
		Volume:        volume,
		InitialVolume: cfg.Audio.DefaultVolume,
		VolumeStep:    cfg.Audio.VolumeStep,
		Logger:        logger,
	})

	var fx effectPlayer = noEffects{}
	if cfg.Library.SfxDir != "" {
		bank, err := sfx.LoadFolder(cfg.Library.SfxDir, engine, cfg.Audio.SampleRate)
		if err != nil {
			slog.Warn("sound effects unavailable", "dir", cfg.Library.SfxDir, "err", err)
		} else {
			fx = bank
		}
	}

	var library *playlist.Library
	if cfg.Library.MusicDir != "" {
		library, err = playlist.LoadFolder(cfg.Library.MusicDir, cfg.Audio.SampleRate)
		if err != nil {
			slog.Warn("music library unavailable", "dir", cfg.Library.MusicDir, "err", err)
		}
	}
	if library != nil && cfg.Library.Autoplay != "" {
		if pl, ok := library.Playlist(playlist.Id(cfg.Library.Autoplay)); ok {
			slog.Info("autoplay", "playlist", pl.Id, "queued", pl.Enqueue(player))
		} else {
			slog.Warn("autoplay playlist not found", "playlist", cfg.Library.Autoplay)
		}
	}

	out := audio.NewOutput(sink, logger, metrics)
	mixer := audio.NewPlayer(engine, out, audio.PlayerOptions{
		Nice:    cfg.Audio.Nice,
		Logger:  logger,
		Metrics: metrics,
	})
	acts := actions(player, fx, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mixer.Run(gctx) })
	if cfg.Metrics.ListenAddr != "" {
		g.Go(func() error { return observe.Serve(gctx, cfg.Metrics.ListenAddr) })
	}
	if vis != nil {
		g.Go(func() error { return vis.Run(gctx) })
	}
	if len(cfg.Input.Buttons) > 0 {
		g.Go(func() error {
			optionalInput("buttons", input.RunButtons(gctx, cfg.Input.Buttons, acts))
			return nil
		})
	}
	if rc := cfg.Input.Rotary; rc != nil {
		g.Go(func() error {
			optionalInput("rotary", input.RunRotary(gctx, *rc,
				acts[config.ActionVolumeUp], acts[config.ActionVolumeDown]))
			return nil
		})
	}
	if cfg.Input.Console {
		c := &console{player: player, library: library, fx: fx, actions: acts, out: os.Stdout}
		g.Go(func() error { return c.run(gctx, os.Stdin) })
	}

	slog.Info("jukebox ready", "rate", engine.SampleRate(), "period_frames", engine.PeriodFrames())
	err = g.Wait()

	slog.Info("shutting down")
	engine.ClearQueue()
	engine.ClearEffects()
	if library != nil {
		library.Release()
	}
	if err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		slog.Error("jukebox stopped", "err", err)
		return 1
	}
	return 0
}

// openStrip maps the LED controller, falling back to a strip that draws
// nothing when the mapping is not possible.
func openStrip(cfg config.VisualizerConfig) visualizer.Strip {
	strip, err := visualizer.OpenMemStrip(cfg.MemDevice, cfg.BaseAddress, visualizer.MemLength)
	if err != nil {
		slog.Warn("LED strip unavailable", "device", cfg.MemDevice, "err", err)
		return visualizer.NopStrip{}
	}
	return strip
}

// optionalInput logs why an input source stopped. Playback continues
// without it.
func optionalInput(name string, err error) {
	if err != nil {
		slog.Warn("input disabled", "input", name, "err", err)
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
