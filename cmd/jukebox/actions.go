package main

import (
	"log/slog"

	"github.com/rayhong24/MP3-Embedded-System/internal/config"
	"github.com/rayhong24/MP3-Embedded-System/playback"
	"github.com/rayhong24/MP3-Embedded-System/sfx"
)

// effectPlayer plays UI feedback sounds. *sfx.Bank implements it.
type effectPlayer interface {
	Play(id sfx.Id) bool
}

type noEffects struct{}

func (noEffects) Play(sfx.Id) bool { return false }

// actions binds every input action to the facade. Each action clicks.
func actions(p *playback.Facade, fx effectPlayer, logger *slog.Logger) map[config.Action]func() {
	volume := func(step func() (int, error)) func() {
		return func() {
			v, err := step()
			if err != nil {
				logger.Warn("volume change failed", "err", err)
				return
			}
			logger.Debug("volume", "percent", v)
		}
	}
	clicked := func(f func()) func() {
		return func() {
			fx.Play(sfx.Click)
			f()
		}
	}
	return map[config.Action]func(){
		config.ActionToggle: clicked(func() {
			logger.Info("playback", "state", p.TogglePlayback())
		}),
		config.ActionNext: clicked(func() {
			if !p.Skip() {
				logger.Info("no next track")
			}
		}),
		config.ActionPrevious: clicked(func() {
			if !p.Previous() {
				logger.Info("no previous track")
			}
		}),
		config.ActionRestart:    clicked(p.Restart),
		config.ActionVolumeUp:   volume(p.VolumeUp),
		config.ActionVolumeDown: volume(p.VolumeDown),
	}
}
