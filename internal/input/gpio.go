package input

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rayhong24/MP3-Embedded-System/internal/config"
)

// pollTimeout bounds how long Watch waits before rechecking ctx.
const pollTimeout = 250 * time.Millisecond

// parseLevel reads a sysfs GPIO value file body.
func parseLevel(b []byte) (bool, error) {
	switch string(bytes.TrimSpace(b)) {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("input: unexpected gpio value %q", b)
}

// RunButtons watches every configured button and calls the handler bound
// to its action when the button is released. It blocks until ctx is done.
func RunButtons(ctx context.Context, buttons []config.ButtonConfig, handlers map[config.Action]func()) error {
	if len(buttons) == 0 {
		return nil
	}
	paths := make([]string, len(buttons))
	machines := make([]*Button, len(buttons))
	for i, b := range buttons {
		paths[i] = b.Path
		machines[i] = NewButton(handlers[b.Action])
	}
	return Watch(ctx, paths, func(i int, high bool) {
		if buttons[i].ActiveHigh {
			high = !high
		}
		machines[i].Feed(EdgeOf(high))
	})
}

// RunRotary watches a quadrature encoder. It blocks until ctx is done.
func RunRotary(ctx context.Context, rc config.RotaryConfig, onCW, onCCW func()) error {
	r := NewRotary(onCW, onCCW)
	return Watch(ctx, []string{rc.APath, rc.BPath}, func(i int, high bool) {
		r.Feed(Line(i), EdgeOf(high))
	})
}
