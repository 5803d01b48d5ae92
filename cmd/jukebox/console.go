package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rayhong24/MP3-Embedded-System/audio"
	"github.com/rayhong24/MP3-Embedded-System/internal/config"
	"github.com/rayhong24/MP3-Embedded-System/playback"
	"github.com/rayhong24/MP3-Embedded-System/playlist"
	"github.com/rayhong24/MP3-Embedded-System/sfx"
)

// errQuit is returned by the console when the user asks to exit.
var errQuit = errors.New("quit requested")

const queuePageSize = 10

const consoleHelp = `commands:
  play | pause | toggle     control playback
  next | prev | restart     move in the queue
  vol [N] | vol+ | vol-     show or change the volume
  list                      list loaded tracks
  queue I                   enqueue track I from list
  playlist ID               enqueue a whole playlist
  view                      show the queue page
  fx ID                     play a sound effect
  status                    show the current track
  quit                      exit
`

// console runs text commands against the player.
type console struct {
	player  *playback.Facade
	library *playlist.Library
	fx      effectPlayer
	actions map[config.Action]func()
	out     io.Writer
}

// run executes commands read from in until ctx is done, in is exhausted,
// or the quit command is given.
func (c *console) run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprint(c.out, "type 'help' for commands\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := c.exec(line); err != nil {
				if errors.Is(err, errQuit) {
					return err
				}
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

func (c *console) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	if f, ok := c.actions[config.Action(cmd)]; ok && len(args) == 0 {
		f()
		if cmd == string(config.ActionVolumeUp) || cmd == string(config.ActionVolumeDown) {
			fmt.Fprintf(c.out, "volume %d\n", c.player.Volume())
		}
		return nil
	}

	switch cmd {
	case "help":
		fmt.Fprint(c.out, consoleHelp)
	case "quit", "exit":
		return errQuit
	case "play":
		c.player.Play()
	case "pause":
		c.player.Pause()
	case "status":
		c.printStatus()
	case "vol":
		if len(args) == 0 {
			fmt.Fprintf(c.out, "volume %d\n", c.player.Volume())
			return nil
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("vol: %w", err)
		}
		return c.player.SetVolume(v)
	case "list":
		for i, t := range c.tracks() {
			m := t.Metadata()
			fmt.Fprintf(c.out, "%3d  %s - %s (%s)\n", i, m.Artist, m.Title, m.Album)
		}
	case "queue":
		if len(args) != 1 {
			return errors.New("usage: queue I")
		}
		tracks := c.tracks()
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 0 || i >= len(tracks) {
			return fmt.Errorf("queue: no track %q", args[0])
		}
		if !c.player.Enqueue(tracks[i]) {
			return errors.New("queue is full")
		}
		c.fx.Play(sfx.Queue)
	case "playlist":
		if len(args) != 1 || c.library == nil {
			return errors.New("usage: playlist ID")
		}
		pl, ok := c.library.Playlist(playlist.Id(args[0]))
		if !ok {
			return fmt.Errorf("playlist: no playlist %q", args[0])
		}
		n := pl.Enqueue(c.player)
		fmt.Fprintf(c.out, "queued %d of %d tracks\n", n, len(pl.Tracks))
		if n > 0 {
			c.fx.Play(sfx.Queue)
		}
	case "view":
		entries, selected := c.player.QueueView(queuePageSize)
		for i, m := range entries {
			marker := " "
			if i == selected {
				marker = ">"
			}
			fmt.Fprintf(c.out, "%s %s - %s\n", marker, m.Artist, m.Title)
		}
	case "fx":
		if len(args) != 1 {
			return errors.New("usage: fx ID")
		}
		if !c.fx.Play(sfx.Id(args[0])) {
			return fmt.Errorf("fx: %q not played", args[0])
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func (c *console) tracks() []*audio.MusicTrack {
	if c.library == nil {
		return nil
	}
	return c.library.Tracks()
}

func (c *console) printStatus() {
	s := c.player.Status()
	if !s.HasTrack {
		fmt.Fprintf(c.out, "[%s] nothing queued, volume %d\n", s.State, s.Volume)
		return
	}
	fmt.Fprintf(c.out, "[%s] %s - %s (%s) %s/%s, volume %d\n",
		s.State, s.Track.Artist, s.Track.Title, s.Track.Album,
		formatSeconds(s.Elapsed), formatSeconds(s.Track.Duration.Seconds()), s.Volume)
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
