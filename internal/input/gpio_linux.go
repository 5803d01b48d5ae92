//go:build linux

package input

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Watch polls sysfs GPIO value files and calls fn with the index of a line
// and its new level whenever it changes. Each line's edge attribute must be
// set to "both". fn runs on the calling goroutine. Watch returns nil when
// ctx is done.
func Watch(ctx context.Context, paths []string, fn func(index int, high bool)) error {
	fds := make([]unix.PollFd, len(paths))
	levels := make([]bool, len(paths))
	defer func() {
		for _, p := range fds {
			if p.Fd > 0 {
				unix.Close(int(p.Fd))
			}
		}
	}()

	for i, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			return fmt.Errorf("input: open %s: %w", path, err)
		}
		fds[i] = unix.PollFd{Fd: int32(fd), Events: unix.POLLPRI | unix.POLLERR}
		// Reading once clears the pending edge and gives the start level.
		if levels[i], err = readLevel(fd); err != nil {
			return fmt.Errorf("input: read %s: %w", path, err)
		}
	}

	timeout := int(pollTimeout.Milliseconds())
	for ctx.Err() == nil {
		n, err := unix.Poll(fds, timeout)
		if errors.Is(err, unix.EINTR) || n == 0 {
			continue
		}
		if err != nil {
			return fmt.Errorf("input: poll: %w", err)
		}
		for i := range fds {
			if fds[i].Revents&(unix.POLLPRI|unix.POLLERR) == 0 {
				continue
			}
			high, err := readLevel(int(fds[i].Fd))
			if err != nil {
				return fmt.Errorf("input: read %s: %w", paths[i], err)
			}
			if high != levels[i] {
				levels[i] = high
				fn(i, high)
			}
		}
	}
	return nil
}

func readLevel(fd int) (bool, error) {
	if _, err := unix.Seek(fd, 0, io.SeekStart); err != nil {
		return false, err
	}
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return false, err
	}
	return parseLevel(buf[:n])
}
