//go:build linux

package audio

import "golang.org/x/sys/unix"

// setThreadNice sets the nice value of the calling OS thread. The caller
// must have locked the goroutine to its thread.
func setThreadNice(nice int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), nice)
}
