//go:build linux

package visualizer

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// OpenMemStrip maps length bytes of device at base. Mapping /dev/mem
// needs root.
func OpenMemStrip(device string, base int64, length int) (*MemStrip, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("visualizer: open %s: %w", device, err)
	}
	defer unix.Close(fd)

	mem, err := unix.Mmap(fd, base, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("visualizer: mmap %s at %#x: %w", device, base, err)
	}
	strip, err := newMemStrip(mem, unix.Munmap)
	if err != nil {
		_ = unix.Munmap(mem)
		return nil, err
	}
	return strip, nil
}
