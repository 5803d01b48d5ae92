package visualizer

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Shared memory layout of the R5 LED firmware: one 32-bit colour word per
// LED, 32 bytes apart, LED 7 first.
const (
	DefaultMemDevice   = "/dev/mem"
	DefaultBaseAddress = 0x79020000 + 0x6000
	MemLength          = 0x8000

	ledStride = 32
)

// MemStrip writes frames into memory shared with the LED firmware.
type MemStrip struct {
	mem   []byte
	unmap func([]byte) error
}

func newMemStrip(mem []byte, unmap func([]byte) error) (*MemStrip, error) {
	if len(mem) < NumLEDs*ledStride {
		return nil, fmt.Errorf("visualizer: shared memory too small: %d bytes", len(mem))
	}
	return &MemStrip{mem: mem, unmap: unmap}, nil
}

func (s *MemStrip) Set(leds [NumLEDs]uint32) error {
	if s.mem == nil {
		return fmt.Errorf("visualizer: strip is closed")
	}
	for i := 0; i < NumLEDs; i++ {
		word := (*uint32)(unsafe.Pointer(&s.mem[i*ledStride]))
		atomic.StoreUint32(word, leds[NumLEDs-1-i])
	}
	return nil
}

func (s *MemStrip) Close() error {
	if s.mem == nil {
		return nil
	}
	err := s.Set([NumLEDs]uint32{})
	mem := s.mem
	s.mem = nil
	if s.unmap != nil {
		if uerr := s.unmap(mem); uerr != nil {
			return uerr
		}
	}
	return err
}
