//go:build !linux

package visualizer

import "errors"

func OpenMemStrip(device string, base int64, length int) (*MemStrip, error) {
	return nil, errors.ErrUnsupported
}
