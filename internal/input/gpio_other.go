//go:build !linux

package input

import (
	"context"
	"errors"
)

// Watch needs sysfs GPIO and is only available on Linux.
func Watch(ctx context.Context, paths []string, fn func(index int, high bool)) error {
	return errors.ErrUnsupported
}
