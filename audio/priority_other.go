//go:build !linux

package audio

import "errors"

func setThreadNice(int) error { return errors.ErrUnsupported }
