//go:build !linux && !darwin && !windows

package handler

import "errors"

func diskStats(path string) (total, free uint64, err error) {
	return 0, 0, errors.New("disk stats not supported on this platform")
}
