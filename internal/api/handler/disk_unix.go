//go:build linux || darwin

package handler

import "golang.org/x/sys/unix"

// diskStats returns total and available bytes of the filesystem holding path.
func diskStats(path string) (total, free uint64, err error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	bsize := uint64(st.Bsize)
	return uint64(st.Blocks) * bsize, uint64(st.Bavail) * bsize, nil
}
