// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package platform

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeDiskSpace queries the filesystem holding path via statfs.
func FreeDiskSpace(path string) (DiskSpace, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return DiskSpace{}, fmt.Errorf("failed to stat filesystem at %s: %w", path, err)
	}

	bsize := uint64(st.Bsize)
	return DiskSpace{
		FreeBytes:  st.Bavail * bsize,
		TotalBytes: st.Blocks * bsize,
	}, nil
}
