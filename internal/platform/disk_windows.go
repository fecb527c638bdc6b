// SPDX-License-Identifier: MPL-2.0

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// FreeDiskSpace queries the volume holding path via GetDiskFreeSpaceEx.
func FreeDiskSpace(path string) (DiskSpace, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return DiskSpace{}, fmt.Errorf("invalid path %q: %w", path, err)
	}

	var freeAvail, total, totalFree uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeAvail, &total, &totalFree); err != nil {
		return DiskSpace{}, fmt.Errorf("failed to query disk space for %s: %w", path, err)
	}

	return DiskSpace{
		FreeBytes:  freeAvail,
		TotalBytes: total,
	}, nil
}
