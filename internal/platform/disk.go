// SPDX-License-Identifier: MPL-2.0

package platform

import "fmt"

// LowDiskThreshold is the free-space floor below which the installer and
// doctor warn. Model files plus a vector store need roughly this much.
const LowDiskThreshold uint64 = 10 << 30 // 10 GiB

// DiskSpace reports free and total bytes for the filesystem holding path.
type DiskSpace struct {
	FreeBytes  uint64
	TotalBytes uint64
}

// Low reports whether free space is below LowDiskThreshold.
func (d DiskSpace) Low() bool {
	return d.FreeBytes < LowDiskThreshold
}

// FormatBytes renders a byte count in human units, matching the workspace
// directory reports (B, KB, MB, GB with one decimal).
func FormatBytes(n uint64) string {
	switch {
	case n < 1<<10:
		return fmt.Sprintf("%d B", n)
	case n < 1<<20:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	case n < 1<<30:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	}
}
