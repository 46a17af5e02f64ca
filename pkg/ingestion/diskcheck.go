package ingestion

import (
	"fmt"
	"syscall"
)

// checkFreeDisk aborts a download before it starts if doing so would push
// free space on the storage root below minFreeBytes (§4.3 step 3).
func checkFreeDisk(path string, minFreeBytes uint64) error {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return fmt.Errorf("statfs %s: %w", path, err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return fmt.Errorf("free disk %d bytes below threshold %d at %s", free, minFreeBytes, path)
	}
	return nil
}
