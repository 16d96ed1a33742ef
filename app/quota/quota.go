// Package quota reports how much disk the content store occupies.
package quota

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Usage describes the database footprint relative to the capacity of
// the filesystem it lives on.
type Usage struct {
	UsedBytes  int64   `json:"used_bytes"`
	TotalBytes int64   `json:"total_bytes"`
	Percentage float64 `json:"percentage"`
}

type Probe struct {
	dbPath string
}

func NewProbe(dbPath string) *Probe {
	return &Probe{dbPath: dbPath}
}

// Run measures the database files on disk. The WAL and shared-memory
// sidecar files count toward usage when present.
func (p *Probe) Run() (Usage, error) {
	var used int64
	for _, path := range []string{p.dbPath, p.dbPath + "-wal", p.dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Usage{}, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		used += info.Size()
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(filepath.Dir(p.dbPath), &fs); err != nil {
		return Usage{}, fmt.Errorf("failed to query filesystem capacity: %w", err)
	}
	total := int64(fs.Blocks) * int64(fs.Bsize)

	usage := Usage{UsedBytes: used, TotalBytes: total}
	if total > 0 {
		usage.Percentage = float64(used) / float64(total) * 100
	}

	return usage, nil
}
