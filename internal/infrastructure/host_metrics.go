package infrastructure

import (
	"fmt"
	"time"

	"github.com/prometheus/procfs"

	"github.com/yourusername/xmd-bot/internal/domain"
)

var processStart = time.Now()

// ProcHostMetrics reads memory from /proc/meminfo and uptime from process start
type ProcHostMetrics struct {
	mountPoint string
	start      time.Time
	now        func() time.Time
}

// NewProcHostMetrics creates host metrics backed by procfs.DefaultMountPoint
func NewProcHostMetrics() *ProcHostMetrics {
	return &ProcHostMetrics{
		mountPoint: procfs.DefaultMountPoint,
		start:      processStart,
		now:        time.Now,
	}
}

// Uptime returns the time elapsed since the process started
func (h *ProcHostMetrics) Uptime() time.Duration {
	return h.now().Sub(h.start)
}

// Memory returns total and free host memory in bytes
func (h *ProcHostMetrics) Memory() (domain.MemoryStats, error) {
	fs, err := procfs.NewFS(h.mountPoint)
	if err != nil {
		return domain.MemoryStats{}, fmt.Errorf("failed to open procfs: %w", err)
	}
	info, err := fs.Meminfo()
	if err != nil {
		return domain.MemoryStats{}, fmt.Errorf("failed to read meminfo: %w", err)
	}
	if info.MemTotal == nil || info.MemFree == nil {
		return domain.MemoryStats{}, fmt.Errorf("meminfo is missing MemTotal or MemFree")
	}
	// meminfo values are in kB
	return domain.MemoryStats{
		Total: *info.MemTotal * 1024,
		Free:  *info.MemFree * 1024,
	}, nil
}
