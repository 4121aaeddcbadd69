package domain

import (
	"context"
	"fmt"
	"time"
)

// LocationInfo is the caller's IP geolocation
type LocationInfo struct {
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
	IP          string `json:"ip"`
}

// Locator looks up the geolocation of the host's public IP
type Locator interface {
	Locate(ctx context.Context) (*LocationInfo, error)
}

// MemoryStats is a point-in-time view of host memory, in bytes
type MemoryStats struct {
	Total uint64
	Free  uint64
}

// Used returns total minus free
func (m MemoryStats) Used() uint64 {
	if m.Free > m.Total {
		return 0
	}
	return m.Total - m.Free
}

// HostMetrics reads process and host metrics
type HostMetrics interface {
	Uptime() time.Duration
	Memory() (MemoryStats, error)
}

// FallbackZone is the fixed timezone used when no location is known
type FallbackZone struct {
	Label       string `mapstructure:"label" json:"label"`
	Region      string `mapstructure:"region" json:"region"`
	OffsetHours int    `mapstructure:"offset_hours" json:"offset_hours" validate:"gte=-12,lte=14"`
}

// DefaultFallbackZone returns East Africa Time
func DefaultFallbackZone() FallbackZone {
	return FallbackZone{
		Label:       "EAT (UTC+3)",
		Region:      "Nairobi, Kenya",
		OffsetHours: 3,
	}
}

// Location returns the zone as a fixed-offset time.Location
func (z FallbackZone) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", z.OffsetHours), z.OffsetHours*3600)
}

// StatusSnapshot is computed fresh for every status request
type StatusSnapshot struct {
	PingMs        int64         `json:"ping_ms"`
	PingKnown     bool          `json:"ping_known"`
	Uptime        time.Duration `json:"uptime"`
	UsedMemBytes  uint64        `json:"used_mem_bytes"`
	FreeMemBytes  uint64        `json:"free_mem_bytes"`
	TotalMemBytes uint64        `json:"total_mem_bytes"`
	MemoryKnown   bool          `json:"memory_known"`
	Version       string        `json:"version"`
	Location      *LocationInfo `json:"location,omitempty"`
	LocalTime     string        `json:"local_time"`
}
