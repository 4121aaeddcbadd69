package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"go.uber.org/zap"
)

const (
	locationTimeLayout = "03:04:05 PM"
	fallbackTimeLayout = "3:04:05 PM"
	bytesPerGB         = 1 << 30
)

// RoundTrip performs the exchange whose duration is reported as ping
type RoundTrip func(ctx context.Context) error

// StatusReporter builds status snapshots from host metrics and an optional
// geolocation lookup
type StatusReporter struct {
	host    domain.HostMetrics
	locator domain.Locator
	zone    domain.FallbackZone
	version string
	metrics *infrastructure.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatusReporter creates a reporter. A nil locator disables geolocation.
func NewStatusReporter(
	host domain.HostMetrics,
	locator domain.Locator,
	zone domain.FallbackZone,
	version string,
	metrics *infrastructure.Metrics,
	logger *zap.Logger,
) *StatusReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusReporter{
		host:    host,
		locator: locator,
		zone:    zone,
		version: version,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

type locateResult struct {
	location *domain.LocationInfo
	err      error
}

// Snapshot measures roundTrip while the location lookup runs concurrently.
// A nil roundTrip leaves the ping unknown. When roundTrip fails, the
// snapshot is returned without location together with the error.
func (s *StatusReporter) Snapshot(ctx context.Context, roundTrip RoundTrip) (*domain.StatusSnapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := s.now()

	var located chan locateResult
	if s.locator != nil {
		located = make(chan locateResult, 1)
		go func() {
			location, err := s.locator.Locate(ctx)
			located <- locateResult{location: location, err: err}
		}()
	}

	snapshot := &domain.StatusSnapshot{Version: s.version}

	if roundTrip != nil {
		err := roundTrip(ctx)
		snapshot.PingMs = s.now().Sub(start).Milliseconds()
		snapshot.PingKnown = true
		s.metrics.ObservePing(snapshot.PingMs)
		if err != nil {
			s.fillHost(snapshot)
			return snapshot, err
		}
	}

	s.fillHost(snapshot)

	if located != nil {
		select {
		case res := <-located:
			if res.err != nil {
				s.logger.Debug("Location unavailable", zap.Error(res.err))
			} else {
				snapshot.Location = res.location
			}
		case <-ctx.Done():
		}
	}

	snapshot.LocalTime = s.localTime(snapshot.Location)
	return snapshot, nil
}

func (s *StatusReporter) fillHost(snapshot *domain.StatusSnapshot) {
	snapshot.Uptime = s.host.Uptime()

	mem, err := s.host.Memory()
	if err != nil {
		s.logger.Warn("Failed to read memory", zap.Error(err))
		return
	}
	snapshot.TotalMemBytes = mem.Total
	snapshot.FreeMemBytes = mem.Total - mem.Used()
	snapshot.UsedMemBytes = mem.Used()
	snapshot.MemoryKnown = true
}

// localTime formats the current time in the location's zone, or in the
// fallback zone when the location or its zone is unknown
func (s *StatusReporter) localTime(location *domain.LocationInfo) string {
	now := s.now()
	if location != nil && location.Timezone != "" {
		if tz, err := time.LoadLocation(location.Timezone); err == nil {
			return now.In(tz).Format(locationTimeLayout)
		}
	}
	return now.In(s.zone.Location()).Format(fallbackTimeLayout)
}

// FormatStatus renders the status block sent in reply to the ping command
func FormatStatus(botName string, snapshot *domain.StatusSnapshot, zone domain.FallbackZone) string {
	var b strings.Builder
	writeStatusHeader(&b, botName, snapshot)

	fmt.Fprintf(&b, "│ 🕒 *Your Time:* %s\n", snapshot.LocalTime)
	if loc := snapshot.Location; loc != nil {
		timezone := loc.Timezone
		if timezone == "" {
			timezone = zone.Label
		}
		fmt.Fprintf(&b, "│ 📍 *Your Location:* %s, %s\n", loc.City, loc.Country)
		fmt.Fprintf(&b, "│ 🌐 *Timezone:* %s\n", timezone)
		if loc.IP != "" {
			fmt.Fprintf(&b, "│ 🔢 *IP:* %s...\n", truncate(loc.IP, 8))
		}
	} else {
		fmt.Fprintf(&b, "│ 📍 *Default Location:* %s\n", zone.Region)
		fmt.Fprintf(&b, "│ 🌐 *Timezone:* %s\n", zone.Label)
	}

	writeStatusFooter(&b)
	return b.String()
}

// FormatDegradedStatus renders the status block used when the location
// section could not be produced
func FormatDegradedStatus(botName string, snapshot *domain.StatusSnapshot) string {
	var b strings.Builder
	writeStatusHeader(&b, botName, snapshot)
	b.WriteString("│ 📍 *Location:* Could not detect\n")
	b.WriteString("│ ⚠️ *Note:* Location service unavailable\n")
	writeStatusFooter(&b)
	return b.String()
}

func writeStatusHeader(b *strings.Builder, botName string, snapshot *domain.StatusSnapshot) {
	speed := "N/A"
	if snapshot.PingKnown {
		speed = fmt.Sprintf("%dms", snapshot.PingMs)
	}
	ram := "N/A"
	if snapshot.MemoryKnown {
		ram = fmt.Sprintf("%.1fGB/%.1fGB",
			float64(snapshot.UsedMemBytes)/bytesPerGB,
			float64(snapshot.TotalMemBytes)/bytesPerGB)
	}

	fmt.Fprintf(b, "┌── *%s STATUS* ──\n", botName)
	b.WriteString("│\n")
	fmt.Fprintf(b, "│ ⚡ *Speed:* %s\n", speed)
	fmt.Fprintf(b, "│ ⏱️ *Uptime:* %s\n", FormatUptime(snapshot.Uptime))
	b.WriteString("│ 🟢 *Status:* Online\n")
	fmt.Fprintf(b, "│ 🧠 *RAM:* %s\n", ram)
	fmt.Fprintf(b, "│ 🏷️ *Version:* v%s\n", snapshot.Version)
	b.WriteString("│\n")
}

func writeStatusFooter(b *strings.Builder) {
	b.WriteString("│\n")
	b.WriteString("└─────────────────────")
}

// FormatUptime renders d as "Xh Ym Zs", "Ym Zs" or "Zs"
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
