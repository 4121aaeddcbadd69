package app

import (
	"context"

	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"go.uber.org/zap"
)

// PingCommand replies with latency, uptime, memory and location
type PingCommand struct {
	reporter  *StatusReporter
	messenger domain.Messenger
	bot       *domain.BotConfig
	zone      domain.FallbackZone
	metrics   *infrastructure.Metrics
	logger    *zap.Logger
}

// NewPingCommand creates the ping command
func NewPingCommand(
	reporter *StatusReporter,
	messenger domain.Messenger,
	bot *domain.BotConfig,
	zone domain.FallbackZone,
	metrics *infrastructure.Metrics,
	logger *zap.Logger,
) *PingCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PingCommand{
		reporter:  reporter,
		messenger: messenger,
		bot:       bot,
		zone:      zone,
		metrics:   metrics,
		logger:    logger,
	}
}

// Name returns the command name
func (c *PingCommand) Name() string {
	return "ping"
}

// Aliases returns the words that trigger the command
func (c *PingCommand) Aliases() []string {
	return []string{"ping", "status", "alive"}
}

// Handle measures the acknowledgment round trip and replies with the status block
func (c *PingCommand) Handle(ctx context.Context, msg *domain.InboundMessage) error {
	snapshot, err := c.reporter.Snapshot(ctx, func(ctx context.Context) error {
		return c.messenger.Send(ctx, msg.ChatID, domain.TextPayload{Text: "🏓 Pinging..."}, msg)
	})

	text := FormatStatus(c.bot.Name, snapshot, c.zone)
	outcome := "ok"
	if err != nil {
		c.logger.Warn("Ping acknowledgment failed", zap.Error(err))
		text = FormatDegradedStatus(c.bot.Name, snapshot)
		outcome = "degraded"
	}
	c.metrics.ObserveCommand(c.Name(), outcome)

	return c.messenger.Send(ctx, msg.ChatID, domain.TextPayload{Text: text}, msg)
}
