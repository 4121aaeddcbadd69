package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/xmd-bot/internal/app"
	"github.com/yourusername/xmd-bot/internal/domain"
	"go.uber.org/zap"
)

// StatusHandler serves the bot status snapshot
type StatusHandler struct {
	reporter *app.StatusReporter
	botName  string
	zone     domain.FallbackZone
	logger   *zap.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(reporter *app.StatusReporter, botName string, zone domain.FallbackZone, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		reporter: reporter,
		botName:  botName,
		zone:     zone,
		logger:   logger,
	}
}

// Status handles GET /api/v1/status. With ?format=text it returns the same
// block the ping command sends.
func (h *StatusHandler) Status(c *gin.Context) {
	snapshot, err := h.reporter.Snapshot(c.Request.Context(), nil)
	if err != nil {
		h.logger.Error("Failed to build status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, app.FormatStatus(h.botName, snapshot, h.zone))
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
