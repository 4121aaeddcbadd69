package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionChecker reports whether the chat connection is usable
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthHandler handles health check requests
type HealthHandler struct {
	conn    ConnectionChecker
	version string
}

// NewHealthHandler creates a new health handler. conn may be nil when the
// HTTP API runs without a chat connection.
func NewHealthHandler(conn ConnectionChecker, version string) *HealthHandler {
	return &HealthHandler{
		conn:    conn,
		version: version,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	WhatsApp struct {
		Connected bool `json:"connected"`
	} `json:"whatsapp"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	response.WhatsApp.Connected = h.connected()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.connected() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "whatsapp not connected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) connected() bool {
	return h.conn != nil && h.conn.IsConnected()
}
