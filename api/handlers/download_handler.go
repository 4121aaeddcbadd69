package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/xmd-bot/internal/app"
	"github.com/yourusername/xmd-bot/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// DownloadHandler handles resolve and download history requests
type DownloadHandler struct {
	resolver *app.DownloadResolver
	history  domain.DownloadRepository
	logger   *zap.Logger
}

// NewDownloadHandler creates a new download handler. history may be nil.
func NewDownloadHandler(resolver *app.DownloadResolver, history domain.DownloadRepository, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		resolver: resolver,
		history:  history,
		logger:   logger,
	}
}

// ResolveRequest represents a request to resolve a Facebook link
type ResolveRequest struct {
	URL string `json:"url" binding:"required"`
}

// Resolve handles POST /api/v1/resolve
func (h *DownloadHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	media, err := h.resolver.Resolve(c.Request.Context(), req.URL)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, media)
	case domain.IsUserInputError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProvidersExhausted):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Failed to resolve", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListDownloads handles GET /api/v1/downloads
func (h *DownloadHandler) ListDownloads(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	status := domain.DownloadStatus(c.Query("status"))
	if status != "" && !domain.ValidateStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = min(n, maxListLimit)
	}

	records, err := h.history.FindRecent(status, limit)
	if err != nil {
		h.logger.Error("Failed to list downloads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

// GetDownload handles GET /api/v1/downloads/:id
func (h *DownloadHandler) GetDownload(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	record, err := h.history.FindByID(c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get download", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "download not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetStats handles GET /api/v1/downloads/stats
func (h *DownloadHandler) GetStats(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	stats, err := h.history.GetStats()
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DownloadHandler) historyEnabled(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "download history is disabled"})
		return false
	}
	return true
}
