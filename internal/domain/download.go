package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the outcome of a facebook command
type DownloadStatus string

const (
	StatusPending             DownloadStatus = "pending"
	StatusRejected            DownloadStatus = "rejected"
	StatusExhausted           DownloadStatus = "exhausted"
	StatusDelivered           DownloadStatus = "delivered"
	StatusDeliveredAsDocument DownloadStatus = "delivered_as_document"
	StatusFailed              DownloadStatus = "failed"
)

// DownloadRecord is the history entry of one facebook command invocation
type DownloadRecord struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	ChatID       string         `json:"chat_id" gorm:"index"`
	SenderID     string         `json:"sender_id"`
	RequestURL   string         `json:"request_url"`
	ResolvedURL  string         `json:"resolved_url,omitempty"`
	MediaURL     string         `json:"media_url,omitempty"`
	Provider     string         `json:"provider,omitempty"`
	Title        string         `json:"title,omitempty"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownloadRecord creates a pending record for an inbound message
func NewDownloadRecord(msg *InboundMessage, requestURL string) *DownloadRecord {
	now := time.Now()
	return &DownloadRecord{
		ID:         uuid.New().String(),
		ChatID:     msg.ChatID,
		SenderID:   msg.SenderID,
		RequestURL: requestURL,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkResolved stores the provider result
func (r *DownloadRecord) MarkResolved(resolvedURL string, result *MediaResult) {
	r.ResolvedURL = resolvedURL
	r.MediaURL = result.URL
	r.Provider = result.Provider
	r.Title = result.Title
	r.UpdatedAt = time.Now()
}

// MarkDelivered marks the record as delivered, as video or as document
func (r *DownloadRecord) MarkDelivered(asDocument bool) {
	r.Status = StatusDelivered
	if asDocument {
		r.Status = StatusDeliveredAsDocument
	}
	r.complete()
}

// MarkRejected marks a user input error
func (r *DownloadRecord) MarkRejected(err error) {
	r.Status = StatusRejected
	r.ErrorMessage = err.Error()
	r.complete()
}

// MarkExhausted marks that every provider failed
func (r *DownloadRecord) MarkExhausted() {
	r.Status = StatusExhausted
	r.ErrorMessage = ErrProvidersExhausted.Error()
	r.complete()
}

// MarkFailed marks an unexpected failure
func (r *DownloadRecord) MarkFailed(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = err.Error()
	r.complete()
}

// IsTerminal checks if the record reached a final status
func (r *DownloadRecord) IsTerminal() bool {
	return r.Status != StatusPending
}

func (r *DownloadRecord) complete() {
	now := time.Now()
	r.CompletedAt = &now
	r.UpdatedAt = now
}

// ValidateStatus checks if a status filter is valid
func ValidateStatus(status DownloadStatus) bool {
	switch status {
	case StatusPending, StatusRejected, StatusExhausted, StatusDelivered, StatusDeliveredAsDocument, StatusFailed:
		return true
	}
	return false
}
