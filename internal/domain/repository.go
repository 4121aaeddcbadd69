package domain

// DownloadRepository defines the interface for download history persistence
type DownloadRepository interface {
	// Create creates a new record
	Create(record *DownloadRecord) error

	// Update updates an existing record
	Update(record *DownloadRecord) error

	// FindByID finds a record by ID
	FindByID(id string) (*DownloadRecord, error)

	// FindRecent returns the newest records, optionally filtered by status
	FindRecent(status DownloadStatus, limit int) ([]*DownloadRecord, error)

	// GetStats returns download statistics
	GetStats() (*DownloadStats, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total               int64            `json:"total"`
	Delivered           int64            `json:"delivered"`
	DeliveredAsDocument int64            `json:"delivered_as_document"`
	Rejected            int64            `json:"rejected"`
	Exhausted           int64            `json:"exhausted"`
	Failed              int64            `json:"failed"`
	ByProvider          map[string]int64 `json:"by_provider"`
}
