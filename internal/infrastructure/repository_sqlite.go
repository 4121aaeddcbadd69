package infrastructure

import (
	"errors"
	"fmt"

	"github.com/yourusername/xmd-bot/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteDownloadRepository implements DownloadRepository using SQLite
type SQLiteDownloadRepository struct {
	db *gorm.DB
}

// NewSQLiteDownloadRepository creates a new SQLite repository
func NewSQLiteDownloadRepository(dbPath string) (*SQLiteDownloadRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteDownloadRepository{db: db}, nil
}

// Create creates a new record
func (r *SQLiteDownloadRepository) Create(record *domain.DownloadRecord) error {
	return r.db.Create(record).Error
}

// Update updates an existing record
func (r *SQLiteDownloadRepository) Update(record *domain.DownloadRecord) error {
	return r.db.Save(record).Error
}

// FindByID finds a record by ID. Returns nil if not found.
func (r *SQLiteDownloadRepository) FindByID(id string) (*domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	err := r.db.First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindRecent returns the newest records first. An empty status matches all.
func (r *SQLiteDownloadRepository) FindRecent(status domain.DownloadStatus, limit int) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// GetStats returns download statistics
func (r *SQLiteDownloadRepository) GetStats() (*domain.DownloadStats, error) {
	stats := &domain.DownloadStats{ByProvider: make(map[string]int64)}

	if err := r.db.Model(&domain.DownloadRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusDelivered:
			stats.Delivered = sc.Count
		case domain.StatusDeliveredAsDocument:
			stats.DeliveredAsDocument = sc.Count
		case domain.StatusRejected:
			stats.Rejected = sc.Count
		case domain.StatusExhausted:
			stats.Exhausted = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	providerCounts := []struct {
		Provider string
		Count    int64
	}{}

	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("provider, count(*) as count").
		Where("provider <> ''").
		Group("provider").
		Scan(&providerCounts).Error; err != nil {
		return nil, err
	}

	for _, pc := range providerCounts {
		stats.ByProvider[pc.Provider] = pc.Count
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteDownloadRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
