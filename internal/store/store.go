// Package store persists received reports in SQLite through gorm.
package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Thomazoide/superform-av/internal/models"
)

// ReportStore wraps the reports table.
type ReportStore struct {
	db *gorm.DB
}

// Open connects using a sqlite DSN ("sqlite://path" or a bare path) and
// migrates the reports table.
func Open(dsn string) (*ReportStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("empty database path in DSN %q", dsn)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&models.Report{}); err != nil {
		return nil, fmt.Errorf("migrate reports: %w", err)
	}
	return &ReportStore{db: db}, nil
}

// Create inserts a received report.
func (s *ReportStore) Create(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// List returns stored reports, newest first.
func (s *ReportStore) List(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).Order("received_at desc").Find(&reports).Error
	return reports, err
}

// Get looks a report up by ID.
func (s *ReportStore) Get(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}
