package data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/database"
)

// AnalysisRecord is the persisted form of a finished report.
type AnalysisRecord struct {
	ID                    string          `gorm:"type:uuid;primaryKey"`
	Segment               string          `gorm:"type:varchar(255);not null;index"`
	Product               string          `gorm:"type:varchar(255)"`
	Report                json.RawMessage `gorm:"type:jsonb;not null"`
	ReportLength          int             `gorm:"not null"`
	ProcessingTimeSeconds float64         `gorm:"not null"`
	CreatedAt             time.Time       `gorm:"autoCreateTime"`
}

// TableName overrides the gorm default.
func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// ReportRepo stores and loads finished analysis reports.
type ReportRepo struct {
	db *database.DB
}

// NewReportRepo creates a report repository.
func NewReportRepo(db *database.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

// Save persists a finished report and returns the stored record ID.
func (r *ReportRepo) Save(ctx context.Context, report *types.AnalysisReport) (string, error) {
	serialized, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	record := &AnalysisRecord{
		ID:                    uuid.New().String(),
		Segment:               report.Segment,
		Product:               report.Product,
		Report:                serialized,
		ReportLength:          report.Metadata.ReportLength,
		ProcessingTimeSeconds: report.Metadata.ProcessingTimeSeconds,
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return record.ID, nil
}

// GetByID loads one stored report.
func (r *ReportRepo) GetByID(ctx context.Context, id string) (*AnalysisRecord, error) {
	var record AnalysisRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	return &record, nil
}

// Migrate creates the analysis_records table.
func (r *ReportRepo) Migrate() error {
	return r.db.AutoMigrate(&AnalysisRecord{})
}
