package service

import (
	"encoding/json"
	"time"
)

// CreateAnalysisRequest is the POST /analyses payload.
type CreateAnalysisRequest struct {
	Segment        string `json:"segment" binding:"required"`
	Product        string `json:"product"`
	Price          string `json:"price"`
	TargetAudience string `json:"target_audience"`
	RevenueGoal    string `json:"revenue_goal"`
}

// AnalysisResponse wraps a finished report with its storage ID. ID is
// empty when persistence was unavailable; the report is still complete.
type AnalysisResponse struct {
	ID     string          `json:"id,omitempty"`
	Report json.RawMessage `json:"report"`
}

// StoredAnalysisResponse is one previously persisted report.
type StoredAnalysisResponse struct {
	ID                    string          `json:"id"`
	Segment               string          `json:"segment"`
	Product               string          `json:"product,omitempty"`
	Report                json.RawMessage `json:"report"`
	ReportLength          int             `json:"report_length"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	CreatedAt             time.Time       `json:"created_at"`
}
