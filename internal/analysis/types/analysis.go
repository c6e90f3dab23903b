package types

import (
	"encoding/json"
	"time"
)

// AnalysisRequest describes the market to analyze. Segment is the only
// mandatory field; the rest sharpen the generated sections.
type AnalysisRequest struct {
	Segment        string `json:"segment"`
	Product        string `json:"product,omitempty"`
	Price          string `json:"price,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	RevenueGoal    string `json:"revenue_goal,omitempty"`
}

// SearchRecord is one normalized search hit.
type SearchRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// ExtractedPage is the cleaned text of one fetched page.
type ExtractedPage struct {
	URL           string `json:"url"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	ContentLength int    `json:"content_length"`
}

// EvidenceBundle accumulates everything gathered for one run. It grows
// during gathering and is frozen once validated.
type EvidenceBundle struct {
	Queries           []string        `json:"queries"`
	SearchResults     []SearchRecord  `json:"search_results"`
	ExtractedPages    []ExtractedPage `json:"extracted_pages"`
	TotalContentChars int             `json:"total_content_chars"`
}

// ReportMetadata records provenance and quality markers of a finished run.
type ReportMetadata struct {
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	GeneratedAt           time.Time `json:"generated_at"`
	DataSourcesUsed       int       `json:"data_sources_used"`
	PagesExtracted        int       `json:"pages_extracted"`
	TotalContentChars     int       `json:"total_content_chars"`
	QualityScore          float64   `json:"quality_score"`
	RealDataGuarantee     bool      `json:"real_data_guarantee"`
	FallbackUsed          bool      `json:"fallback_used"`
	SimulationFree        bool      `json:"simulation_free"`
	ReportLength          int       `json:"report_length"`
}

// AnalysisReport is the complete deliverable. Section values are the raw
// JSON payloads produced by the model, immutable once stored here.
type AnalysisReport struct {
	Segment           string                     `json:"segment"`
	Product           string                     `json:"product,omitempty"`
	Sections          map[string]json.RawMessage `json:"sections"`
	ExclusiveInsights []string                   `json:"exclusive_insights"`
	Metadata          ReportMetadata             `json:"metadata"`
}
