package types

// SearchRequest represents a search request
type SearchRequest struct {
	Query       string `json:"query" validate:"required,min=1,max=1000"`
	MaxResults  int    `json:"max_results,omitempty" validate:"omitempty,min=1,max=100"`
	SearchDepth string `json:"search_depth,omitempty"` // "basic" or "advanced"
}
