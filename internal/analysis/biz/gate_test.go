package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
)

func bundleWith(results, pages int) *types.EvidenceBundle {
	b := &types.EvidenceBundle{}
	for i := 0; i < results; i++ {
		b.SearchResults = append(b.SearchResults, types.SearchRecord{
			Title: "r", URL: "https://example.com", Snippet: "s",
		})
	}
	for i := 0; i < pages; i++ {
		b.ExtractedPages = append(b.ExtractedPages, types.ExtractedPage{
			URL: "https://example.com", Content: "c",
		})
	}
	return b
}

func TestValidateEvidence(t *testing.T) {
	tests := []struct {
		name     string
		results  int
		pages    int
		wantCode int
	}{
		{"no results", 0, 0, errors.ErrNoSearchResults},
		{"too few results", 4, 3, errors.ErrInsufficientSearchResults},
		{"no pages", 5, 0, errors.ErrNoExtractedContent},
		{"too few pages", 5, 2, errors.ErrInsufficientExtractedPages},
		{"exactly at thresholds", 5, 3, 0},
		{"above thresholds", 12, 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvidence(bundleWith(tt.results, tt.pages), GateConfig{})
			if tt.wantCode == 0 {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantCode),
					"want code %d, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestValidateEvidence_CheckOrder(t *testing.T) {
	// A bundle failing several checks reports the earliest one.
	err := ValidateEvidence(bundleWith(0, 0), GateConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoSearchResults))
}

func TestValidateEvidence_CustomThresholds(t *testing.T) {
	cfg := GateConfig{MinSearchResults: 10, MinExtractedPages: 5}

	assert.Error(t, ValidateEvidence(bundleWith(9, 5), cfg))
	assert.NoError(t, ValidateEvidence(bundleWith(10, 5), cfg))
}
