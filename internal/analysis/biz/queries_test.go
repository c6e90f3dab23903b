package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
)

func TestDeriveQueries_SegmentOnly(t *testing.T) {
	queries, err := DeriveQueries(&types.AnalysisRequest{Segment: "marketing digital"})
	require.NoError(t, err)

	assert.Len(t, queries, 5)
	for _, q := range queries {
		assert.Contains(t, q, "marketing digital")
		assert.GreaterOrEqual(t, len(strings.Fields(q)), minQueryTokens)
	}
}

func TestDeriveQueries_WithProduct(t *testing.T) {
	queries, err := DeriveQueries(&types.AnalysisRequest{
		Segment: "fitness",
		Product: "app de treino",
	})
	require.NoError(t, err)

	assert.Len(t, queries, 8)
	assert.Contains(t, queries[5], "app de treino")
}

func TestDeriveQueries_MissingSegment(t *testing.T) {
	tests := []struct {
		name    string
		segment string
	}{
		{"empty", ""},
		{"whitespace only", "   \t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveQueries(&types.AnalysisRequest{Segment: tt.segment})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrMissingSegment))
		})
	}
}

func TestDeriveQueries_Deterministic(t *testing.T) {
	req := &types.AnalysisRequest{Segment: "educação online", Product: "curso"}

	first, err := DeriveQueries(req)
	require.NoError(t, err)
	second, err := DeriveQueries(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
