package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

func testBundle() *types.EvidenceBundle {
	b := &types.EvidenceBundle{Queries: []string{"q1", "q2"}}
	for i := 0; i < 6; i++ {
		b.SearchResults = append(b.SearchResults, types.SearchRecord{
			Title:   fmt.Sprintf("resultado %d", i),
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Snippet: "dados do mercado brasileiro",
		})
	}
	for i := 0; i < 4; i++ {
		page := types.ExtractedPage{
			URL:     fmt.Sprintf("https://example.com/%d", i),
			Content: longContent(1200),
		}
		page.ContentLength = len(page.Content)
		b.ExtractedPages = append(b.ExtractedPages, page)
		b.TotalContentChars += page.ContentLength
	}
	return b
}

func sectionByName(t *testing.T, name string) sectionSpec {
	t.Helper()
	for _, s := range Sections {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("unknown section %s", name)
	return sectionSpec{}
}

func TestSectionGenerator_Generate(t *testing.T) {
	req := &types.AnalysisRequest{Segment: "fitness", Product: "app"}

	var gotPrompt string
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		gotPrompt = prompt
		assert.Equal(t, 4000, maxTokens)
		return "```json\n{\"nome_ficticio\": \"Carlos\"}\n```", nil
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	payload, err := g.Generate(t.Context(), sectionByName(t, SectionAvatar), req, testBundle(), nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"nome_ficticio": "Carlos"}`, string(payload))
	assert.Contains(t, gotPrompt, "fitness")
	assert.Contains(t, gotPrompt, "dados do mercado brasileiro")
}

func TestSectionGenerator_EmbedsPriorSections(t *testing.T) {
	req := &types.AnalysisRequest{Segment: "fitness"}
	produced := map[string]json.RawMessage{
		SectionAvatar: json.RawMessage(`{"nome_ficticio": "Carlos Eduardo"}`),
	}

	var gotPrompt string
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		gotPrompt = prompt
		return `{"drivers_selecionados": [], "sequencia_recomendada": [], "justificativa": "x"}`, nil
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	_, err := g.Generate(t.Context(), sectionByName(t, SectionMentalDrivers), req, testBundle(), produced)
	require.NoError(t, err)

	assert.Contains(t, gotPrompt, "Carlos Eduardo")
}

func TestSectionGenerator_PriorSectionCapped(t *testing.T) {
	req := &types.AnalysisRequest{Segment: "fitness"}
	huge := `{"filler": "` + strings.Repeat("x", 10000) + `"}`
	produced := map[string]json.RawMessage{
		SectionAvatar: json.RawMessage(huge),
	}

	var gotPrompt string
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		gotPrompt = prompt
		return `{"objecoes_universais": [], "objecoes_ocultas": [], "arsenal_emergencia": []}`, nil
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	spec := sectionByName(t, SectionAntiObjection)
	_, err := g.Generate(t.Context(), spec, req, testBundle(), produced)
	require.NoError(t, err)

	assert.Less(t, strings.Count(gotPrompt, "x"), len(huge))
}

func TestSectionGenerator_MissingDependency(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		t.Fatal("completion must not run with a missing dependency")
		return "", nil
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	_, err := g.Generate(t.Context(), sectionByName(t, SectionPrePitch),
		&types.AnalysisRequest{Segment: "fitness"}, testBundle(), map[string]json.RawMessage{})
	require.Error(t, err)
}

func TestSectionGenerator_EmptyCompletion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
				return tt.raw, nil
			})

			g := NewSectionGenerator(completer, logger.NewNop())
			_, err := g.Generate(t.Context(), sectionByName(t, SectionAvatar),
				&types.AnalysisRequest{Segment: "fitness"}, testBundle(), nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrEmptyModelResponse))
			assert.Contains(t, err.Error(), SectionAvatar)
		})
	}
}

func TestSectionGenerator_MalformedCompletion(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "the model wandered off and produced no structure at all", nil
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	_, err := g.Generate(t.Context(), sectionByName(t, SectionAvatar),
		&types.AnalysisRequest{Segment: "fitness"}, testBundle(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedModelOutput))
	assert.Contains(t, err.Error(), SectionAvatar)
}

func TestSectionGenerator_CompletionCallFailure(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", fmt.Errorf("connection reset")
	})

	g := NewSectionGenerator(completer, logger.NewNop())
	_, err := g.Generate(t.Context(), sectionByName(t, SectionAvatar),
		&types.AnalysisRequest{Segment: "fitness"}, testBundle(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrServiceUnavail))
}

func TestEvidenceContext_Capped(t *testing.T) {
	bundle := testBundle()
	ctxStr := evidenceContext(bundle, 500)
	assert.LessOrEqual(t, len(ctxStr), 500)
	assert.Contains(t, ctxStr, "resultado 0")
}
