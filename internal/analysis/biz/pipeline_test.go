package biz

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

// richSearcher returns enough results to clear the gate.
func richSearcher() searcherFunc {
	return func(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
		var recs []types.SearchRecord
		for i := 0; i < 3; i++ {
			recs = append(recs, types.SearchRecord{
				Title:   fmt.Sprintf("resultado %s %d", query, i),
				URL:     fmt.Sprintf("https://example.com/%s/%d", strings.Fields(query)[0], i),
				Snippet: "dados reais do mercado",
			})
		}
		return recs, nil
	}
}

func richExtractor() extractorFunc {
	return func(ctx context.Context, url string) (*types.ExtractedPage, error) {
		return &types.ExtractedPage{URL: url, Content: longContent(800)}, nil
	}
}

// bigJSONCompleter produces a payload large enough that eight sections
// clear the report length gate.
func bigJSONCompleter() completerFunc {
	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		filler := strings.Repeat("análise detalhada do mercado ", 200)
		return fmt.Sprintf("```json\n{\"conteudo\": %q}\n```", filler), nil
	}
}

func newTestPipeline(searcher Searcher, extractor PageExtractor, completer Completer, progress ProgressFunc) *Pipeline {
	log := logger.NewNop()
	return NewPipeline(
		NewEvidenceGatherer(searcher, extractor, fastGathererConfig(), log),
		GateConfig{},
		NewSectionGenerator(completer, log),
		NewReportAssembler(AssemblerConfig{}),
		progress,
		log,
	)
}

func TestPipeline_Run_Success(t *testing.T) {
	var stages []int
	progress := func(stage int, message string) {
		stages = append(stages, stage)
	}

	p := newTestPipeline(richSearcher(), richExtractor(), bigJSONCompleter(), progress)
	report, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "marketing digital"})
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, StateDone, p.State())
	assert.Len(t, report.Sections, len(Sections))
	for _, spec := range Sections {
		assert.Contains(t, report.Sections, spec.Name)
	}
	assert.GreaterOrEqual(t, report.Metadata.ReportLength, 30000)

	// One notification per section, in order, between validate and assemble.
	for i := range Sections {
		assert.Contains(t, stages, StageFirstSection+i)
	}
	assert.Equal(t, StageAssemble, stages[len(stages)-1])
}

func TestPipeline_Run_MissingSegment(t *testing.T) {
	searcher := searcherFunc(func(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
		t.Fatal("searcher must not run for an invalid request")
		return nil, nil
	})

	p := newTestPipeline(searcher, richExtractor(), bigJSONCompleter(), nil)
	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingSegment))
	assert.Equal(t, StateFailed, p.State())
}

func TestPipeline_Run_InsufficientEvidence(t *testing.T) {
	// Every search fails, so the bundle arrives empty at the gate.
	searcher := searcherFunc(func(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
		return nil, fmt.Errorf("provider down")
	})
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		t.Fatal("generation must not start without validated evidence")
		return "", nil
	})

	p := newTestPipeline(searcher, richExtractor(), completer, nil)
	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNoSearchResults))
	assert.Equal(t, StateFailed, p.State())
}

func TestPipeline_Run_MalformedSectionFailsRun(t *testing.T) {
	calls := 0
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls == 3 {
			return "no structure here, sorry about that entirely", nil
		}
		filler := strings.Repeat("análise detalhada ", 100)
		return fmt.Sprintf(`{"conteudo": %q}`, filler), nil
	})

	p := newTestPipeline(richSearcher(), richExtractor(), completer, nil)
	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedModelOutput))
	assert.Equal(t, StateFailed, p.State())
	// Generation stops at the failing section.
	assert.Equal(t, 3, calls)
}

func TestPipeline_Run_EmptySectionFailsRun(t *testing.T) {
	calls := 0
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		calls++
		if calls == 2 {
			return "   ", nil
		}
		filler := strings.Repeat("análise detalhada ", 100)
		return fmt.Sprintf(`{"conteudo": %q}`, filler), nil
	})

	p := newTestPipeline(richSearcher(), richExtractor(), completer, nil)
	report, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, errors.ErrEmptyModelResponse))
	// The error names the section that came back empty.
	assert.Contains(t, err.Error(), Sections[1].Name)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipeline_Run_ReportTooShort(t *testing.T) {
	completer := completerFunc(func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return `{"conteudo": "curto demais para o relatório"}`, nil
	})

	p := newTestPipeline(richSearcher(), richExtractor(), completer, nil)
	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrReportTooShort))
	assert.Equal(t, StateFailed, p.State())
}

func TestPipeline_Run_SingleShot(t *testing.T) {
	p := newTestPipeline(richSearcher(), richExtractor(), bigJSONCompleter(), nil)

	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.NoError(t, err)

	_, err = p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
}

func TestPipeline_Run_FailedStateIsAbsorbing(t *testing.T) {
	p := newTestPipeline(richSearcher(), richExtractor(), bigJSONCompleter(), nil)

	_, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: ""})
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())

	_, err = p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())
}

func TestPipeline_Run_PanickingProgressIsIgnored(t *testing.T) {
	progress := func(stage int, message string) {
		panic("observer blew up")
	}

	p := newTestPipeline(richSearcher(), richExtractor(), bigJSONCompleter(), progress)
	report, err := p.Run(t.Context(), &types.AnalysisRequest{Segment: "fitness"})
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestPipeline_Run_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	searcher := searcherFunc(func(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
		cancel()
		return richSearcher()(ctx, query, maxResults)
	})

	cfg := GathererConfig{QueryDelay: 10 * time.Millisecond, PageDelay: 10 * time.Millisecond}
	log := logger.NewNop()
	p := NewPipeline(
		NewEvidenceGatherer(searcher, richExtractor(), cfg, log),
		GateConfig{},
		NewSectionGenerator(bigJSONCompleter(), log),
		NewReportAssembler(AssemblerConfig{}),
		nil,
		log,
	)

	_, err := p.Run(ctx, &types.AnalysisRequest{Segment: "fitness"})
	require.Error(t, err)
	assert.Equal(t, StateFailed, p.State())
}
