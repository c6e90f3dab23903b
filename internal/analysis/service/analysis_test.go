package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/mktud1/arq503/internal/analysis/biz"
	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

type stubSearcher struct {
	fail bool
}

func (s *stubSearcher) Search(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
	if s.fail {
		return nil, fmt.Errorf("search provider down")
	}
	var recs []types.SearchRecord
	for i := 0; i < 3; i++ {
		recs = append(recs, types.SearchRecord{
			Title:   fmt.Sprintf("resultado %d", i),
			URL:     fmt.Sprintf("https://example.com/%s/%d", strings.Fields(query)[0], i),
			Snippet: "dados reais do mercado",
		})
	}
	return recs, nil
}

type stubExtractor struct{}

func (s *stubExtractor) Extract(ctx context.Context, url string) (*types.ExtractedPage, error) {
	content := strings.Repeat("conteúdo de mercado ", 50)
	return &types.ExtractedPage{URL: url, Content: content, ContentLength: len(content)}, nil
}

type stubCompleter struct{}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	filler := strings.Repeat("análise detalhada do mercado ", 200)
	return fmt.Sprintf("```json\n{\"conteudo\": %q}\n```", filler), nil
}

func testRouter(searcher biz.Searcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	factory := func(progress biz.ProgressFunc) *biz.Pipeline {
		return biz.NewPipeline(
			biz.NewEvidenceGatherer(searcher, &stubExtractor{}, biz.GathererConfig{
				QueryDelay: time.Millisecond,
				PageDelay:  time.Millisecond,
			}, log),
			biz.GateConfig{},
			biz.NewSectionGenerator(&stubCompleter{}, log),
			biz.NewReportAssembler(biz.AssemblerConfig{}),
			progress,
			log,
		)
	}

	svc := NewAnalysisService(factory, nil, log)
	router := gin.New()
	svc.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestCreateAnalysis_Success(t *testing.T) {
	router := testRouter(&stubSearcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyses",
		strings.NewReader(`{"segment": "marketing digital", "product": "curso"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	body := w.Body.String()
	assert.Equal(t, int64(0), gjson.Get(body, "code").Int())
	assert.Equal(t, "marketing digital", gjson.Get(body, "data.report.segment").String())
	assert.True(t, gjson.Get(body, "data.report.metadata.simulation_free").Bool())
	assert.GreaterOrEqual(t, gjson.Get(body, "data.report.metadata.report_length").Int(), int64(30000))
}

func TestCreateAnalysis_MissingSegment(t *testing.T) {
	router := testRouter(&stubSearcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyses", strings.NewReader(`{"product": "curso"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAnalysis_InsufficientEvidence(t *testing.T) {
	router := testRouter(&stubSearcher{fail: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/analyses",
		strings.NewReader(`{"segment": "marketing digital"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, int64(3000), gjson.Get(w.Body.String(), "code").Int())
}

func TestGetAnalysis_NoStorage(t *testing.T) {
	router := testRouter(&stubSearcher{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/analyses/some-id", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
