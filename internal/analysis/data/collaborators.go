package data

import (
	"context"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/extractor"
	"github.com/mktud1/arq503/internal/websearch/provider"
	searchtypes "github.com/mktud1/arq503/internal/websearch/types"
)

// ProviderSearcher adapts a websearch provider to the pipeline's Searcher.
type ProviderSearcher struct {
	provider provider.Provider
}

// NewProviderSearcher wraps a configured search provider.
func NewProviderSearcher(p provider.Provider) *ProviderSearcher {
	return &ProviderSearcher{provider: p}
}

// Search runs one query and normalizes results into SearchRecords.
func (s *ProviderSearcher) Search(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error) {
	resp, err := s.provider.Search(ctx, &searchtypes.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	records := make([]types.SearchRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, types.SearchRecord{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
			Source:  string(resp.Provider),
		})
	}
	return records, nil
}

// ReadabilityExtractor adapts the extractor package to the pipeline's
// PageExtractor.
type ReadabilityExtractor struct {
	extractor *extractor.Extractor
}

// NewReadabilityExtractor wraps a page extractor.
func NewReadabilityExtractor(e *extractor.Extractor) *ReadabilityExtractor {
	return &ReadabilityExtractor{extractor: e}
}

// Extract fetches a URL and returns its cleaned text.
func (r *ReadabilityExtractor) Extract(ctx context.Context, url string) (*types.ExtractedPage, error) {
	page, err := r.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	return &types.ExtractedPage{
		URL:           page.URL,
		Title:         page.Title,
		Content:       page.Content,
		ContentLength: len(page.Content),
	}, nil
}
