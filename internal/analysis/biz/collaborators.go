package biz

import (
	"context"

	"github.com/mktud1/arq503/internal/analysis/types"
)

// Searcher runs one web search query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchRecord, error)
}

// PageExtractor fetches one URL and returns its readable text.
type PageExtractor interface {
	Extract(ctx context.Context, url string) (*types.ExtractedPage, error)
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ProgressFunc receives pipeline progress notifications. Implementations
// must not block; failures are ignored. A nil ProgressFunc is valid.
type ProgressFunc func(stage int, message string)

// Pipeline stages reported through ProgressFunc.
const (
	StageSearch   = 1
	StageExtract  = 2
	StageValidate = 3

	// Sections occupy StageFirstSection..StageFirstSection+7 in order.
	StageFirstSection = 4

	StageAssemble = 12
)

// notify invokes fn if non-nil, swallowing panics. Progress is advisory
// and must never take the run down.
func notify(fn ProgressFunc, stage int, message string) {
	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn(stage, message)
}
