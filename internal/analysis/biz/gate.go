package biz

import (
	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
)

// GateConfig holds the minimum-evidence thresholds. Both bounds are
// inclusive: exactly the minimum passes.
type GateConfig struct {
	MinSearchResults  int // 5
	MinExtractedPages int // 3
}

func (c *GateConfig) withDefaults() GateConfig {
	out := *c
	if out.MinSearchResults == 0 {
		out.MinSearchResults = 5
	}
	if out.MinExtractedPages == 0 {
		out.MinExtractedPages = 3
	}
	return out
}

// ValidateEvidence checks a frozen bundle against the thresholds. Checks
// run in a fixed order and each violation has its own code, so callers
// always see the earliest unmet condition.
func ValidateEvidence(bundle *types.EvidenceBundle, cfg GateConfig) error {
	cfg = cfg.withDefaults()

	if len(bundle.SearchResults) == 0 {
		return errors.New(errors.ErrNoSearchResults)
	}
	if len(bundle.SearchResults) < cfg.MinSearchResults {
		return errors.Newf(errors.ErrInsufficientSearchResults,
			"got %d search results, need at least %d",
			len(bundle.SearchResults), cfg.MinSearchResults)
	}
	if len(bundle.ExtractedPages) == 0 {
		return errors.New(errors.ErrNoExtractedContent)
	}
	if len(bundle.ExtractedPages) < cfg.MinExtractedPages {
		return errors.Newf(errors.ErrInsufficientExtractedPages,
			"got %d extracted pages, need at least %d",
			len(bundle.ExtractedPages), cfg.MinExtractedPages)
	}

	return nil
}
