package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

// SectionGenerator renders a section prompt, calls the completion
// collaborator, and recovers the JSON payload.
type SectionGenerator struct {
	completer Completer
	logger    *logger.Logger
}

// NewSectionGenerator creates a section generator.
func NewSectionGenerator(completer Completer, log *logger.Logger) *SectionGenerator {
	return &SectionGenerator{completer: completer, logger: log}
}

// Generate produces one section. produced must already hold every
// dependency of spec; outputs are never mutated after being stored there.
func (g *SectionGenerator) Generate(ctx context.Context, spec sectionSpec, req *types.AnalysisRequest, bundle *types.EvidenceBundle, produced map[string]json.RawMessage) (json.RawMessage, error) {
	priors := make(map[string]string, len(spec.Deps))
	for _, dep := range spec.Deps {
		prior, ok := produced[dep]
		if !ok {
			return nil, errors.Newf(errors.ErrInternalServer,
				"section %s requires %s, which was not generated", spec.Name, dep)
		}
		priors[dep] = capString(string(prior), spec.PriorCap)
	}

	prompt := spec.BuildPrompt(promptInput{
		Req:      req,
		Evidence: evidenceContext(bundle, spec.EvidenceCap),
		Priors:   priors,
	})

	g.logger.Debug("invoking completion for section",
		zap.String("section", spec.Name),
		zap.Int("prompt_chars", len(prompt)))

	raw, err := g.completer.Complete(ctx, prompt, spec.MaxTokens)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrServiceUnavail,
			"section %s: completion call failed", spec.Name)
	}

	if strings.TrimSpace(raw) == "" {
		return nil, errors.Newf(errors.ErrEmptyModelResponse,
			"section %s returned an empty completion", spec.Name)
	}

	payload, err := RecoverJSON(raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrMalformedModelOutput,
			"section %s: %s", spec.Name, errors.GetDetails(err))
	}

	return json.RawMessage(payload), nil
}

// evidenceContext flattens the bundle into prompt text: result snippets
// first, then page content, truncated at limit.
func evidenceContext(bundle *types.EvidenceBundle, limit int) string {
	var sb strings.Builder

	for _, rec := range bundle.SearchResults {
		if sb.Len() >= limit {
			break
		}
		fmt.Fprintf(&sb, "- %s: %s\n", rec.Title, rec.Snippet)
	}

	for _, page := range bundle.ExtractedPages {
		if sb.Len() >= limit {
			break
		}
		fmt.Fprintf(&sb, "\nFonte: %s\n%s\n", page.URL, page.Content)
	}

	return capString(sb.String(), limit)
}

// capString truncates s to max bytes on a rune boundary. A non-positive
// max means no cap.
func capString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
