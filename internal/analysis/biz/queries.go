package biz

import (
	"fmt"
	"strings"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
)

// Queries with fewer tokens than this carry too little intent to search.
const minQueryTokens = 4

var segmentQueryTemplates = []string{
	"análise mercado %s Brasil dados estatísticas crescimento",
	"mercado %s Brasil 2024 tendências",
	"concorrentes %s principais players",
	"público-alvo %s perfil demográfico",
	"oportunidades %s gaps mercado",
}

var productQueryTemplates = []string{
	"%s mercado brasileiro análise",
	"%s preço médio Brasil",
	"%s público consumidor perfil",
}

// DeriveQueries builds the deterministic search query set for a request.
// The segment is validated before anything else runs; queries that come
// out shorter than minQueryTokens are discarded.
func DeriveQueries(req *types.AnalysisRequest) ([]string, error) {
	segment := strings.TrimSpace(req.Segment)
	if segment == "" {
		return nil, errors.New(errors.ErrMissingSegment)
	}

	var raw []string
	for _, tmpl := range segmentQueryTemplates {
		raw = append(raw, fmt.Sprintf(tmpl, segment))
	}

	if product := strings.TrimSpace(req.Product); product != "" {
		for _, tmpl := range productQueryTemplates {
			raw = append(raw, fmt.Sprintf(tmpl, product))
		}
	}

	queries := make([]string, 0, len(raw))
	for _, q := range raw {
		if len(strings.Fields(q)) < minQueryTokens {
			continue
		}
		queries = append(queries, q)
	}

	if len(queries) == 0 {
		return nil, errors.New(errors.ErrNoValidQueries)
	}

	return queries, nil
}
