package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/errors"
	"github.com/mktud1/arq503/internal/pkg/logger"
)

// State is the pipeline's lifecycle position. Failed is absorbing: a
// failed pipeline never produces anything again.
type State int

const (
	StateIdle State = iota
	StateGathering
	StateValidating
	StateGenerating
	StateAssembling
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGathering:
		return "gathering"
	case StateValidating:
		return "validating"
	case StateGenerating:
		return "generating"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Pipeline runs one analysis end to end. It is single-shot: Run may be
// called once per instance, and the first error at any stage is final.
type Pipeline struct {
	gatherer  *EvidenceGatherer
	gateCfg   GateConfig
	generator *SectionGenerator
	assembler *ReportAssembler
	progress  ProgressFunc
	logger    *logger.Logger

	mu    sync.Mutex
	state State
}

// NewPipeline assembles a pipeline over the given components. progress
// may be nil.
func NewPipeline(gatherer *EvidenceGatherer, gateCfg GateConfig, generator *SectionGenerator, assembler *ReportAssembler, progress ProgressFunc, log *logger.Logger) *Pipeline {
	return &Pipeline{
		gatherer:  gatherer,
		gateCfg:   gateCfg,
		generator: generator,
		assembler: assembler,
		progress:  progress,
		logger:    log,
		state:     StateIdle,
	}
}

// State reports the current lifecycle position.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// fail moves the pipeline to Failed and passes the error through
// unchanged, so the caller sees the stage's own code.
func (p *Pipeline) fail(stage string, err error) error {
	p.setState(StateFailed)
	p.logger.Error("analysis run failed",
		zap.String("stage", stage),
		zap.Error(err))
	return err
}

// Run executes the full analysis for req. It returns either a report that
// passed every gate or the first error encountered.
func (p *Pipeline) Run(ctx context.Context, req *types.AnalysisRequest) (*types.AnalysisReport, error) {
	p.mu.Lock()
	if p.state != StateIdle {
		state := p.state
		p.mu.Unlock()
		return nil, errors.Newf(errors.ErrInternalServer,
			"pipeline already ran (state %s); create a new one per request", state)
	}
	p.state = StateGathering
	p.mu.Unlock()

	start := time.Now()

	queries, err := DeriveQueries(req)
	if err != nil {
		return nil, p.fail("queries", err)
	}

	p.logger.Info("starting analysis run",
		zap.String("segment", req.Segment),
		zap.Int("queries", len(queries)))

	bundle, err := p.gatherer.Gather(ctx, queries, p.progress)
	if err != nil {
		return nil, p.fail("gathering", err)
	}

	p.setState(StateValidating)
	notify(p.progress, StageValidate, fmt.Sprintf(
		"validating evidence: %d results, %d pages",
		len(bundle.SearchResults), len(bundle.ExtractedPages)))

	if err := ValidateEvidence(bundle, p.gateCfg); err != nil {
		return nil, p.fail("validating", err)
	}

	p.setState(StateGenerating)
	produced := make(map[string]json.RawMessage, len(Sections))
	for i, spec := range Sections {
		notify(p.progress, StageFirstSection+i, "generating section: "+spec.Name)

		payload, err := p.generator.Generate(ctx, spec, req, bundle, produced)
		if err != nil {
			return nil, p.fail("generating:"+spec.Name, err)
		}
		produced[spec.Name] = payload
	}

	p.setState(StateAssembling)
	notify(p.progress, StageAssemble, "assembling final report")

	report, err := p.assembler.Assemble(req, bundle, produced, time.Since(start))
	if err != nil {
		return nil, p.fail("assembling", err)
	}

	p.setState(StateDone)
	p.logger.Info("analysis run complete",
		zap.String("segment", req.Segment),
		zap.Int("report_length", report.Metadata.ReportLength),
		zap.Float64("seconds", report.Metadata.ProcessingTimeSeconds))

	return report, nil
}
