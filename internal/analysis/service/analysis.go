package service

import (
	"encoding/json"
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mktud1/arq503/internal/analysis/biz"
	"github.com/mktud1/arq503/internal/analysis/data"
	"github.com/mktud1/arq503/internal/analysis/types"
	"github.com/mktud1/arq503/internal/pkg/logger"
	"github.com/mktud1/arq503/internal/pkg/response"
)

// PipelineFactory builds one pipeline per request; pipelines are
// single-shot. progress may be nil.
type PipelineFactory func(progress biz.ProgressFunc) *biz.Pipeline

// AnalysisService exposes the pipeline over HTTP.
type AnalysisService struct {
	newPipeline PipelineFactory
	repo        *data.ReportRepo
	logger      *logger.Logger
}

// NewAnalysisService creates the HTTP service. repo may be nil when
// persistence is not configured.
func NewAnalysisService(factory PipelineFactory, repo *data.ReportRepo, log *logger.Logger) *AnalysisService {
	return &AnalysisService{
		newPipeline: factory,
		repo:        repo,
		logger:      log,
	}
}

// CreateAnalysis runs one full analysis synchronously and returns the
// report, or the coded error of the stage that stopped it.
func (s *AnalysisService) CreateAnalysis(c *gin.Context) {
	var req CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	progress := func(stage int, message string) {
		s.logger.Info("analysis progress",
			zap.Int("stage", stage),
			zap.String("message", message))
	}

	pipeline := s.newPipeline(progress)
	report, err := pipeline.Run(c.Request.Context(), &types.AnalysisRequest{
		Segment:        req.Segment,
		Product:        req.Product,
		Price:          req.Price,
		TargetAudience: req.TargetAudience,
		RevenueGoal:    req.RevenueGoal,
	})
	if err != nil {
		response.AppError(c, err)
		return
	}

	serialized, err := json.Marshal(report)
	if err != nil {
		s.logger.Error("failed to serialize finished report", zap.Error(err))
		response.AppError(c, err)
		return
	}

	// The report already passed every gate; a storage failure is logged
	// and the caller still gets the result.
	var id string
	if s.repo != nil {
		id, err = s.repo.Save(c.Request.Context(), report)
		if err != nil {
			s.logger.Error("failed to persist report", zap.Error(err))
			id = ""
		}
	}

	response.Created(c, &AnalysisResponse{ID: id, Report: serialized})
}

// GetAnalysis fetches a stored report by ID.
func (s *AnalysisService) GetAnalysis(c *gin.Context) {
	if s.repo == nil {
		response.NotFound(c, "report storage is not configured")
		return
	}

	id := c.Param("id")
	record, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "analysis not found")
			return
		}
		s.logger.Error("failed to load report", zap.String("id", id), zap.Error(err))
		response.AppError(c, err)
		return
	}

	response.Success(c, &StoredAnalysisResponse{
		ID:                    record.ID,
		Segment:               record.Segment,
		Product:               record.Product,
		Report:                record.Report,
		ReportLength:          record.ReportLength,
		ProcessingTimeSeconds: record.ProcessingTimeSeconds,
		CreatedAt:             record.CreatedAt,
	})
}

// RegisterRoutes mounts the analysis endpoints on a router group.
func (s *AnalysisService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", s.CreateAnalysis)
	rg.GET("/analyses/:id", s.GetAnalysis)
}
