package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mktud1/arq503/internal/analysis/biz"
	"github.com/mktud1/arq503/internal/analysis/data"
	"github.com/mktud1/arq503/internal/analysis/service"
	"github.com/mktud1/arq503/internal/conf"
	"github.com/mktud1/arq503/internal/extractor"
	"github.com/mktud1/arq503/internal/pkg/database"
	"github.com/mktud1/arq503/internal/pkg/logger"
	"github.com/mktud1/arq503/internal/server"
	"github.com/mktud1/arq503/internal/websearch/provider"
	searchtypes "github.com/mktud1/arq503/internal/websearch/types"

	aiclient "github.com/mktud1/arq503/internal/ai"
)

func main() {
	confPath := flag.String("conf", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := conf.LoadConfig(*confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	logCfg.EnableStacktrace = cfg.Log.EnableStacktrace
	if cfg.Log.File.Filename != "" {
		logCfg.File = logger.FileConfig{
			Filename:   cfg.Log.File.Filename,
			MaxSize:    cfg.Log.File.MaxSize,
			MaxAge:     cfg.Log.File.MaxAge,
			MaxBackups: cfg.Log.File.MaxBackups,
			Compress:   cfg.Log.File.Compress,
		}
	}

	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Report storage is optional; the pipeline itself never depends on it.
	var repo *data.ReportRepo
	if cfg.Database.Host != "" {
		dbCfg := database.DefaultConfig()
		dbCfg.Host = cfg.Database.Host
		dbCfg.Port = cfg.Database.Port
		dbCfg.User = cfg.Database.User
		dbCfg.Password = cfg.Database.Password
		dbCfg.DBName = cfg.Database.DBName
		if cfg.Database.SSLMode != "" {
			dbCfg.SSLMode = cfg.Database.SSLMode
		}
		db, err := database.New(dbCfg, log)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		repo = data.NewReportRepo(db)
		if err := repo.Migrate(); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
	} else {
		log.Warn("database not configured; reports will not be persisted")
	}

	searchProvider, err := provider.NewFactory().Create(&searchtypes.ProviderConfig{
		ID:                searchtypes.ProviderID(cfg.Search.Provider),
		Name:              cfg.Search.Provider,
		APIHost:           cfg.Search.APIHost,
		APIKey:            cfg.Search.APIKey,
		BasicAuthUsername: cfg.Search.BasicAuthUsername,
		BasicAuthPassword: cfg.Search.BasicAuthPassword,
		Timeout:           cfg.Search.Timeout,
		MaxRetries:        cfg.Search.MaxRetries,
	})
	if err != nil {
		log.Fatal("failed to create search provider", zap.Error(err))
	}

	completer, err := aiclient.NewClient(&cfg.AI)
	if err != nil {
		log.Fatal("failed to create completion client", zap.Error(err))
	}

	searcher := data.NewProviderSearcher(searchProvider)
	pageExtractor := data.NewReadabilityExtractor(
		extractor.New(time.Duration(cfg.Search.Timeout)*time.Second, log.Named("extractor")))

	gathererCfg := biz.GathererConfig{
		MaxResultsPerQuery: cfg.Analysis.MaxResultsPerQuery,
		MaxUniqueURLs:      cfg.Analysis.MaxUniqueURLs,
		MinPageChars:       cfg.Analysis.MinPageChars,
		QueryDelay:         cfg.Analysis.QueryDelay,
		PageDelay:          cfg.Analysis.PageDelay,
	}
	gateCfg := biz.GateConfig{
		MinSearchResults:  cfg.Analysis.MinSearchResults,
		MinExtractedPages: cfg.Analysis.MinExtractedPages,
	}
	assemblerCfg := biz.AssemblerConfig{
		MinReportChars: cfg.Analysis.MinReportChars,
	}

	pipelineLog := log.Named("pipeline")
	factory := func(progress biz.ProgressFunc) *biz.Pipeline {
		return biz.NewPipeline(
			biz.NewEvidenceGatherer(searcher, pageExtractor, gathererCfg, pipelineLog),
			gateCfg,
			biz.NewSectionGenerator(completer, pipelineLog),
			biz.NewReportAssembler(assemblerCfg),
			progress,
			pipelineLog,
		)
	}

	analysisService := service.NewAnalysisService(factory, repo, log.Named("service"))
	httpServer := server.NewHTTPServer(cfg, log.Logger, analysisService)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Stop(ctx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
