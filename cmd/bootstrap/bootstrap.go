// Package bootstrap assembles the service from its configuration: database,
// cache, analysis components, engine, and streaming processor.
package bootstrap

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/leon-madara/ResonaAI-sub003/pkg/baseline"
	"github.com/leon-madara/ResonaAI-sub003/pkg/cache"
	"github.com/leon-madara/ResonaAI-sub003/pkg/config"
	"github.com/leon-madara/ResonaAI-sub003/pkg/database"
	"github.com/leon-madara/ResonaAI-sub003/pkg/dissonance"
	"github.com/leon-madara/ResonaAI-sub003/pkg/emotion"
	"github.com/leon-madara/ResonaAI-sub003/pkg/engine"
	"github.com/leon-madara/ResonaAI-sub003/pkg/features"
	"github.com/leon-madara/ResonaAI-sub003/pkg/logger"
	"github.com/leon-madara/ResonaAI-sub003/pkg/micromoment"
	"github.com/leon-madara/ResonaAI-sub003/pkg/preprocess"
	"github.com/leon-madara/ResonaAI-sub003/pkg/sentiment"
	"github.com/leon-madara/ResonaAI-sub003/pkg/streaming"
	"github.com/prometheus/client_golang/prometheus"
)

// Service is the assembled application.
type Service struct {
	DB       *gorm.DB
	Cache    cache.Cache
	Engine   *engine.Engine
	Streams  *streaming.Processor
	Registry *prometheus.Registry
}

// Build constructs every component from GlobalConfig. The caller owns
// shutdown via Close.
func Build(log *zap.Logger) (*Service, error) {
	cfg := config.GlobalConfig

	var store baseline.Store
	var db *gorm.DB
	if cfg.Database.Driver == "memory" {
		store = baseline.NewMemoryStore()
	} else {
		var err error
		db, err = database.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		gormStore := baseline.NewGormStore(db)
		if err := gormStore.AutoMigrate(); err != nil {
			return nil, err
		}
		store = gormStore
	}

	resultCache, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, err
	}

	classifier, err := emotion.NewClassifier(cfg.Emotion, log)
	if err != nil {
		return nil, err
	}

	var sentimentModel sentiment.Model
	if cfg.Sentiment.Provider == "remote" {
		sentimentModel = sentiment.NewRemoteModel(cfg.Sentiment.Remote)
	} else {
		sentimentModel = sentiment.NewLexiconModel()
	}
	analyzer, err := sentiment.New(cfg.Sentiment.Analyzer, sentimentModel, log)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := engine.NewMetrics(registry)
	eng := engine.New(cfg.Engine, engine.Components{
		Preprocessor: preprocess.New(cfg.Audio, log),
		Extractor:    features.New(cfg.Features, features.NewRestEmbedder(cfg.Embedding, log), log),
		Classifier:   classifier,
		Sentiment:    analyzer,
		Dissonance:   dissonance.New(dissonance.DefaultConfig(), log),
		MicroMoment:  micromoment.New(micromoment.DefaultConfig(), log),
		Baseline:     baseline.New(cfg.Baseline, store, log),
		Metrics:      metrics,
	}, log)

	streams := streaming.New(cfg.Streaming, eng, log)
	streams.SetChunkCounter(metrics.ChunksTotal)

	return &Service{
		DB:       db,
		Cache:    resultCache,
		Engine:   eng,
		Streams:  streams,
		Registry: registry,
	}, nil
}

// Close releases the engine pool, streams and cache.
func (s *Service) Close() {
	s.Streams.Close()
	s.Engine.Close()
	if err := s.Cache.Close(); err != nil {
		logger.Warn("cache close failed", zap.Error(err))
	}
}

// LogConfigInfo prints the effective configuration at startup.
func LogConfigInfo() {
	cfg := config.GlobalConfig
	logger.Info("configuration loaded",
		zap.String("addr", cfg.Server.Addr),
		zap.String("mode", cfg.Server.Mode),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("cache_type", cfg.Cache.Type),
		zap.String("sentiment_provider", cfg.Sentiment.Provider),
		zap.String("emotion_model", cfg.Emotion.ModelPath),
		zap.Int("analysis_workers", cfg.Engine.Workers),
		zap.Duration("request_timeout", cfg.Engine.RequestTimeout),
		zap.Int("baseline_min_sessions", cfg.Baseline.MinSessions),
	)
}
