package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/socialquest/ai"
	"github.com/cppla/socialquest/config"
	"github.com/cppla/socialquest/controllers"
	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/models"
	"github.com/cppla/socialquest/routes"
	"github.com/cppla/socialquest/service"
	"github.com/cppla/socialquest/store"
	"github.com/cppla/socialquest/utils"
)

const analysisCachePrefix = "socialquest:analysis:"

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = utils.Logger.Sync() }()
	logger := utils.Logger

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	backend := strings.ToLower(cfg.StorageBackend)
	rdb, err := utils.NewRedisClient(cfg)
	if err != nil {
		if backend == store.BackendRedis {
			return err
		}
		logger.Warn("redis unavailable, analysis cache is process-local", zap.Error(err))
		rdb = nil
	}

	var db *gorm.DB
	if backend == store.BackendMySQL {
		db, err = config.InitDatabase(cfg, &models.GameState{})
		if err != nil {
			return err
		}
	}
	st, err := store.New(backend, db, rdb)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithClock(func() time.Time { return time.Now().In(loc) }),
		engine.WithLogger(logger.Named("engine")),
		engine.WithQuestInterval(cfg.QuestInterval()),
	}
	var (
		analyzer  controllers.InteractionAnalyzer
		suggester engine.QuestSuggester
	)
	if cfg.AIEnabled() {
		gen, err := ai.NewGemini(cmd.Context(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		aiLogger := logger.Named("ai")
		scorer := ai.NewScorer(gen, aiLogger)
		qs := ai.NewQuestSuggester(ai.WithTimeout(gen, cfg.QuestTimeout()), aiLogger)
		analyzer, suggester = scorer, qs
		opts = append(opts,
			engine.WithScorer(engine.NewFallbackScorer(scorer, cfg.ScoreTimeout(), aiLogger)),
			engine.WithSuggester(qs),
		)
		logger.Info("AI scoring enabled", zap.String("model", gen.Model()))
	} else {
		logger.Info("GEMINI_API_KEY not set, scoring with the local formula")
	}

	svc := service.New(engine.New(opts...), st, logger.Named("service"))
	r := routes.SetupRouter(cfg,
		controllers.NewAIController(analyzer, suggester, utils.NewCache(rdb, analysisCachePrefix, cfg.CacheTTL()), cfg.ScoreTimeout(), logger.Named("ai")),
		controllers.NewGameController(svc, logger.Named("http")),
	)

	srv := utils.NewServer(":"+cfg.AppPort, r, utils.DefaultReadTimeout, utils.DefaultWriteTimeout, logger)
	srv.OnShutdown(func() { closeBackends(db, rdb, logger) })

	logger.Info("starting server (graceful)",
		zap.String("port", cfg.AppPort),
		zap.String("storage", cfg.StorageBackend),
		zap.String("timezone", loc.String()),
	)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

func closeBackends(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
