package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/socialquest/config"
	"github.com/cppla/socialquest/controllers"
	"github.com/cppla/socialquest/middleware"
	"github.com/cppla/socialquest/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, aiController *controllers.AIController, gameController *controllers.GameController) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Request logs go to their own rolling file when GinPath is set
	gl := utils.Logger
	if cfg.GinPath != "" {
		fileLogger, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
		if err != nil {
			utils.Logger.Warn("gin file logger unavailable, using app logger", zap.Error(err))
		} else {
			gl = fileLogger
		}
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	api.GET("/health", aiController.Health)

	// Routes that may wait on the model share one per-IP budget
	aiLimit := middleware.RateLimitMiddleware(cfg.RateLimitPerMinute)

	aiGroup := api.Group("")
	aiGroup.Use(aiLimit)
	aiGroup.POST("/analyze-interaction", aiController.AnalyzeInteraction)
	aiGroup.POST("/generate-quest", aiController.GenerateQuest)

	game := api.Group("/v1/game")
	game.Use(middleware.AuthRequired(cfg.JWTSecret))
	game.GET("/state", gameController.GetState)
	game.PUT("/state", gameController.ImportState)
	game.PUT("/settings", gameController.UpdateSettings)

	game.POST("/allies", gameController.CreateAlly)
	game.GET("/allies/:id", gameController.GetAlly)
	game.PUT("/allies/:id", gameController.UpdateAlly)
	game.DELETE("/allies/:id", gameController.DeleteAlly)

	game.GET("/interactions", gameController.ListInteractions)
	game.POST("/interactions/quick", gameController.QuickLog)
	game.GET("/memories", gameController.ListMemories)

	game.GET("/quests", gameController.ListQuests)
	game.POST("/quests/:id/complete", gameController.CompleteQuest)

	game.GET("/achievements", gameController.ListAchievements)
	game.GET("/leaderboard", gameController.Leaderboard)
	game.GET("/insights", gameController.Insights)

	game.POST("/reminders", gameController.CreateReminder)
	game.DELETE("/reminders/:id", gameController.DeleteReminder)
	game.GET("/reminders/due", gameController.DueReminders)

	scored := game.Group("")
	scored.Use(aiLimit)
	scored.POST("/interactions", gameController.CreateInteraction)
	scored.POST("/quests/generate", gameController.GenerateQuest)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
