package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/socialquest/ai"
	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/utils"
)

var errAIDisabled = errors.New("AI service is not configured")

// InteractionAnalyzer scores an interaction and explains the score.
type InteractionAnalyzer interface {
	Analyze(ctx context.Context, req engine.ScoreRequest) (ai.Analysis, error)
}

// AIController exposes the scoring and quest suggestion proxy used by
// clients that keep their state locally. Responses use the flat
// {success, ...} shape those clients expect.
type AIController struct {
	analyzer  InteractionAnalyzer
	suggester engine.QuestSuggester
	cache     *utils.Cache
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAIController creates an AIController. analyzer and suggester may be nil
// when no model is configured; requests then fail so clients fall back.
func NewAIController(analyzer InteractionAnalyzer, suggester engine.QuestSuggester, cache *utils.Cache, timeout time.Duration, logger *zap.Logger) *AIController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIController{analyzer: analyzer, suggester: suggester, cache: cache, timeout: timeout, logger: logger}
}

// Health reports that the API is up.
func (a *AIController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Backend API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// AnalyzeInteraction asks the model for the RXP of an interaction.
func (a *AIController) AnalyzeInteraction(ctx *gin.Context) {
	var req engine.ScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request payload"})
		return
	}
	if a.analyzer == nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errAIDisabled.Error()})
		return
	}

	cacheKey := utils.HashKey(req)
	var analysis ai.Analysis
	if a.cache.GetJSON(ctx.Request.Context(), cacheKey, &analysis) {
		ctx.JSON(http.StatusOK, gin.H{"success": true, "rxp": analysis.RXP, "reasoning": analysis.Reasoning})
		return
	}

	c, cancel := a.withTimeout(ctx.Request.Context())
	defer cancel()
	analysis, err := a.analyzer.Analyze(c, req)
	if err != nil {
		a.logger.Warn("analyze interaction failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	a.cache.SetJSON(ctx.Request.Context(), cacheKey, analysis)
	ctx.JSON(http.StatusOK, gin.H{"success": true, "rxp": analysis.RXP, "reasoning": analysis.Reasoning})
}

// GenerateQuest suggests a personalized quest from a client-side game state.
func (a *AIController) GenerateQuest(ctx *gin.Context) {
	var req struct {
		GameData json.RawMessage `json:"gameData"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.GameData) == 0 || string(req.GameData) == "null" {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Missing gameData in request body"})
		return
	}
	state, err := engine.Decode(req.GameData)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid gameData"})
		return
	}
	if a.suggester == nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errAIDisabled.Error()})
		return
	}

	c, cancel := a.withTimeout(ctx.Request.Context())
	defer cancel()
	sug, err := a.suggester.SuggestQuest(c, state)
	if err != nil {
		a.logger.Warn("generate quest failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "quest": sug})
}

func (a *AIController) withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, a.timeout)
}
