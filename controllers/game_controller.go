package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/socialquest/ai"
	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/middleware"
	"github.com/cppla/socialquest/service"
	"github.com/cppla/socialquest/utils"
)

const (
	maxImportBytes     = 10 << 20
	recentQuestsListed = 5
)

// GameController serves the authenticated game API. Every route works on
// the state of the player named in the JWT.
type GameController struct {
	svc    *service.GameService
	logger *zap.Logger
}

// NewGameController creates a GameController.
func NewGameController(svc *service.GameService, logger *zap.Logger) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameController{svc: svc, logger: logger}
}

type allyRequest struct {
	Name      string   `json:"name" binding:"required"`
	Age       *int     `json:"age"`
	Hobbies   []string `json:"hobbies"`
	Likes     string   `json:"likes"`
	Dislikes  string   `json:"dislikes"`
	OtherInfo string   `json:"otherInfo"`
	Image     string   `json:"image"`
}

func (r allyRequest) input() engine.AllyInput {
	return engine.AllyInput{
		Name:      utils.Sanitize(r.Name),
		Age:       r.Age,
		Hobbies:   utils.SanitizeList(r.Hobbies),
		Likes:     utils.Sanitize(r.Likes),
		Dislikes:  utils.Sanitize(r.Dislikes),
		OtherInfo: utils.Sanitize(r.OtherInfo),
		Image:     strings.TrimSpace(r.Image),
	}
}

type interactionRequest struct {
	AllyID   string     `json:"allyId" binding:"required"`
	Type     string     `json:"type" binding:"required"`
	Notes    string     `json:"notes"`
	Duration float64    `json:"duration"`
	Quality  string     `json:"quality" binding:"required"`
	Tags     []string   `json:"tags"`
	Photos   []string   `json:"photos"`
	Date     *time.Time `json:"date"`
}

type quickLogRequest struct {
	AllyID string `json:"allyId" binding:"required"`
	Type   string `json:"type" binding:"required"`
	Notes  string `json:"notes"`
}

type reminderRequest struct {
	AllyID  string `json:"allyId"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Days    int    `json:"days"`
}

// mutationResponse is the payload of every state-changing route.
type mutationResponse struct {
	engine.Outcome
	State     *engine.State `json:"state"`
	Persisted bool          `json:"persisted"`
}

// GetState refreshes due quests and returns the whole state with derived
// player data.
func (g *GameController) GetState(ctx *gin.Context) {
	res, err := g.svc.Refresh(ctx.Request.Context(), middleware.PlayerID(ctx))
	if res.State == nil {
		g.fail(ctx, err)
		return
	}
	g.respond(ctx, gin.H{
		"state":       res.State,
		"events":      res.Events,
		"nextLevelAt": res.State.SocialLevel * 1000,
	}, err)
}

// CreateAlly adds an ally to the roster.
func (g *GameController) CreateAlly(ctx *gin.Context) {
	var req allyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	in := req.input()
	if in.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	res, err := g.svc.AddAlly(ctx.Request.Context(), middleware.PlayerID(ctx), in)
	g.mutation(ctx, res, err)
}

// UpdateAlly edits an ally's profile.
func (g *GameController) UpdateAlly(ctx *gin.Context) {
	var req allyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	in := req.input()
	if in.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	res, err := g.svc.UpdateAlly(ctx.Request.Context(), middleware.PlayerID(ctx), ctx.Param("id"), in)
	g.mutation(ctx, res, err)
}

// DeleteAlly removes an ally and its interactions.
func (g *GameController) DeleteAlly(ctx *gin.Context) {
	res, err := g.svc.DeleteAlly(ctx.Request.Context(), middleware.PlayerID(ctx), ctx.Param("id"))
	g.mutation(ctx, res, err)
}

// GetAlly returns one ally with bond data and its interactions, newest first.
func (g *GameController) GetAlly(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	a, _ := s.FindAlly(ctx.Param("id"))
	if a == nil {
		g.fail(ctx, engine.ErrAllyNotFound)
		return
	}
	interactions := engine.Collect(engine.Query(s, engine.Filter{AllyID: a.ID, NewestFirst: true}))
	utils.Success(ctx, gin.H{"ally": engine.Summarize(s, *a), "interactions": interactions})
}

// CreateInteraction scores and records an interaction.
func (g *GameController) CreateInteraction(ctx *gin.Context) {
	var req interactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	in := engine.InteractionInput{
		AllyID:   req.AllyID,
		Type:     engine.InteractionType(req.Type),
		Notes:    utils.Sanitize(req.Notes),
		Duration: req.Duration,
		Quality:  engine.Quality(req.Quality),
		Tags:     utils.SanitizeList(req.Tags),
		Photos:   req.Photos,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	res, err := g.svc.RecordInteraction(ctx.Request.Context(), middleware.PlayerID(ctx), in)
	g.mutation(ctx, res, err)
}

// QuickLog records a short positive interaction.
func (g *GameController) QuickLog(ctx *gin.Context) {
	var req quickLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	res, err := g.svc.QuickLog(ctx.Request.Context(), middleware.PlayerID(ctx), req.AllyID,
		engine.InteractionType(req.Type), utils.Sanitize(req.Notes))
	g.mutation(ctx, res, err)
}

// ListInteractions lists the ledger newest first, optionally filtered by
// allyId and type and capped by limit.
func (g *GameController) ListInteractions(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	f := engine.Filter{
		AllyID:      ctx.Query("allyId"),
		Type:        engine.InteractionType(ctx.Query("type")),
		NewestFirst: true,
		Limit:       max(limit, 0),
	}
	utils.Success(ctx, gin.H{"interactions": engine.Collect(engine.Query(s, f))})
}

// ListMemories lists interactions that carry photos.
func (g *GameController) ListMemories(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	memories := engine.Memories(s, ctx.Query("allyId"), engine.InteractionType(ctx.Query("type")))
	utils.Success(ctx, gin.H{"memories": memories})
}

// ListQuests refreshes due quests and lists active and recently completed ones.
func (g *GameController) ListQuests(ctx *gin.Context) {
	res, err := g.svc.Refresh(ctx.Request.Context(), middleware.PlayerID(ctx))
	if res.State == nil {
		g.fail(ctx, err)
		return
	}
	g.respond(ctx, gin.H{
		"active":    engine.ActiveQuests(res.State),
		"completed": engine.RecentlyCompleted(res.State, recentQuestsListed),
		"events":    res.Events,
	}, err)
}

// CompleteQuest marks a quest completed and grants its reward.
func (g *GameController) CompleteQuest(ctx *gin.Context) {
	res, err := g.svc.CompleteQuest(ctx.Request.Context(), middleware.PlayerID(ctx), ctx.Param("id"))
	g.mutation(ctx, res, err)
}

// GenerateQuest asks the model for a personalized quest right away.
func (g *GameController) GenerateQuest(ctx *gin.Context) {
	res, err := g.svc.GenerateQuest(ctx.Request.Context(), middleware.PlayerID(ctx))
	g.mutation(ctx, res, err)
}

// ListAchievements lists the catalog with unlock flags.
func (g *GameController) ListAchievements(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{
		"achievements": engine.Achievements(s),
		"factCount":    engine.FactCount(s),
	})
}

// Leaderboard ranks allies by rxp, bond, improved or recent.
func (g *GameController) Leaderboard(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	filter := engine.LeaderboardFilter(ctx.DefaultQuery("filter", string(engine.ByRXP)))
	switch filter {
	case engine.ByRXP, engine.ByBond, engine.ByImproved, engine.ByRecent:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid leaderboard filter")
		return
	}
	utils.Success(ctx, gin.H{
		"filter":  filter,
		"entries": engine.Leaderboard(s, filter, g.svc.Engine().Now()),
	})
}

// Insights returns strongest bonds, allies needing attention and upcoming
// bond milestones.
func (g *GameController) Insights(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, engine.BuildInsights(s, g.svc.Engine().Now()))
}

// CreateReminder adds a contact or custom reminder.
func (g *GameController) CreateReminder(ctx *gin.Context) {
	var req reminderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	typ := engine.ReminderType(req.Type)
	if typ != "" && typ != engine.ReminderContact && typ != engine.ReminderCustom {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid reminder type")
		return
	}
	rem, s, err := g.svc.AddReminder(ctx.Request.Context(), middleware.PlayerID(ctx), engine.Reminder{
		AllyID:  req.AllyID,
		Type:    typ,
		Message: utils.Sanitize(req.Message),
		Days:    req.Days,
	})
	if s == nil {
		g.fail(ctx, err)
		return
	}
	g.respond(ctx, gin.H{"reminder": rem, "state": s}, err)
}

// DeleteReminder removes a reminder.
func (g *GameController) DeleteReminder(ctx *gin.Context) {
	s, err := g.svc.RemoveReminder(ctx.Request.Context(), middleware.PlayerID(ctx), ctx.Param("id"))
	if s == nil {
		g.fail(ctx, err)
		return
	}
	g.respond(ctx, gin.H{"state": s}, err)
}

// DueReminders evaluates active reminders now.
func (g *GameController) DueReminders(ctx *gin.Context) {
	s, ok := g.snapshot(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{"reminders": engine.EvaluateReminders(s, g.svc.Engine().Now())})
}

// UpdateSettings replaces the client preferences.
func (g *GameController) UpdateSettings(ctx *gin.Context) {
	var req engine.Settings
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	req.Theme = utils.Sanitize(req.Theme)
	s, err := g.svc.UpdateSettings(ctx.Request.Context(), middleware.PlayerID(ctx), req)
	if s == nil {
		g.fail(ctx, err)
		return
	}
	g.respond(ctx, gin.H{"settings": s.Settings, "state": s}, err)
}

// ImportState replaces the player's state with an uploaded snapshot.
func (g *GameController) ImportState(ctx *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxImportBytes+1))
	if err != nil || len(body) > maxImportBytes {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid or oversized state")
		return
	}
	imported, err := engine.Decode(body)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40005, "invalid or oversized state")
		return
	}
	res, err := g.svc.Import(ctx.Request.Context(), middleware.PlayerID(ctx), imported)
	g.mutation(ctx, res, err)
}

func (g *GameController) snapshot(ctx *gin.Context) (*engine.State, bool) {
	s, err := g.svc.Snapshot(ctx.Request.Context(), middleware.PlayerID(ctx))
	if err != nil {
		g.fail(ctx, err)
		return nil, false
	}
	return s, true
}

func (g *GameController) mutation(ctx *gin.Context, res service.Result, err error) {
	if res.State == nil {
		g.fail(ctx, err)
		return
	}
	if res.Events == nil {
		res.Events = []engine.Event{}
	}
	resp := mutationResponse{Outcome: res.Outcome, State: res.State, Persisted: err == nil}
	if err != nil {
		g.logger.Warn("state kept in memory only", zap.String("player", middleware.PlayerID(ctx)), zap.Error(err))
		utils.SuccessUnsaved(ctx, resp)
		return
	}
	utils.Success(ctx, resp)
}

// respond writes data with a persisted flag. err is nil or an ErrPersist.
func (g *GameController) respond(ctx *gin.Context, data gin.H, err error) {
	data["persisted"] = err == nil
	if err != nil {
		g.logger.Warn("state kept in memory only", zap.String("player", middleware.PlayerID(ctx)), zap.Error(err))
		utils.SuccessUnsaved(ctx, data)
		return
	}
	utils.Success(ctx, data)
}

func (g *GameController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrAllyNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "ally not found")
	case errors.Is(err, engine.ErrQuestNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "quest not found")
	case errors.Is(err, engine.ErrReminderNotFound):
		utils.Error(ctx, http.StatusNotFound, 40403, "reminder not found")
	case errors.Is(err, engine.ErrQuestCompleted):
		utils.Error(ctx, http.StatusConflict, 40901, "quest already completed")
	case errors.Is(err, engine.ErrInvalidInteraction):
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid interaction")
	case errors.Is(err, engine.ErrSuggesterMissing):
		utils.Error(ctx, http.StatusServiceUnavailable, 50301, "quest generation is not configured")
	case errors.Is(err, engine.ErrInvalidSuggestion), errors.Is(err, ai.ErrMalformedReply):
		utils.Error(ctx, http.StatusBadGateway, 50201, "model returned an unusable quest")
	default:
		g.logger.Error("game request failed", zap.String("player", middleware.PlayerID(ctx)), zap.Error(err))
		utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
	}
}
