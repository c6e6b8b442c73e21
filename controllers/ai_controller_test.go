package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/socialquest/ai"
	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type countingAnalyzer struct {
	calls int
	err   error
}

func (c *countingAnalyzer) Analyze(_ context.Context, req engine.ScoreRequest) (ai.Analysis, error) {
	c.calls++
	if c.err != nil {
		return ai.Analysis{}, c.err
	}
	return ai.Analysis{RXP: engine.CalculateRXP(req.Type, req.Duration, req.Quality), Reasoning: "fine"}, nil
}

type stubSuggester struct {
	sug engine.QuestSuggestion
	err error
	got *engine.State
}

func (s *stubSuggester) SuggestQuest(_ context.Context, st *engine.State) (engine.QuestSuggestion, error) {
	s.got = st
	return s.sug, s.err
}

func aiRouter(a *AIController) *gin.Engine {
	r := gin.New()
	r.GET("/api/health", a.Health)
	r.POST("/api/analyze-interaction", a.AnalyzeInteraction)
	r.POST("/api/generate-quest", a.GenerateQuest)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := aiRouter(NewAIController(nil, nil, nil, 0, nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"timestamp"`)
}

func TestAnalyzeInteractionCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	analyzer := &countingAnalyzer{}
	r := aiRouter(NewAIController(analyzer, nil, utils.NewCache(rdb, "analysis:", 0), 0, nil))
	body := `{"notes":"coffee","type":"hangout","duration":2,"quality":"positive"}`

	w := post(r, "/api/analyze-interaction", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"rxp":48,"reasoning":"fine"}`, w.Body.String())

	w = post(r, "/api/analyze-interaction", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, analyzer.calls)
	assert.Len(t, mr.Keys(), 1)
}

func TestAnalyzeInteractionFailures(t *testing.T) {
	r := aiRouter(NewAIController(&countingAnalyzer{err: errors.New("quota exceeded")}, nil, nil, 0, nil))
	w := post(r, "/api/analyze-interaction", `{"type":"text","quality":"neutral"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"quota exceeded"}`, w.Body.String())

	w = post(r, "/api/analyze-interaction", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r = aiRouter(NewAIController(nil, nil, nil, 0, nil))
	w = post(r, "/api/analyze-interaction", `{"type":"text","quality":"neutral"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestGenerateQuestEndpoint(t *testing.T) {
	sug := &stubSuggester{sug: engine.QuestSuggestion{Title: "Picnic", Description: "Pack lunch for Sam", Reward: 90}}
	r := aiRouter(NewAIController(nil, sug, nil, 0, nil))

	w := post(r, "/api/generate-quest", `{"gameData":{"totalRXP":120,"allies":[{"id":"a1","name":"Sam","rxp":60}]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"quest":{"title":"Picnic","description":"Pack lunch for Sam","reward":90}}`, w.Body.String())
	require.NotNil(t, sug.got)
	assert.Equal(t, 120, sug.got.TotalRXP)
	assert.Len(t, sug.got.Allies, 1)

	w = post(r, "/api/generate-quest", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing gameData")

	sug.err = ai.ErrMalformedReply
	w = post(r, "/api/generate-quest", `{"gameData":{}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
