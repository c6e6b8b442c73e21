package utils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("secret", "player-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.PlayerID)
	assert.Equal(t, "player-1", claims.Subject)
}

func TestParseTokenRejects(t *testing.T) {
	tok, err := GenerateToken("secret", "player-1", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken("other", tok)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", "player-1", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = GenerateToken("", "player-1", time.Hour)
	assert.Error(t, err)
	_, err = GenerateToken("secret", "", time.Hour)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  <b>hello</b> "))
	assert.Equal(t, "", Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "Tom & Jerry", Sanitize("Tom & Jerry"))
	assert.Equal(t, []string{"chess", "go"}, SanitizeList([]string{"chess", " <i>go</i>", "", "chess"}))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueStrings([]string{" a", "b", "a ", "  "}))
	assert.Empty(t, UniqueStrings(nil))
}

func TestCacheTwoLevels(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type payload struct{ N int }
	c := NewCache(rdb, "test:", time.Minute)
	c.SetJSON(ctx, "k", payload{N: 7})
	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	// a second cache instance only has the Redis level
	other := NewCache(rdb, "test:", time.Minute)
	var got payload
	require.True(t, other.GetJSON(ctx, "k", &got))
	assert.Equal(t, 7, got.N)

	mr.FlushAll()
	got = payload{}
	require.True(t, other.GetJSON(ctx, "k", &got), "served from the local level")
	assert.Equal(t, 7, got.N)

	assert.False(t, c.GetJSON(ctx, "missing", &got))
}

func TestCacheWithoutRedisAndNil(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil, "", 0)
	c.SetJSON(ctx, "k", []int{1, 2})
	var got []int
	require.True(t, c.GetJSON(ctx, "k", &got))
	assert.Equal(t, []int{1, 2}, got)

	var nilCache *Cache
	nilCache.SetJSON(ctx, "k", 1)
	assert.False(t, nilCache.GetJSON(ctx, "k", &got))
}

func TestHashKeyStable(t *testing.T) {
	a := HashKey(map[string]interface{}{"type": "call", "duration": 1.5})
	b := HashKey(map[string]interface{}{"duration": 1.5, "type": "call"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashKey(map[string]interface{}{"type": "text"}))
}

func TestGinzapAndRecovery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(Ginzap(logger, time.RFC3339, true), RecoveryWithZap(logger, false))
	r.GET("/ok", func(c *gin.Context) {
		c.Set(ContextPlayerKey, "p1")
		Success(c, gin.H{"x": 1})
	})
	r.GET("/boom", func(c *gin.Context) { panic(errors.New("boom")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":0,"message":"success","data":{"x":1}}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":50000`)

	entries := logs.FilterField(zap.String("player", "p1")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/ok", entries[0].Message)
	assert.Equal(t, 1, logs.FilterMessage("[Recovery from panic]").Len())
}

func TestNewRollingFileLogger(t *testing.T) {
	_, err := NewRollingFileLogger("", "info", 1, 1, 1, false)
	assert.Error(t, err)

	l, err := NewRollingFileLogger(t.TempDir()+"/logs/gin.log", "warn", 1, 1, 1, false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))
}
