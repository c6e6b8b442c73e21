package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// AppConfig holds file and environment driven configuration values.
// Secrets have no defaults and must come from config.json or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	RateLimitPerMinute int
	AllowedOrigins     []string
	// IANA zone the game calendar runs in; "Local" uses the host zone.
	Timezone string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Persistence: memory, mysql or redis
	StorageBackend string
	DatabaseURI    string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	// Redis for state storage and analysis caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Gemini
	GeminiAPIKey       string
	GeminiModel        string
	AIScoreTimeoutSec  int
	AIQuestTimeoutSec  int
	AICacheTTLSec      int
	QuestIntervalHours int
}

// ScoreTimeout bounds one remote scoring call.
func (c AppConfig) ScoreTimeout() time.Duration {
	return time.Duration(c.AIScoreTimeoutSec) * time.Second
}

// QuestTimeout bounds one remote quest generation call.
func (c AppConfig) QuestTimeout() time.Duration {
	return time.Duration(c.AIQuestTimeoutSec) * time.Second
}

// CacheTTL is how long analysis replies stay cached.
func (c AppConfig) CacheTTL() time.Duration {
	return time.Duration(c.AICacheTTLSec) * time.Second
}

// QuestInterval throttles automatic quest generation.
func (c AppConfig) QuestInterval() time.Duration {
	return time.Duration(c.QuestIntervalHours) * time.Hour
}

// Location resolves Timezone.
func (c AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// AIEnabled reports whether a Gemini key is configured.
func (c AppConfig) AIEnabled() bool { return c.GeminiAPIKey != "" }

// DefaultPath is where the CLI looks for the JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

// LoadFrom builds a configuration with precedence JSON file, then defaults,
// then environment variable overrides. A missing file is not an error.
func LoadFrom(path string) (AppConfig, error) {
	var c AppConfig
	if err := loadJSONConfig(path, &c); err != nil {
		return AppConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	applyDefaults(&c)
	if err := applyEnvOverrides(&c); err != nil {
		return AppConfig{}, err
	}
	if c.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET must be set in config.json or the environment")
	}
	if _, err := c.Location(); err != nil {
		return AppConfig{}, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return c, nil
}

// fileConfig mirrors the grouped layout of config.json.
type fileConfig struct {
	App struct {
		AppPort            string
		JWTSecret          string
		RateLimitPerMinute int
		AllowedOrigins     []string
		Timezone           string
	} `json:"app"`
	Gin struct {
		Mode    string
		LogPath string
	} `json:"gin"`
	Storage struct {
		Backend string
	} `json:"storage"`
	Database struct {
		DatabaseURI string
		DBHost      string
		DBPort      string
		DBUser      string
		DBPassword  string
		DBName      string
	} `json:"database"`
	Redis struct {
		RedisHost     string
		RedisPort     int
		RedisDB       int
		RedisPassword string
	} `json:"redis"`
	Log struct {
		Level      string
		Path       string
		MaxSizeMB  int
		MaxBackups int
		MaxAgeDays int
		Compress   bool
	} `json:"log"`
	AI struct {
		GeminiAPIKey       string
		GeminiModel        string
		ScoreTimeoutSec    int
		QuestTimeoutSec    int
		CacheTTLSec        int
		QuestIntervalHours int
	} `json:"ai"`
}

// loadJSONConfig reads the JSON file into out if present. Returns an error
// only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.Timezone = fc.App.Timezone
	out.GinMode = fc.Gin.Mode
	out.GinPath = fc.Gin.LogPath
	out.StorageBackend = fc.Storage.Backend
	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName
	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword
	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress
	out.GeminiAPIKey = fc.AI.GeminiAPIKey
	out.GeminiModel = fc.AI.GeminiModel
	out.AIScoreTimeoutSec = fc.AI.ScoreTimeoutSec
	out.AIQuestTimeoutSec = fc.AI.QuestTimeoutSec
	out.AICacheTTLSec = fc.AI.CacheTTLSec
	out.QuestIntervalHours = fc.AI.QuestIntervalHours
	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "memory"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "socialquest"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-2.5-flash"
	}
	if c.AIScoreTimeoutSec == 0 {
		c.AIScoreTimeoutSec = 10
	}
	if c.AIQuestTimeoutSec == 0 {
		c.AIQuestTimeoutSec = 20
	}
	if c.AICacheTTLSec == 0 {
		c.AICacheTTLSec = 3600
	}
	if c.QuestIntervalHours == 0 {
		c.QuestIntervalHours = 24
	}
}

// envOverrides lists the recognized variables. Empty strings and zero
// numbers mean unset; booleans and RedisDB are pointers so false and 0 can
// be set explicitly.
type envOverrides struct {
	AppPort            string   `env:"APP_PORT"`
	JWTSecret          string   `env:"JWT_SECRET"`
	RateLimitPerMinute int      `env:"RATE_LIMIT_PER_MINUTE"`
	AllowedOrigins     []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	Timezone           string   `env:"APP_TIMEZONE"`
	GinMode            string   `env:"GIN_MODE"`
	GinPath            string   `env:"GIN_PATH"`
	StorageBackend     string   `env:"STORAGE_BACKEND"`
	DatabaseURI        string   `env:"DATABASE_URI"`
	DBHost             string   `env:"DB_HOST"`
	DBPort             string   `env:"DB_PORT"`
	DBUser             string   `env:"DB_USER"`
	DBPassword         string   `env:"DB_PASSWORD"`
	DBName             string   `env:"DB_NAME"`
	RedisHost          string   `env:"REDIS_HOST"`
	RedisPort          int      `env:"REDIS_PORT"`
	RedisDB            *int     `env:"REDIS_DB"`
	RedisPassword      string   `env:"REDIS_PASSWORD"`
	LogLevel           string   `env:"LOG_LEVEL"`
	LogPath            string   `env:"LOG_PATH"`
	LogMaxSizeMB       int      `env:"LOG_MAX_SIZE_MB"`
	LogMaxBackups      int      `env:"LOG_MAX_BACKUPS"`
	LogMaxAgeDays      int      `env:"LOG_MAX_AGE_DAYS"`
	LogCompress        *bool    `env:"LOG_COMPRESS"`
	GeminiAPIKey       string   `env:"GEMINI_API_KEY"`
	GeminiModel        string   `env:"GEMINI_MODEL"`
	AIScoreTimeoutSec  int      `env:"AI_SCORE_TIMEOUT_SEC"`
	AIQuestTimeoutSec  int      `env:"AI_QUEST_TIMEOUT_SEC"`
	AICacheTTLSec      int      `env:"AI_CACHE_TTL_SEC"`
	QuestIntervalHours int      `env:"QUEST_INTERVAL_HOURS"`
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var e envOverrides
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString(&c.AppPort, e.AppPort)
	setString(&c.JWTSecret, e.JWTSecret)
	setInt(&c.RateLimitPerMinute, e.RateLimitPerMinute)
	if origins := trimList(e.AllowedOrigins); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
	setString(&c.Timezone, e.Timezone)
	setString(&c.GinMode, e.GinMode)
	setString(&c.GinPath, e.GinPath)
	setString(&c.StorageBackend, e.StorageBackend)
	setString(&c.DatabaseURI, e.DatabaseURI)
	setString(&c.DBHost, e.DBHost)
	setString(&c.DBPort, e.DBPort)
	setString(&c.DBUser, e.DBUser)
	setString(&c.DBPassword, e.DBPassword)
	setString(&c.DBName, e.DBName)
	setString(&c.RedisHost, e.RedisHost)
	setInt(&c.RedisPort, e.RedisPort)
	if e.RedisDB != nil {
		c.RedisDB = *e.RedisDB
	}
	setString(&c.RedisPassword, e.RedisPassword)
	setString(&c.LogLevel, e.LogLevel)
	setString(&c.LogPath, e.LogPath)
	setInt(&c.LogMaxSizeMB, e.LogMaxSizeMB)
	setInt(&c.LogMaxBackups, e.LogMaxBackups)
	setInt(&c.LogMaxAgeDays, e.LogMaxAgeDays)
	if e.LogCompress != nil {
		c.LogCompress = *e.LogCompress
	}
	setString(&c.GeminiAPIKey, e.GeminiAPIKey)
	setString(&c.GeminiModel, e.GeminiModel)
	setInt(&c.AIScoreTimeoutSec, e.AIScoreTimeoutSec)
	setInt(&c.AIQuestTimeoutSec, e.AIQuestTimeoutSec)
	setInt(&c.AICacheTTLSec, e.AICacheTTLSec)
	setInt(&c.QuestIntervalHours, e.QuestIntervalHours)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func trimList(items []string) []string {
	out := []string{}
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
