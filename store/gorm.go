package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/socialquest/engine"
	"github.com/cppla/socialquest/models"
)

// GormStore keeps one models.GameState row per player.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the game_states table when missing.
func (g *GormStore) Migrate() error {
	return g.db.AutoMigrate(&models.GameState{})
}

func (g *GormStore) Load(ctx context.Context, key string) (*engine.State, error) {
	var row models.GameState
	err := g.db.WithContext(ctx).Where("player_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return engine.Decode([]byte(row.Data))
}

func (g *GormStore) Save(ctx context.Context, key string, s *engine.State) error {
	b, err := engine.Encode(s)
	if err != nil {
		return err
	}
	row := models.GameState{
		PlayerKey:   key,
		Data:        string(b),
		SocialLevel: s.SocialLevel,
		TotalRXP:    s.TotalRXP,
	}
	// Atomic upsert on the unique player key.
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":         row.Data,
			"social_level": row.SocialLevel,
			"total_rxp":    row.TotalRXP,
			"updated_at":   time.Now(),
		}),
	}).Create(&row).Error
}
