package models

import "time"

// GameState stores one player's aggregate as a JSON document. Level and
// total are copied out of the document for listing and ordering.
type GameState struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlayerKey   string    `gorm:"uniqueIndex;size:128;not null" json:"player_key"`
	Data        string    `gorm:"type:longtext;not null" json:"-"`
	SocialLevel int       `gorm:"not null;default:1" json:"social_level"`
	TotalRXP    int       `gorm:"column:total_rxp;index;not null;default:0" json:"total_rxp"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
