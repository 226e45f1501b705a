package model

import (
	"time"
)

const (
	BASE_RATING     = 1000
	BASE_VOLATILITY = 50.0
)

// PlayerRating is the persisted skill record for one (player, game) pair
type PlayerRating struct {
	PlayerID    string  `json:"playerId" gorm:"primaryKey;size:64"`
	GameID      string  `json:"gameId" gorm:"primaryKey;size:64"`
	Rating      int     `json:"rating"`
	GamesPlayed int     `json:"gamesPlayed"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Draws       int     `json:"draws"`
	Volatility  float64 `json:"volatility"`

	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// NewPlayerRating returns the default record handed out on first lookup
func NewPlayerRating(playerID string, gameID string) PlayerRating {
	return PlayerRating{
		PlayerID:   playerID,
		GameID:     gameID,
		Rating:     BASE_RATING,
		Volatility: BASE_VOLATILITY,
	}
}

const (
	SESSION_STATUS_PENDING  = "pending"
	SESSION_STATUS_ACTIVE   = "active"
	SESSION_STATUS_FINISHED = "finished"
)

// GameSession is the persisted record of a session spawned from a formed match
type GameSession struct {
	ID        string   `json:"id" gorm:"primaryKey;size:64"`
	GameID    string   `json:"gameId" gorm:"size:64;index"`
	Status    string   `json:"status" gorm:"size:16"`
	PlayerIDs []string `json:"playerIds" gorm:"serializer:json"`
	AvgRating int      `json:"avgRating"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
