package matchmaking

import (
	"github.com/hallyl1978/AheryusGameBOX/rating"
)

type JoinQueueRequest struct {
	GameID      string            `json:"gameId"`
	Preferences map[string]string `json:"preferences,omitempty"`
}

type MatchResultRequest struct {
	GameID   string                `json:"gameId"`
	Outcomes []rating.MatchOutcome `json:"outcomes"`
}
