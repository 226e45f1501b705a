package datastore

import (
	"context"

	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
)

// Datastore is the boundary to the external persistence layer.
//
// Implementations are expected to be safe for concurrent use and to surface
// failures instead of swallowing them; callers decide whether to retry.
type Datastore interface {
	// GetPlayerRating returns the rating record for the (player, game) pair,
	// or a default record (rating 1000) if none has been persisted yet.
	GetPlayerRating(ctx context.Context, playerID string, gameID string) (model.PlayerRating, error)
	SavePlayerRating(ctx context.Context, rating model.PlayerRating) error
	TopPlayerRatings(ctx context.Context, gameID string, limit int) ([]model.PlayerRating, error)

	CreateGameSession(ctx context.Context, session model.GameSession) error
}
