// Package memstore is an in-process Datastore used for development and tests.
// Nothing here survives a restart; queued players simply rejoin.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
)

type MemoryStore struct {
	sync.RWMutex

	ratings  map[string]model.PlayerRating
	sessions map[string]model.GameSession
}

func New() (ms *MemoryStore) {
	return &MemoryStore{
		ratings:  make(map[string]model.PlayerRating),
		sessions: make(map[string]model.GameSession),
	}
}

func ratingKey(playerID string, gameID string) string {
	return gameID + ":" + playerID
}

func (ms *MemoryStore) GetPlayerRating(ctx context.Context, playerID string, gameID string) (model.PlayerRating, error) {
	ms.RLock()
	defer ms.RUnlock()

	if rating, exists := ms.ratings[ratingKey(playerID, gameID)]; exists {
		return rating, nil
	}
	return model.NewPlayerRating(playerID, gameID), nil
}

func (ms *MemoryStore) SavePlayerRating(ctx context.Context, rating model.PlayerRating) error {
	ms.Lock()
	defer ms.Unlock()

	ms.ratings[ratingKey(rating.PlayerID, rating.GameID)] = rating
	return nil
}

func (ms *MemoryStore) TopPlayerRatings(ctx context.Context, gameID string, limit int) ([]model.PlayerRating, error) {
	ms.RLock()
	top := make([]model.PlayerRating, 0, limit)
	for _, rating := range ms.ratings {
		if rating.GameID == gameID {
			top = append(top, rating)
		}
	}
	ms.RUnlock()

	sort.Slice(top, func(i, j int) bool {
		return top[i].Rating > top[j].Rating
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (ms *MemoryStore) CreateGameSession(ctx context.Context, session model.GameSession) error {
	ms.Lock()
	defer ms.Unlock()

	ms.sessions[session.ID] = session
	return nil
}

// GetGameSession is used by tests to inspect what was persisted
func (ms *MemoryStore) GetGameSession(sessionID string) (model.GameSession, bool) {
	ms.RLock()
	defer ms.RUnlock()

	session, exists := ms.sessions[sessionID]
	return session, exists
}
