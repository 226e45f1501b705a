package matchmaking

import (
	"sync"
	"time"

	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
)

// QueueEntry is one player waiting for a match in one game
type QueueEntry struct {
	ID          string
	PlayerID    string
	GameID      string
	Rating      int
	Preferences map[string]string
	JoinedAt    time.Time
}

// GameQueue holds the waiting players for a single game.
//
// All mutation runs under the queue's own lock; queues for different games
// never contend with each other. Entries are kept in join order, so the
// backing slice doubles as the join-time ascending ordering.
type GameQueue struct {
	mu      sync.RWMutex
	entries []*QueueEntry
}

func NewGameQueue() *GameQueue {
	return &GameQueue{}
}

// Insert appends the entry to the back of the queue and returns its position.
// A player may hold at most one live entry per game.
func (gq *GameQueue) Insert(entry *QueueEntry) (position int, err error) {
	gq.mu.Lock()
	defer gq.mu.Unlock()

	for _, existing := range gq.entries {
		if existing.PlayerID == entry.PlayerID {
			err = matchmaking_errors.ErrDuplicateEntry
			return
		}
	}

	gq.entries = append(gq.entries, entry)
	position = len(gq.entries) - 1
	return
}

// Remove drops the entry for a player if present. Removing an absent player
// is not an error, the return value reports whether anything happened.
func (gq *GameQueue) Remove(playerID string) (removed bool) {
	gq.mu.Lock()
	defer gq.mu.Unlock()
	return gq.removeLocked(playerID)
}

func (gq *GameQueue) removeLocked(playerID string) bool {
	for i, entry := range gq.entries {
		if entry.PlayerID == playerID {
			gq.entries = append(gq.entries[:i], gq.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops the entries for all given players in one critical section;
// no reader ever observes a partially removed match.
func (gq *GameQueue) RemoveAll(playerIDs []string) {
	gq.mu.Lock()
	defer gq.mu.Unlock()
	for _, playerID := range playerIDs {
		gq.removeLocked(playerID)
	}
}

// Snapshot returns a copy of the queue in join-time ascending order.
// The copy may be stale by the time the caller reads it.
func (gq *GameQueue) Snapshot() []QueueEntry {
	gq.mu.RLock()
	defer gq.mu.RUnlock()

	snapshot := make([]QueueEntry, len(gq.entries))
	for i, entry := range gq.entries {
		snapshot[i] = *entry
	}
	return snapshot
}

// Len returns the current number of waiting players
func (gq *GameQueue) Len() int {
	gq.mu.RLock()
	defer gq.mu.RUnlock()
	return len(gq.entries)
}

// Queues is the set of per-game queues, created on demand
type Queues struct {
	mu    sync.RWMutex
	games map[string]*GameQueue
}

func NewQueues() *Queues {
	return &Queues{
		games: make(map[string]*GameQueue),
	}
}

// Get returns the queue for a game, creating it on first use
func (q *Queues) Get(gameID string) *GameQueue {
	q.mu.RLock()
	gq, exists := q.games[gameID]
	q.mu.RUnlock()
	if exists {
		return gq
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if gq, exists = q.games[gameID]; !exists {
		gq = NewGameQueue()
		q.games[gameID] = gq
	}
	return gq
}
