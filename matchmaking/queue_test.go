package matchmaking

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
)

func newTestEntry(playerID string, ratingValue int) *QueueEntry {
	return &QueueEntry{
		ID:       playerID + "_entry",
		PlayerID: playerID,
		GameID:   "game1",
		Rating:   ratingValue,
		JoinedAt: time.Now(),
	}
}

func TestGameQueueInsert(t *testing.T) {
	t.Run("insert appends to the back", func(t *testing.T) {
		gq := NewGameQueue()

		pos, err := gq.Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)
		require.Equal(t, 0, pos)

		pos, err = gq.Insert(newTestEntry("user2", 1600))
		require.NoError(t, err)
		require.Equal(t, 1, pos)
	})

	t.Run("duplicate player is rejected and queue unchanged", func(t *testing.T) {
		gq := NewGameQueue()

		_, err := gq.Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)

		_, err = gq.Insert(newTestEntry("user1", 1700))
		require.ErrorIs(t, err, matchmaking_errors.ErrDuplicateEntry)
		require.Equal(t, 1, gq.Len())
		require.Equal(t, 1500, gq.Snapshot()[0].Rating)
	})
}

func TestGameQueueRemove(t *testing.T) {
	t.Run("remove is idempotent", func(t *testing.T) {
		gq := NewGameQueue()
		_, err := gq.Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)

		require.True(t, gq.Remove("user1"))
		require.False(t, gq.Remove("user1"))
		require.Equal(t, 0, gq.Len())
	})

	t.Run("removing an absent player reports false", func(t *testing.T) {
		gq := NewGameQueue()
		require.False(t, gq.Remove("ghost"))
	})

	t.Run("removeAll removes exactly the given players", func(t *testing.T) {
		gq := NewGameQueue()
		for i := 0; i < 4; i++ {
			_, err := gq.Insert(newTestEntry(fmt.Sprintf("user%d", i), 1500+i))
			require.NoError(t, err)
		}

		gq.RemoveAll([]string{"user0", "user2"})

		snapshot := gq.Snapshot()
		require.Len(t, snapshot, 2)
		require.Equal(t, "user1", snapshot[0].PlayerID)
		require.Equal(t, "user3", snapshot[1].PlayerID)
	})
}

func TestGameQueueSnapshot(t *testing.T) {
	t.Run("snapshot preserves join order", func(t *testing.T) {
		gq := NewGameQueue()
		for i := 0; i < 5; i++ {
			_, err := gq.Insert(newTestEntry(fmt.Sprintf("user%d", i), 2000-i*100))
			require.NoError(t, err)
		}

		snapshot := gq.Snapshot()
		for i, entry := range snapshot {
			require.Equal(t, fmt.Sprintf("user%d", i), entry.PlayerID)
		}
	})

	t.Run("snapshot is a copy, later mutation does not leak", func(t *testing.T) {
		gq := NewGameQueue()
		_, err := gq.Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)

		snapshot := gq.Snapshot()
		gq.Remove("user1")
		require.Len(t, snapshot, 1)
	})
}

func TestQueuesPerGameIsolation(t *testing.T) {
	t.Run("same player may queue for different games", func(t *testing.T) {
		queues := NewQueues()

		_, err := queues.Get("gameA").Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)
		_, err = queues.Get("gameB").Insert(newTestEntry("user1", 1500))
		require.NoError(t, err)

		require.Equal(t, 1, queues.Get("gameA").Len())
		require.Equal(t, 1, queues.Get("gameB").Len())
	})

	t.Run("concurrent inserts across games", func(t *testing.T) {
		queues := NewQueues()

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			gameID := fmt.Sprintf("game%d", g)
			for p := 0; p < 20; p++ {
				wg.Add(1)
				go func(gameID, playerID string) {
					defer wg.Done()
					_, err := queues.Get(gameID).Insert(&QueueEntry{
						ID:       playerID + "_entry",
						PlayerID: playerID,
						GameID:   gameID,
						Rating:   1500,
						JoinedAt: time.Now(),
					})
					require.NoError(t, err)
				}(gameID, fmt.Sprintf("player%d", p))
			}
		}
		wg.Wait()

		for g := 0; g < 8; g++ {
			require.Equal(t, 20, queues.Get(fmt.Sprintf("game%d", g)).Len())
		}
	})
}
