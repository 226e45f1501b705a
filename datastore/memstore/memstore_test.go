package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
)

func TestGetPlayerRating(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown player gets the default record", func(t *testing.T) {
		store := New()

		record, err := store.GetPlayerRating(ctx, "user1", "G")
		require.NoError(t, err)
		require.Equal(t, model.BASE_RATING, record.Rating)
		require.Equal(t, model.BASE_VOLATILITY, record.Volatility)
		require.Equal(t, 0, record.GamesPlayed)
	})

	t.Run("saved record round-trips", func(t *testing.T) {
		store := New()

		record := model.NewPlayerRating("user1", "G")
		record.Rating = 1700
		record.Wins = 3
		require.NoError(t, store.SavePlayerRating(ctx, record))

		loaded, err := store.GetPlayerRating(ctx, "user1", "G")
		require.NoError(t, err)
		require.Equal(t, 1700, loaded.Rating)
		require.Equal(t, 3, loaded.Wins)
	})

	t.Run("records are scoped per game", func(t *testing.T) {
		store := New()

		record := model.NewPlayerRating("user1", "gameA")
		record.Rating = 2000
		require.NoError(t, store.SavePlayerRating(ctx, record))

		other, err := store.GetPlayerRating(ctx, "user1", "gameB")
		require.NoError(t, err)
		require.Equal(t, model.BASE_RATING, other.Rating)
	})
}

func TestTopPlayerRatings(t *testing.T) {
	ctx := context.Background()

	t.Run("ordered best first and limited", func(t *testing.T) {
		store := New()

		for _, seed := range []struct {
			playerID string
			rating   int
		}{
			{"low", 900},
			{"top", 2400},
			{"mid", 1500},
		} {
			record := model.NewPlayerRating(seed.playerID, "G")
			record.Rating = seed.rating
			require.NoError(t, store.SavePlayerRating(ctx, record))
		}

		top, err := store.TopPlayerRatings(ctx, "G", 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		require.Equal(t, "top", top[0].PlayerID)
		require.Equal(t, "mid", top[1].PlayerID)
	})

	t.Run("other games are excluded", func(t *testing.T) {
		store := New()

		record := model.NewPlayerRating("user1", "other")
		record.Rating = 3000
		require.NoError(t, store.SavePlayerRating(ctx, record))

		top, err := store.TopPlayerRatings(ctx, "G", 10)
		require.NoError(t, err)
		require.Empty(t, top)
	})
}

func TestCreateGameSession(t *testing.T) {
	store := New()

	session := model.GameSession{
		ID:        "session1",
		GameID:    "G",
		Status:    model.SESSION_STATUS_PENDING,
		PlayerIDs: []string{"user1", "user2"},
		AvgRating: 1510,
	}
	require.NoError(t, store.CreateGameSession(context.Background(), session))

	loaded, exists := store.GetGameSession("session1")
	require.True(t, exists)
	require.Equal(t, session.PlayerIDs, loaded.PlayerIDs)
}
