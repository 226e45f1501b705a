package matchmaking

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/memstore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
	"github.com/hallyl1978/AheryusGameBOX/internal/testutil"
	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
	"github.com/hallyl1978/AheryusGameBOX/rating"
)

func newTestConfig() *config.MatchmakingServerConfig {
	return &config.MatchmakingServerConfig{
		DefaultGame: config.GameConfig{
			MinPlayers:      2,
			MaxPlayers:      4,
			MaxRatingSpread: 200,
		},
	}
}

func newTestCoordinator(ds datastore.Datastore) (*Coordinator, *testutil.FakeNotifier) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	notifier := &testutil.FakeNotifier{}
	engine := rating.NewEngine(logger, ds)
	return NewCoordinator(logger, newTestConfig(), ds, engine, notifier), notifier
}

func TestCoordinatorJoin(t *testing.T) {
	ctx := context.Background()

	t.Run("second join completes the match and empties the queue", func(t *testing.T) {
		store := memstore.New()
		c, notifier := newTestCoordinator(store)

		handle, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)
		require.NotEmpty(t, handle.EntryID)
		require.Equal(t, 0, handle.Position)
		require.Empty(t, notifier.MatchesFormed)

		_, err = c.Join(ctx, "user2", "G", 1520, nil)
		require.NoError(t, err)

		require.Len(t, notifier.MatchesFormed, 1)
		formed := notifier.MatchesFormed[0]
		require.ElementsMatch(t, []string{"user1", "user2"}, formed.PlayerIDs)

		session, exists := store.GetGameSession(formed.SessionID)
		require.True(t, exists)
		require.Equal(t, "G", session.GameID)
		require.Equal(t, model.SESSION_STATUS_PENDING, session.Status)
		require.Equal(t, 1510, session.AvgRating)

		require.Equal(t, 0, c.Status("G").Length)
	})

	t.Run("far apart players both remain queued", func(t *testing.T) {
		c, notifier := newTestCoordinator(memstore.New())

		_, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)
		_, err = c.Join(ctx, "user2", "G", 2000, nil)
		require.NoError(t, err)

		require.Empty(t, notifier.MatchesFormed)
		require.Equal(t, 2, c.Status("G").Length)
		require.Equal(t, 0, c.Position("user1", "G"))
		require.Equal(t, 1, c.Position("user2", "G"))
	})

	t.Run("duplicate join is rejected", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())

		_, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)
		_, err = c.Join(ctx, "user1", "G", 1500, nil)
		require.ErrorIs(t, err, matchmaking_errors.ErrDuplicateEntry)
		require.Equal(t, 1, c.Status("G").Length)
	})

	t.Run("session creation failure surfaces but players stay consumed", func(t *testing.T) {
		ds := &testutil.MockDatastore{}
		ds.On("CreateGameSession", mock.Anything, mock.Anything).
			Return(matchmaking_errors.ErrStoreUnavailable)

		c, notifier := newTestCoordinator(ds)

		_, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)
		_, err = c.Join(ctx, "user2", "G", 1510, nil)
		require.ErrorIs(t, err, matchmaking_errors.ErrStoreUnavailable)

		// A matched entry never transitions back to queued
		require.Equal(t, 0, c.Status("G").Length)
		require.Empty(t, notifier.MatchesFormed)
		ds.AssertExpectations(t)
	})
}

func TestCoordinatorLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("leave reports whether the player was queued", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())

		_, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)

		require.True(t, c.Leave("user1", "G"))
		require.False(t, c.Leave("user1", "G"))
	})

	t.Run("leave after being matched reports not queued", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())

		_, err := c.Join(ctx, "user1", "G", 1500, nil)
		require.NoError(t, err)
		_, err = c.Join(ctx, "user2", "G", 1520, nil)
		require.NoError(t, err)

		require.False(t, c.Leave("user1", "G"))
	})
}

func TestCoordinatorStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("empty queue", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())

		status := c.Status("G")
		require.Equal(t, 0, status.Length)
		require.Equal(t, 0, status.AvgRating)
		require.Equal(t, 0, status.AvgWaitSeconds)
	})

	t.Run("average rating over waiting players", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())

		_, err := c.Join(ctx, "user1", "G", 1400, nil)
		require.NoError(t, err)
		_, err = c.Join(ctx, "user2", "G", 1900, nil)
		require.NoError(t, err)

		status := c.Status("G")
		require.Equal(t, 2, status.Length)
		require.Equal(t, 1650, status.AvgRating)
	})

	t.Run("position of an absent player is -1", func(t *testing.T) {
		c, _ := newTestCoordinator(memstore.New())
		require.Equal(t, -1, c.Position("ghost", "G"))
	})
}

func TestCoordinatorRecordMatchOutcome(t *testing.T) {
	ctx := context.Background()

	t.Run("updates are persisted and broadcast", func(t *testing.T) {
		store := memstore.New()
		c, notifier := newTestCoordinator(store)

		updated, err := c.RecordMatchOutcome(ctx, "G", []rating.MatchOutcome{
			{PlayerID: "user1", OpponentIDs: []string{"user2"}, Result: rating.RESULT_WIN},
			{PlayerID: "user2", OpponentIDs: []string{"user1"}, Result: rating.RESULT_LOSS},
		})
		require.NoError(t, err)
		require.Len(t, updated, 2)
		require.Equal(t, 1016, updated["user1"].Rating)
		require.Equal(t, 984, updated["user2"].Rating)

		persisted, err := store.GetPlayerRating(ctx, "user1", "G")
		require.NoError(t, err)
		require.Equal(t, 1016, persisted.Rating)
		require.Equal(t, 1, persisted.Wins)

		require.Len(t, notifier.MatchResults, 1)
		require.Equal(t, 1016, notifier.MatchResults[0].Ratings["user1"])
	})
}
