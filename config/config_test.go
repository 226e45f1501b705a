package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
)

func validConfig() *MatchmakingServerConfig {
	return &MatchmakingServerConfig{
		Port: "8081",
		DefaultGame: GameConfig{
			MinPlayers:      DEFAULT_MIN_PLAYERS,
			MaxPlayers:      DEFAULT_MAX_PLAYERS,
			MaxRatingSpread: DEFAULT_MAX_SPREAD,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("min above max is rejected", func(t *testing.T) {
		sc := validConfig()
		sc.DefaultGame.MinPlayers = 5
		sc.DefaultGame.MaxPlayers = 4
		require.ErrorIs(t, sc.Validate(), matchmaking_errors.ErrInvalidConfiguration)
	})

	t.Run("min below two is rejected", func(t *testing.T) {
		sc := validConfig()
		sc.DefaultGame.MinPlayers = 1
		require.ErrorIs(t, sc.Validate(), matchmaking_errors.ErrInvalidConfiguration)
	})

	t.Run("negative spread is rejected", func(t *testing.T) {
		sc := validConfig()
		sc.DefaultGame.MaxRatingSpread = -1
		require.ErrorIs(t, sc.Validate(), matchmaking_errors.ErrInvalidConfiguration)
	})

	t.Run("bad per-game override is rejected", func(t *testing.T) {
		sc := validConfig()
		sc.Games = map[string]GameConfig{
			"chess": {MinPlayers: 3, MaxPlayers: 2, MaxRatingSpread: 100},
		}
		require.ErrorIs(t, sc.Validate(), matchmaking_errors.ErrInvalidConfiguration)
	})
}

func TestGameConfigFor(t *testing.T) {
	sc := validConfig()
	sc.Games = map[string]GameConfig{
		"chess": {MinPlayers: 2, MaxPlayers: 2, MaxRatingSpread: 300},
	}

	t.Run("override wins for its game", func(t *testing.T) {
		gc := sc.GameConfigFor("chess")
		require.Equal(t, 2, gc.MaxPlayers)
		require.Equal(t, 300, gc.MaxRatingSpread)
	})

	t.Run("unknown games fall back to defaults", func(t *testing.T) {
		gc := sc.GameConfigFor("unknown")
		require.Equal(t, DEFAULT_MAX_PLAYERS, gc.MaxPlayers)
		require.Equal(t, DEFAULT_MAX_SPREAD, gc.MaxRatingSpread)
	})
}
