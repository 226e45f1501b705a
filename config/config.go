package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
)

const (
	DEFAULT_MIN_PLAYERS = 2
	DEFAULT_MAX_PLAYERS = 4
	DEFAULT_MAX_SPREAD  = 200
)

// GameConfig bounds match formation for a single game
type GameConfig struct {
	MinPlayers      int `mapstructure:"minPlayers"`
	MaxPlayers      int `mapstructure:"maxPlayers"`
	MaxRatingSpread int `mapstructure:"maxRatingSpread"`
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type PostgresConfig struct {
	DSN string
}

type MatchmakingServerConfig struct {
	DebugMode bool
	Port      string

	// Store selects the datastore adapter: memory, redis or postgres
	Store    string
	Redis    RedisConfig
	Postgres PostgresConfig

	DefaultGame GameConfig
	Games       map[string]GameConfig
}

func LoadMatchmakingServerConfig() (sc *MatchmakingServerConfig, err error) {
	v := viper.New()
	v.AddConfigPath("config/")
	v.SetConfigName("matchmaking")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8081")
	v.SetDefault("server.store", "memory")
	v.SetDefault("matchmaking.minPlayers", DEFAULT_MIN_PLAYERS)
	v.SetDefault("matchmaking.maxPlayers", DEFAULT_MAX_PLAYERS)
	v.SetDefault("matchmaking.maxRatingSpread", DEFAULT_MAX_SPREAD)

	if err = v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			err = errors.Wrap(err, "failed to read matchmaking config")
			return
		}
		// No file is fine, defaults and env cover everything
		err = nil
	}

	sc = &MatchmakingServerConfig{
		Port:      v.GetString("server.port"),
		DebugMode: v.GetBool("server.debugMode"),
		Store:     v.GetString("server.store"),
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
		},
		Postgres: PostgresConfig{
			DSN: v.GetString("postgres.dsn"),
		},
		DefaultGame: GameConfig{
			MinPlayers:      v.GetInt("matchmaking.minPlayers"),
			MaxPlayers:      v.GetInt("matchmaking.maxPlayers"),
			MaxRatingSpread: v.GetInt("matchmaking.maxRatingSpread"),
		},
	}

	if err = v.UnmarshalKey("matchmaking.games", &sc.Games); err != nil {
		err = errors.Wrap(err, "failed to parse per-game matchmaking config")
		return
	}

	if err = sc.Validate(); err != nil {
		sc = nil
	}
	return
}

// Validate rejects configurations that could never form a match.
// A bad configuration is fatal at startup, never a per-request error.
func (sc *MatchmakingServerConfig) Validate() error {
	if err := validateGameConfig(sc.DefaultGame); err != nil {
		return errors.Wrap(err, "default game config")
	}
	for gameID, gc := range sc.Games {
		if err := validateGameConfig(gc); err != nil {
			return errors.Wrapf(err, "game %s", gameID)
		}
	}
	return nil
}

func validateGameConfig(gc GameConfig) error {
	if gc.MinPlayers < 2 {
		return errors.Wrapf(matchmaking_errors.ErrInvalidConfiguration, "minPlayers %d is below 2", gc.MinPlayers)
	}
	if gc.MinPlayers > gc.MaxPlayers {
		return errors.Wrapf(matchmaking_errors.ErrInvalidConfiguration, "minPlayers %d exceeds maxPlayers %d", gc.MinPlayers, gc.MaxPlayers)
	}
	if gc.MaxRatingSpread < 0 {
		return errors.Wrapf(matchmaking_errors.ErrInvalidConfiguration, "maxRatingSpread %d is negative", gc.MaxRatingSpread)
	}
	return nil
}

// GameConfigFor returns the per-game override if one exists, otherwise the defaults
func (sc *MatchmakingServerConfig) GameConfigFor(gameID string) GameConfig {
	if gc, exists := sc.Games[gameID]; exists {
		return gc
	}
	return sc.DefaultGame
}
