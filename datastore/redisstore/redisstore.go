// Package redisstore implements the Datastore interface on top of Redis.
//
// Rating records are stored as JSON values keyed per (game, player), with a
// per-game sorted set mirroring the rating value for leaderboard queries.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	CONNECT_TIMEOUT_S = 5
)

type RedisStore struct {
	client *redis.Client
}

func New(conf *config.RedisConfig) (rs *RedisStore, err error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", conf.Host, conf.Port),
		Password:     conf.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     100,
		MinIdleConns: 10,
		PoolTimeout:  30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), CONNECT_TIMEOUT_S*time.Second)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		err = errors.Wrap(err, "failed to connect to redis")
		return
	}

	rs = &RedisStore{client: client}
	return
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}

func ratingKey(playerID string, gameID string) string {
	return fmt.Sprintf("rating:%s:%s", gameID, playerID)
}

func leaderboardKey(gameID string) string {
	return fmt.Sprintf("leaderboard:%s", gameID)
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (rs *RedisStore) GetPlayerRating(ctx context.Context, playerID string, gameID string) (rating model.PlayerRating, err error) {
	var raw string
	if raw, err = rs.client.Get(ctx, ratingKey(playerID, gameID)).Result(); err != nil {
		if errors.Is(err, redis.Nil) {
			return model.NewPlayerRating(playerID, gameID), nil
		}
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "redis get: %s", err)
		return
	}

	if err = json.Unmarshal([]byte(raw), &rating); err != nil {
		err = errors.Wrapf(err, "corrupt rating record for player %s", playerID)
	}
	return
}

func (rs *RedisStore) SavePlayerRating(ctx context.Context, rating model.PlayerRating) (err error) {
	var raw []byte
	if raw, err = json.Marshal(rating); err != nil {
		return errors.Wrap(err, "failed to marshal rating record")
	}

	// The sorted set mirrors the rating value so leaderboard reads are a
	// single ZREVRANGE instead of a scan.
	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, ratingKey(rating.PlayerID, rating.GameID), raw, 0)
	pipe.ZAdd(ctx, leaderboardKey(rating.GameID), redis.Z{
		Score:  float64(rating.Rating),
		Member: rating.PlayerID,
	})
	if _, err = pipe.Exec(ctx); err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "redis save: %s", err)
	}
	return
}

func (rs *RedisStore) TopPlayerRatings(ctx context.Context, gameID string, limit int) (top []model.PlayerRating, err error) {
	var playerIDs []string
	if playerIDs, err = rs.client.ZRevRange(ctx, leaderboardKey(gameID), 0, int64(limit-1)).Result(); err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "redis zrevrange: %s", err)
		return
	}

	top = make([]model.PlayerRating, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		var rating model.PlayerRating
		if rating, err = rs.GetPlayerRating(ctx, playerID, gameID); err != nil {
			return nil, err
		}
		top = append(top, rating)
	}
	return
}

func (rs *RedisStore) CreateGameSession(ctx context.Context, session model.GameSession) (err error) {
	var raw []byte
	if raw, err = json.Marshal(session); err != nil {
		return errors.Wrap(err, "failed to marshal game session")
	}
	if err = rs.client.Set(ctx, sessionKey(session.ID), raw, 0).Err(); err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "redis set: %s", err)
	}
	return
}
