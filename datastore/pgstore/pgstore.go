// Package pgstore implements the Datastore interface on top of Postgres.
package pgstore

import (
	"context"
	"time"

	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type PostgresStore struct {
	db *gorm.DB
}

func New(conf *config.PostgresConfig) (ps *PostgresStore, err error) {
	var db *gorm.DB
	if db, err = gorm.Open(postgres.Open(conf.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}); err != nil {
		err = errors.Wrap(err, "failed to connect to postgres")
		return
	}

	sqlDB, sqlErr := db.DB()
	if sqlErr != nil {
		err = errors.Wrap(sqlErr, "failed to get the sql connection")
		return
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = db.AutoMigrate(&model.PlayerRating{}, &model.GameSession{}); err != nil {
		err = errors.Wrap(err, "failed to migrate datastore models")
		return
	}

	ps = &PostgresStore{db: db}
	return
}

func (ps *PostgresStore) GetPlayerRating(ctx context.Context, playerID string, gameID string) (rating model.PlayerRating, err error) {
	err = ps.db.WithContext(ctx).
		Where("player_id = ? AND game_id = ?", playerID, gameID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.NewPlayerRating(playerID, gameID), nil
		}
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "postgres select: %s", err)
	}
	return
}

func (ps *PostgresStore) SavePlayerRating(ctx context.Context, rating model.PlayerRating) (err error) {
	err = ps.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "game_id"}},
			UpdateAll: true,
		}).
		Create(&rating).Error
	if err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "postgres upsert: %s", err)
	}
	return
}

func (ps *PostgresStore) TopPlayerRatings(ctx context.Context, gameID string, limit int) (top []model.PlayerRating, err error) {
	err = ps.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("rating DESC").
		Limit(limit).
		Find(&top).Error
	if err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "postgres select: %s", err)
	}
	return
}

func (ps *PostgresStore) CreateGameSession(ctx context.Context, session model.GameSession) (err error) {
	if err = ps.db.WithContext(ctx).Create(&session).Error; err != nil {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable, "postgres insert: %s", err)
	}
	return
}
