package matchmaking

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/hallyl1978/AheryusGameBOX/broadcast"
	"github.com/hallyl1978/AheryusGameBOX/config"
	"github.com/hallyl1978/AheryusGameBOX/datastore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
	"github.com/hallyl1978/AheryusGameBOX/rating"
)

// QueueHandle is returned to the caller on every successful join,
// whether or not the join immediately completed a match
type QueueHandle struct {
	EntryID  string `json:"queueId"`
	Position int    `json:"position"`
}

// QueueStatus is a point-in-time view of one game's queue
type QueueStatus struct {
	Length         int `json:"queueLength"`
	AvgWaitSeconds int `json:"avgWaitTime"`
	AvgRating      int `json:"avgMmr"`
}

// Coordinator drives the join -> match -> session -> notify flow.
//
// Queue mutation and matching run inside the per-game queue exclusion;
// session creation and broadcasts happen only after it is released, using
// the already computed MatchResult.
type Coordinator struct {
	logger    *logrus.Logger
	conf      *config.MatchmakingServerConfig
	queues    *Queues
	datastore datastore.Datastore
	engine    *rating.Engine
	notifier  broadcast.Notifier
}

func NewCoordinator(
	logger *logrus.Logger,
	conf *config.MatchmakingServerConfig,
	ds datastore.Datastore,
	engine *rating.Engine,
	notifier broadcast.Notifier,
) (c *Coordinator) {
	return &Coordinator{
		logger:    logger,
		conf:      conf,
		queues:    NewQueues(),
		datastore: ds,
		engine:    engine,
		notifier:  notifier,
	}
}

// Join queues the player and immediately attempts to form a match.
//
// The handle is valid even when a match forms right away; the caller learns
// about the match through the broadcast channel, not the join response. An
// error from session creation is returned to the triggering caller, but the
// matched players are never re-queued.
func (c *Coordinator) Join(
	ctx context.Context,
	playerID string,
	gameID string,
	ratingSnapshot int,
	preferences map[string]string,
) (handle QueueHandle, err error) {
	entry := &QueueEntry{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		GameID:      gameID,
		Rating:      ratingSnapshot,
		Preferences: preferences,
		JoinedAt:    time.Now(),
	}

	gq := c.queues.Get(gameID)

	var position int
	if position, err = gq.Insert(entry); err != nil {
		return
	}
	handle = QueueHandle{
		EntryID:  entry.ID,
		Position: position,
	}

	c.logger.WithFields(logrus.Fields{
		"playerID": playerID,
		"gameID":   gameID,
	}).Infof("player joined queue (rating: %d)", ratingSnapshot)

	result := gq.TryMatch(c.conf.GameConfigFor(gameID))
	if result == nil {
		return
	}

	c.logger.WithField("gameID", gameID).Infof(
		"match found: %d players, avg rating: %.0f, spread: %d",
		len(result.Players), result.AvgRating, result.RatingSpread)

	if err = c.createSession(ctx, result); err != nil {
		// Matched entries stay consumed; a matched player never goes
		// back to queued. The caller sees the failure and may retry
		// session creation out of band.
		c.logger.WithField("gameID", gameID).Errorf("failed to create session: %s", err)
		return
	}

	c.notifier.NotifyMatchFormed(result.SessionID, result.PlayerIDs())
	return
}

func (c *Coordinator) createSession(ctx context.Context, result *MatchResult) error {
	session := model.GameSession{
		ID:        result.SessionID,
		GameID:    result.GameID,
		Status:    model.SESSION_STATUS_PENDING,
		PlayerIDs: result.PlayerIDs(),
		AvgRating: int(math.Round(result.AvgRating)),
	}
	if err := c.datastore.CreateGameSession(ctx, session); err != nil {
		return errors.Wrapf(err, "failed to create session %s", result.SessionID)
	}
	return nil
}

// Leave removes the player from the queue. Leaving twice, or leaving after
// being matched, reports wasQueued = false rather than an error.
func (c *Coordinator) Leave(playerID string, gameID string) (wasQueued bool) {
	wasQueued = c.queues.Get(gameID).Remove(playerID)
	if wasQueued {
		c.logger.WithFields(logrus.Fields{
			"playerID": playerID,
			"gameID":   gameID,
		}).Info("player left queue")
	}
	return
}

// Status summarizes the queue for a game from a snapshot
func (c *Coordinator) Status(gameID string) (status QueueStatus) {
	snapshot := c.queues.Get(gameID).Snapshot()
	status.Length = len(snapshot)
	if status.Length == 0 {
		return
	}

	now := time.Now()
	ratingSum, waitSum := 0, 0.0
	for _, entry := range snapshot {
		ratingSum += entry.Rating
		waitSum += now.Sub(entry.JoinedAt).Seconds()
	}
	status.AvgRating = int(math.Round(float64(ratingSum) / float64(status.Length)))
	status.AvgWaitSeconds = int(math.Round(waitSum / float64(status.Length)))
	return
}

// Position returns the player's zero-based place in the queue, or -1
func (c *Coordinator) Position(playerID string, gameID string) int {
	for i, entry := range c.queues.Get(gameID).Snapshot() {
		if entry.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// RecordMatchOutcome applies rating updates for a finished match and
// broadcasts the new values to the participants that were persisted
func (c *Coordinator) RecordMatchOutcome(
	ctx context.Context,
	gameID string,
	outcomes []rating.MatchOutcome,
) (updated map[string]model.PlayerRating, err error) {
	if updated, err = c.engine.Update(ctx, gameID, outcomes); err != nil && len(updated) == 0 {
		return
	}

	if len(updated) > 0 {
		ratings := make(map[string]int, len(updated))
		for playerID, record := range updated {
			ratings[playerID] = record.Rating
		}
		c.notifier.NotifyMatchResult(gameID, ratings)
	}
	return
}
