package rating

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hallyl1978/AheryusGameBOX/datastore"
	"github.com/hallyl1978/AheryusGameBOX/datastore/model"
	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	K_FACTOR             = 32
	K_FACTOR_EXPERIENCED = 16
	EXPERIENCED_GAMES    = 30

	MIN_VOLATILITY       = 10.0
	MAX_VOLATILITY       = 100.0
	VOLATILITY_THRESHOLD = 50
)

const (
	RESULT_WIN  = "win"
	RESULT_LOSS = "loss"
	RESULT_DRAW = "draw"
)

// MatchOutcome is one participant's result for a finished match
type MatchOutcome struct {
	PlayerID    string   `json:"playerId"`
	OpponentIDs []string `json:"opponentIds"`
	Result      string   `json:"result"`
}

// Engine computes post-match rating updates.
//
// All deltas for one match are derived from a snapshot of pre-match ratings,
// so no participant's delta ever leaks into another's opponent average.
// Writes for the same (player, game) pair are serialized through keyed locks.
type Engine struct {
	logger    *logrus.Logger
	datastore datastore.Datastore

	locksMutex sync.Mutex
	locks      map[string]*sync.Mutex
}

func NewEngine(logger *logrus.Logger, ds datastore.Datastore) (e *Engine) {
	return &Engine{
		logger:    logger,
		datastore: ds,
		locks:     make(map[string]*sync.Mutex),
	}
}

// ExpectedScore is the standard logistic Elo expectation for a against b
func ExpectedScore(ratingA int, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// Update applies the Elo update for every participant of a finished match
// and persists the resulting records. Individual write failures are surfaced
// in the returned error so the caller can retry the batch; updates that did
// persist are still included in the result.
func (e *Engine) Update(ctx context.Context, gameID string, outcomes []MatchOutcome) (updated map[string]model.PlayerRating, err error) {
	playerIDs := participantIDs(outcomes)

	unlock := e.lockPlayers(gameID, playerIDs)
	defer unlock()

	// Consistent pre-match snapshot for every involved player, participants
	// and opponents alike.
	snapshot := make(map[string]model.PlayerRating, len(playerIDs))
	for _, playerID := range playerIDs {
		var r model.PlayerRating
		if r, err = e.datastore.GetPlayerRating(ctx, playerID, gameID); err != nil {
			err = errors.Wrapf(err, "failed to read rating for player %s", playerID)
			return
		}
		snapshot[playerID] = r
	}

	updated = make(map[string]model.PlayerRating, len(outcomes))
	var failed []string
	for _, outcome := range outcomes {
		record := applyOutcome(snapshot, outcome)

		if saveErr := e.datastore.SavePlayerRating(ctx, record); saveErr != nil {
			e.logger.WithFields(logrus.Fields{
				"playerID": outcome.PlayerID,
				"gameID":   gameID,
			}).Errorf("failed to persist rating update: %s", saveErr)
			failed = append(failed, outcome.PlayerID)
			continue
		}

		old := snapshot[outcome.PlayerID]
		e.logger.WithField("gameID", gameID).Infof(
			"updated rating for player %s: %d -> %d", outcome.PlayerID, old.Rating, record.Rating)
		updated[outcome.PlayerID] = record
	}

	if len(failed) > 0 {
		err = errors.Wrapf(matchmaking_errors.ErrStoreUnavailable,
			"failed to persist rating updates for players: %s", strings.Join(failed, ", "))
	}
	return
}

// applyOutcome computes one participant's new record from the pre-match snapshot
func applyOutcome(snapshot map[string]model.PlayerRating, outcome MatchOutcome) model.PlayerRating {
	record := snapshot[outcome.PlayerID]

	kFactor := K_FACTOR
	if record.GamesPlayed >= EXPERIENCED_GAMES {
		kFactor = K_FACTOR_EXPERIENCED
	}

	opponentSum := 0
	for _, opponentID := range outcome.OpponentIDs {
		opponentSum += snapshot[opponentID].Rating
	}
	avgOpponent := float64(opponentSum) / float64(len(outcome.OpponentIDs))

	expected := 1.0 / (1.0 + math.Pow(10, (avgOpponent-float64(record.Rating))/400.0))

	var actual float64
	switch outcome.Result {
	case RESULT_WIN:
		actual = 1.0
		record.Wins++
	case RESULT_LOSS:
		actual = 0.0
		record.Losses++
	default:
		actual = 0.5
		record.Draws++
	}

	delta := int(math.Round(float64(kFactor) * (actual - expected)))
	record.Rating += delta
	if record.Rating < 0 {
		record.Rating = 0
	}
	record.GamesPlayed++
	record.Volatility = nextVolatility(record.Volatility, delta)

	return record
}

// nextVolatility nudges the volatility toward 100 after a large swing and
// back toward 10 otherwise, clamped to [10, 100] and rounded to one decimal
func nextVolatility(current float64, delta int) float64 {
	absDelta := math.Abs(float64(delta))
	impact := absDelta / 100.0

	var next float64
	if absDelta > VOLATILITY_THRESHOLD {
		next = math.Min(MAX_VOLATILITY, current+impact)
	} else {
		next = math.Max(MIN_VOLATILITY, current-impact)
	}
	return math.Round(next*10) / 10
}

// participantIDs collects every player touched by the batch, deduplicated
// and sorted so lock acquisition order is stable across concurrent matches
func participantIDs(outcomes []MatchOutcome) []string {
	seen := make(map[string]struct{})
	for _, outcome := range outcomes {
		seen[outcome.PlayerID] = struct{}{}
		for _, opponentID := range outcome.OpponentIDs {
			seen[opponentID] = struct{}{}
		}
	}

	playerIDs := make([]string, 0, len(seen))
	for playerID := range seen {
		playerIDs = append(playerIDs, playerID)
	}
	sort.Strings(playerIDs)
	return playerIDs
}

func (e *Engine) lockPlayers(gameID string, playerIDs []string) (unlock func()) {
	acquired := make([]*sync.Mutex, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		acquired = append(acquired, e.playerLock(playerID, gameID))
	}
	for _, mu := range acquired {
		mu.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

func (e *Engine) playerLock(playerID string, gameID string) *sync.Mutex {
	e.locksMutex.Lock()
	defer e.locksMutex.Unlock()

	key := gameID + ":" + playerID
	mu, exists := e.locks[key]
	if !exists {
		mu = &sync.Mutex{}
		e.locks[key] = mu
	}
	return mu
}

// TopPlayers returns the highest rated records for a game, best first
func (e *Engine) TopPlayers(ctx context.Context, gameID string, limit int) ([]model.PlayerRating, error) {
	return e.datastore.TopPlayerRatings(ctx, gameID, limit)
}
