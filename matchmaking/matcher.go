package matchmaking

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hallyl1978/AheryusGameBOX/config"
)

// MatchedPlayer is one participant of a formed match
type MatchedPlayer struct {
	PlayerID string `json:"playerId"`
	Rating   int    `json:"rating"`
}

// MatchResult describes a successfully formed match. It is a short lived
// value handed to the coordinator; the session itself is persisted externally.
type MatchResult struct {
	SessionID    string          `json:"sessionId"`
	GameID       string          `json:"gameId"`
	Players      []MatchedPlayer `json:"players"`
	AvgRating    float64         `json:"avgRating"`
	RatingSpread int             `json:"ratingSpread"`
	WaitTimeS    int             `json:"waitTime"`
}

// PlayerIDs lists the matched players in group admission order
func (r *MatchResult) PlayerIDs() []string {
	playerIDs := make([]string, len(r.Players))
	for i, p := range r.Players {
		playerIDs[i] = p.PlayerID
	}
	return playerIDs
}

// TryMatch attempts to form a match from the current queue contents.
//
// The scan and the removal of matched players run in a single critical
// section: a concurrent leave either lands before the scan (entry absent)
// or after the match is fully formed (leave reports not queued). On failure
// the queue is untouched.
func (gq *GameQueue) TryMatch(conf config.GameConfig) *MatchResult {
	gq.mu.Lock()
	defer gq.mu.Unlock()

	candidates := selectCandidates(gq.entries, conf)
	if candidates == nil {
		return nil
	}

	playerIDs := make([]string, len(candidates))
	for i, entry := range candidates {
		playerIDs[i] = entry.PlayerID
	}
	for _, playerID := range playerIDs {
		gq.removeLocked(playerID)
	}

	return newMatchResult(candidates)
}

// selectCandidates is the greedy ascending-rating sweep. It starts with the
// lowest rated entry and admits each subsequent entry whose rating stays
// within the configured spread of the running group mean, until the group is
// full. Not globally optimal, but deterministic and O(n log n).
func selectCandidates(entries []*QueueEntry, conf config.GameConfig) []*QueueEntry {
	if len(entries) < conf.MinPlayers {
		return nil
	}

	// Stable sort keeps join order among equal ratings, so the earlier
	// joiner wins the last slot on a rating tie.
	working := make([]*QueueEntry, len(entries))
	copy(working, entries)
	sort.SliceStable(working, func(i, j int) bool {
		return working[i].Rating < working[j].Rating
	})

	group := []*QueueEntry{working[0]}
	groupSum := working[0].Rating
	for _, entry := range working[1:] {
		if len(group) >= conf.MaxPlayers {
			break
		}
		mean := float64(groupSum) / float64(len(group))
		if math.Abs(float64(entry.Rating)-mean) <= float64(conf.MaxRatingSpread) {
			group = append(group, entry)
			groupSum += entry.Rating
		}
	}

	if len(group) < conf.MinPlayers {
		return nil
	}
	return group
}

func newMatchResult(candidates []*QueueEntry) *MatchResult {
	players := make([]MatchedPlayer, len(candidates))
	sum := 0
	minRating, maxRating := candidates[0].Rating, candidates[0].Rating
	earliest := candidates[0].JoinedAt
	for i, entry := range candidates {
		players[i] = MatchedPlayer{
			PlayerID: entry.PlayerID,
			Rating:   entry.Rating,
		}
		sum += entry.Rating
		if entry.Rating < minRating {
			minRating = entry.Rating
		}
		if entry.Rating > maxRating {
			maxRating = entry.Rating
		}
		if entry.JoinedAt.Before(earliest) {
			earliest = entry.JoinedAt
		}
	}

	return &MatchResult{
		SessionID:    uuid.New().String(),
		GameID:       candidates[0].GameID,
		Players:      players,
		AvgRating:    float64(sum) / float64(len(candidates)),
		RatingSpread: maxRating - minRating,
		WaitTimeS:    int(math.Round(time.Since(earliest).Seconds())),
	}
}
