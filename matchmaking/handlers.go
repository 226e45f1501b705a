package matchmaking

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/hallyl1978/AheryusGameBOX/common"
	matchmaking_errors "github.com/hallyl1978/AheryusGameBOX/matchmaking/errors"
	"github.com/hallyl1978/AheryusGameBOX/rating"
)

const (
	REQUEST_TIMEOUT_S = 5
)

const (
	JOIN_QUEUE_PATH     = "/queue/join"
	LEAVE_QUEUE_PATH    = "/queue/leave"
	QUEUE_STATUS_PATH   = "/queue/status"
	QUEUE_POSITION_PATH = "/queue/position"
	MATCH_RESULT_PATH   = "/match/result"
	LEADERBOARD_PATH    = "/leaderboard"
	SUBSCRIBE_PATH      = "/subscribe"
)

const (
	DEFAULT_LEADERBOARD_LIMIT = 100
)

func (sms *MatchmakingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), REQUEST_TIMEOUT_S*time.Second)
	defer cancel()

	var err error
	if ctx, err = sms.authProvider.AuthenticateRequest(ctx, r); err != nil {
		common.WriteErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}
	sms.serveMux.ServeHTTP(w, r.WithContext(ctx))
}

// RegisterHandler is used by embedding servers to register new http handlers for the given pattern
func (sms *MatchmakingServer) RegisterHandler(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	sms.serveMux.HandleFunc(pattern, handler)
}

func (sms *MatchmakingServer) setupHandlers() {
	sms.serveMux.HandleFunc(JOIN_QUEUE_PATH, sms.joinQueueHandler)
	sms.serveMux.HandleFunc(LEAVE_QUEUE_PATH, sms.leaveQueueHandler)
	sms.serveMux.HandleFunc(QUEUE_STATUS_PATH, sms.queueStatusHandler)
	sms.serveMux.HandleFunc(QUEUE_POSITION_PATH, sms.queuePositionHandler)
	sms.serveMux.HandleFunc(MATCH_RESULT_PATH, sms.matchResultHandler)
	sms.serveMux.HandleFunc(LEADERBOARD_PATH, sms.leaderboardHandler)
	sms.serveMux.HandleFunc(SUBSCRIBE_PATH, sms.subscribeHandler)
}

func (sms *MatchmakingServer) joinQueueHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var playerID string
	if playerID, err = sms.authProvider.GetUIDFromRequest(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var statusCode int
	var req JoinQueueRequest
	if statusCode, err = common.UnmarshalJSONRequestBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, statusCode, err.Error())
		return
	}
	if req.GameID == "" {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId field is missing")
		return
	}

	// The queue stores a snapshot of the player's rating at join time
	record, err := sms.coordinator.datastore.GetPlayerRating(r.Context(), playerID, req.GameID)
	if err != nil {
		common.WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	var handle QueueHandle
	if handle, err = sms.coordinator.Join(r.Context(), playerID, req.GameID, record.Rating, req.Preferences); err != nil {
		if errors.Is(err, matchmaking_errors.ErrDuplicateEntry) {
			common.WriteErrorResponse(w, http.StatusConflict, err.Error())
			return
		}
		common.WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	common.WriteMessageResponse(w, http.StatusOK, "Joined matchmaking queue", common.ResponseData{
		"queueId":  handle.EntryID,
		"position": handle.Position,
	})
}

func (sms *MatchmakingServer) leaveQueueHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var playerID string
	if playerID, err = sms.authProvider.GetUIDFromRequest(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId parameter is missing")
		return
	}

	wasQueued := sms.coordinator.Leave(playerID, gameID)
	message := "Left matchmaking queue"
	if !wasQueued {
		message = "Not in queue"
	}
	common.WriteMessageResponse(w, http.StatusOK, message, common.ResponseData{
		"wasQueued": wasQueued,
	})
}

func (sms *MatchmakingServer) queueStatusHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId parameter is missing")
		return
	}

	status := sms.coordinator.Status(gameID)
	common.WriteResponse(w, http.StatusOK, common.ResponseData{
		"queueLength": status.Length,
		"avgWaitTime": status.AvgWaitSeconds,
		"avgMmr":      status.AvgRating,
	})
}

func (sms *MatchmakingServer) queuePositionHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var playerID string
	if playerID, err = sms.authProvider.GetUIDFromRequest(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId parameter is missing")
		return
	}

	common.WriteResponse(w, http.StatusOK, common.ResponseData{
		"position": sms.coordinator.Position(playerID, gameID),
	})
}

func (sms *MatchmakingServer) matchResultHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var statusCode int
	var req MatchResultRequest
	if statusCode, err = common.UnmarshalJSONRequestBody(w, r, &req); err != nil {
		common.WriteErrorResponse(w, statusCode, err.Error())
		return
	}
	if req.GameID == "" || len(req.Outcomes) == 0 {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId or outcomes field is missing")
		return
	}
	for _, outcome := range req.Outcomes {
		if outcome.PlayerID == "" || len(outcome.OpponentIDs) == 0 {
			common.WriteErrorResponse(w, http.StatusBadRequest, "each outcome requires playerId and opponentIds")
			return
		}
	}

	updated, err := sms.coordinator.RecordMatchOutcome(r.Context(), req.GameID, req.Outcomes)
	if err != nil {
		// Some participants may have been persisted; report both so the
		// caller can retry the rest.
		common.WriteMessageResponse(w, http.StatusServiceUnavailable, err.Error(), common.ResponseData{
			"updatedRatings": updated,
		})
		return
	}

	common.WriteResponse(w, http.StatusOK, common.ResponseData{
		"updatedRatings": updated,
	})
}

func (sms *MatchmakingServer) leaderboardHandler(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		common.WriteErrorResponse(w, http.StatusBadRequest, "gameId parameter is missing")
		return
	}

	top, err := sms.engine.TopPlayers(r.Context(), gameID, DEFAULT_LEADERBOARD_LIMIT)
	if err != nil {
		common.WriteErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	entries := make([]common.ResponseData, 0, len(top))
	for _, record := range top {
		tier := rating.TierOf(record.Rating)
		entries = append(entries, common.ResponseData{
			"playerId": record.PlayerID,
			"rating":   record.Rating,
			"tier":     tier.Name,
			"division": tier.Division,
		})
	}
	common.WriteResponse(w, http.StatusOK, common.ResponseData{
		"players": entries,
	})
}

func (sms *MatchmakingServer) subscribeHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	var playerID string
	if playerID, err = sms.authProvider.GetUIDFromRequest(r); err != nil {
		common.WriteErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err = sms.hub.Subscribe(playerID, w, r); err != nil {
		sms.logger.WithField("playerID", playerID).Errorf("subscription failed: %s", err)
	}
}
