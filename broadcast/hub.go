package broadcast

import (
	"context"
	"net/http"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Hub fans session lifecycle events out to subscribed players over
// websockets. Delivery is best effort: a player without a live
// subscription simply misses the push and polls instead.
type Hub struct {
	logger *logrus.Logger

	subscribersMutex sync.RWMutex
	subscribers      map[string]*subscriber
}

type subscriber struct {
	playerID string
	wsconn   *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(logger *logrus.Logger) (h *Hub) {
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe upgrades the request to a websocket and registers the player
// for event pushes. A second subscription for the same player replaces the
// first one, closing its connection.
func (h *Hub) Subscribe(playerID string, w http.ResponseWriter, r *http.Request) (err error) {
	var wsconn *websocket.Conn
	if wsconn, err = websocket.Accept(w, r, nil); err != nil {
		err = errors.Wrap(err, "failed to accept subscription")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscriber{
		playerID: playerID,
		wsconn:   wsconn,
		ctx:      ctx,
		cancel:   cancel,
	}

	h.subscribersMutex.Lock()
	if previous, exists := h.subscribers[playerID]; exists {
		previous.close(websocket.StatusNormalClosure, "replaced by newer subscription")
	}
	h.subscribers[playerID] = sub
	h.subscribersMutex.Unlock()

	h.logger.WithField("playerID", playerID).Info("player subscribed to broadcasts")

	// Drain the connection until the client goes away so we notice the
	// close and can drop the subscription.
	go func() {
		defer h.remove(sub)
		for {
			var discard interface{}
			if err := wsjson.Read(ctx, wsconn, &discard); err != nil {
				h.logger.WithField("playerID", sub.playerID).Debug("subscription closed")
				return
			}
		}
	}()

	return
}

func (h *Hub) remove(sub *subscriber) {
	h.subscribersMutex.Lock()
	if current, exists := h.subscribers[sub.playerID]; exists && current == sub {
		delete(h.subscribers, sub.playerID)
	}
	h.subscribersMutex.Unlock()

	sub.close(websocket.StatusNormalClosure, "subscription closed")
}

func (s *subscriber) close(code websocket.StatusCode, reason string) {
	s.cancel()
	s.wsconn.Close(code, reason)
}

// NotifyMatchFormed pushes a match-found event to every matched player
func (h *Hub) NotifyMatchFormed(sessionID string, playerIDs []string) {
	h.send(playerIDs, NewMatchFoundMessage(sessionID, playerIDs))
}

// NotifyMatchResult pushes post-match rating values to the participants
func (h *Hub) NotifyMatchResult(gameID string, ratings map[string]int) {
	playerIDs := make([]string, 0, len(ratings))
	for playerID := range ratings {
		playerIDs = append(playerIDs, playerID)
	}
	h.send(playerIDs, NewMatchResultMessage(gameID, ratings))
}

func (h *Hub) send(playerIDs []string, msg Message) {
	for _, playerID := range playerIDs {
		h.subscribersMutex.RLock()
		sub, exists := h.subscribers[playerID]
		h.subscribersMutex.RUnlock()
		if !exists {
			continue
		}

		if err := wsjson.Write(sub.ctx, sub.wsconn, &msg); err != nil {
			h.logger.WithField("playerID", playerID).Errorf("failed to push message: %s", err)
		}
	}
}
