package auth

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

type authedctxkey int

const (
	KeyUID authedctxkey = iota
)

type AuthProvider interface {
	AuthenticateRequest(context.Context, *http.Request) (context.Context, error)
	GetUIDFromRequest(*http.Request) (string, error)
}

const (
	PLAYER_ID_HEADER = "X-Player-ID"
)

// HeaderAuthProvider trusts a player id header on the request. It exists for
// local development and tests; production deployments plug in a real provider.
type HeaderAuthProvider struct{}

func NewHeaderAuthProvider() *HeaderAuthProvider {
	return &HeaderAuthProvider{}
}

func (p *HeaderAuthProvider) AuthenticateRequest(ctx context.Context, r *http.Request) (context.Context, error) {
	playerID := r.Header.Get(PLAYER_ID_HEADER)
	if playerID == "" {
		return ctx, errors.Errorf("missing %s header", PLAYER_ID_HEADER)
	}
	return context.WithValue(ctx, KeyUID, playerID), nil
}

func (p *HeaderAuthProvider) GetUIDFromRequest(r *http.Request) (string, error) {
	playerID := r.Header.Get(PLAYER_ID_HEADER)
	if playerID == "" {
		return "", errors.Errorf("missing %s header", PLAYER_ID_HEADER)
	}
	return playerID, nil
}
