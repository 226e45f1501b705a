package matchmaking_errors

import (
	"errors"
)

var (
	ErrDuplicateEntry       = errors.New("player is already queued for this game")
	ErrInvalidConfiguration = errors.New("invalid matchmaking configuration")
	ErrStoreUnavailable     = errors.New("datastore unavailable")
)
