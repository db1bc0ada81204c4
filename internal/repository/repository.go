package repository

import (
	"context"
	"errors"
)

// ErrStateNotFound is returned when a session has no value stored under the requested key.
var ErrStateNotFound = errors.New("session state not found")

// Interface is the session state store used by the agent to keep values
// such as the output key of the last answer.
type Interface interface {
	SaveState(ctx context.Context, sessionID, key, value string) error
	LoadState(ctx context.Context, sessionID, key string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}
