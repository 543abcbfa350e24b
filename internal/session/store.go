package session

import (
	"context"
	"errors"
)

// ErrStoreUnavailable wraps backend connectivity failures so callers can
// distinguish "backend down" from "record absent".
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the capability the auth flow and the identity extractor depend on.
// Concrete backends (Redis, in-memory) implement it; callers never see the
// storage technology.
type Store interface {
	// Load returns the session for token. A missing record is (nil, false, nil),
	// never an error. Backend failures wrap ErrStoreUnavailable.
	Load(ctx context.Context, token string) (*Session, bool, error)

	// Store persists the session, assigning an ID if it has none, and returns
	// the token to place in the cookie.
	Store(ctx context.Context, s *Session) (string, error)

	// Destroy removes the session. Deleting an absent record is a no-op.
	Destroy(ctx context.Context, s *Session) error

	// ClearAll removes every session record via paginated backend iteration.
	ClearAll(ctx context.Context) error
}
