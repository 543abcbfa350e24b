// Package session provides server-side sessions keyed by an opaque token,
// persisted in an external key-value backend.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UserKey is the well-known payload key holding the authenticated identity.
const UserKey = "user"

// Session binds an opaque token to an arbitrary key-value payload. The cookie
// only ever carries the ID; the payload lives in the store.
type Session struct {
	ID   string                     `json:"id"`
	Data map[string]json.RawMessage `json:"data"`
}

// New creates an empty session with a fresh identifier.
func New() *Session {
	return &Session{
		ID:   uuid.NewString(),
		Data: make(map[string]json.RawMessage),
	}
}

// Set serializes value under key.
func (s *Session) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serialize session value %q: %w", key, err)
	}
	if s.Data == nil {
		s.Data = make(map[string]json.RawMessage)
	}
	s.Data[key] = raw
	return nil
}

// Get deserializes the value under key into dst. A missing key or a payload
// that does not decode is an error; callers treat either as "no value".
func (s *Session) Get(key string, dst interface{}) error {
	raw, ok := s.Data[key]
	if !ok {
		return fmt.Errorf("session has no value for %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode session value %q: %w", key, err)
	}
	return nil
}
