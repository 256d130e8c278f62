package session

import "errors"

// ErrSessionNotFound is returned for unknown or evicted session IDs.
var ErrSessionNotFound = errors.New("session not found")
