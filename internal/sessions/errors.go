package sessions

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidID       = errors.New("invalid session id")
	ErrSuperseded      = errors.New("generation superseded by a newer request")
	ErrCancelled       = errors.New("generation cancelled")
)
