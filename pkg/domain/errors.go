package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownKey is returned when a key code or key name is outside the keypad set.
var ErrUnknownKey = errors.New("unknown key")

// ErrInvalidFormat is returned when a display format string cannot be parsed.
var ErrInvalidFormat = errors.New("invalid display format")

// ErrBufferFull is returned when an edit would grow the buffer past its capacity.
var ErrBufferFull = errors.New("input buffer full")
