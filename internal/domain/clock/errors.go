package clock

import "errors"

var (
	ErrAlreadyClockedIn = errors.New("already clocked in")
	ErrNotClockedIn     = errors.New("not clocked in")
	ErrEventNotFound    = errors.New("clock event not found")
	ErrEventInFuture    = errors.New("clock event cannot be in the future")
)
