package domain

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	ErrMissingID    = errors.New("room id is required")
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room does not exist")
	ErrRoomFull     = errors.New("room is full")
	ErrIDTooLong    = fmt.Errorf("id exceeds %d characters", MaxIDLength)
)

// Live connection errors.
var (
	ErrInvalidEvent = errors.New("invalid event")
	ErrNotInRoom    = errors.New("not in room")
)
