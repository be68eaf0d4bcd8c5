package game

import (
	"errors"
	"fmt"

	"judgement/framework/game/engines/judgement"
)

var (
	ErrRoomNotFound   = errors.New("Room not found")
	ErrRoomFull       = fmt.Errorf("Room is full (max %d players)", judgement.MaxPlayers)
	ErrGameInProgress = errors.New("Game already in progress")
	ErrDuplicateName  = errors.New("Name is already taken in this room")
	ErrNotInRoom      = errors.New("Not in a room")
	ErrAlreadyInRoom  = errors.New("Already in a room")
	ErrNotHost        = errors.New("Only the host can do that")
	ErrRoomClosed     = errors.New("room closed")
)

// RoomError is a recoverable registry failure reported to the requester.
// It unwraps to one of the sentinels above.
type RoomError struct {
	Kind    error
	Message string
}

func (e *RoomError) Error() string { return e.Message }

func (e *RoomError) Unwrap() error { return e.Kind }

func duplicateName(name string) error {
	return &RoomError{Kind: ErrDuplicateName, Message: fmt.Sprintf("Name '%s' is already taken in this room", name)}
}

func notHost(action string) error {
	return &RoomError{Kind: ErrNotHost, Message: "Only the host can " + action}
}
