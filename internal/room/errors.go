package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrMissingParameters = errors.New("missing parameters")
	ErrInvalidAction     = errors.New("invalid action")
	// ErrBotStuck means a bot had the turn but no move to make. It stops
	// the bot loop and is never returned to callers.
	ErrBotStuck = errors.New("bot has no move")
)
