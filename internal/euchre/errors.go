package euchre

import "errors"

var (
	// ErrUnknownPlayer means the acting player is not seated in the game.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrMalformedAction means the action's shape does not match its type.
	ErrMalformedAction = errors.New("malformed action")
	// ErrWrongPhase means the action cannot apply in the current phase.
	ErrWrongPhase = errors.New("action not allowed in this phase")
	// ErrCardNotInHand means a played card is not held by the player.
	ErrCardNotInHand = errors.New("card not in hand")
	// ErrTableNotFull means a round cannot be dealt with empty seats.
	ErrTableNotFull = errors.New("table is not full")
)
