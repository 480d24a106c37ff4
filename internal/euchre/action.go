package euchre

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ActionType names a player move.
type ActionType string

const (
	ActionReady     ActionType = "READY"
	ActionStartGame ActionType = "START_GAME"
	ActionPass      ActionType = "PASS"
	ActionOrderUp   ActionType = "ORDER_UP"
	ActionCallTrump ActionType = "CALL_TRUMP"
	ActionPlayCard  ActionType = "PLAY_CARD"
)

// Action is one move by one player. Suit is set only for CALL_TRUMP and
// Card only for PLAY_CARD.
type Action struct {
	Type     ActionType
	PlayerID string
	Suit     Suit
	Card     *Card
}

// Ready returns a READY action.
func Ready(playerID string) Action { return Action{Type: ActionReady, PlayerID: playerID} }

// StartGame returns a START_GAME action.
func StartGame(playerID string) Action { return Action{Type: ActionStartGame, PlayerID: playerID} }

// Pass returns a PASS action.
func Pass(playerID string) Action { return Action{Type: ActionPass, PlayerID: playerID} }

// OrderUp returns an ORDER_UP action.
func OrderUp(playerID string) Action { return Action{Type: ActionOrderUp, PlayerID: playerID} }

// CallTrump returns a CALL_TRUMP action naming suit.
func CallTrump(playerID string, suit Suit) Action {
	return Action{Type: ActionCallTrump, PlayerID: playerID, Suit: suit}
}

// PlayCard returns a PLAY_CARD action for card.
func PlayCard(playerID string, card Card) Action {
	return Action{Type: ActionPlayCard, PlayerID: playerID, Card: &card}
}

// Validate checks that the action carries exactly the fields its type needs.
func (a Action) Validate() error {
	switch a.Type {
	case ActionReady, ActionStartGame, ActionPass, ActionOrderUp:
		if a.Suit != "" || a.Card != nil {
			return fmt.Errorf("%w: %s takes no payload", ErrMalformedAction, a.Type)
		}
	case ActionCallTrump:
		if !a.Suit.Valid() {
			return fmt.Errorf("%w: invalid suit %q", ErrMalformedAction, a.Suit)
		}
		if a.Card != nil {
			return fmt.Errorf("%w: %s takes no card", ErrMalformedAction, a.Type)
		}
	case ActionPlayCard:
		if a.Card == nil || a.Card.ID == "" {
			return fmt.Errorf("%w: %s needs a card id", ErrMalformedAction, a.Type)
		}
		if a.Suit != "" {
			return fmt.Errorf("%w: %s takes no suit", ErrMalformedAction, a.Type)
		}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrMalformedAction, a.Type)
	}
	return nil
}

// Same reports whether a and b are the same move: same type, player,
// suit, and card id.
func (a Action) Same(b Action) bool {
	if a.Type != b.Type || a.PlayerID != b.PlayerID || a.Suit != b.Suit {
		return false
	}
	if (a.Card == nil) != (b.Card == nil) {
		return false
	}
	return a.Card == nil || a.Card.ID == b.Card.ID
}

func (a Action) String() string {
	switch {
	case a.Card != nil:
		return fmt.Sprintf("%s(%s)", a.Type, a.Card)
	case a.Suit != "":
		return fmt.Sprintf("%s(%s)", a.Type, a.Suit)
	}
	return string(a.Type)
}

type suitPayload struct {
	Suit Suit `json:"suit"`
}

type cardPayload struct {
	Card *Card `json:"card"`
}

type envelope struct {
	Type     ActionType      `json:"type"`
	PlayerID string          `json:"playerId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ParseAction decodes a wire action of the given type. The payload is
// read strictly: unknown fields or a payload on a bare action are errors.
func ParseAction(playerID string, typ ActionType, payload json.RawMessage) (Action, error) {
	a := Action{Type: typ, PlayerID: playerID}
	empty := len(payload) == 0 || string(payload) == "null"
	switch typ {
	case ActionCallTrump:
		var p suitPayload
		if err := decodeStrict(payload, &p); err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		a.Suit = p.Suit
	case ActionPlayCard:
		var p cardPayload
		if err := decodeStrict(payload, &p); err != nil {
			return Action{}, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		a.Card = p.Card
	default:
		if !empty && string(payload) != "{}" {
			return Action{}, fmt.Errorf("%w: %s takes no payload", ErrMalformedAction, typ)
		}
	}
	if err := a.Validate(); err != nil {
		return Action{}, err
	}
	return a, nil
}

func decodeStrict(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return errors.New("missing payload")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// MarshalJSON writes the {type, playerId, payload} envelope.
func (a Action) MarshalJSON() ([]byte, error) {
	env := envelope{Type: a.Type, PlayerID: a.PlayerID}
	var err error
	switch {
	case a.Card != nil:
		env.Payload, err = json.Marshal(cardPayload{Card: a.Card})
	case a.Suit != "":
		env.Payload, err = json.Marshal(suitPayload{Suit: a.Suit})
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalJSON reads the envelope written by MarshalJSON.
func (a *Action) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	parsed, err := ParseAction(env.PlayerID, env.Type, env.Payload)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
