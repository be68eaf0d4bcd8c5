package share

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"judgement/framework/game/engines/judgement"
)

type MessageType string

// Inbound message types.
const (
	TypeCreateRoom MessageType = "create_room"
	TypeJoinRoom   MessageType = "join_room"
	TypeStartGame  MessageType = "start_game"
	TypePlaceBid   MessageType = "place_bid"
	TypePlayCard   MessageType = "play_card"
	TypeNextRound  MessageType = "next_round"
)

const MaxNameLength = 20

// Request is one decoded, field-validated inbound message.
type Request interface {
	GetType() MessageType
}

type CreateRoomRequest struct {
	PlayerName string
}

func (r *CreateRoomRequest) GetType() MessageType { return TypeCreateRoom }

type JoinRoomRequest struct {
	PlayerName string
	// RoomCode is upper-cased during decoding.
	RoomCode string
}

func (r *JoinRoomRequest) GetType() MessageType { return TypeJoinRoom }

type StartGameRequest struct{}

func (r *StartGameRequest) GetType() MessageType { return TypeStartGame }

type PlaceBidRequest struct {
	Bid int
}

func (r *PlaceBidRequest) GetType() MessageType { return TypePlaceBid }

type PlayCardRequest struct {
	Card judgement.Card
}

func (r *PlayCardRequest) GetType() MessageType { return TypePlayCard }

type NextRoundRequest struct{}

func (r *NextRoundRequest) GetType() MessageType { return TypeNextRound }

// envelope carries every field any inbound type may use.
type envelope struct {
	Type       *string         `json:"type"`
	PlayerName string          `json:"player_name"`
	RoomCode   string          `json:"room_code"`
	Bid        json.RawMessage `json:"bid"`
	Suit       string          `json:"suit"`
	Rank       json.RawMessage `json:"rank"`
}

// DecodeRequest parses a text frame and checks the fields its type requires.
// Failures are *ProtocolError values.
func DecodeRequest(raw []byte) (Request, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, protocolError(ErrMalformedJSON, "Invalid JSON")
	}
	if env.Type == nil {
		return nil, protocolError(ErrUnknownMessageType, "Missing message type")
	}

	switch t := MessageType(*env.Type); t {
	case TypeCreateRoom:
		name, err := playerName(env.PlayerName, "Player name is required")
		if err != nil {
			return nil, err
		}
		return &CreateRoomRequest{PlayerName: name}, nil

	case TypeJoinRoom:
		code := strings.ToUpper(strings.TrimSpace(env.RoomCode))
		name, err := playerName(env.PlayerName, "Player name and room code are required")
		if err != nil {
			return nil, err
		}
		if code == "" {
			return nil, protocolError(ErrMissingField, "Player name and room code are required")
		}
		return &JoinRoomRequest{PlayerName: name, RoomCode: code}, nil

	case TypeStartGame:
		return &StartGameRequest{}, nil

	case TypePlaceBid:
		bid, ok := parseInt(env.Bid)
		if !ok {
			return nil, protocolError(ErrMissingField, "Bid value required")
		}
		return &PlaceBidRequest{Bid: bid}, nil

	case TypePlayCard:
		suit, okSuit := judgement.ParseSuit(env.Suit)
		rank, okRank := parseInt(env.Rank)
		if !okSuit || !okRank {
			return nil, protocolError(ErrInvalidCard, "Invalid card")
		}
		card, err := judgement.NewCard(suit, judgement.Rank(rank))
		if err != nil {
			return nil, protocolError(ErrInvalidCard, "Invalid card")
		}
		return &PlayCardRequest{Card: card}, nil

	case TypeNextRound:
		return &NextRoundRequest{}, nil

	default:
		return nil, protocolError(ErrUnknownMessageType, "Unknown message type: "+string(t))
	}
}

func playerName(raw, missing string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", protocolError(ErrMissingField, missing)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", protocolError(ErrNameTooLong, "Player name must be at most "+strconv.Itoa(MaxNameLength)+" characters")
	}
	return name, nil
}

// parseInt accepts a JSON number or a numeric string holding a whole
// number; 10.0 is 10, 10.5 is rejected.
func parseInt(raw json.RawMessage) (int, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
