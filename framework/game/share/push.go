package share

import (
	"bytes"
	"encoding/json"

	"judgement/framework/game/engines/judgement"
)

// Outbound message types.
const (
	TypeConnected          MessageType = "connected"
	TypeError              MessageType = "error"
	TypeRoomCreated        MessageType = "room_created"
	TypeRoomJoined         MessageType = "room_joined"
	TypePlayerJoined       MessageType = "player_joined"
	TypePlayerLeft         MessageType = "player_left"
	TypePlayerDisconnected MessageType = "player_disconnected"
	TypeGameStarted        MessageType = "game_started"
	TypeRoundStart         MessageType = "round_start"
	TypeBidTurn            MessageType = "bid_turn"
	TypeBidRequest         MessageType = "bid_request"
	TypeBidPlaced          MessageType = "bid_placed"
	TypePlayTurn           MessageType = "play_turn"
	TypePlayRequest        MessageType = "play_request"
	TypeCardPlayed         MessageType = "card_played"
	TypeTrickResult        MessageType = "trick_result"
	TypeRoundResult        MessageType = "round_result"
	TypeGameOver           MessageType = "game_over"
)

// Push is a server-to-client message. Encode adds the "type" field.
type Push interface {
	GetType() MessageType
}

// Encode marshals p as a JSON object whose first key is "type".
func Encode(p Push) ([]byte, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	typ, err := json.Marshal(p.GetType())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 10)
	buf.WriteString(`{"type":`)
	buf.Write(typ)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

type Connected struct {
	PlayerID string `json:"player_id"`
}

func (*Connected) GetType() MessageType { return TypeConnected }

type Error struct {
	Message string `json:"message"`
}

func (*Error) GetType() MessageType { return TypeError }

type RoomCreated struct {
	RoomCode string                 `json:"room_code"`
	Game     judgement.GameView     `json:"game"`
	Players  []judgement.PlayerView `json:"players"`
}

func (*RoomCreated) GetType() MessageType { return TypeRoomCreated }

type RoomJoined struct {
	RoomCode    string                 `json:"room_code"`
	Game        judgement.GameView     `json:"game"`
	Players     []judgement.PlayerView `json:"players"`
	Reconnected bool                   `json:"reconnected"`
}

func (*RoomJoined) GetType() MessageType { return TypeRoomJoined }

type PlayerJoined struct {
	PlayerID string                 `json:"player_id"`
	Players  []judgement.PlayerView `json:"players"`
	HostID   string                 `json:"host_id"`
}

func (*PlayerJoined) GetType() MessageType { return TypePlayerJoined }

type PlayerLeft struct {
	PlayerID  string                 `json:"player_id"`
	Players   []judgement.PlayerView `json:"players"`
	HostID    string                 `json:"host_id"`
	NewHostID string                 `json:"new_host_id"`
}

func (*PlayerLeft) GetType() MessageType { return TypePlayerLeft }

type PlayerDisconnected struct {
	PlayerID   string             `json:"player_id"`
	PlayerName string             `json:"player_name"`
	Game       judgement.GameView `json:"game"`
}

func (*PlayerDisconnected) GetType() MessageType { return TypePlayerDisconnected }

type GameStarted struct {
	RoomCode string `json:"room_code"`
}

func (*GameStarted) GetType() MessageType { return TypeGameStarted }

// RoundStart is sent per player; Hand is the recipient's own hand only.
type RoundStart struct {
	Game        judgement.GameView     `json:"game"`
	Players     []judgement.PlayerView `json:"players"`
	Hand        []judgement.CardView   `json:"hand"`
	RoundNumber int                    `json:"round_number"`
	TotalRounds int                    `json:"total_rounds"`
	NumCards    int                    `json:"num_cards"`
	TrumpSuit   judgement.Suit         `json:"trump_suit"`
	TrumpSymbol string                 `json:"trump_symbol"`
}

func (*RoundStart) GetType() MessageType { return TypeRoundStart }

type BidTurn struct {
	CurrentBidderID   string             `json:"current_bidder_id"`
	CurrentBidderName string             `json:"current_bidder_name"`
	BidsSoFar         map[string]int     `json:"bids_so_far"`
	ForbiddenBid      *int               `json:"forbidden_bid"`
	NumCards          int                `json:"num_cards"`
	Game              judgement.GameView `json:"game"`
}

func (*BidTurn) GetType() MessageType { return TypeBidTurn }

type BidRequest struct {
	ValidBids    []int                `json:"valid_bids"`
	ForbiddenBid *int                 `json:"forbidden_bid"`
	Hand         []judgement.CardView `json:"hand"`
}

func (*BidRequest) GetType() MessageType { return TypeBidRequest }

type BidPlaced struct {
	PlayerID   string         `json:"player_id"`
	PlayerName string         `json:"player_name"`
	Bid        int            `json:"bid"`
	Bids       map[string]int `json:"bids"`
}

func (*BidPlaced) GetType() MessageType { return TypeBidPlaced }

type PlayTurn struct {
	CurrentPlayerID   string               `json:"current_player_id"`
	CurrentPlayerName string               `json:"current_player_name"`
	Trick             *judgement.TrickView `json:"trick"`
	Game              judgement.GameView   `json:"game"`
}

func (*PlayTurn) GetType() MessageType { return TypePlayTurn }

type PlayRequest struct {
	ValidCards []judgement.CardView `json:"valid_cards"`
	Hand       []judgement.CardView `json:"hand"`
}

func (*PlayRequest) GetType() MessageType { return TypePlayRequest }

type CardPlayed struct {
	PlayerID   string              `json:"player_id"`
	PlayerName string              `json:"player_name"`
	Card       judgement.CardView  `json:"card"`
	Trick      judgement.TrickView `json:"trick"`
	Game       judgement.GameView  `json:"game"`
}

func (*CardPlayed) GetType() MessageType { return TypeCardPlayed }

type TrickResult struct {
	WinnerID    string              `json:"winner_id"`
	WinnerName  string              `json:"winner_name"`
	WinningCard judgement.CardView  `json:"winning_card"`
	Trick       judgement.TrickView `json:"trick"`
	Game        judgement.GameView  `json:"game"`
}

func (*TrickResult) GetType() MessageType { return TypeTrickResult }

type RoundResult struct {
	Results       []judgement.PlayerResult `json:"results"`
	ScoresHistory []judgement.RoundScore   `json:"scores_history"`
	Game          judgement.GameView       `json:"game"`
}

func (*RoundResult) GetType() MessageType { return TypeRoundResult }

type GameOver struct {
	Results judgement.GameResults `json:"results"`
	Game    judgement.GameView    `json:"game"`
}

func (*GameOver) GetType() MessageType { return TypeGameOver }
