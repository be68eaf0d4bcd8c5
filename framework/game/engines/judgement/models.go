package judgement

import (
	"math/rand/v2"
	"time"
)

const (
	MinPlayers  = 4
	MaxPlayers  = 6
	MaxHandSize = 10
)

type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseDealing     Phase = "dealing"
	PhaseBidding     Phase = "bidding"
	PhasePlaying     Phase = "playing"
	PhaseRoundResult Phase = "round_result"
	PhaseGameOver    Phase = "game_over"
)

// InProgress reports whether seats are locked and reconnection-by-name applies.
func (p Phase) InProgress() bool {
	return p != PhaseWaiting
}

type Player struct {
	ID         string
	Name       string
	Hand       []Card
	Bid        *int
	TricksWon  int
	TotalScore int

	Connected      bool
	DisconnectedAt time.Time
}

func (p *Player) resetForRound() {
	p.Hand = nil
	p.Bid = nil
	p.TricksWon = 0
}

func (p *Player) HasCard(card Card) bool {
	return containsCard(p.Hand, card)
}

func (p *Player) removeCard(card Card) {
	for i, c := range p.Hand {
		if c == card {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}

type PlayedCard struct {
	PlayerID string
	Card     Card
}

type Trick struct {
	LeadPlayerID string
	Cards        []PlayedCard
	WinnerID     string
}

// LedSuit is the suit of the first card played, if any.
func (t *Trick) LedSuit() (Suit, bool) {
	if len(t.Cards) == 0 {
		return "", false
	}
	return t.Cards[0].Card.Suit, true
}

func (t *Trick) clone() Trick {
	out := *t
	out.Cards = append([]PlayedCard(nil), t.Cards...)
	return out
}

type RoundState struct {
	RoundIndex  int
	NumCards    int
	Trump       Suit
	DealerIndex int
	// BidPosition is the position in the bidding rotation, not a seat index.
	// Use BidderSeat to map it.
	BidPosition     int
	Bids            map[string]int
	CurrentTrick    *Trick
	TricksCompleted []Trick
	TrickNumber     int
}

func (r *RoundState) bidTotal() int {
	total := 0
	for _, bid := range r.Bids {
		total += bid
	}
	return total
}

// PlayerResult is one player's line in a round's score snapshot.
type PlayerResult struct {
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name"`
	Bid          int    `json:"bid"`
	TricksWon    int    `json:"tricks_won"`
	MetBid       bool   `json:"met_bid"`
	PointsEarned int    `json:"points_earned"`
	TotalScore   int    `json:"total_score"`
}

type RoundScore struct {
	RoundIndex int            `json:"round_index"`
	NumCards   int            `json:"num_cards"`
	Results    []PlayerResult `json:"results"`
}

type Game struct {
	RoomCode          string
	HostID            string
	Players           []*Player
	Phase             Phase
	RoundSequence     []int
	CurrentRoundIndex int
	Round             *RoundState
	DealerIndex       int
	// CurrentTurnIndex is a seat index into Players.
	CurrentTurnIndex int
	ScoresHistory    []RoundScore

	rng *rand.Rand
}

// NewGame creates a game in the waiting phase. A nil rng uses the global source.
func NewGame(roomCode string, rng *rand.Rand) *Game {
	return &Game{
		RoomCode: roomCode,
		Phase:    PhaseWaiting,
		rng:      rng,
	}
}

func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) PlayerByName(name string) *Player {
	for _, p := range g.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// PlayerIndex returns the seat of the player, or -1.
func (g *Game) PlayerIndex(id string) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddPlayer seats a new connected player. The first player becomes host.
func (g *Game) AddPlayer(id, name string) *Player {
	p := &Player{ID: id, Name: name, Connected: true}
	g.Players = append(g.Players, p)
	if g.HostID == "" {
		g.HostID = id
	}
	return p
}

// RemovePlayer drops the seat and hands the host role to the new first seat.
func (g *Game) RemovePlayer(id string) bool {
	idx := g.PlayerIndex(id)
	if idx < 0 {
		return false
	}
	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if g.HostID == id {
		g.HostID = ""
		if len(g.Players) > 0 {
			g.HostID = g.Players[0].ID
		}
	}
	return true
}

// RebindPlayer moves every reference to oldID over to newID in one step:
// the player record, host, the round's bids and tricks, and the score history.
func (g *Game) RebindPlayer(oldID, newID string) bool {
	p := g.PlayerByID(oldID)
	if p == nil || oldID == newID {
		return p != nil
	}
	if g.PlayerByID(newID) != nil {
		return false
	}
	p.ID = newID
	if g.HostID == oldID {
		g.HostID = newID
	}
	if r := g.Round; r != nil {
		if bid, ok := r.Bids[oldID]; ok {
			delete(r.Bids, oldID)
			r.Bids[newID] = bid
		}
		if t := r.CurrentTrick; t != nil {
			rebindTrick(t, oldID, newID)
		}
		for i := range r.TricksCompleted {
			rebindTrick(&r.TricksCompleted[i], oldID, newID)
		}
	}
	for i := range g.ScoresHistory {
		results := g.ScoresHistory[i].Results
		for j := range results {
			if results[j].PlayerID == oldID {
				results[j].PlayerID = newID
			}
		}
	}
	return true
}

func rebindTrick(t *Trick, oldID, newID string) {
	if t.LeadPlayerID == oldID {
		t.LeadPlayerID = newID
	}
	if t.WinnerID == oldID {
		t.WinnerID = newID
	}
	for i := range t.Cards {
		if t.Cards[i].PlayerID == oldID {
			t.Cards[i].PlayerID = newID
		}
	}
}

// AllDisconnectedSince reports whether every seat has been offline since before cutoff.
func (g *Game) AllDisconnectedSince(cutoff time.Time) bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if p.Connected || p.DisconnectedAt.After(cutoff) {
			return false
		}
	}
	return true
}
