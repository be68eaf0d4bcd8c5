package judgement

// Views are the JSON shapes sent to clients. Shared views never carry a hand.

type CardView struct {
	Suit       Suit   `json:"suit"`
	Rank       Rank   `json:"rank"`
	Display    string `json:"display"`
	RankSymbol string `json:"rank_symbol"`
	SuitSymbol string `json:"suit_symbol"`
}

type PlayerView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hand       []CardView `json:"hand"`
	HandCount  int        `json:"hand_count"`
	Bid        *int       `json:"bid"`
	TricksWon  int        `json:"tricks_won"`
	TotalScore int        `json:"total_score"`
	Connected  bool       `json:"connected"`
}

type PlayedCardView struct {
	PlayerID string   `json:"player_id"`
	Card     CardView `json:"card"`
}

type TrickView struct {
	LeadPlayerID string           `json:"lead_player_id"`
	CardsPlayed  []PlayedCardView `json:"cards_played"`
	WinnerID     *string          `json:"winner_id"`
}

type RoundView struct {
	RoundIndex   int            `json:"round_index"`
	NumCards     int            `json:"num_cards"`
	TrumpSuit    Suit           `json:"trump_suit"`
	TrumpSymbol  string         `json:"trump_symbol"`
	DealerIndex  int            `json:"dealer_index"`
	Bids         map[string]int `json:"bids"`
	TrickNumber  int            `json:"trick_number"`
	CurrentTrick *TrickView     `json:"current_trick"`
}

type GameView struct {
	RoomCode          string       `json:"room_code"`
	HostID            string       `json:"host_id"`
	Phase             Phase        `json:"phase"`
	Players           []PlayerView `json:"players"`
	CurrentRoundIndex int          `json:"current_round_index"`
	TotalRounds       int          `json:"total_rounds"`
	CurrentRound      *RoundView   `json:"current_round"`
	DealerIndex       int          `json:"dealer_index"`
	CurrentTurnIndex  int          `json:"current_turn_index"`
}

func (c Card) View() CardView {
	return CardView{
		Suit:       c.Suit,
		Rank:       c.Rank,
		Display:    c.String(),
		RankSymbol: c.Rank.Symbol(),
		SuitSymbol: c.Suit.Symbol(),
	}
}

func CardViews(cards []Card) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.View())
	}
	return out
}

// PublicView hides the hand; only its size is visible.
func (p *Player) PublicView() PlayerView {
	return PlayerView{
		ID:         p.ID,
		Name:       p.Name,
		Hand:       []CardView{},
		HandCount:  len(p.Hand),
		Bid:        p.Bid,
		TricksWon:  p.TricksWon,
		TotalScore: p.TotalScore,
		Connected:  p.Connected,
	}
}

func (t *Trick) View() TrickView {
	v := TrickView{
		LeadPlayerID: t.LeadPlayerID,
		CardsPlayed:  make([]PlayedCardView, 0, len(t.Cards)),
	}
	for _, pc := range t.Cards {
		v.CardsPlayed = append(v.CardsPlayed, PlayedCardView{PlayerID: pc.PlayerID, Card: pc.Card.View()})
	}
	if t.WinnerID != "" {
		id := t.WinnerID
		v.WinnerID = &id
	}
	return v
}

func (r *RoundState) View() RoundView {
	bids := make(map[string]int, len(r.Bids))
	for id, b := range r.Bids {
		bids[id] = b
	}
	v := RoundView{
		RoundIndex:  r.RoundIndex,
		NumCards:    r.NumCards,
		TrumpSuit:   r.Trump,
		TrumpSymbol: r.Trump.Symbol(),
		DealerIndex: r.DealerIndex,
		Bids:        bids,
		TrickNumber: r.TrickNumber,
	}
	if r.CurrentTrick != nil {
		tv := r.CurrentTrick.View()
		v.CurrentTrick = &tv
	}
	return v
}

func (g *Game) PlayerViews() []PlayerView {
	out := make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		out = append(out, p.PublicView())
	}
	return out
}

// View is the snapshot broadcast to the whole room.
func (g *Game) View() GameView {
	v := GameView{
		RoomCode:          g.RoomCode,
		HostID:            g.HostID,
		Phase:             g.Phase,
		Players:           g.PlayerViews(),
		CurrentRoundIndex: g.CurrentRoundIndex,
		TotalRounds:       len(g.RoundSequence),
		DealerIndex:       g.DealerIndex,
		CurrentTurnIndex:  g.CurrentTurnIndex,
	}
	if g.Round != nil {
		rv := g.Round.View()
		v.CurrentRound = &rv
	}
	return v
}
