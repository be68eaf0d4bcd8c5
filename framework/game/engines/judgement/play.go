package judgement

// TrickResult describes a trick that has just been resolved.
type TrickResult struct {
	Trick       Trick
	WinnerID    string
	WinningCard Card
	// RoundOver is set when this was the last trick; the caller scores the round.
	RoundOver bool
}

// PlayOutcome is what PlayCard reports back to the caller.
type PlayOutcome struct {
	// Trick is the trick the card went into, including that card, as it
	// stood before resolution.
	Trick Trick
	// Result is nil while the trick is still open.
	Result *TrickResult
}

// CurrentPlayer is the seat whose card is expected, or nil outside play.
func (g *Game) CurrentPlayer() *Player {
	if g.Phase != PhasePlaying || g.Round == nil || g.Round.CurrentTrick == nil {
		return nil
	}
	return g.Players[g.CurrentTurnIndex]
}

// ValidCards lists the cards the player may legally play into the active trick.
func (g *Game) ValidCards(playerID string) []Card {
	if g.Round == nil || g.Round.CurrentTrick == nil {
		return nil
	}
	player := g.PlayerByID(playerID)
	if player == nil {
		return nil
	}
	led, ok := g.Round.CurrentTrick.LedSuit()
	if !ok {
		return append([]Card(nil), player.Hand...)
	}
	var suited []Card
	for _, c := range player.Hand {
		if c.Suit == led {
			suited = append(suited, c)
		}
	}
	if len(suited) > 0 {
		return suited
	}
	return append([]Card(nil), player.Hand...)
}

func (g *Game) ValidatePlay(playerID string, card Card) error {
	if g.Phase != PhasePlaying {
		return newValidationError(CodeWrongPhase, "Not in playing phase")
	}
	if g.Round == nil || g.Round.CurrentTrick == nil {
		return ErrNoActiveTrick
	}
	if g.Players[g.CurrentTurnIndex].ID != playerID {
		return ErrOutOfTurn
	}
	player := g.PlayerByID(playerID)
	if player == nil {
		return ErrUnknownPlayer
	}
	if !player.HasCard(card) {
		return ErrCardNotInHand
	}
	if !containsCard(g.ValidCards(playerID), card) {
		return ErrMustFollowSuit
	}
	return nil
}

// PlayCard moves a validated card from the hand into the active trick and
// resolves the trick once every seat has played.
func (g *Game) PlayCard(playerID string, card Card) (*PlayOutcome, error) {
	if err := g.ValidatePlay(playerID, card); err != nil {
		return nil, err
	}
	trick := g.Round.CurrentTrick
	g.PlayerByID(playerID).removeCard(card)
	trick.Cards = append(trick.Cards, PlayedCard{PlayerID: playerID, Card: card})
	g.CurrentTurnIndex = (g.CurrentTurnIndex + 1) % len(g.Players)

	outcome := &PlayOutcome{Trick: trick.clone()}
	if len(trick.Cards) == len(g.Players) {
		outcome.Result = g.resolveTrick()
	}
	return outcome, nil
}

// Beats reports whether challenger takes the trick from best.
func Beats(challenger, best Card, led, trump Suit) bool {
	challengerTrump := challenger.Suit == trump
	bestTrump := best.Suit == trump
	switch {
	case challengerTrump && !bestTrump:
		return true
	case !challengerTrump && bestTrump:
		return false
	case challengerTrump && bestTrump:
		return challenger.Rank > best.Rank
	}
	challengerFollows := challenger.Suit == led
	bestFollows := best.Suit == led
	switch {
	case challengerFollows && bestFollows:
		return challenger.Rank > best.Rank
	case challengerFollows:
		return true
	}
	return false
}

// TrickWinner picks the winning play of a non-empty trick.
func TrickWinner(cards []PlayedCard, trump Suit) PlayedCard {
	best := cards[0]
	led := best.Card.Suit
	for _, pc := range cards[1:] {
		if Beats(pc.Card, best.Card, led, trump) {
			best = pc
		}
	}
	return best
}

func (g *Game) resolveTrick() *TrickResult {
	r := g.Round
	trick := r.CurrentTrick
	win := TrickWinner(trick.Cards, r.Trump)
	trick.WinnerID = win.PlayerID
	g.PlayerByID(win.PlayerID).TricksWon++

	done := trick.clone()
	r.TricksCompleted = append(r.TricksCompleted, done)
	r.TrickNumber++

	result := &TrickResult{Trick: done, WinnerID: win.PlayerID, WinningCard: win.Card}
	if r.TrickNumber >= r.NumCards {
		r.CurrentTrick = nil
		result.RoundOver = true
		return result
	}
	g.CurrentTurnIndex = g.PlayerIndex(win.PlayerID)
	r.CurrentTrick = &Trick{LeadPlayerID: win.PlayerID}
	return result
}
