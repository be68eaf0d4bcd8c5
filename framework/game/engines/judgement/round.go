package judgement

// Start locks the seating, builds the round sequence and deals round one.
func (g *Game) Start() error {
	if g.Phase != PhaseWaiting {
		return newValidationError(CodeWrongPhase, "Game already in progress")
	}
	if len(g.Players) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	if len(g.Players) > MaxPlayers {
		return newValidationError(CodeOutOfRange, "Room is full (max %d players)", MaxPlayers)
	}
	g.RoundSequence = BuildRoundSequence(len(g.Players))
	g.CurrentRoundIndex = 0
	g.DealerIndex = 0
	g.ScoresHistory = nil
	return g.StartNewRound()
}

// StartNewRound deals the hand size for CurrentRoundIndex and opens bidding
// with the seat left of the dealer.
func (g *Game) StartNewRound() error {
	if g.CurrentRoundIndex < 0 || g.CurrentRoundIndex >= len(g.RoundSequence) {
		return ErrNoMoreRounds
	}
	n := len(g.Players)
	numCards := g.RoundSequence[g.CurrentRoundIndex]
	if n == 0 || numCards*n > DeckSize {
		return ErrDeckExhausted
	}

	g.Phase = PhaseDealing
	for _, p := range g.Players {
		p.resetForRound()
	}
	deck := NewDeck()
	deck.Shuffle(g.rng)
	for _, p := range g.Players {
		// cannot fail: numCards*n <= DeckSize was checked above
		hand, _ := deck.Deal(numCards)
		SortCards(hand)
		p.Hand = hand
	}

	g.Round = &RoundState{
		RoundIndex:  g.CurrentRoundIndex,
		NumCards:    numCards,
		Trump:       TrumpFor(g.CurrentRoundIndex),
		DealerIndex: g.DealerIndex,
		Bids:        make(map[string]int, n),
	}
	g.CurrentTurnIndex = BidderSeat(g.DealerIndex, 0, n)
	g.Phase = PhaseBidding
	return nil
}

// RoundNumber is the 1-based number of the current round.
func (g *Game) RoundNumber() int {
	return g.CurrentRoundIndex + 1
}

func (g *Game) TotalRounds() int {
	return len(g.RoundSequence)
}
