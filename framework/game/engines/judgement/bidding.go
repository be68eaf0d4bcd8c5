package judgement

// BidderSeat maps a position in the bidding rotation to a seat index.
// Position 0 is left of the dealer; position n-1 is the dealer.
func BidderSeat(dealerIndex, position, players int) int {
	if players <= 0 {
		return 0
	}
	return (dealerIndex + 1 + position) % players
}

// BiddingOrder lists seat indices in the order they bid this round.
func (g *Game) BiddingOrder() []int {
	n := len(g.Players)
	order := make([]int, n)
	for pos := range n {
		order[pos] = BidderSeat(g.DealerIndex, pos, n)
	}
	return order
}

// CurrentBidder is the player expected to bid next, or nil outside bidding.
func (g *Game) CurrentBidder() *Player {
	if g.Phase != PhaseBidding || g.Round == nil {
		return nil
	}
	n := len(g.Players)
	if g.Round.BidPosition >= n {
		return nil
	}
	return g.Players[BidderSeat(g.DealerIndex, g.Round.BidPosition, n)]
}

// isDealerTurn reports whether the last bidding position is up.
func (g *Game) isDealerTurn() bool {
	return g.Round != nil && g.Round.BidPosition == len(g.Players)-1
}

// ForbiddenBid is the value the dealer may not bid, when the dealer is bidding
// and num_cards - sum(bids) lands inside [0, num_cards].
func (g *Game) ForbiddenBid() (int, bool) {
	if !g.isDealerTurn() {
		return 0, false
	}
	r := g.Round
	if r.NumCards <= 0 {
		return 0, false
	}
	forbidden := r.NumCards - r.bidTotal()
	if forbidden < 0 || forbidden > r.NumCards {
		return 0, false
	}
	return forbidden, true
}

// ValidBids lists the bids the current bidder may legally place.
func (g *Game) ValidBids() []int {
	if g.CurrentBidder() == nil {
		return nil
	}
	forbidden, restricted := g.ForbiddenBid()
	bids := make([]int, 0, g.Round.NumCards+1)
	for b := 0; b <= g.Round.NumCards; b++ {
		if restricted && b == forbidden {
			continue
		}
		bids = append(bids, b)
	}
	return bids
}

func (g *Game) ValidateBid(playerID string, bid int) error {
	if g.Phase != PhaseBidding {
		return newValidationError(CodeWrongPhase, "Not in bidding phase")
	}
	if g.Round == nil {
		return ErrNoActiveRound
	}
	expected := g.CurrentBidder()
	if expected == nil || expected.ID != playerID {
		return newValidationError(CodeOutOfTurn, "Not your turn to bid")
	}
	if bid < 0 || bid > g.Round.NumCards {
		return newValidationError(CodeOutOfRange, "Bid must be between 0 and %d", g.Round.NumCards)
	}
	if forbidden, ok := g.ForbiddenBid(); ok && bid == forbidden {
		return newValidationError(CodeForbiddenBid, "Dealer cannot bid %d (total bids cannot equal %d)", forbidden, g.Round.NumCards)
	}
	return nil
}

// PlaceBid records a validated bid. It returns true once every player has
// bid and the first trick has been opened.
func (g *Game) PlaceBid(playerID string, bid int) (bool, error) {
	if err := g.ValidateBid(playerID, bid); err != nil {
		return false, err
	}
	player := g.PlayerByID(playerID)
	g.Round.Bids[playerID] = bid
	b := bid
	player.Bid = &b
	g.Round.BidPosition++

	n := len(g.Players)
	if g.Round.BidPosition >= n {
		g.startFirstTrick()
		return true, nil
	}
	g.CurrentTurnIndex = BidderSeat(g.DealerIndex, g.Round.BidPosition, n)
	return false, nil
}

func (g *Game) startFirstTrick() {
	lead := BidderSeat(g.DealerIndex, 0, len(g.Players))
	g.CurrentTurnIndex = lead
	g.Phase = PhasePlaying
	g.Round.CurrentTrick = &Trick{LeadPlayerID: g.Players[lead].ID}
	g.Round.TrickNumber = 0
}
