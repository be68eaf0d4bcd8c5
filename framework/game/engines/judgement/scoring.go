package judgement

import "sort"

// PointsFor scores a single player: an exact bid earns 10 for zero, 11 for one
// and ten per trick otherwise; a miss earns nothing.
func PointsFor(bid, tricksWon int) int {
	if bid != tricksWon {
		return 0
	}
	switch bid {
	case 0:
		return 10
	case 1:
		return 11
	}
	return bid * 10
}

// ScoreRound adds this round's points to every total and appends a snapshot
// to ScoresHistory. A missing bid counts as zero.
func (g *Game) ScoreRound() []PlayerResult {
	results := make([]PlayerResult, 0, len(g.Players))
	for _, p := range g.Players {
		bid := 0
		if p.Bid != nil {
			bid = *p.Bid
		}
		points := PointsFor(bid, p.TricksWon)
		p.TotalScore += points
		results = append(results, PlayerResult{
			PlayerID:     p.ID,
			PlayerName:   p.Name,
			Bid:          bid,
			TricksWon:    p.TricksWon,
			MetBid:       bid == p.TricksWon,
			PointsEarned: points,
			TotalScore:   p.TotalScore,
		})
	}
	numCards := 0
	if g.Round != nil {
		numCards = g.Round.NumCards
	}
	g.ScoresHistory = append(g.ScoresHistory, RoundScore{
		RoundIndex: g.CurrentRoundIndex,
		NumCards:   numCards,
		Results:    results,
	})
	return results
}

// IsFinalRound reports whether the current round is the last in the sequence.
func (g *Game) IsFinalRound() bool {
	return g.CurrentRoundIndex+1 >= len(g.RoundSequence)
}

// FinishRound scores a round whose last trick has been resolved and moves the
// game to ROUND_RESULT, or GAME_OVER after the final round. The round index is
// left in place so views keep pointing at the round just played.
func (g *Game) FinishRound() ([]PlayerResult, bool, error) {
	if g.Phase != PhasePlaying || g.Round == nil || g.Round.CurrentTrick != nil {
		return nil, false, newValidationError(CodeWrongPhase, "Round is not finished")
	}
	results := g.ScoreRound()
	if g.IsFinalRound() {
		g.Phase = PhaseGameOver
		return results, true, nil
	}
	g.Phase = PhaseRoundResult
	return results, false, nil
}

// AdvanceToNextRound bumps the round index and rotates the dealer. It returns
// false and ends the game when the sequence is exhausted.
func (g *Game) AdvanceToNextRound() bool {
	g.CurrentRoundIndex++
	if n := len(g.Players); n > 0 {
		g.DealerIndex = (g.DealerIndex + 1) % n
	}
	if g.CurrentRoundIndex >= len(g.RoundSequence) {
		g.Phase = PhaseGameOver
		return false
	}
	return true
}

// ValidateNextRound checks that the game is between rounds with one to go.
func (g *Game) ValidateNextRound() error {
	if g.Phase == PhaseGameOver {
		return newValidationError(CodeWrongPhase, "Game is already over")
	}
	if g.Phase != PhaseRoundResult {
		return newValidationError(CodeWrongPhase, "Not ready for next round")
	}
	if g.IsFinalRound() {
		return ErrNoMoreRounds
	}
	return nil
}

// NextRound is the host-driven transition out of ROUND_RESULT.
func (g *Game) NextRound() error {
	if err := g.ValidateNextRound(); err != nil {
		return err
	}
	g.AdvanceToNextRound()
	return g.StartNewRound()
}

type Ranking struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	TotalScore int    `json:"total_score"`
}

type GameResults struct {
	Rankings      []Ranking    `json:"rankings"`
	Winner        *Ranking     `json:"winner"`
	ScoresHistory []RoundScore `json:"scores_history"`
}

// Results ranks players by total score; ties keep seat order.
func (g *Game) Results() GameResults {
	seats := append([]*Player(nil), g.Players...)
	sort.SliceStable(seats, func(i, j int) bool {
		return seats[i].TotalScore > seats[j].TotalScore
	})
	out := GameResults{
		Rankings:      make([]Ranking, 0, len(seats)),
		ScoresHistory: g.ScoresHistory,
	}
	for i, p := range seats {
		out.Rankings = append(out.Rankings, Ranking{
			Rank:       i + 1,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			TotalScore: p.TotalScore,
		})
	}
	if len(out.Rankings) > 0 {
		w := out.Rankings[0]
		out.Winner = &w
	}
	return out
}
