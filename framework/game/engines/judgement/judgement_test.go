package judgement

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
)

func newStartedGame(t *testing.T, n int) *Game {
	t.Helper()
	g := NewGame("TEST01", rand.New(rand.NewPCG(7, 11)))
	for i := range n {
		g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player %d", i))
	}
	if err := g.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return g
}

func bidInOrder(t *testing.T, g *Game, bids ...int) {
	t.Helper()
	for _, bid := range bids {
		bidder := g.CurrentBidder()
		if bidder == nil {
			t.Fatalf("no bidder expected, phase = %s", g.Phase)
		}
		if _, err := g.PlaceBid(bidder.ID, bid); err != nil {
			t.Fatalf("PlaceBid(%s, %d) error = %v", bidder.ID, bid, err)
		}
	}
}

func card(s Suit, r Rank) Card {
	return Card{Suit: s, Rank: r}
}

func TestDeck(t *testing.T) {
	d := NewDeck()
	if d.Remaining() != DeckSize {
		t.Fatalf("Remaining() = %d, want %d", d.Remaining(), DeckSize)
	}
	d.Shuffle(rand.New(rand.NewPCG(1, 2)))
	seen := make(map[Card]bool)
	hand, err := d.Deal(DeckSize)
	if err != nil {
		t.Fatalf("Deal(52) error = %v", err)
	}
	for _, c := range hand {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
	}
	if _, err := d.Deal(1); !errors.Is(err, ErrDeckExhausted) {
		t.Fatalf("Deal past end error = %v, want ErrDeckExhausted", err)
	}
}

func TestCardDisplayAndSort(t *testing.T) {
	cards := []Card{card(Hearts, 2), card(Spades, Ace), card(Diamonds, 10), card(Spades, 3)}
	SortCards(cards)
	want := []string{"3♠", "A♠", "10♦", "2♥"}
	for i, c := range cards {
		if c.String() != want[i] {
			t.Fatalf("cards[%d] = %s, want %s", i, c, want[i])
		}
	}
	if _, err := NewCard("stars", 5); err == nil {
		t.Fatalf("NewCard accepted an unknown suit")
	}
	if _, err := NewCard(Clubs, 15); err == nil {
		t.Fatalf("NewCard accepted rank 15")
	}
	if s, ok := ParseSuit(" Hearts "); !ok || s != Hearts {
		t.Fatalf("ParseSuit = %q, %v", s, ok)
	}
}

func TestBuildRoundSequence(t *testing.T) {
	tests := []struct {
		players int
		peak    int
		rounds  int
	}{
		{players: 4, peak: 10, rounds: 19},
		{players: 5, peak: 10, rounds: 19},
		{players: 6, peak: 8, rounds: 15},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d players", tt.players), func(t *testing.T) {
			seq := BuildRoundSequence(tt.players)
			if len(seq) != tt.rounds {
				t.Fatalf("len = %d, want %d", len(seq), tt.rounds)
			}
			if seq[tt.peak-1] != tt.peak {
				t.Fatalf("peak = %d, want %d", seq[tt.peak-1], tt.peak)
			}
			for i := range seq {
				if seq[i] != seq[len(seq)-1-i] {
					t.Fatalf("sequence not symmetric at %d: %v", i, seq)
				}
				if seq[i]*tt.players > DeckSize {
					t.Fatalf("round %d deals %d cards to %d players", i, seq[i], tt.players)
				}
			}
		})
	}
}

func TestStartNewRoundDealsAndOpensBidding(t *testing.T) {
	g := newStartedGame(t, 5)
	if g.Phase != PhaseBidding {
		t.Fatalf("phase = %s, want bidding", g.Phase)
	}
	if g.Round.Trump != Spades || g.Round.NumCards != 1 {
		t.Fatalf("round = %+v", g.Round)
	}
	for _, p := range g.Players {
		if len(p.Hand) != 1 {
			t.Fatalf("%s hand size = %d", p.ID, len(p.Hand))
		}
	}
	if got := g.CurrentBidder().ID; got != "p1" {
		t.Fatalf("first bidder = %s, want p1", got)
	}
}

func TestStartRejectsSmallTable(t *testing.T) {
	g := NewGame("TEST01", nil)
	for i := range 3 {
		g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("n%d", i))
	}
	if err := g.Start(); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("Start() error = %v, want ErrNotEnoughPlayers", err)
	}
	if g.Phase != PhaseWaiting {
		t.Fatalf("phase changed to %s", g.Phase)
	}
}

func TestBidderSeat(t *testing.T) {
	tests := []struct {
		dealer, position, players, want int
	}{
		{0, 0, 4, 1},
		{0, 3, 4, 0},
		{3, 0, 4, 0},
		{5, 2, 6, 2},
		{2, 5, 6, 2},
	}
	for _, tt := range tests {
		if got := BidderSeat(tt.dealer, tt.position, tt.players); got != tt.want {
			t.Errorf("BidderSeat(%d, %d, %d) = %d, want %d", tt.dealer, tt.position, tt.players, got, tt.want)
		}
	}
}

func TestDealerAlwaysHasLegalBid(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for numCards := 1; numCards*n <= DeckSize && numCards <= MaxHandSize; numCards++ {
			for total := 0; total <= (n-1)*numCards; total++ {
				g := NewGame("TEST01", nil)
				for i := range n {
					g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("n%d", i))
				}
				g.Phase = PhaseBidding
				g.Round = &RoundState{NumCards: numCards, Bids: map[string]int{}, BidPosition: n - 1}
				remaining := total
				for pos := 0; pos < n-1; pos++ {
					b := min(remaining, numCards)
					remaining -= b
					g.Round.Bids[g.Players[BidderSeat(0, pos, n)].ID] = b
				}

				forbidden, ok := g.ForbiddenBid()
				if ok && (forbidden < 0 || forbidden > numCards) {
					t.Fatalf("n=%d cards=%d total=%d forbidden=%d out of range", n, numCards, total, forbidden)
				}
				if len(g.ValidBids()) == 0 {
					t.Fatalf("n=%d cards=%d total=%d: dealer has no legal bid", n, numCards, total)
				}
			}
		}
	}
}

func TestValidateBid(t *testing.T) {
	g := newStartedGame(t, 4)
	bidInOrder(t, g, 0, 0, 0)

	tests := []struct {
		name   string
		player string
		bid    int
		want   error
	}{
		{"out of turn", "p1", 0, ErrOutOfTurn},
		{"negative", "p0", -1, ErrOutOfRange},
		{"too high", "p0", 2, ErrOutOfRange},
		{"dealer forbidden", "p0", 1, ErrForbiddenBid},
		{"dealer allowed", "p0", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateBid(tt.player, tt.bid)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("ValidateBid error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("ValidateBid error = %v, want %v", err, tt.want)
			}
		})
	}

	err := g.ValidateBid("p0", 1)
	if err.Error() != "Dealer cannot bid 1 (total bids cannot equal 1)" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestOutOfTurnDoesNotMutate(t *testing.T) {
	g := newStartedGame(t, 4)
	pos, turn := g.Round.BidPosition, g.CurrentTurnIndex
	if _, err := g.PlaceBid("p3", 0); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("PlaceBid error = %v", err)
	}
	if g.Round.BidPosition != pos || g.CurrentTurnIndex != turn || len(g.Round.Bids) != 0 {
		t.Fatalf("state mutated by rejected bid")
	}
	if g.PlayerByID("p3").Bid != nil {
		t.Fatalf("player bid recorded")
	}

	bidInOrder(t, g, 0, 0, 0, 0)
	lead := g.CurrentPlayer()
	other := g.Players[(g.CurrentTurnIndex+1)%4]
	hand := append([]Card(nil), other.Hand...)
	if _, err := g.PlayCard(other.ID, other.Hand[0]); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("PlayCard error = %v", err)
	}
	if g.CurrentPlayer() != lead || len(g.Round.CurrentTrick.Cards) != 0 || len(other.Hand) != len(hand) {
		t.Fatalf("state mutated by rejected play")
	}
}

func TestPlaceBidOpensFirstTrick(t *testing.T) {
	g := newStartedGame(t, 4)
	bidInOrder(t, g, 1, 0, 0)
	done, err := g.PlaceBid("p0", 1)
	if err != nil || !done {
		t.Fatalf("PlaceBid = %v, %v", done, err)
	}
	if g.Phase != PhasePlaying || g.Round.CurrentTrick == nil {
		t.Fatalf("phase = %s trick = %v", g.Phase, g.Round.CurrentTrick)
	}
	if g.Round.CurrentTrick.LeadPlayerID != "p1" || g.CurrentPlayer().ID != "p1" {
		t.Fatalf("lead = %s", g.Round.CurrentTrick.LeadPlayerID)
	}
	if *g.PlayerByID("p0").Bid != 1 || g.Round.Bids["p0"] != 1 {
		t.Fatalf("bid not recorded on both player and round")
	}
}

func TestBeats(t *testing.T) {
	tests := []struct {
		name             string
		challenger, best Card
		led, trump       Suit
		want             bool
	}{
		{"trump over led", card(Spades, 2), card(Hearts, Ace), Hearts, Spades, true},
		{"led under trump", card(Hearts, Ace), card(Spades, 2), Hearts, Spades, false},
		{"higher trump", card(Spades, 9), card(Spades, 4), Hearts, Spades, true},
		{"lower trump", card(Spades, 4), card(Spades, 9), Hearts, Spades, false},
		{"higher led", card(Hearts, King), card(Hearts, 5), Hearts, Spades, true},
		{"off suit never wins", card(Clubs, Ace), card(Hearts, 2), Hearts, Spades, false},
		{"follow beats off suit", card(Hearts, 2), card(Clubs, Ace), Hearts, Spades, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Beats(tt.challenger, tt.best, tt.led, tt.trump); got != tt.want {
				t.Fatalf("Beats(%s, %s) = %v, want %v", tt.challenger, tt.best, got, tt.want)
			}
		})
	}
}

func TestTrickWinnerIsDeterministic(t *testing.T) {
	cards := []PlayedCard{
		{PlayerID: "a", Card: card(Diamonds, 7)},
		{PlayerID: "b", Card: card(Diamonds, Queen)},
		{PlayerID: "c", Card: card(Clubs, Ace)},
		{PlayerID: "d", Card: card(Diamonds, 3)},
	}
	first := TrickWinner(cards, Hearts)
	for range 10 {
		if got := TrickWinner(cards, Hearts); got != first {
			t.Fatalf("winner changed from %v to %v", first, got)
		}
	}
	if first.PlayerID != "b" {
		t.Fatalf("winner = %s, want b", first.PlayerID)
	}
	if got := TrickWinner(cards, Clubs); got.PlayerID != "c" {
		t.Fatalf("winner with clubs trump = %s, want c", got.PlayerID)
	}
}

func TestValidCardsFollowSuit(t *testing.T) {
	g := newStartedGame(t, 4)
	bidInOrder(t, g, 0, 0, 0, 0)
	g.Round.NumCards = 3
	g.PlayerByID("p1").Hand = []Card{card(Hearts, 5)}
	g.PlayerByID("p2").Hand = []Card{card(Clubs, 2), card(Hearts, 9), card(Hearts, Jack)}
	g.PlayerByID("p3").Hand = []Card{card(Clubs, 4), card(Diamonds, 6)}

	if got := g.ValidCards("p1"); len(got) != 1 {
		t.Fatalf("lead valid cards = %v", got)
	}
	if _, err := g.PlayCard("p1", card(Hearts, 5)); err != nil {
		t.Fatalf("PlayCard error = %v", err)
	}
	if got := g.ValidCards("p2"); len(got) != 2 || got[0].Suit != Hearts || got[1].Suit != Hearts {
		t.Fatalf("valid cards = %v, want hearts only", got)
	}
	if err := g.ValidatePlay("p2", card(Clubs, 2)); !errors.Is(err, ErrMustFollowSuit) {
		t.Fatalf("ValidatePlay error = %v, want ErrMustFollowSuit", err)
	}
	if err := g.ValidatePlay("p2", card(Spades, Ace)); !errors.Is(err, ErrCardNotInHand) {
		t.Fatalf("ValidatePlay error = %v, want ErrCardNotInHand", err)
	}
	if _, err := g.PlayCard("p2", card(Hearts, 9)); err != nil {
		t.Fatalf("PlayCard error = %v", err)
	}
	if got := g.ValidCards("p3"); len(got) != 2 {
		t.Fatalf("void player valid cards = %v, want whole hand", got)
	}
}

func TestFirstRoundScoring(t *testing.T) {
	g := newStartedGame(t, 4)
	g.PlayerByID("p1").Hand = []Card{card(Hearts, 5)}
	g.PlayerByID("p2").Hand = []Card{card(Hearts, King)}
	g.PlayerByID("p3").Hand = []Card{card(Spades, 2)}
	g.PlayerByID("p0").Hand = []Card{card(Hearts, Ace)}
	bidInOrder(t, g, 0, 0, 0, 0)

	var last *PlayOutcome
	for _, id := range []string{"p1", "p2", "p3", "p0"} {
		out, err := g.PlayCard(id, g.PlayerByID(id).Hand[0])
		if err != nil {
			t.Fatalf("PlayCard(%s) error = %v", id, err)
		}
		last = out
	}
	if last.Result == nil || !last.Result.RoundOver {
		t.Fatalf("round not over after single trick: %+v", last)
	}
	if last.Result.WinnerID != "p3" {
		t.Fatalf("winner = %s, want p3 (lone trump)", last.Result.WinnerID)
	}
	if g.Round.CurrentTrick != nil {
		t.Fatalf("current trick still set after round end")
	}

	results, over, err := g.FinishRound()
	if err != nil || over {
		t.Fatalf("FinishRound = %v, %v", over, err)
	}
	if g.Phase != PhaseRoundResult {
		t.Fatalf("phase = %s", g.Phase)
	}
	for _, r := range results {
		want := 10
		if r.PlayerID == "p3" {
			want = 0
		}
		if r.PointsEarned != want {
			t.Fatalf("%s earned %d, want %d", r.PlayerID, r.PointsEarned, want)
		}
	}
	if len(g.ScoresHistory) != 1 || g.ScoresHistory[0].NumCards != 1 {
		t.Fatalf("history = %+v", g.ScoresHistory)
	}
}

func TestPointsFor(t *testing.T) {
	tests := []struct {
		bid, won, want int
	}{
		{0, 0, 10},
		{1, 1, 11},
		{3, 3, 30},
		{10, 10, 100},
		{2, 1, 0},
		{0, 1, 0},
	}
	for _, tt := range tests {
		if got := PointsFor(tt.bid, tt.won); got != tt.want {
			t.Errorf("PointsFor(%d, %d) = %d, want %d", tt.bid, tt.won, got, tt.want)
		}
	}
	for bid := 0; bid <= MaxHandSize; bid++ {
		for won := 0; won <= MaxHandSize; won++ {
			if (PointsFor(bid, won) > 0) != (bid == won) {
				t.Fatalf("PointsFor(%d, %d) breaks points>0 iff met", bid, won)
			}
		}
	}
}

func TestNextRoundAndGameOver(t *testing.T) {
	g := newStartedGame(t, 4)
	if err := g.NextRound(); err == nil {
		t.Fatalf("NextRound allowed during bidding")
	}
	g.Phase = PhaseRoundResult
	if err := g.NextRound(); err != nil {
		t.Fatalf("NextRound error = %v", err)
	}
	if g.CurrentRoundIndex != 1 || g.DealerIndex != 1 || g.Round.Trump != Diamonds || g.Round.NumCards != 2 {
		t.Fatalf("round 2 state = idx %d dealer %d %+v", g.CurrentRoundIndex, g.DealerIndex, g.Round)
	}
	if g.CurrentBidder().ID != "p2" {
		t.Fatalf("first bidder = %s, want p2", g.CurrentBidder().ID)
	}

	g.CurrentRoundIndex = len(g.RoundSequence) - 1
	g.Phase = PhaseRoundResult
	if err := g.NextRound(); !errors.Is(err, ErrNoMoreRounds) {
		t.Fatalf("NextRound on final round error = %v", err)
	}
	if g.AdvanceToNextRound() || g.Phase != PhaseGameOver {
		t.Fatalf("AdvanceToNextRound past the end left phase %s", g.Phase)
	}
	if err := g.NextRound(); err == nil || err.Error() != "Game is already over" {
		t.Fatalf("NextRound after game over error = %v", err)
	}
}

func TestResultsKeepSeatOrderOnTies(t *testing.T) {
	g := NewGame("TEST01", nil)
	for i, score := range []int{20, 30, 20, 5} {
		p := g.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("n%d", i))
		p.TotalScore = score
	}
	res := g.Results()
	want := []string{"p1", "p0", "p2", "p3"}
	for i, r := range res.Rankings {
		if r.PlayerID != want[i] || r.Rank != i+1 {
			t.Fatalf("rankings[%d] = %+v, want %s", i, r, want[i])
		}
	}
	if res.Winner == nil || res.Winner.PlayerID != "p1" {
		t.Fatalf("winner = %+v", res.Winner)
	}
}

func TestRebindPlayer(t *testing.T) {
	g := newStartedGame(t, 4)
	bidInOrder(t, g, 0, 0, 0, 0)
	lead := g.CurrentPlayer()
	if _, err := g.PlayCard(lead.ID, g.ValidCards(lead.ID)[0]); err != nil {
		t.Fatalf("PlayCard error = %v", err)
	}
	hand := append([]Card(nil), lead.Hand...)

	if !g.RebindPlayer("p1", "p1-new") {
		t.Fatalf("RebindPlayer failed")
	}
	if g.PlayerByID("p1") != nil {
		t.Fatalf("old id still resolves")
	}
	p := g.PlayerByID("p1-new")
	if p == nil || p.Name != "Player 1" || len(p.Hand) != len(hand) {
		t.Fatalf("rebound player = %+v", p)
	}
	if _, ok := g.Round.Bids["p1"]; ok {
		t.Fatalf("bid still keyed by old id")
	}
	if g.Round.Bids["p1-new"] != 0 {
		t.Fatalf("bid not moved")
	}
	if g.Round.CurrentTrick.LeadPlayerID != "p1-new" || g.Round.CurrentTrick.Cards[0].PlayerID != "p1-new" {
		t.Fatalf("trick references not rebound: %+v", g.Round.CurrentTrick)
	}
	if g.RebindPlayer("p2", "p3") {
		t.Fatalf("rebind onto an existing id succeeded")
	}
}

func TestRebindPlayerRewritesHistory(t *testing.T) {
	g := newStartedGame(t, 4)
	bidInOrder(t, g, 0, 0, 0, 0)
	for g.Round.CurrentTrick != nil {
		p := g.CurrentPlayer()
		if _, err := g.PlayCard(p.ID, g.ValidCards(p.ID)[0]); err != nil {
			t.Fatalf("PlayCard error = %v", err)
		}
	}
	if _, _, err := g.FinishRound(); err != nil {
		t.Fatalf("FinishRound error = %v", err)
	}
	winner := g.Round.TricksCompleted[0].WinnerID

	if !g.RebindPlayer(winner, "rejoined") {
		t.Fatalf("RebindPlayer failed")
	}
	trick := g.Round.TricksCompleted[0]
	if trick.WinnerID != "rejoined" {
		t.Errorf("completed trick winner = %q", trick.WinnerID)
	}
	for _, pc := range trick.Cards {
		if pc.PlayerID == winner {
			t.Errorf("completed trick still names %q", winner)
		}
	}
	found := false
	for _, res := range g.ScoresHistory[0].Results {
		if res.PlayerID == winner {
			t.Errorf("score history still names %q", winner)
		}
		if res.PlayerID == "rejoined" {
			found = true
		}
	}
	if !found {
		t.Errorf("score history lost the rebound row: %+v", g.ScoresHistory[0].Results)
	}
}

func TestRemovePlayerTransfersHost(t *testing.T) {
	g := NewGame("TEST01", nil)
	g.AddPlayer("a", "A")
	g.AddPlayer("b", "B")
	if g.HostID != "a" {
		t.Fatalf("host = %s", g.HostID)
	}
	g.RemovePlayer("a")
	if g.HostID != "b" {
		t.Fatalf("host after removal = %s, want b", g.HostID)
	}
	g.RemovePlayer("b")
	if g.HostID != "" || len(g.Players) != 0 {
		t.Fatalf("empty game kept host %q", g.HostID)
	}
}

func TestPublicViewHidesHand(t *testing.T) {
	g := newStartedGame(t, 4)
	v := g.View()
	for _, p := range v.Players {
		if len(p.Hand) != 0 || p.HandCount != 1 {
			t.Fatalf("player view leaks hand: %+v", p)
		}
	}
	if v.CurrentRound == nil || v.CurrentRound.TrumpSymbol != "♠" || v.TotalRounds != 19 {
		t.Fatalf("round view = %+v", v.CurrentRound)
	}
}
