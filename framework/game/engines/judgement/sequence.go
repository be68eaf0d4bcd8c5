package judgement

// BuildRoundSequence returns hand sizes 1..peak..1 with peak = min(10, 52/players).
func BuildRoundSequence(players int) []int {
	if players <= 0 {
		return nil
	}
	peak := min(MaxHandSize, DeckSize/players)
	seq := make([]int, 0, 2*peak-1)
	for n := 1; n <= peak; n++ {
		seq = append(seq, n)
	}
	for n := peak - 1; n >= 1; n-- {
		seq = append(seq, n)
	}
	return seq
}

// TrumpFor rotates trump through Suits by round index.
func TrumpFor(roundIndex int) Suit {
	return Suits[roundIndex%len(Suits)]
}
