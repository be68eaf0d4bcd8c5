package judgement

import (
	"math/rand/v2"
)

const DeckSize = 52

// Deck is owned by the round-start procedure and discarded after dealing.
type Deck struct {
	cards []Card
}

func NewDeck() *Deck {
	deck := &Deck{cards: make([]Card, 0, DeckSize)}
	for _, suit := range Suits {
		for rank := MinRank; rank <= MaxRank; rank++ {
			deck.cards = append(deck.cards, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// Shuffle permutes the remaining cards in place.
func (d *Deck) Shuffle(rng *rand.Rand) {
	if rng == nil {
		rand.Shuffle(len(d.cards), func(i, j int) {
			d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
		})
		return
	}
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the first n cards.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	hand := make([]Card, n)
	copy(hand, d.cards[:n])
	d.cards = d.cards[n:]
	return hand, nil
}

func (d *Deck) Remaining() int {
	return len(d.cards)
}
