package judgement

import (
	"fmt"
	"sort"
	"strings"
)

type Suit string

const (
	Spades   Suit = "spades"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Hearts   Suit = "hearts"
)

// Suits is the fixed suit order used for hand sorting and trump rotation.
var Suits = [4]Suit{Spades, Diamonds, Clubs, Hearts}

var suitSymbols = map[Suit]string{
	Spades:   "♠",
	Diamonds: "♦",
	Clubs:    "♣",
	Hearts:   "♥",
}

// ParseSuit accepts a suit name in any case.
func ParseSuit(s string) (Suit, bool) {
	suit := Suit(strings.ToLower(strings.TrimSpace(s)))
	return suit, suit.Valid()
}

func (s Suit) Valid() bool {
	_, ok := suitSymbols[s]
	return ok
}

// Index returns the position of the suit in Suits, or -1.
func (s Suit) Index() int {
	for i, suit := range Suits {
		if suit == s {
			return i
		}
	}
	return -1
}

func (s Suit) Symbol() string {
	return suitSymbols[s]
}

type Rank int

const (
	MinRank Rank = 2
	Jack    Rank = 11
	Queen   Rank = 12
	King    Rank = 13
	Ace     Rank = 14
	MaxRank      = Ace
)

func (r Rank) Valid() bool {
	return r >= MinRank && r <= MaxRank
}

func (r Rank) Symbol() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	}
	return fmt.Sprintf("%d", int(r))
}

// Card is a value type; two cards are equal when suit and rank match.
type Card struct {
	Suit Suit
	Rank Rank
}

func NewCard(suit Suit, rank Rank) (Card, error) {
	if !suit.Valid() {
		return Card{}, fmt.Errorf("invalid suit %q", suit)
	}
	if !rank.Valid() {
		return Card{}, fmt.Errorf("invalid rank %d", rank)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// String renders the card as rank symbol followed by suit symbol, e.g. "10♦".
func (c Card) String() string {
	return c.Rank.Symbol() + c.Suit.Symbol()
}

// Less orders cards by suit position, then rank ascending.
func (c Card) Less(other Card) bool {
	if c.Suit != other.Suit {
		return c.Suit.Index() < other.Suit.Index()
	}
	return c.Rank < other.Rank
}

func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Less(cards[j])
	})
}

func containsCard(cards []Card, card Card) bool {
	for _, c := range cards {
		if c == card {
			return true
		}
	}
	return false
}
