// game/card.go
package game

import (
	"fmt"
	"math/rand"
)

// Card is a rank in [1,13]. Suits carry no meaning in this game.
type Card int

// Deck is an ordered sequence of cards.
type Deck []Card

// DeckSize is the size of a full deck: four copies of each rank 1..13.
const DeckSize = 52

// GenerateFullDeck returns the canonical 52-card deck, ranks ascending,
// four copies of each rank.
func GenerateFullDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for rank := 1; rank <= 13; rank++ {
		for i := 0; i < 4; i++ {
			deck = append(deck, Card(rank))
		}
	}
	return deck
}

// Shuffle returns a new deck containing the same cards in pseudorandom
// order using a Fisher-Yates permutation. The input is not mutated.
func Shuffle(deck Deck) Deck {
	shuffled := make(Deck, len(deck))
	copy(shuffled, deck)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Distribute splits an even-length deck into two equal halves by
// alternating assignment: even positions go to the first half, odd
// positions to the second. Relative order within each half is preserved.
// An odd-length deck is rejected.
func Distribute(deck Deck) (Deck, Deck, error) {
	if len(deck)%2 != 0 {
		return nil, nil, fmt.Errorf("cannot distribute odd-length deck of %d cards", len(deck))
	}

	first := make(Deck, 0, len(deck)/2)
	second := make(Deck, 0, len(deck)/2)
	for i, card := range deck {
		if i%2 == 0 {
			first = append(first, card)
		} else {
			second = append(second, card)
		}
	}
	return first, second, nil
}
