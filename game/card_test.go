package game

import (
	"testing"
)

func rankCounts(deck Deck) map[Card]int {
	counts := make(map[Card]int)
	for _, card := range deck {
		counts[card]++
	}
	return counts
}

func TestGenerateFullDeck(t *testing.T) {
	deck := GenerateFullDeck()

	if len(deck) != DeckSize {
		t.Fatalf("Expected %d cards, got %d", DeckSize, len(deck))
	}

	counts := rankCounts(deck)
	for rank := Card(1); rank <= 13; rank++ {
		if counts[rank] != 4 {
			t.Errorf("Expected 4 cards of rank %d, got %d", rank, counts[rank])
		}
	}
}

func TestShuffle_PreservesMultiset(t *testing.T) {
	deck := GenerateFullDeck()
	shuffled := Shuffle(deck)

	if len(shuffled) != len(deck) {
		t.Fatalf("Shuffle changed deck size: %d -> %d", len(deck), len(shuffled))
	}

	original := rankCounts(deck)
	after := rankCounts(shuffled)
	for rank, count := range original {
		if after[rank] != count {
			t.Errorf("Rank %d count changed: %d -> %d", rank, count, after[rank])
		}
	}
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	deck := GenerateFullDeck()
	Shuffle(deck)

	fresh := GenerateFullDeck()
	for i := range deck {
		if deck[i] != fresh[i] {
			t.Fatalf("Shuffle mutated its input at index %d", i)
		}
	}
}

func TestShuffle_ChangesOrder(t *testing.T) {
	deck := GenerateFullDeck()

	// A 52-card shuffle landing on the identity permutation (or two
	// shuffles colliding) is astronomically unlikely.
	first := Shuffle(deck)
	second := Shuffle(deck)

	if equalDecks(first, deck) {
		t.Error("Shuffle returned the input order")
	}
	if equalDecks(first, second) {
		t.Error("Two shuffles produced identical sequences")
	}
}

func equalDecks(a, b Deck) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDistribute_FairPartition(t *testing.T) {
	deck := Shuffle(GenerateFullDeck())

	first, second, err := Distribute(deck)
	if err != nil {
		t.Fatalf("Distribute failed: %v", err)
	}

	if len(first) != 26 || len(second) != 26 {
		t.Fatalf("Expected 26/26 split, got %d/%d", len(first), len(second))
	}

	combined := rankCounts(append(append(Deck{}, first...), second...))
	original := rankCounts(deck)
	for rank, count := range original {
		if combined[rank] != count {
			t.Errorf("Rank %d count changed after distribute: %d -> %d", rank, count, combined[rank])
		}
	}
}

func TestDistribute_Alternating(t *testing.T) {
	deck := Deck{1, 2, 3, 4, 5, 6}

	first, second, err := Distribute(deck)
	if err != nil {
		t.Fatalf("Distribute failed: %v", err)
	}

	wantFirst := Deck{1, 3, 5}
	wantSecond := Deck{2, 4, 6}
	if !equalDecks(first, wantFirst) {
		t.Errorf("First half = %v, want %v", first, wantFirst)
	}
	if !equalDecks(second, wantSecond) {
		t.Errorf("Second half = %v, want %v", second, wantSecond)
	}
}

func TestDistribute_RejectsOddLength(t *testing.T) {
	_, _, err := Distribute(Deck{1, 2, 3})
	if err == nil {
		t.Fatal("Expected an error for an odd-length deck")
	}
}
