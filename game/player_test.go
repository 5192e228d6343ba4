package game

import (
	"testing"
)

func TestPlayer_ReceiveAndPlayTop(t *testing.T) {
	p := NewPlayer("alice", "socket-1")

	p.Receive([]Card{5, 9})
	p.Receive([]Card{2})

	if p.CardCount() != 3 {
		t.Fatalf("Expected 3 cards, got %d", p.CardCount())
	}

	// Cards come off the front in the order they were received.
	want := []Card{5, 9, 2}
	for i, expected := range want {
		card, ok := p.PlayTop()
		if !ok {
			t.Fatalf("PlayTop %d: expected a card", i)
		}
		if card != expected {
			t.Errorf("PlayTop %d = %d, want %d", i, card, expected)
		}
	}

	if p.HasCards() {
		t.Error("Expected hand to be empty after playing all cards")
	}
}

func TestPlayer_PlayTopEmpty(t *testing.T) {
	p := NewPlayer("bob", "socket-2")

	if _, ok := p.PlayTop(); ok {
		t.Error("PlayTop on an empty hand should report no card")
	}
	if p.CardCount() != 0 {
		t.Errorf("Expected card count 0, got %d", p.CardCount())
	}
}

func TestPlayer_Identity(t *testing.T) {
	p := NewPlayer("carol", "socket-3")

	if p.Username() != "carol" {
		t.Errorf("Username = %s, want carol", p.Username())
	}
	if p.SocketID() != "socket-3" {
		t.Errorf("SocketID = %s, want socket-3", p.SocketID())
	}
}
