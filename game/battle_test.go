package game

import (
	"os"
	"testing"

	"github.com/wfunc/cardwar/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// newReadyBattle returns a battle with two registered players that has
// not been started yet.
func newReadyBattle(t *testing.T) (*CardBattle, *Player, *Player) {
	t.Helper()
	b := NewCardBattle()
	p1 := NewPlayer("alice", "socket-1")
	p2 := NewPlayer("bob", "socket-2")
	if !b.AddPlayer(p1) || !b.AddPlayer(p2) {
		t.Fatal("Setup failed: could not register both players")
	}
	return b, p1, p2
}

// newStartedBattle returns a battle with cards dealt and alice to play.
func newStartedBattle(t *testing.T) (*CardBattle, *Player, *Player) {
	t.Helper()
	b, p1, p2 := newReadyBattle(t)
	if !b.Start() {
		t.Fatal("Setup failed: could not start game")
	}
	return b, p1, p2
}

func TestAddPlayer_DuplicateSocketID(t *testing.T) {
	b := NewCardBattle()
	b.AddPlayer(NewPlayer("alice", "socket-1"))

	if b.AddPlayer(NewPlayer("bob", "socket-1")) {
		t.Error("Expected duplicate socket ID to be rejected")
	}
	if len(b.Players()) != 1 {
		t.Errorf("Expected 1 player, got %d", len(b.Players()))
	}
}

func TestAddPlayer_DuplicateUsername(t *testing.T) {
	b := NewCardBattle()
	b.AddPlayer(NewPlayer("alice", "socket-1"))

	if b.AddPlayer(NewPlayer("alice", "socket-2")) {
		t.Error("Expected duplicate username to be rejected")
	}
	if len(b.Players()) != 1 {
		t.Errorf("Expected 1 player, got %d", len(b.Players()))
	}

	// A half-formed game must not be startable.
	if b.Start() {
		t.Error("Start should fail with a single player")
	}
}

func TestAddPlayer_ThirdPlayerRejected(t *testing.T) {
	b, _, _ := newReadyBattle(t)

	if b.AddPlayer(NewPlayer("carol", "socket-3")) {
		t.Error("Expected third player to be rejected")
	}
	if len(b.Players()) != 2 {
		t.Errorf("Expected 2 players, got %d", len(b.Players()))
	}
}

func TestStart_DealsEvenly(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)

	if b.Phase() != PhaseReady {
		t.Fatalf("Expected phase Ready, got %d", b.Phase())
	}
	if !b.Start() {
		t.Fatal("Start failed with two players")
	}

	if p1.CardCount() != 26 || p2.CardCount() != 26 {
		t.Errorf("Expected 26/26 deal, got %d/%d", p1.CardCount(), p2.CardCount())
	}
	if b.Turn() != p1 {
		t.Error("First turn should belong to the first-registered player")
	}
	if b.Phase() != PhaseInProgress {
		t.Errorf("Expected phase InProgress, got %d", b.Phase())
	}
	if b.Winner() != nil {
		t.Error("A freshly started game should have no winner")
	}
}

func TestStart_NotReentrant(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)

	b.Play(p1)

	if b.Start() {
		t.Error("Start should be a no-op while a game is in progress")
	}
	total := p1.CardCount() + p2.CardCount() + b.HeapSize()
	if total != DeckSize {
		t.Errorf("Re-start changed card total: got %d, want %d", total, DeckSize)
	}
}

func TestPlay_OutOfTurnPenalty(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)

	// Second-registered player acts before their turn: the empty heap
	// transfers (a no-op here) and the rightful holder keeps the turn.
	res := b.Play(p2)

	if res.RoundWinner != p1 || res.RoundLoser != p2 {
		t.Error("Out-of-turn play should award the round to the rightful turn holder")
	}
	if res.Turn != p1 || b.Turn() != p1 {
		t.Error("Turn should remain with the rightful holder")
	}
	if b.HeapSize() != 0 {
		t.Errorf("Expected empty heap, got %d cards", b.HeapSize())
	}
}

func TestPlay_OutOfTurnTransfersHeap(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)

	b.Play(p1) // legal play, turn passes to bob

	// Alice plays again out of turn: the one-card heap goes to bob.
	res := b.Play(p1)

	if res.RoundWinner != p2 || res.RoundLoser != p1 {
		t.Error("Penalty heap should go to the rightful turn holder")
	}
	if b.HeapSize() != 0 {
		t.Errorf("Expected empty heap, got %d cards", b.HeapSize())
	}
	if p2.CardCount() != 27 || p1.CardCount() != 25 {
		t.Errorf("Expected 25/27 split after penalty, got %d/%d", p1.CardCount(), p2.CardCount())
	}
	if b.Turn() != p2 {
		t.Error("Turn should remain with the rightful holder")
	}
}

func TestPlay_AlternatingAccumulatesHeap(t *testing.T) {
	b, _, _ := newStartedBattle(t)

	for i := 1; i <= 10; i++ {
		res := b.Play(b.Turn())
		if res.RoundWinner != nil || res.RoundLoser != nil {
			t.Fatalf("Legal play %d should not produce a round outcome", i)
		}
		if b.HeapSize() != i {
			t.Fatalf("After %d plays expected heap size %d, got %d", i, i, b.HeapSize())
		}
	}
}

func TestPlay_EmptyHandStalls(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)
	p2.Receive([]Card{4, 4})
	b.phase = PhaseInProgress
	b.currentTurn = p1

	res := b.Play(p1)

	if res.RoundWinner != nil || res.RoundLoser != nil {
		t.Error("Empty-hand play should not produce a round outcome")
	}
	if res.Turn != p1 || b.Turn() != p1 {
		t.Error("Empty-hand play should not advance the turn")
	}
	if !b.Stalled() {
		t.Error("Engine should report a stall")
	}
	if b.Phase() != PhaseInProgress {
		t.Error("A stall does not conclude the game")
	}

	// The adversary's tap resolves the stall.
	b.heap = []Card{4}
	b.TapHeap(p2)
	if b.Stalled() {
		t.Error("Stall should clear once a tap resolves the heap")
	}
}

func TestPlay_FullHeapMismatchIsDraw(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)
	b.phase = PhaseInProgress
	b.currentTurn = p1

	// 51 cards down, a 5 on top; alice's 6 completes a full heap with a
	// mismatched top pair.
	b.heap = make([]Card, 50)
	for i := range b.heap {
		b.heap[i] = Card(i%13 + 1)
	}
	b.heap = append(b.heap, 5)
	p1.hand = []Card{6}
	p2.hand = []Card{3}

	res := b.Play(p1)

	if res.RoundWinner != nil || res.RoundLoser != nil || res.Turn != nil {
		t.Error("A draw should produce an empty result")
	}
	if b.Phase() != PhaseConcluded {
		t.Error("Full-heap mismatch should conclude the game")
	}
	if b.Winner() != nil {
		t.Error("A draw has no winner")
	}
	if b.Turn() != nil {
		t.Error("A concluded game has no turn")
	}
	if b.HeapSize() != DeckSize {
		t.Errorf("Heap should hold the full deck, got %d", b.HeapSize())
	}
}

func TestTapHeap_EmptyHeapIsNoOp(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)

	res := b.TapHeap(p1)

	if res.RoundWinner != nil || res.RoundLoser != nil {
		t.Error("Tapping an empty heap should not produce a round outcome")
	}
	if res.Turn != p1 || b.Turn() != p1 {
		t.Error("Tapping an empty heap should not change the turn")
	}
	if p1.CardCount() != 26 || p2.CardCount() != 26 {
		t.Error("Tapping an empty heap should not move cards")
	}
}

func TestTapHeap_SingleCardIsWrongTap(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)

	b.Play(p1) // one card on the heap

	res := b.TapHeap(p2)

	if res.RoundWinner != p1 || res.RoundLoser != p2 {
		t.Error("Single-card tap should forfeit the heap to the adversary")
	}
	if b.HeapSize() != 0 {
		t.Errorf("Expected empty heap, got %d cards", b.HeapSize())
	}
	if p1.CardCount() != 26 {
		t.Errorf("Expected adversary to hold 26 cards, got %d", p1.CardCount())
	}
	if b.Turn() != p1 {
		t.Error("Adversary should take the turn after a wrong tap")
	}
}

func TestTapHeap_MismatchedPairIsWrongTap(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)
	b.phase = PhaseInProgress
	b.currentTurn = p1
	b.heap = []Card{3, 8}
	p1.hand = []Card{2}
	p2.hand = []Card{9}

	// The top two differ, so even a length-2 heap is a wrong tap.
	res := b.TapHeap(p1)

	if res.RoundWinner != p2 || res.RoundLoser != p1 {
		t.Error("Mismatched tap should forfeit the heap to the adversary")
	}
	if p2.CardCount() != 3 {
		t.Errorf("Expected adversary to hold 3 cards, got %d", p2.CardCount())
	}
	if b.Turn() != p2 {
		t.Error("Adversary should take the turn after a wrong tap")
	}
}

func TestTapHeap_ValidTapClaimsHeap(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)
	b.phase = PhaseInProgress
	b.currentTurn = p1
	b.heap = []Card{2, 7, 7}
	p1.hand = []Card{9}
	p2.hand = []Card{4}

	res := b.TapHeap(p2)

	if res.RoundWinner != p2 || res.RoundLoser != p1 {
		t.Error("Valid tap should award the round to the tapper")
	}
	if p2.CardCount() != 4 {
		t.Errorf("Expected tapper to hold 4 cards, got %d", p2.CardCount())
	}
	if b.HeapSize() != 0 {
		t.Errorf("Expected empty heap, got %d cards", b.HeapSize())
	}
	if res.Turn != p2 || b.Turn() != p2 {
		t.Error("Tapper should take the turn after a valid tap")
	}
	if b.Phase() != PhaseInProgress {
		t.Error("Game should continue while both players hold cards")
	}
}

func TestTapHeap_ValidTapWinsGame(t *testing.T) {
	b, p1, p2 := newReadyBattle(t)
	b.phase = PhaseInProgress
	b.currentTurn = p1
	b.heap = []Card{7, 7}
	p1.hand = []Card{9}
	p2.hand = nil

	res := b.TapHeap(p1)

	if res.RoundWinner != p1 || res.RoundLoser != p2 {
		t.Error("Tap that empties the adversary should award the game to the tapper")
	}
	if res.Turn != nil || b.Turn() != nil {
		t.Error("A concluded game has no turn")
	}
	if b.Winner() != p1 {
		t.Error("Tapper should be recorded as game winner")
	}
	if b.Phase() != PhaseConcluded {
		t.Error("Game should be concluded")
	}
	if p1.CardCount() != 3 || b.HeapSize() != 0 {
		t.Error("Winner should hold every card with an empty heap")
	}
}

func TestAdversary_PanicsOnUnknownPlayer(t *testing.T) {
	b, _, _ := newReadyBattle(t)
	stranger := NewPlayer("mallory", "socket-99")

	defer func() {
		if recover() == nil {
			t.Error("Adversary should panic for an unregistered player")
		}
	}()
	b.Adversary(stranger)
}

func TestState_HasNoSideEffects(t *testing.T) {
	b, p1, p2 := newStartedBattle(t)
	b.Play(p1)

	before := b.HeapSize()
	snap := b.State()

	if b.HeapSize() != before {
		t.Error("State should not mutate the heap")
	}
	if p1.CardCount()+p2.CardCount()+b.HeapSize() != DeckSize {
		t.Error("State should not move cards")
	}
	if snap.Turn != p2 {
		t.Error("Snapshot turn should match the live turn")
	}
	if snap.TopCard == nil {
		t.Error("Snapshot should expose the top heap card")
	}
	if snap.HeapSize != 1 {
		t.Errorf("Snapshot heap size = %d, want 1", snap.HeapSize)
	}
}

// TestFullGameTermination drives games to completion with a simple
// policy: tap whenever the top pair matches, otherwise play the turn
// holder's card. Every game must end decisively or in a draw within a
// bounded number of exchanges.
func TestFullGameTermination(t *testing.T) {
	for round := 0; round < 20; round++ {
		b, p1, p2 := newStartedBattle(t)

		concluded := false
		for i := 0; i < 10000; i++ {
			if b.Phase() == PhaseConcluded {
				concluded = true
				break
			}

			n := len(b.heap)
			if n >= 2 && b.heap[n-1] == b.heap[n-2] {
				b.TapHeap(p1)
				continue
			}
			turn := b.Turn()
			if turn == nil {
				// Both hands are empty with an untappable heap only
				// after a draw, which the phase check catches above.
				b.TapHeap(p2)
				continue
			}
			b.Play(turn)
		}

		if !concluded {
			t.Fatal("Game did not terminate within the exchange bound")
		}

		winner := b.Winner()
		if winner != nil {
			if winner.CardCount() != DeckSize || b.HeapSize() != 0 {
				t.Errorf("Winner should hold all %d cards with an empty heap, got %d in hand and %d on heap",
					DeckSize, winner.CardCount(), b.HeapSize())
			}
			loser := b.Adversary(winner)
			if loser.CardCount() != 0 {
				t.Errorf("Loser should hold no cards, got %d", loser.CardCount())
			}
		} else {
			if b.HeapSize() != DeckSize {
				t.Errorf("Draw should leave the full deck on the heap, got %d", b.HeapSize())
			}
			if b.Turn() != nil {
				t.Error("Draw should leave no turn")
			}
		}
	}
}
