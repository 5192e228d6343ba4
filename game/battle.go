// game/battle.go
package game

import (
	"fmt"
	"sync"

	"github.com/wfunc/cardwar/logger"
)

// Phase is the lifecycle state of one battle.
type Phase int

const (
	// PhaseForming: fewer than two players registered, no play possible.
	PhaseForming Phase = iota
	// PhaseReady: two players registered, cards not yet dealt.
	PhaseReady
	// PhaseInProgress: cards dealt, turns proceeding.
	PhaseInProgress
	// PhaseConcluded: decisive winner or full-heap draw.
	PhaseConcluded
)

// MaxPlayers is the number of participants in one battle.
const MaxPlayers = 2

// Result is the outcome of a single play or tap exchange. RoundWinner
// and RoundLoser describe who gained and lost the heap in this exchange
// only; game victory is reported through Winner and Phase on the battle
// itself. Turn is nil when no turn remains.
type Result struct {
	RoundWinner *Player
	RoundLoser  *Player
	Turn        *Player
}

// Snapshot is a read-only view of the battle for state queries. TopCard
// is nil when the heap is empty.
type Snapshot struct {
	Phase    Phase
	Turn     *Player
	Winner   *Player
	TopCard  *Card
	HeapSize int
	Stalled  bool
}

// CardBattle is the server-authoritative engine for one two-player war
// game: it owns both hands, the shared face-up heap, turn order and win
// detection. All exported methods take the battle lock, so one engine is
// safe under concurrent callers; callers still must not interleave
// multi-call sequences without external serialization per room.
type CardBattle struct {
	mu          sync.Mutex
	players     []*Player
	currentTurn *Player
	heap        []Card
	winner      *Player
	phase       Phase
	stalled     bool
}

// NewCardBattle creates an empty battle in the Forming phase.
func NewCardBattle() *CardBattle {
	return &CardBattle{
		players: make([]*Player, 0, MaxPlayers),
	}
}

// AddPlayer registers a participant. Rejected with a warning and no
// state change when two players are already present, or when the socket
// ID or username duplicates an existing participant. Returns whether
// the player was added.
func (b *CardBattle) AddPlayer(p *Player) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != PhaseForming && b.phase != PhaseReady {
		logger.Log.Warnf("Cannot add player %s: game already started", p.Username())
		return false
	}
	if len(b.players) >= MaxPlayers {
		logger.Log.Warnf("Cannot add player %s: maximum players reached", p.Username())
		return false
	}
	for _, existing := range b.players {
		if existing.SocketID() == p.SocketID() {
			logger.Log.Warnf("Player with socket ID %s already exists", p.SocketID())
			return false
		}
		if existing.Username() == p.Username() {
			logger.Log.Warnf("Player with username %s already exists", p.Username())
			return false
		}
	}

	b.players = append(b.players, p)
	if len(b.players) == MaxPlayers {
		b.phase = PhaseReady
	}
	logger.Log.Debugf("Player %s joined the battle", p.Username())
	return true
}

// PlayerByID returns the registered player with the given socket ID, or
// nil if none matches.
func (b *CardBattle) PlayerByID(socketID string) *Player {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.players {
		if p.SocketID() == socketID {
			return p
		}
	}
	return nil
}

// Players returns the registered players in registration order.
func (b *CardBattle) Players() []*Player {
	b.mu.Lock()
	defer b.mu.Unlock()

	players := make([]*Player, len(b.players))
	copy(players, b.players)
	return players
}

// Start deals a fresh shuffled deck 26/26 in registration order and
// gives the first turn to the first-registered player. Fails with a
// warning when fewer than two players are present. Starting is not
// re-entrant: calling Start on a battle that is already in progress or
// concluded is a warned no-op, so a mid-game Start cannot re-deal.
func (b *CardBattle) Start() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.players) < MaxPlayers {
		logger.Log.Warn("Not enough players to start the game")
		return false
	}
	if b.phase != PhaseReady {
		logger.Log.Warnf("Cannot start game in phase %d", b.phase)
		return false
	}

	deck := Shuffle(GenerateFullDeck())
	first, second, err := Distribute(deck)
	if err != nil {
		// Unreachable with a full deck.
		panic(err)
	}

	b.players[0].Receive(first)
	b.players[1].Receive(second)
	b.currentTurn = b.players[0]
	b.heap = nil
	b.winner = nil
	b.stalled = false
	b.phase = PhaseInProgress

	logger.Log.Debugf("Game started, first turn: %s", b.currentTurn.Username())
	return true
}

// Play resolves one card play by p.
//
// Playing out of turn forfeits the whole heap to the rightful turn
// holder, who keeps the turn. Playing with an empty hand is a warned
// no-op that leaves the battle stalled until a tap resolves it. When
// the heap reaches 52 cards with a mismatched top pair the game ends in
// a draw. Otherwise the played card lands on the heap and the turn
// advances to the adversary if they still hold cards.
func (b *CardBattle) Play(p *Player) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != PhaseInProgress {
		logger.Log.Warnf("Play by %s ignored: game not in progress", p.Username())
		return Result{Turn: b.currentTurn}
	}

	if p != b.currentTurn {
		logger.Log.Warnf("It's not %s's turn", p.Username())
		rightful := b.adversaryOf(p)
		rightful.Receive(b.heap)
		b.heap = nil
		b.currentTurn = rightful
		b.stalled = false
		return Result{RoundWinner: rightful, RoundLoser: p, Turn: rightful}
	}

	card, ok := p.PlayTop()
	if !ok {
		logger.Log.Warnf("%s has no cards to play", p.Username())
		b.stalled = true
		return Result{Turn: b.currentTurn}
	}
	b.stalled = false
	b.heap = append(b.heap, card)
	logger.Log.Debugf("%s played [%d]", p.Username(), card)

	// Full heap with a mismatched top pair: nobody can ever tap it off,
	// so the game ends undecided.
	if len(b.heap) == DeckSize && b.heap[len(b.heap)-1] != b.heap[len(b.heap)-2] {
		logger.Log.Debug("Maximum turns reached without a winner, game is a draw")
		b.currentTurn = nil
		b.phase = PhaseConcluded
		return Result{}
	}

	b.nextTurn(p)
	return Result{Turn: b.currentTurn}
}

// nextTurn advances the turn after p played: the adversary takes over if
// they still hold cards, otherwise p keeps the turn, otherwise nobody
// does. Caller holds the lock.
func (b *CardBattle) nextTurn(p *Player) {
	adversary := b.adversaryOf(p)
	switch {
	case adversary.HasCards():
		b.currentTurn = adversary
	case p.HasCards():
		b.currentTurn = p
	default:
		b.currentTurn = nil
	}
}

// TapHeap resolves a claim by p that the top two heap cards match.
//
// Tapping an empty heap is a pure no-op. An invalid tap (fewer than two
// cards on the heap, or a mismatched top pair) forfeits the heap to the
// adversary, who also takes the turn. A valid tap claims the heap for
// the tapper; if that leaves the adversary without cards the tapper has
// won the game, with the symmetric check covering a tapper who is still
// empty after claiming.
func (b *CardBattle) TapHeap(p *Player) Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase != PhaseInProgress {
		logger.Log.Warnf("Tap by %s ignored: game not in progress", p.Username())
		return Result{Turn: b.currentTurn}
	}

	logger.Log.Debugf("%s tapped the heap", p.Username())

	if len(b.heap) == 0 {
		logger.Log.Warn("Heap is empty, cannot tap")
		return Result{Turn: b.currentTurn}
	}

	adversary := b.adversaryOf(p)

	// A mismatched top pair is a wrong tap at any heap length,
	// including exactly two.
	wrongTap := len(b.heap) < 2 || b.heap[len(b.heap)-1] != b.heap[len(b.heap)-2]
	if wrongTap {
		logger.Log.Debugf("%s tapped the heap incorrectly", p.Username())
		adversary.Receive(b.heap)
		b.heap = nil
		b.currentTurn = adversary
		b.stalled = false
		return Result{RoundWinner: adversary, RoundLoser: p, Turn: adversary}
	}

	logger.Log.Debugf("%s won this round", p.Username())
	p.Receive(b.heap)
	b.heap = nil
	b.stalled = false

	if !p.HasCards() {
		// Only reachable when the tapper started empty; the claimed heap
		// alone decided nothing, so the adversary takes the game.
		b.conclude(adversary)
		return Result{RoundWinner: adversary, RoundLoser: p}
	}
	if !adversary.HasCards() {
		b.conclude(p)
		return Result{RoundWinner: p, RoundLoser: adversary}
	}

	b.currentTurn = p
	return Result{RoundWinner: p, RoundLoser: adversary, Turn: p}
}

// conclude records the game winner. Caller holds the lock.
func (b *CardBattle) conclude(winner *Player) {
	b.winner = winner
	b.currentTurn = nil
	b.phase = PhaseConcluded
	logger.Log.Debugf("%s has won the game", winner.Username())
}

// Adversary returns the other registered player. Calling it with an
// unregistered player is a programming error and panics: the engine
// only ever knows its own two players, and continuing with corrupt
// state would be worse than failing loudly.
func (b *CardBattle) Adversary(p *Player) *Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adversaryOf(p)
}

// adversaryOf is the lock-free variant used internally. Caller holds
// the lock.
func (b *CardBattle) adversaryOf(p *Player) *Player {
	for _, other := range b.players {
		if other != p {
			return other
		}
	}
	panic(fmt.Sprintf("adversary not found for player %s", p.Username()))
}

// Turn returns the player whose turn it is, or nil when the game has
// concluded.
func (b *CardBattle) Turn() *Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentTurn
}

// Winner returns the game winner, or nil while the game is running or
// after a draw.
func (b *CardBattle) Winner() *Player {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.winner
}

// Phase returns the current lifecycle phase.
func (b *CardBattle) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Stalled reports whether the current turn holder was caught without
// cards; only a tap or an out-of-turn penalty can move the game on.
func (b *CardBattle) Stalled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stalled
}

// HeapSize returns the number of cards on the heap.
func (b *CardBattle) HeapSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.heap)
}

// State returns a consistent read-only view of the battle. Unlike Play
// it has no side effects, so transports can answer state queries
// without touching the game.
func (b *CardBattle) State() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{
		Phase:    b.phase,
		Turn:     b.currentTurn,
		Winner:   b.winner,
		HeapSize: len(b.heap),
		Stalled:  b.stalled,
	}
	if len(b.heap) > 0 {
		top := b.heap[len(b.heap)-1]
		snap.TopCard = &top
	}
	return snap
}
