// game/player.go
package game

// Player is one participant in a battle. It owns a hand of face-down
// cards played in the order they were received (FIFO). Identity is the
// pair (username, socketID), both immutable.
//
// A Player is not safe for concurrent use on its own; the owning
// CardBattle serializes all access.
type Player struct {
	username string
	socketID string
	hand     []Card
}

// NewPlayer creates a player with an empty hand.
func NewPlayer(username, socketID string) *Player {
	return &Player{
		username: username,
		socketID: socketID,
	}
}

// Receive appends cards to the back of the hand.
func (p *Player) Receive(cards []Card) {
	p.hand = append(p.hand, cards...)
}

// PlayTop removes and returns the front card. The second return value is
// false when the hand is empty; an empty hand is a normal game state,
// not an error.
func (p *Player) PlayTop() (Card, bool) {
	if len(p.hand) == 0 {
		return 0, false
	}
	card := p.hand[0]
	p.hand = p.hand[1:]
	return card, true
}

// HasCards reports whether the hand is non-empty.
func (p *Player) HasCards() bool {
	return len(p.hand) > 0
}

// CardCount returns the current hand size.
func (p *Player) CardCount() int {
	return len(p.hand)
}

// Username returns the player's display name.
func (p *Player) Username() string {
	return p.username
}

// SocketID returns the connection identifier the player registered with.
func (p *Player) SocketID() string {
	return p.socketID
}
