// models/models.go
package models

// PlayerInfo identifies a participant on the wire.
type PlayerInfo struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

// SetUsernameRequest / SetUsernameReply carry the lobby name handshake.
type SetUsernameRequest struct {
	Username string `json:"username"`
}

type SetUsernameReply struct {
	Username string `json:"username"`
}

// RoomRequest is the common request shape for room-scoped operations.
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

// RoomReply acknowledges a create or join operation.
type RoomReply struct {
	RoomID string `json:"roomId"`
	Joined bool   `json:"joined"`
}

// RoomMembersReply lists current room membership.
type RoomMembersReply struct {
	RoomID  string       `json:"roomId"`
	Members []PlayerInfo `json:"members"`
}

// PlayerJoinedEvent is broadcast when a participant enters a room.
type PlayerJoinedEvent struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

// PlayerLeftEvent is broadcast when a participant leaves a room.
type PlayerLeftEvent struct {
	PlayerID string `json:"playerId"`
	RoomID   string `json:"roomId"`
}

// GameStartedEvent is broadcast when a game begins.
type GameStartedEvent struct {
	RoomID string `json:"roomId"`
}

// GameStateEvent carries the public view after every exchange: whose
// turn it is and the face-up heap top. HeapCard is null for an empty
// heap, CurrentTurn is null once the game has concluded.
type GameStateEvent struct {
	CurrentTurn *PlayerInfo `json:"currentTurn"`
	HeapCard    *int        `json:"heapCard"`
}

// TapResultEvent reports a tap exchange. Winner and Loser are the round
// outcome, not necessarily the game outcome; GameOver and GameWinner
// make the distinction explicit.
type TapResultEvent struct {
	Winner      *PlayerInfo `json:"winner"`
	Loser       *PlayerInfo `json:"loser"`
	CurrentTurn *PlayerInfo `json:"currentTurn"`
	GameOver    bool        `json:"gameOver"`
	GameWinner  *PlayerInfo `json:"gameWinner,omitempty"`
}

// MatchRecord is a finished match as handed to persistence.
type MatchRecord struct {
	RoomID          string       `json:"room_id"`
	Players         []PlayerInfo `json:"players"`
	Winner          *PlayerInfo  `json:"winner,omitempty"`
	Loser           *PlayerInfo  `json:"loser,omitempty"`
	Draw            bool         `json:"draw"`
	DurationSeconds int          `json:"duration_seconds"`
}

// PlayerStats aggregates a player's match history.
type PlayerStats struct {
	Username   string `json:"username"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Draws      int    `json:"draws"`
}
