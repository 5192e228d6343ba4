package network

// Message IDs. 1xx are lobby operations and their events, 2xx are game
// operations and their broadcasts.
const (
	MsgTypeHeartbeat = 1

	MsgTypeSetUsername = 101
	MsgTypeCreateRoom  = 102
	MsgTypeJoinRoom    = 103
	MsgTypeLeaveRoom   = 104
	MsgTypeRoomMembers = 105

	MsgTypePlayerJoined = 111
	MsgTypePlayerLeft   = 112

	MsgTypeStartGame = 201
	MsgTypeGetState  = 202
	MsgTypePlayCard  = 203
	MsgTypeTapHeap   = 204

	MsgTypeGameStarted = 211
	MsgTypeGameState   = 212
	MsgTypeTapResult   = 213
)
