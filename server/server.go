// server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/cardwar/broadcast"
	"github.com/wfunc/cardwar/config"
	"github.com/wfunc/cardwar/game"
	"github.com/wfunc/cardwar/logger"
	"github.com/wfunc/cardwar/models"
	"github.com/wfunc/cardwar/monitor"
	"github.com/wfunc/cardwar/network"
	"github.com/wfunc/cardwar/persistence"
	"github.com/wfunc/cardwar/room"
	adminrpc "github.com/wfunc/cardwar/rpc"
	"github.com/wfunc/cardwar/services"
	"github.com/wfunc/cardwar/session"
	"github.com/wfunc/cardwar/timer"
)

// GameServer wires the websocket transport to the battle engines. Every
// engine access runs under one exclusive critical section per room, so
// events for a room are applied strictly one at a time.
type GameServer struct {
	addr           string
	metricsAddr    string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	registry       *game.Registry
	recordService  *services.RecordService
	broadcaster    broadcast.Broadcaster
	rpcServer      *adminrpc.Server
	monitor        *monitor.Monitor
	timers         *timer.TimerManager
	cleanupDelay   time.Duration

	roomLocks     map[string]*sync.Mutex
	cleanupTimers map[string]int64 // roomID -> pending teardown task
	lockMutex     sync.Mutex

	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		metricsAddr:    cfg.Server.MetricsAddress,
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		registry:       game.NewRegistry(),
		recordService:  services.NewRecordService(db),
		monitor:        monitor.NewMonitor("cardwar"),
		timers:         timer.NewTimerManager(),
		cleanupDelay:   time.Duration(cfg.Room.CleanupDelaySeconds) * time.Second,
		roomLocks:      make(map[string]*sync.Mutex),
		cleanupTimers:  make(map[string]int64),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)

	rpcServer, err := adminrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	adminService := adminrpc.NewAdminService(s.recordService, s.roomManager, s.registry)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.metricsAddr)

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

// roomLock returns the mutex serializing all engine access for a room.
func (s *GameServer) roomLock(roomID string) *sync.Mutex {
	s.lockMutex.Lock()
	defer s.lockMutex.Unlock()

	lock, exists := s.roomLocks[roomID]
	if !exists {
		lock = &sync.Mutex{}
		s.roomLocks[roomID] = lock
	}
	return lock
}

func (s *GameServer) dropRoomLock(roomID string) {
	s.lockMutex.Lock()
	defer s.lockMutex.Unlock()
	delete(s.roomLocks, roomID)
}

// cancelCleanup drops any pending teardown scheduled for the room.
func (s *GameServer) cancelCleanup(roomID string) {
	s.lockMutex.Lock()
	id, exists := s.cleanupTimers[roomID]
	delete(s.cleanupTimers, roomID)
	s.lockMutex.Unlock()

	if exists {
		s.timers.RemoveTimer(id)
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.leaveRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	s.monitor.IncMessagesReceived()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeSetUsername:
		s.handleSetUsername(sess, packet)
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeRoomMembers:
		s.handleRoomMembers(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeGetState:
		s.handleGetState(sess, packet)
	case network.MsgTypePlayCard:
		s.handlePlayCard(sess, packet)
	case network.MsgTypeTapHeap:
		s.handleTapHeap(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}

	s.monitor.ObserveMessageLatency(time.Since(start))
}

func (s *GameServer) handleSetUsername(sess *session.Session, packet *network.Packet) {
	var req models.SetUsernameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	sess.SetUsername(req.Username)
	logger.Log.Debugf("Set username '%s' for session [%s]", req.Username, sess.GetID())

	data, _ := json.Marshal(models.SetUsernameReply{Username: req.Username})
	sess.Send(network.MsgTypeSetUsername, data)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	// A session belongs to at most one room; creating a new one implies
	// leaving the current one.
	s.leaveRoom(sess)

	r := s.roomManager.CreateRoom()
	r.AddPlayer(sess)
	s.monitor.SetActiveRooms(s.roomManager.Count())

	logger.Log.Debugf("Room %s created by '%s'", r.ID, sess.GetUsername())

	data, _ := json.Marshal(models.RoomReply{RoomID: r.ID, Joined: true})
	sess.Send(network.MsgTypeCreateRoom, data)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	logger.Log.Debugf("Player '%s' joining room %s", sess.GetUsername(), req.RoomID)

	// Switching rooms leaves the old one first; otherwise it would keep a
	// ghost member and never empty.
	if sess.RoomID != "" && sess.RoomID != req.RoomID {
		s.leaveRoom(sess)
	}

	r := s.roomManager.GetOrCreateRoom(req.RoomID)
	joined := r.AddPlayer(sess)
	if !joined {
		logger.Log.Warnf("Player '%s' could not join room %s: room is full", sess.GetUsername(), req.RoomID)
	}
	s.monitor.SetActiveRooms(s.roomManager.Count())

	data, _ := json.Marshal(models.RoomReply{RoomID: r.ID, Joined: joined})
	sess.Send(network.MsgTypeJoinRoom, data)

	if joined {
		event, _ := json.Marshal(models.PlayerJoinedEvent{
			PlayerID: sess.GetID(),
			Username: sess.GetUsername(),
			RoomID:   r.ID,
		})
		s.broadcaster.BroadcastToRoom(r.ID, network.MsgTypePlayerJoined, event)
	}
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	s.leaveRoom(sess)
}

// leaveRoom removes the session from its room, notifies the remaining
// member and tears the room down once it empties.
func (s *GameServer) leaveRoom(sess *session.Session) {
	roomID := sess.RoomID
	if roomID == "" {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists {
		sess.RoomID = ""
		return
	}

	logger.Log.Debugf("Player '%s' leaving room %s", sess.GetUsername(), roomID)
	r.RemovePlayer(sess.GetID())

	event, _ := json.Marshal(models.PlayerLeftEvent{
		PlayerID: sess.GetID(),
		RoomID:   roomID,
	})
	s.broadcaster.BroadcastToRoom(roomID, network.MsgTypePlayerLeft, event)

	if r.IsEmpty() {
		s.removeRoom(roomID)
	}
}

// removeRoom purges a room, its engine and its lock.
func (s *GameServer) removeRoom(roomID string) {
	s.cancelCleanup(roomID)
	s.roomManager.RemoveRoom(roomID)
	s.registry.Remove(roomID)
	s.dropRoomLock(roomID)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	s.monitor.SetActiveGames(s.registry.Count())
}

func (s *GameServer) handleRoomMembers(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		logger.Log.Warnf("Room %s not found", req.RoomID)
		return
	}

	reply := models.RoomMembersReply{RoomID: req.RoomID}
	for _, member := range r.GetSessions() {
		reply.Members = append(reply.Members, models.PlayerInfo{
			SocketID: member.GetID(),
			Username: member.GetUsername(),
		})
	}

	data, _ := json.Marshal(reply)
	sess.Send(network.MsgTypeRoomMembers, data)
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	r, exists := s.roomManager.GetRoom(req.RoomID)
	if !exists {
		logger.Log.Warnf("Cannot start game: room %s not found", req.RoomID)
		return
	}

	if existing, ok := s.registry.Get(req.RoomID); ok && existing.Phase() == game.PhaseInProgress {
		logger.Log.Warnf("Game in room %s already in progress, ignoring start", req.RoomID)
		return
	}

	// A rematch supersedes any teardown still pending from the previous
	// game in this room.
	s.cancelCleanup(req.RoomID)

	logger.Log.Debugf("Player '%s' starting game in room %s", sess.GetUsername(), req.RoomID)

	battle := game.NewCardBattle()
	for _, member := range r.GetSessions() {
		battle.AddPlayer(game.NewPlayer(member.GetUsername(), member.GetID()))
	}

	if !battle.Start() {
		logger.Log.Warnf("Game in room %s did not start", req.RoomID)
		return
	}

	s.registry.Put(req.RoomID, battle)
	r.SetStatus(room.StatusPlaying)
	s.monitor.SetActiveGames(s.registry.Count())

	started, _ := json.Marshal(models.GameStartedEvent{RoomID: req.RoomID})
	s.broadcaster.BroadcastToRoom(req.RoomID, network.MsgTypeGameStarted, started)

	s.broadcastState(req.RoomID, battle)
}

func (s *GameServer) handleGetState(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	battle, exists := s.registry.Get(req.RoomID)
	if !exists {
		logger.Log.Warnf("Game not found for room %s", req.RoomID)
		return
	}

	// A state query is a pure read; it never advances the game.
	s.broadcastState(req.RoomID, battle)
}

func (s *GameServer) handlePlayCard(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	battle, player := s.lookupBattlePlayer(sess, req.RoomID)
	if player == nil {
		return
	}

	logger.Log.Debugf("Received play-card from '%s' in room %s", sess.GetUsername(), req.RoomID)

	battle.Play(player)
	s.broadcastState(req.RoomID, battle)
	s.maybeFinish(req.RoomID, battle)
}

func (s *GameServer) handleTapHeap(sess *session.Session, packet *network.Packet) {
	var req models.RoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	lock := s.roomLock(req.RoomID)
	lock.Lock()
	defer lock.Unlock()

	battle, player := s.lookupBattlePlayer(sess, req.RoomID)
	if player == nil {
		return
	}

	logger.Log.Debugf("Received tap-heap from '%s' in room %s", sess.GetUsername(), req.RoomID)

	res := battle.TapHeap(player)

	result := models.TapResultEvent{
		Winner:      playerInfo(res.RoundWinner),
		Loser:       playerInfo(res.RoundLoser),
		CurrentTurn: playerInfo(res.Turn),
		GameOver:    battle.Phase() == game.PhaseConcluded,
		GameWinner:  playerInfo(battle.Winner()),
	}
	data, _ := json.Marshal(result)
	s.broadcaster.BroadcastToRoom(req.RoomID, network.MsgTypeTapResult, data)

	s.broadcastState(req.RoomID, battle)
	s.maybeFinish(req.RoomID, battle)
}

// lookupBattlePlayer resolves the engine and the calling participant.
// Caller holds the room lock.
func (s *GameServer) lookupBattlePlayer(sess *session.Session, roomID string) (*game.CardBattle, *game.Player) {
	battle, exists := s.registry.Get(roomID)
	if !exists {
		logger.Log.Warnf("Game not found for room %s", roomID)
		return nil, nil
	}

	player := battle.PlayerByID(sess.GetID())
	if player == nil {
		logger.Log.Warnf("Player '%s' not found in game for room %s", sess.GetUsername(), roomID)
		return battle, nil
	}
	return battle, player
}

// broadcastState pushes the public game view to the whole room.
func (s *GameServer) broadcastState(roomID string, battle *game.CardBattle) {
	snap := battle.State()
	data, _ := json.Marshal(stateEvent(snap))
	s.broadcaster.BroadcastToRoom(roomID, network.MsgTypeGameState, data)
}

// maybeFinish records a concluded game once and schedules the room
// teardown. Caller holds the room lock, so the status check cannot
// race.
func (s *GameServer) maybeFinish(roomID string, battle *game.CardBattle) {
	if battle.Phase() != game.PhaseConcluded {
		return
	}

	r, exists := s.roomManager.GetRoom(roomID)
	if !exists || r.GetStatus() == room.StatusFinished {
		return
	}
	r.SetStatus(room.StatusFinished)

	record := &models.MatchRecord{
		RoomID:          roomID,
		Draw:            battle.Winner() == nil,
		DurationSeconds: int(r.GameDuration().Seconds()),
	}
	for _, p := range battle.Players() {
		record.Players = append(record.Players, *playerInfo(p))
	}
	if winner := battle.Winner(); winner != nil {
		record.Winner = playerInfo(winner)
		record.Loser = playerInfo(battle.Adversary(winner))
		s.monitor.IncGamesCompleted("win")
	} else {
		s.monitor.IncGamesCompleted("draw")
	}
	s.recordService.SaveMatch(record)

	// Let clients read the final state before the room disappears. The
	// task ID is kept so a rematch can cancel the teardown.
	id := s.timers.AddTimer(s.cleanupDelay, 0, func() {
		logger.Log.Debugf("Cleaning up finished room %s", roomID)
		s.removeRoom(roomID)
	})
	s.lockMutex.Lock()
	s.cleanupTimers[roomID] = id
	s.lockMutex.Unlock()
}

func stateEvent(snap game.Snapshot) models.GameStateEvent {
	event := models.GameStateEvent{
		CurrentTurn: playerInfo(snap.Turn),
	}
	if snap.TopCard != nil {
		card := int(*snap.TopCard)
		event.HeapCard = &card
	}
	return event
}

func playerInfo(p *game.Player) *models.PlayerInfo {
	if p == nil {
		return nil
	}
	return &models.PlayerInfo{
		SocketID: p.SocketID(),
		Username: p.Username(),
	}
}
