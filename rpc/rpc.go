// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/cardwar/game"
	"github.com/wfunc/cardwar/logger"
	"github.com/wfunc/cardwar/models"
	"github.com/wfunc/cardwar/room"
	"github.com/wfunc/cardwar/services"
)

// Server manages the net/rpc listener used for admin queries.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc.
type AdminService struct {
	records     *services.RecordService
	roomManager *room.Manager
	registry    *game.Registry
}

func NewAdminService(records *services.RecordService, rooms *room.Manager, registry *game.Registry) *AdminService {
	return &AdminService{
		records:     records,
		roomManager: rooms,
		registry:    registry,
	}
}

type PlayerStatsArgs struct {
	Username string
}

type PlayerStatsReply struct {
	Stats *models.PlayerStats
}

// GetPlayerStats returns the win/loss aggregate for one username.
func (s *AdminService) GetPlayerStats(args *PlayerStatsArgs, reply *PlayerStatsReply) error {
	stats, err := s.records.PlayerStats(args.Username)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type ListRoomsArgs struct{}

type RoomSummary struct {
	RoomID     string
	Players    int
	Status     int
	GameActive bool
}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

// ListRooms returns a summary of every open room.
func (s *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	for _, id := range s.roomManager.RoomIDs() {
		r, exists := s.roomManager.GetRoom(id)
		if !exists {
			continue
		}
		_, gameActive := s.registry.Get(id)
		reply.Rooms = append(reply.Rooms, RoomSummary{
			RoomID:     id,
			Players:    r.PlayerCount(),
			Status:     int(r.GetStatus()),
			GameActive: gameActive,
		})
	}
	return nil
}
