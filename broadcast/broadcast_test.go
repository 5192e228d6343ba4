package broadcast

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/cardwar/network"
	"github.com/wfunc/cardwar/room"
	"github.com/wfunc/cardwar/session"
)

// RecordingConnection captures every message sent through it.
type RecordingConnection struct {
	msgIDs []uint16
}

func (c *RecordingConnection) Send(msgID uint16, data []byte) error {
	c.msgIDs = append(c.msgIDs, msgID)
	return nil
}
func (c *RecordingConnection) Close() error                         { return nil }
func (c *RecordingConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (c *RecordingConnection) SetHeartbeat(interval time.Duration)  {}
func (c *RecordingConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestRoomBroadcaster_BroadcastToRoom(t *testing.T) {
	roomManager := room.NewRoomManager()
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(roomManager, sessionManager)

	conn1 := &RecordingConnection{}
	conn2 := &RecordingConnection{}
	sess1 := session.NewSession("s1", conn1)
	sess2 := session.NewSession("s2", conn2)
	sessionManager.Add(sess1)
	sessionManager.Add(sess2)

	r := roomManager.GetOrCreateRoom("ROOM01")
	r.AddPlayer(sess1)
	r.AddPlayer(sess2)

	if err := b.BroadcastToRoom("ROOM01", 212, []byte("{}")); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}

	if len(conn1.msgIDs) != 1 || conn1.msgIDs[0] != 212 {
		t.Errorf("First member got %v, want one message with ID 212", conn1.msgIDs)
	}
	if len(conn2.msgIDs) != 1 || conn2.msgIDs[0] != 212 {
		t.Errorf("Second member got %v, want one message with ID 212", conn2.msgIDs)
	}
}

func TestRoomBroadcaster_UnknownRoom(t *testing.T) {
	b := NewRoomBroadcaster(room.NewRoomManager(), session.NewManager())

	if err := b.BroadcastToRoom("NOSUCH", 212, nil); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomBroadcaster_SendToSession(t *testing.T) {
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(room.NewRoomManager(), sessionManager)

	conn := &RecordingConnection{}
	sessionManager.Add(session.NewSession("s1", conn))

	if err := b.SendToSession("s1", 101, []byte("{}")); err != nil {
		t.Fatalf("SendToSession failed: %v", err)
	}
	if len(conn.msgIDs) != 1 || conn.msgIDs[0] != 101 {
		t.Errorf("Session got %v, want one message with ID 101", conn.msgIDs)
	}

	if err := b.SendToSession("missing", 101, nil); err != ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}
