// Interactive test client for the card war server. Type commands on
// stdin: name <username>, create, join <CODE>, leave, members, start,
// state, play, tap.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeSetUsername = 101
	MsgTypeCreateRoom  = 102
	MsgTypeJoinRoom    = 103
	MsgTypeLeaveRoom   = 104
	MsgTypeRoomMembers = 105
	MsgTypeStartGame   = 201
	MsgTypeGetState    = 202
	MsgTypePlayCard    = 203
	MsgTypeTapHeap     = 204
)

// send frames and sends one message.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})
	roomCh := make(chan string, 1)

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))

			// Remember the room code from create/join replies.
			if msgID == MsgTypeCreateRoom || msgID == MsgTypeJoinRoom {
				var reply struct {
					RoomID string `json:"roomId"`
				}
				if err := json.Unmarshal(data, &reply); err == nil && reply.RoomID != "" {
					select {
					case roomCh <- reply.RoomID:
					default:
					}
				}
			}
		}
	}()

	currentRoom := ""
	log.Println("Client started. Commands: name <u> | create | join <CODE> | leave | members | start | state | play | tap")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case id := <-roomCh:
			currentRoom = id
			log.Printf("Current room: %s", currentRoom)
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		roomReq := func() []byte {
			data, _ := json.Marshal(map[string]string{"roomId": currentRoom})
			return data
		}

		switch fields[0] {
		case "name":
			if len(fields) < 2 {
				log.Println("Usage: name <username>")
				continue
			}
			data, _ := json.Marshal(map[string]string{"username": fields[1]})
			err = send(c, MsgTypeSetUsername, data)
		case "create":
			err = send(c, MsgTypeCreateRoom, []byte("{}"))
		case "join":
			if len(fields) < 2 {
				log.Println("Usage: join <CODE>")
				continue
			}
			currentRoom = strings.ToUpper(fields[1])
			err = send(c, MsgTypeJoinRoom, roomReq())
		case "leave":
			err = send(c, MsgTypeLeaveRoom, []byte("{}"))
			currentRoom = ""
		case "members":
			err = send(c, MsgTypeRoomMembers, roomReq())
		case "start":
			err = send(c, MsgTypeStartGame, roomReq())
		case "state":
			err = send(c, MsgTypeGetState, roomReq())
		case "play":
			err = send(c, MsgTypePlayCard, roomReq())
		case "tap":
			err = send(c, MsgTypeTapHeap, roomReq())
		default:
			log.Printf("Unknown command: %s", fields[0])
			continue
		}

		if err != nil {
			log.Println("Write error:", err)
			return
		}
	}
}
