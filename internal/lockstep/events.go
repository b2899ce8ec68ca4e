package lockstep

import "github.com/vovakirdan/tui-rts/internal/protocol"

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// ConnectedMsg registers a new session.
type ConnectedMsg struct {
	Session SessionHandle
}

func (ConnectedMsg) coordinatorMessage() {}

// JoinRoomMsg requests a seat in a room.
type JoinRoomMsg struct {
	SessionID SessionID
	RoomID    int
}

func (JoinRoomMsg) coordinatorMessage() {}

// LeaveRoomMsg gives up a seat.
type LeaveRoomMsg struct {
	SessionID SessionID
	RoomID    int
}

func (LeaveRoomMsg) coordinatorMessage() {}

// InitializedLevelMsg reports that the session has loaded the level.
type InitializedLevelMsg struct {
	SessionID SessionID
}

func (InitializedLevelMsg) coordinatorMessage() {}

// LatencyPongMsg answers a latency ping.
type LatencyPongMsg struct {
	SessionID SessionID
}

func (LatencyPongMsg) coordinatorMessage() {}

// CommandMsg carries a player command.
type CommandMsg struct {
	SessionID SessionID
	Command   protocol.Command
}

func (CommandMsg) coordinatorMessage() {}

// LoseGameMsg reports that the sender was defeated.
type LoseGameMsg struct {
	SessionID SessionID
}

func (LoseGameMsg) coordinatorMessage() {}

// ChatMsg is a chat line to relay to the sender's room.
type ChatMsg struct {
	SessionID SessionID
	Text      string
}

func (ChatMsg) coordinatorMessage() {}

// DisconnectedMsg is sent when a session disconnects.
type DisconnectedMsg struct {
	SessionID SessionID
}

func (DisconnectedMsg) coordinatorMessage() {}

// Inbound converts a decoded client message into the coordinator message
// for session id. Server-bound types only; anything else reports false.
func Inbound(id SessionID, m protocol.Message) (CoordinatorMessage, bool) {
	switch v := m.(type) {
	case protocol.JoinRoom:
		return JoinRoomMsg{SessionID: id, RoomID: v.RoomID}, true
	case protocol.LeaveRoom:
		return LeaveRoomMsg{SessionID: id, RoomID: v.RoomID}, true
	case protocol.InitializedLevel:
		return InitializedLevelMsg{SessionID: id}, true
	case protocol.LatencyPong:
		return LatencyPongMsg{SessionID: id}, true
	case protocol.Command:
		return CommandMsg{SessionID: id, Command: v}, true
	case protocol.LoseGame:
		return LoseGameMsg{SessionID: id}, true
	case protocol.Chat:
		return ChatMsg{SessionID: id, Text: v.Message}, true
	}
	return nil, false
}
