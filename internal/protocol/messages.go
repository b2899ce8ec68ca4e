package protocol

import "github.com/vovakirdan/tui-rts/internal/sim"

// Type is the value of a message's "type" field.
type Type string

// Message types.
const (
	TypeRoomList         Type = "room-list"
	TypeJoinRoom         Type = "join-room"
	TypeLeaveRoom        Type = "leave-room"
	TypeJoinedRoom       Type = "joined-room"
	TypeInitializeLevel  Type = "initialize-level"
	TypeInitializedLevel Type = "initialized-level"
	TypePlayGame         Type = "play-game"
	TypeCommand          Type = "command"
	TypeGameTick         Type = "game-tick"
	TypeLatencyPing      Type = "latency-ping"
	TypeLatencyPong      Type = "latency-pong"
	TypeChat             Type = "chat"
	TypeLoseGame         Type = "lose-game"
	TypeEndGame          Type = "end-game"
	TypeError            Type = "error"
)

// Message is any value that travels over the wire.
type Message interface {
	MessageType() Type
}

// RoomList (server -> client) carries one status string per room.
type RoomList struct {
	RoomList []string `json:"roomList"`
}

// JoinRoom (client -> server)
type JoinRoom struct {
	RoomID int `json:"roomId"`
}

// LeaveRoom (client -> server)
type LeaveRoom struct {
	RoomID int `json:"roomId"`
}

// JoinedRoom (server -> client) confirms the join and assigns the team.
type JoinedRoom struct {
	RoomID int    `json:"roomId"`
	Color  string `json:"color"`
}

// InitializeLevel (server -> client) tells both players to load a level.
type InitializeLevel struct {
	SpawnLocations map[string]int `json:"spawnLocations"`
	LevelID        string         `json:"levelId"`
}

// InitializedLevel (client -> server)
type InitializedLevel struct{}

// PlayGame (server -> client)
type PlayGame struct{}

// Command (client -> server) is one player command stamped with the
// sender's tick. Empty UIDs confirm the tick without doing anything.
type Command struct {
	UIDs        []sim.EntityID `json:"uids"`
	Details     sim.Order      `json:"details"`
	CurrentTick uint64         `json:"currentTick"`
}

// GameTick (server -> client) releases the merged commands for a tick.
type GameTick struct {
	Tick     uint64        `json:"tick"`
	Commands []sim.Command `json:"commands"`
}

// LatencyPing (server -> client)
type LatencyPing struct{}

// LatencyPong (client -> server)
type LatencyPong struct{}

// Chat travels both ways. From is set by the server.
type Chat struct {
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// LoseGame (client -> server) reports that the sender was defeated.
type LoseGame struct{}

// EndGame (server -> client)
type EndGame struct {
	Message string `json:"message"`
}

// Error (server -> client)
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func (RoomList) MessageType() Type         { return TypeRoomList }
func (JoinRoom) MessageType() Type         { return TypeJoinRoom }
func (LeaveRoom) MessageType() Type        { return TypeLeaveRoom }
func (JoinedRoom) MessageType() Type       { return TypeJoinedRoom }
func (InitializeLevel) MessageType() Type  { return TypeInitializeLevel }
func (InitializedLevel) MessageType() Type { return TypeInitializedLevel }
func (PlayGame) MessageType() Type         { return TypePlayGame }
func (Command) MessageType() Type          { return TypeCommand }
func (GameTick) MessageType() Type         { return TypeGameTick }
func (LatencyPing) MessageType() Type      { return TypeLatencyPing }
func (LatencyPong) MessageType() Type      { return TypeLatencyPong }
func (Chat) MessageType() Type             { return TypeChat }
func (LoseGame) MessageType() Type         { return TypeLoseGame }
func (EndGame) MessageType() Type          { return TypeEndGame }
func (Error) MessageType() Type            { return TypeError }

// EmptyCommand confirms tick without ordering anything.
func EmptyCommand(tick uint64) Command {
	return Command{UIDs: []sim.EntityID{}, Details: sim.Stand(), CurrentTick: tick}
}

// ToSim drops the tick stamp.
func (c Command) ToSim() sim.Command {
	return sim.Command{UIDs: c.UIDs, Details: c.Details}
}

// newMessage returns a zero value of the concrete type for t.
func newMessage(t Type) (Message, bool) {
	switch t {
	case TypeRoomList:
		return &RoomList{}, true
	case TypeJoinRoom:
		return &JoinRoom{}, true
	case TypeLeaveRoom:
		return &LeaveRoom{}, true
	case TypeJoinedRoom:
		return &JoinedRoom{}, true
	case TypeInitializeLevel:
		return &InitializeLevel{}, true
	case TypeInitializedLevel:
		return &InitializedLevel{}, true
	case TypePlayGame:
		return &PlayGame{}, true
	case TypeCommand:
		return &Command{}, true
	case TypeGameTick:
		return &GameTick{}, true
	case TypeLatencyPing:
		return &LatencyPing{}, true
	case TypeLatencyPong:
		return &LatencyPong{}, true
	case TypeChat:
		return &Chat{}, true
	case TypeLoseGame:
		return &LoseGame{}, true
	case TypeEndGame:
		return &EndGame{}, true
	case TypeError:
		return &Error{}, true
	}
	return nil, false
}
