// Package lockstep runs two-player games in lockstep: a server that owns
// rooms and releases merged command batches once both peers have confirmed
// a tick, and a client scheduler that executes those batches in tick order.
package lockstep

import "time"

// SessionID uniquely identifies a connected player (websocket or SSH).
type SessionID string

// MatchID uniquely identifies a running game in a room.
type MatchID string

// RoomState is the lobby state of a room.
type RoomState int

const (
	RoomEmpty RoomState = iota
	RoomWaiting
	RoomStarting
	RoomRunning
)

// String returns the status sent in room-list messages.
func (s RoomState) String() string {
	switch s {
	case RoomEmpty:
		return "empty"
	case RoomWaiting:
		return "waiting"
	case RoomStarting:
		return "starting"
	case RoomRunning:
		return "running"
	default:
		return "unknown"
	}
}

// EndReason describes why a match ended.
type EndReason int

const (
	EndDefeat     EndReason = iota // a player reported lose-game
	EndDisconnect                  // a player left or dropped
	EndShutdown                    // the server stopped
)

func (r EndReason) String() string {
	switch r {
	case EndDefeat:
		return "defeat"
	case EndDisconnect:
		return "disconnect"
	case EndShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// MatchResultSaver is an interface for saving match results.
// This allows the coordinator to save results without depending on the storage package.
type MatchResultSaver interface {
	SaveMatchResult(result MatchResultData) error
}

// MatchResultData contains match result data for persistence.
type MatchResultData struct {
	MatchID      string
	RoomID       int
	LevelID      string
	BlueSession  string
	GreenSession string
	Winner       string // colour, empty when nobody won
	EndReason    string
	Message      string
	Ticks        uint64
	DurationSecs int
	EndedAt      time.Time
}
