package lockstep

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

var (
	// ErrRoomFull is returned when both seats of a room are taken or the
	// game has already started.
	ErrRoomFull = errors.New("lockstep: room is full")
	// ErrAlreadyInRoom is returned when a session tries to join a second room.
	ErrAlreadyInRoom = errors.New("lockstep: already in a room")
)

// Player is one connected session and its measured latency.
type Player struct {
	Session SessionHandle
	Color   string
	TickLag uint64
	Ready   bool

	room   *Room
	pingAt time.Time
	trips  []time.Duration
}

func newPlayer(s SessionHandle) *Player {
	return &Player{Session: s, TickLag: 1}
}

// AverageRoundTrip returns the mean of the measured trips.
func (p *Player) AverageRoundTrip() time.Duration {
	if len(p.trips) == 0 {
		return 0
	}
	var total time.Duration
	for _, t := range p.trips {
		total += t
	}
	return total / time.Duration(len(p.trips))
}

// Trips returns how many round trips have been measured.
func (p *Player) Trips() int { return len(p.trips) }

// recordTrip adds a round trip and recomputes the tick lag: one tick plus
// the average round trip in whole tick periods, rounded.
func (p *Player) recordTrip(rtt, period time.Duration) {
	p.trips = append(p.trips, rtt)
	p.TickLag = TickLag(p.AverageRoundTrip(), period)
}

// TickLag returns 1 + round(avgRTT / period).
func TickLag(avgRTT, period time.Duration) uint64 {
	if period <= 0 || avgRTT <= 0 {
		return 1
	}
	return 1 + uint64((avgRTT+period/2)/period)
}

// Room is a two-seat game room. Seats and lobby state belong to the
// coordinator goroutine; the barrier fields are guarded by mu because the
// match loop releases ticks concurrently.
type Room struct {
	ID    int
	state RoomState

	players []*Player
	levelID string
	spawns  map[string]int
	match   *Match

	mu          sync.Mutex
	currentTick uint64
	lag         uint64
	confirmed   map[string]uint64
	commands    []sim.Command
}

// NewRoom returns an empty room.
func NewRoom(id int) *Room {
	return &Room{ID: id}
}

// State returns the lobby state.
func (r *Room) State() RoomState { return r.state }

// Players returns the seated players in join order.
func (r *Room) Players() []*Player { return r.players }

// LevelID returns the level being played.
func (r *Room) LevelID() string { return r.levelID }

// Spawns returns the chosen spawn index per colour.
func (r *Room) Spawns() map[string]int { return r.spawns }

// seat adds p with the first free colour. The first player puts the room in
// waiting, the second in starting.
func (r *Room) seat(p *Player, colors []string) error {
	if p.room != nil {
		return ErrAlreadyInRoom
	}
	if len(r.players) >= len(colors) || r.state == RoomStarting || r.state == RoomRunning {
		return ErrRoomFull
	}
	taken := make(map[string]bool, len(r.players))
	for _, o := range r.players {
		taken[o.Color] = true
	}
	for _, c := range colors {
		if !taken[c] {
			p.Color = c
			break
		}
	}
	p.room = r
	p.Ready = false
	r.players = append(r.players, p)
	if len(r.players) == len(colors) {
		r.state = RoomStarting
	} else {
		r.state = RoomWaiting
	}
	return nil
}

// unseat removes p and recomputes the state from the number of players.
func (r *Room) unseat(p *Player) {
	for i, o := range r.players {
		if o == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	p.room = nil
	p.Ready = false
	switch len(r.players) {
	case 0:
		r.state = RoomEmpty
	default:
		r.state = RoomWaiting
	}
}

// reset empties the room.
func (r *Room) reset() {
	for _, p := range r.players {
		p.room = nil
		p.Ready = false
	}
	r.players = nil
	r.state = RoomEmpty
	r.levelID = ""
	r.spawns = nil
	r.match = nil
}

// allReady reports whether every seat is taken and has loaded the level.
func (r *Room) allReady(seats int) bool {
	if len(r.players) != seats {
		return false
	}
	for _, p := range r.players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// broadcast sends msg to every seated player.
func (r *Room) broadcast(msg protocol.Message) {
	for _, p := range r.players {
		p.Session.Send(msg)
	}
}

// Start resets the barrier for a new game: tick zero, every colour
// confirmed through zero, no pending commands.
func (r *Room) Start(colors []string, lag uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentTick = 0
	r.lag = max(lag, 1)
	r.commands = nil
	r.confirmed = make(map[string]uint64, len(colors))
	for _, c := range colors {
		r.confirmed[c] = 0
	}
}

// Confirm raises a colour's watermark. Watermarks never move back.
func (r *Room) Confirm(color string, watermark uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirm(color, watermark)
}

func (r *Room) confirm(color string, watermark uint64) {
	if cur, ok := r.confirmed[color]; !ok || watermark > cur {
		r.confirmed[color] = watermark
	}
}

// AddCommand queues cmd for the next release when it names any entity, and
// moves the sender's watermark to the command's tick plus the sender's lag.
func (r *Room) AddCommand(color string, cmd protocol.Command, tickLag uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(cmd.UIDs) > 0 {
		r.commands = append(r.commands, cmd.ToSim())
	}
	r.confirm(color, cmd.CurrentTick+tickLag)
}

// TryRelease emits the game-tick for the current tick when every colour has
// confirmed it. The released tick is scheduled lag ticks ahead so the batch
// reaches both peers before they execute it.
func (r *Room) TryRelease() (protocol.GameTick, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.confirmed == nil {
		return protocol.GameTick{}, false
	}
	for _, w := range r.confirmed {
		if w < r.currentTick {
			return protocol.GameTick{}, false
		}
	}
	gt := protocol.GameTick{Tick: r.currentTick + r.lag, Commands: r.commands}
	if gt.Commands == nil {
		gt.Commands = []sim.Command{}
	}
	r.currentTick++
	r.commands = nil
	return gt, true
}

// Lagging returns the colours that have not confirmed the current tick, and
// by how many ticks they trail.
func (r *Room) Lagging() map[string]uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]uint64)
	for c, w := range r.confirmed {
		if w < r.currentTick {
			out[c] = r.currentTick - w
		}
	}
	return out
}

// CurrentTick returns the next tick the barrier will release.
func (r *Room) CurrentTick() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentTick
}

// Lag returns the room-wide tick lag.
func (r *Room) Lag() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lag
}

// colorsOf returns the seated colours in name order.
func colorsOf(players []*Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Color)
	}
	sort.Strings(out)
	return out
}
