package lockstep

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-rts/internal/protocol"
)

// Recorder opens a tick log for a match. replay.Recorder implements it.
type Recorder interface {
	Open(info MatchInfo) (TickRecorder, error)
}

// TickRecorder receives every released game-tick of one match.
type TickRecorder interface {
	Record(gt protocol.GameTick) error
	Close() error
}

// MatchInfo describes a match when its log is opened.
type MatchInfo struct {
	MatchID MatchID        `json:"matchId"`
	RoomID  int            `json:"roomId"`
	LevelID string         `json:"levelId"`
	Spawns  map[string]int `json:"spawnLocations"`
	Lag     uint64         `json:"lag"`
	Started time.Time      `json:"started"`
}

// Match is the release loop of one running room.
type Match struct {
	id       MatchID
	room     *Room
	sessions []SessionHandle
	period   time.Duration
	rec      TickRecorder
	logger   *log.Logger
	started  time.Time

	done     chan struct{}
	doneOnce sync.Once
	finished chan struct{}
}

// NewMatch creates a match over the room's current players.
func NewMatch(id MatchID, room *Room, period time.Duration, rec TickRecorder, logger *log.Logger) *Match {
	sessions := make([]SessionHandle, 0, len(room.players))
	for _, p := range room.players {
		sessions = append(sessions, p.Session)
	}
	return &Match{
		id:       id,
		room:     room,
		sessions: sessions,
		period:   period,
		rec:      rec,
		logger:   logger,
		started:  time.Now(),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// ID returns the match identifier.
func (m *Match) ID() MatchID {
	return m.id
}

// Run releases ticks every period until Stop. onDisconnect is called when a
// session's Done channel closes first.
func (m *Match) Run(onDisconnect func(SessionID)) {
	defer close(m.finished)
	defer func() {
		if m.rec != nil {
			if err := m.rec.Close(); err != nil {
				m.logger.Warn("closing replay", "match", m.id, "err", err)
			}
		}
	}()

	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	go m.monitorSessions(onDisconnect)

	for {
		select {
		case <-ticker.C:
			m.releaseTick()
		case <-m.done:
			return
		}
	}
}

func (m *Match) releaseTick() {
	select {
	case <-m.done:
		return
	default:
	}
	gt, ok := m.room.TryRelease()
	if !ok {
		lagging := m.room.Lagging()
		colors := make([]string, 0, len(lagging))
		for c := range lagging {
			colors = append(colors, c)
		}
		sort.Strings(colors)
		for _, c := range colors {
			m.logger.Debug("player lagging", "room", m.room.ID, "color", c, "tick", m.room.CurrentTick(), "by", lagging[c])
		}
		return
	}

	for _, s := range m.sessions {
		s.Send(gt)
	}
	if m.rec != nil {
		if err := m.rec.Record(gt); err != nil {
			m.logger.Warn("replay disabled", "match", m.id, "err", err)
			_ = m.rec.Close()
			m.rec = nil
		}
	}
}

func (m *Match) monitorSessions(onDisconnect func(SessionID)) {
	var wg sync.WaitGroup
	first := make(chan SessionID, len(m.sessions))
	for _, s := range m.sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case <-s.Done():
				first <- s.ID()
			case <-m.done:
			}
		}()
	}
	select {
	case id := <-first:
		if onDisconnect != nil {
			onDisconnect(id)
		}
	case <-m.done:
	}
	wg.Wait()
}

// Stop ends the loop. Safe to call multiple times.
func (m *Match) Stop() {
	m.doneOnce.Do(func() {
		close(m.done)
	})
}

// Wait blocks until Run has returned and the replay log is closed.
func (m *Match) Wait() {
	<-m.finished
}

// Elapsed returns the wall time since the match was created.
func (m *Match) Elapsed() time.Duration {
	return time.Since(m.started)
}
