package lockstep

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/tui-rts/internal/protocol"
	"github.com/vovakirdan/tui-rts/internal/sim"
)

// ErrStalled is returned by Advance while the commands for the current tick
// have not arrived. The client never skips a tick.
var ErrStalled = errors.New("lockstep: waiting for tick")

// Sender delivers messages to the server.
type Sender interface {
	Send(msg protocol.Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg protocol.Message) error

// Send calls f.
func (f SenderFunc) Send(msg protocol.Message) error { return f(msg) }

// Client executes released ticks against a local world in tick order.
type Client struct {
	mu     sync.Mutex
	world  *sim.World
	team   string
	sender Sender

	currentTick  uint64
	lastReceived uint64
	firstTick    uint64
	received     bool
	commands     map[uint64][]sim.Command
	sentForTick  bool
	lostReported bool
}

// NewClient returns a client for team playing on w.
func NewClient(w *sim.World, team string, sender Sender) *Client {
	return &Client{
		world:    w,
		team:     team,
		sender:   sender,
		commands: make(map[uint64][]sim.Command),
	}
}

// World returns the simulated world. Callers must not step it themselves.
func (c *Client) World() *sim.World { return c.world }

// Team returns the local colour.
func (c *Client) Team() string { return c.team }

// CurrentTick returns the next tick to execute.
func (c *Client) CurrentTick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTick
}

// LastReceivedTick returns the highest tick released by the server.
func (c *Client) LastReceivedTick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReceived
}

// Receive stores a released tick.
func (c *Client) Receive(gt protocol.GameTick) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gt.Tick < c.currentTick {
		return // already executed
	}
	cmds := gt.Commands
	if cmds == nil {
		cmds = []sim.Command{}
	}
	c.commands[gt.Tick] = cmds
	if !c.received || gt.Tick < c.firstTick {
		c.firstTick = gt.Tick
	}
	c.received = true
	if gt.Tick > c.lastReceived {
		c.lastReceived = gt.Tick
	}
}

// SendCommand stamps an order with the current tick and sends it. The order
// is not applied locally: it comes back through a game-tick like the
// opponent's.
func (c *Client) SendCommand(uids []sim.EntityID, o sim.Order) error {
	c.mu.Lock()
	tick := c.currentTick
	c.sentForTick = true
	c.mu.Unlock()
	return c.sender.Send(protocol.Command{UIDs: uids, Details: o, CurrentTick: tick})
}

// Advance executes the current tick if it is known: it applies the tick's
// commands, steps the world, confirms the tick with an empty command when
// no command was sent, and reports defeat once. Ticks before the first
// released one are empty; after that every tick must arrive explicitly,
// otherwise ErrStalled is returned.
func (c *Client) Advance() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.received || c.currentTick > c.lastReceived {
		return ErrStalled
	}
	cmds, ok := c.commands[c.currentTick]
	if !ok && c.currentTick >= c.firstTick {
		return ErrStalled
	}
	for _, cmd := range cmds {
		cmd.Apply(c.world)
	}
	delete(c.commands, c.currentTick)
	c.world.Step()

	var errs []error
	if !c.sentForTick {
		if err := c.sender.Send(protocol.EmptyCommand(c.currentTick)); err != nil {
			errs = append(errs, fmt.Errorf("lockstep: cannot confirm tick %d: %w", c.currentTick, err))
		}
	}
	if !c.lostReported && c.world.Defeated(c.team) {
		c.lostReported = true
		if err := c.sender.Send(protocol.LoseGame{}); err != nil {
			errs = append(errs, fmt.Errorf("lockstep: cannot report defeat: %w", err))
		}
	}
	c.currentTick++
	c.sentForTick = false
	return errors.Join(errs...)
}

// Run advances every period until ctx is done. Stalls are not errors;
// onStep, when set, is called after each executed tick.
func (c *Client) Run(ctx context.Context, period time.Duration, onStep func(tick uint64)) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := c.Advance()
			switch {
			case errors.Is(err, ErrStalled):
				continue
			case err != nil:
				return err
			}
			if onStep != nil {
				onStep(c.CurrentTick() - 1)
			}
		}
	}
}
