// Package ws carries the lockstep protocol over websockets: a server handler
// that turns each connection into a coordinator session, and a client.
package ws

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-rts/internal/config"
	"github.com/vovakirdan/tui-rts/internal/lockstep"
	"github.com/vovakirdan/tui-rts/internal/protocol"
)

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	outBuffer = 256
)

// pingPeriod must stay below readWait so an idle peer (a player waiting
// for an opponent) answers a ping before its read deadline passes.
const pingPeriod = readWait * 9 / 10

// Server upgrades HTTP requests and feeds the coordinator.
type Server struct {
	coord  *lockstep.Coordinator
	cfg    config.ServerConfig
	logger *log.Logger

	readWait   time.Duration
	pingPeriod time.Duration

	upgrader websocket.Upgrader
}

// NewServer returns a websocket front end for coord.
func NewServer(coord *lockstep.Coordinator, cfg config.ServerConfig, logger *log.Logger) *Server {
	return &Server{
		coord:  coord,
		cfg:    cfg,
		logger: logger,

		readWait:   readWait,
		pingPeriod: pingPeriod,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Conn is one websocket peer seen as a lockstep session.
type Conn struct {
	id   lockstep.SessionID
	ws   *websocket.Conn
	out  chan []byte
	done chan struct{}
	once sync.Once

	logger *log.Logger
}

// ID returns the session identifier.
func (c *Conn) ID() lockstep.SessionID { return c.id }

// Done closes when the connection ends.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Send encodes msg and queues it for the writer. A peer that cannot keep up
// is disconnected: dropping a game-tick would stall both players.
func (c *Conn) Send(msg protocol.Message) {
	b, err := protocol.Encode(msg)
	if err != nil {
		c.logger.Error("encoding message", "session", c.id, "type", msg.MessageType(), "err", err)
		return
	}
	select {
	case <-c.done:
	case c.out <- b:
	default:
		c.logger.Warn("send buffer full, dropping peer", "session", c.id)
		c.close()
	}
}

func (c *Conn) close() {
	c.once.Do(func() { close(c.done) })
}

// Handler serves the lockstep protocol.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		wsConn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.logger.Debug("upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		defer wsConn.Close()

		conn := &Conn{
			id:     lockstep.SessionID(uuid.NewString()),
			ws:     wsConn,
			out:    make(chan []byte, outBuffer),
			done:   make(chan struct{}),
			logger: s.logger,
		}
		s.logger.Info("connection opened", "session", conn.id, "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.writeLoop(ctx, conn)
		}()

		s.coord.Send(lockstep.ConnectedMsg{Session: conn})
		s.readLoop(conn)

		conn.close()
		s.coord.Send(lockstep.DisconnectedMsg{SessionID: conn.id})
		cancel()
		wg.Wait()

		_ = wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.logger.Info("connection closed", "session", conn.id)
	}
}

func (s *Server) writeLoop(ctx context.Context, c *Conn) {
	ping := time.NewTicker(s.pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			// unblock the reader
			_ = c.ws.SetReadDeadline(time.Now())
			return
		case <-ping.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				_ = c.ws.SetReadDeadline(time.Now())
				return
			}
		case b := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, b); err != nil {
				c.close()
				_ = c.ws.SetReadDeadline(time.Now())
				return
			}
		}
	}
}

func (s *Server) readLoop(c *Conn) {
	chat := rate.NewLimiter(rate.Limit(s.cfg.ChatRatePerSec), max(s.cfg.ChatBurst, 1))
	commands := rate.NewLimiter(rate.Limit(s.cfg.CommandRatePerSec), max(int(s.cfg.CommandRatePerSec), 1))

	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(s.readWait))
	})
	for {
		_ = c.ws.SetReadDeadline(time.Now().Add(s.readWait))
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) {
				s.logger.Debug("read ended", "session", c.id, "err", err)
			}
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			c.Send(protocol.ErrorFor(err))
			continue
		}

		switch msg.MessageType() {
		case protocol.TypeChat:
			if !chat.Allow() {
				c.Send(protocol.Error{Code: protocol.CodeRateLimited, Message: "slow down"})
				continue
			}
		case protocol.TypeCommand:
			if !commands.Allow() {
				c.Send(protocol.Error{Code: protocol.CodeRateLimited, Message: "too many commands"})
				continue
			}
		}

		cm, ok := lockstep.Inbound(c.id, msg)
		if !ok {
			c.Send(protocol.Error{Code: protocol.CodeBadRequest, Message: string(msg.MessageType()) + " is not accepted by the server"})
			continue
		}
		s.coord.Send(cm)
	}
}
