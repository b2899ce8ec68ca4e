package ws

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-rts/internal/protocol"
)

// ErrClosed is returned by Send after the connection has ended.
var ErrClosed = errors.New("ws: connection closed")

// ClientConn is a lockstep client connection. Latency pings are answered
// as soon as they are read so the measured round trip excludes the game
// loop.
type ClientConn struct {
	conn *websocket.Conn
	msgs chan protocol.Message

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once

	errMu sync.Mutex
	err   error
}

// Dial connects to a lockstep server.
func Dial(ctx context.Context, url string) (*ClientConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ws: cannot dial %s: %w", url, err)
	}
	c := &ClientConn{
		conn: conn,
		msgs: make(chan protocol.Message, 256),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Send encodes and writes msg.
func (c *ClientConn) Send(msg protocol.Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	b, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("ws: cannot send %s: %w", msg.MessageType(), err)
	}
	return nil
}

// Messages returns server messages. The channel closes when the connection
// ends; Err then reports why.
func (c *ClientConn) Messages() <-chan protocol.Message {
	return c.msgs
}

// Err returns the error that ended the read loop, if any.
func (c *ClientConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close sends a close frame and closes the connection.
func (c *ClientConn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.conn.Close()
	})
	return err
}

func (c *ClientConn) readLoop() {
	defer close(c.msgs)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				c.errMu.Lock()
				c.err = err
				c.errMu.Unlock()
			}
			return
		}
		msg, err := protocol.Decode(raw)
		if err != nil {
			continue
		}
		if msg.MessageType() == protocol.TypeLatencyPing {
			_ = c.Send(protocol.LatencyPong{})
			continue
		}
		select {
		case c.msgs <- msg:
		case <-c.done:
			return
		}
	}
}
