package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lucky-server/pkg/protocol"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const writeWait = time.Second * 10
const pongWait = time.Second * 60
const pingPeriod = pongWait * 9 / 10

// ErrClosed is returned when sending on a connection that is closed
var ErrClosed = errors.New("connection is closed")

// ErrSendBufferFull is returned when the write loop has fallen too far behind
// The message is dropped
var ErrSendBufferFull = errors.New("send buffer is full")

// Handler receives every message delivered by the relay
// It is called from the read goroutine
type Handler func(msg *protocol.Message)

// Conn is a websocket connection to a relay room
// It implements the participant transport
type Conn struct {
	ws     *websocket.Conn
	logger logrus.FieldLogger

	send      chan *protocol.Message
	close     chan string
	closed    chan struct{}
	closeOnce sync.Once
}

// RoomURL returns the websocket URL for joining room on the relay at base
func RoomURL(base, room, name string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}

	u.Path = fmt.Sprintf("%s/room/%s/ws", u.Path, url.PathEscape(room))
	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Dial connects to room on the relay at base
func Dial(ctx context.Context, base, room, name string, logger logrus.FieldLogger) (*Conn, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	u, err := RoomURL(base, room, name)
	if err != nil {
		return nil, err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s: %w", u, err)
	}

	return NewConn(ws, logger.WithField("room", room)), nil
}

// NewConn wraps an established websocket connection
func NewConn(ws *websocket.Conn, logger logrus.FieldLogger) *Conn {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Conn{
		ws:     ws,
		logger: logger,
		send:   make(chan *protocol.Message, 256),
		close:  make(chan string, 1),
		closed: make(chan struct{}),
	}
}

// SendToAll sends msg to every peer in the room, this one included
func (c *Conn) SendToAll(msg *protocol.Message) error {
	m := *msg
	m.To = ""
	return c.enqueue(&m)
}

// SendTo sends msg to a single peer
func (c *Conn) SendTo(peer string, msg *protocol.Message) error {
	m := *msg
	m.To = peer
	return c.enqueue(&m)
}

func (c *Conn) enqueue(msg *protocol.Message) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.closed:
		return ErrClosed
	default:
		return ErrSendBufferFull
	}
}

// Close asks the relay to end the session
// Run returns once the relay acknowledges, or after a second
func (c *Conn) Close() error {
	select {
	case c.close <- "leaving":
	default:
	}

	return nil
}

// Run pumps messages until the connection ends or ctx is done
// handler is called from the read goroutine for every message in the order the relay sent them
func (c *Conn) Run(ctx context.Context, handler Handler) error {
	defer c.closeOnce.Do(func() { close(c.closed) })

	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	readDone := make(chan struct{})
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(readDone)
		return c.readLoop(handler)
	})
	g.Go(func() error {
		return c.writeLoop(ctx, readDone)
	})

	return g.Wait()
}

func (c *Conn) readLoop(handler Handler) error {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Error("could not read message")
			}

			return err
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.WithError(err).Warn("could not decode message")
			continue
		}

		c.logger.WithField("message", msg.String()).Trace("received message")
		handler(&msg)
	}
}

func (c *Conn) writeLoop(ctx context.Context, readDone chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	closeWith := func(reason string) error {
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason))

		// wait for the close frame
		select {
		case <-readDone:
		case <-time.After(time.Second):
		}
		return nil
	}

	for {
		select {
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-readDone:
			return nil
		case reason := <-c.close:
			return closeWith(reason)
		case <-ctx.Done():
			return closeWith("leaving")
		case msg := <-c.send:
			c.logger.WithField("message", msg.String()).Trace("sending message")

			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.WithError(err).Error("could not write message")
				return err
			}
		}
	}
}
