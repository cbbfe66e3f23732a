package relay

import (
	"fmt"
	"lucky-server/pkg/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a peer connected to the relay via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// ID is the peer ID assigned by the relay
	ID string

	// Name is the display name the peer asked for
	Name string

	// RoomName is the room the peer asked to join
	RoomName string

	// send is a channel for sending messages to the peer
	send chan *protocol.Message

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	room *Room
}

// NewClient returns a new client with a fresh peer ID
func NewClient(conn *websocket.Conn, roomName, name string) *Client {
	return &Client{
		Conn:     conn,
		ID:       uuid.New().String(),
		Name:     name,
		RoomName: roomName,
		send:     make(chan *protocol.Message, 256),
		Close:    make(chan string, 1),
	}
}

// Send queues a message for the peer
// It returns false if the peer is not keeping up
func (c *Client) Send(msg *protocol.Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan *protocol.Message {
	return c.send
}

// Disconnect asks the write loop to close the connection with reason
func (c *Client) Disconnect(reason string) {
	select {
	case c.Close <- reason:
	default:
	}
}

// String returns a traceable identifier for the peer and room
func (c *Client) String() string {
	return fmt.Sprintf("%s:%s", c.ID, c.RoomName)
}

// ReceivedMessage is called when the relay receives a message from a connected peer
func (c *Client) ReceivedMessage(msg *protocol.Message) {
	if c.room == nil {
		logrus.WithField("msg", msg.String()).WithField("client", c.String()).Warn("received message, but room not found")
		return
	}

	c.room.ReceivedMessage(c, msg)
}
