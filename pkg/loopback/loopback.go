// Package loopback is an in-process relay
// Peers share a Hub and exchange messages without a network. Delivery is synchronous and
// ordered exactly like the relay server, so it backs solo mode and multi-peer tests
package loopback

import (
	"errors"
	"lucky-server/pkg/protocol"
	"lucky-server/pkg/relay"

	"github.com/google/uuid"
)

// ErrClosed is returned when sending through an endpoint that left the hub
var ErrClosed = errors.New("endpoint is closed")

// ErrNotJoined is returned when sending through an endpoint before it joined
var ErrNotJoined = errors.New("endpoint has not joined")

// Handler receives the messages delivered to an endpoint
type Handler func(msg *protocol.Message)

// Hub is a room shared by endpoints in the same process
// It is not safe for concurrent use, every endpoint must be driven from the same goroutine
type Hub struct {
	roster    *relay.Roster
	endpoints map[string]*Endpoint
	queue     []relay.Delivery
	flushing  bool
}

// NewHub returns an empty hub that admits up to capacity endpoints
func NewHub(capacity int) *Hub {
	return &Hub{
		roster:    relay.NewRoster(capacity),
		endpoints: make(map[string]*Endpoint),
	}
}

// Authority returns the ID of the elected authority
func (h *Hub) Authority() string {
	return h.roster.Authority()
}

// Len returns the number of connected endpoints
func (h *Hub) Len() int {
	return h.roster.Len()
}

// Endpoint returns an endpoint that has not joined yet
// Its ID is assigned up front so it can be handed to a transport user before the welcome arrives
func (h *Hub) Endpoint(name string) *Endpoint {
	return &Endpoint{
		hub:  h,
		id:   uuid.New().String(),
		name: name,
	}
}

// Connect returns an endpoint that already joined the hub
func (h *Hub) Connect(name string, handler Handler) (*Endpoint, error) {
	e := h.Endpoint(name)
	if err := e.Join(handler); err != nil {
		return nil, err
	}

	return e, nil
}

func (h *Hub) enqueue(deliveries []relay.Delivery) {
	h.queue = append(h.queue, deliveries...)
	if h.flushing {
		// the outer flush picks these up in order
		return
	}

	h.flushing = true
	defer func() { h.flushing = false }()

	for len(h.queue) > 0 {
		d := h.queue[0]
		h.queue = h.queue[1:]

		e, ok := h.endpoints[d.To]
		if !ok || e.handler == nil {
			continue
		}

		e.handler(d.Message)
	}
}

// Endpoint is a peer connected to a Hub
type Endpoint struct {
	hub     *Hub
	id      string
	name    string
	handler Handler
	joined  bool
	closed  bool
}

// ID returns the peer ID assigned by the hub
func (e *Endpoint) ID() string {
	return e.id
}

// Join enters the hub
// handler is called with every message delivered to the endpoint, starting with its welcome
func (e *Endpoint) Join(handler Handler) error {
	if e.closed {
		return ErrClosed
	}

	if e.joined {
		return relay.ErrDuplicatePeer
	}

	deliveries, err := e.hub.roster.Join(e.id, e.name)
	if err != nil {
		return err
	}

	e.joined = true
	e.handler = handler
	e.hub.endpoints[e.id] = e
	e.hub.enqueue(deliveries)
	return nil
}

// SendToAll sends msg to every endpoint, this one included
func (e *Endpoint) SendToAll(msg *protocol.Message) error {
	if err := e.check(); err != nil {
		return err
	}

	m := *msg
	m.To = ""
	e.hub.enqueue(e.hub.roster.Route(e.id, &m))
	return nil
}

// SendTo sends msg to a single endpoint
func (e *Endpoint) SendTo(peer string, msg *protocol.Message) error {
	if err := e.check(); err != nil {
		return err
	}

	m := *msg
	m.To = peer
	e.hub.enqueue(e.hub.roster.Route(e.id, &m))
	return nil
}

// Close leaves the hub
// The remaining endpoints are told, and the authority is re-elected if needed
func (e *Endpoint) Close() error {
	if e.closed {
		return nil
	}

	e.closed = true
	if !e.joined {
		return nil
	}

	delete(e.hub.endpoints, e.id)
	deliveries, _ := e.hub.roster.Leave(e.id)
	e.hub.enqueue(deliveries)
	return nil
}

func (e *Endpoint) check() error {
	if e.closed {
		return ErrClosed
	}

	if !e.joined {
		return ErrNotJoined
	}

	return nil
}
