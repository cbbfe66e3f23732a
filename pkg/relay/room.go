package relay

import (
	"lucky-server/pkg/protocol"
	"sync"

	"github.com/sirupsen/logrus"
)

// Room relays messages between the peers that joined it
// Every message passes through a single run loop, so all members observe the same order
type Room struct {
	name    string
	roster  *Roster
	clients map[string]*Client
	lock    sync.RWMutex
	logger  logrus.FieldLogger

	execInRunLoop chan func()
	close         chan bool
}

// NewRoom creates a new room that admits up to capacity peers
// This is called from a blocking state, so it needs to return quickly
func NewRoom(name string, capacity int) *Room {
	return &Room{
		name:          name,
		roster:        NewRoster(capacity),
		clients:       make(map[string]*Client),
		logger:        logrus.WithField("room", name),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// Name returns the room name
func (r *Room) Name() string {
	return r.name
}

// Clients will return a slice of connected (at the time) clients
func (r *Room) Clients() []*Client {
	r.lock.RLock()
	defer r.lock.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (r *Room) StartShift() {
	go r.runLoop()
}

func (r *Room) runLoop() {
	r.logger.Debug("creating room run loop")
	for {
		select {
		case fn := <-r.execInRunLoop:
			fn()
		case <-r.close:
			r.logger.Debug("terminating room run loop")
			return
		}
	}
}

// EndShift is called when the room is no longer needed
func (r *Room) EndShift() {
	close(r.close)
}

// AddClient adds a client
// This method must return quickly
func (r *Room) AddClient(client *Client) {
	r.lock.Lock()
	client.room = r
	r.clients[client.ID] = client
	r.lock.Unlock()

	r.execInRunLoop <- func() {
		deliveries, err := r.roster.Join(client.ID, client.Name)
		if err != nil {
			r.logger.WithError(err).WithField("client", client.String()).Info("rejecting client")
			client.Send(protocol.Rejected(err.Error()))
			client.Disconnect(err.Error())
			return
		}

		r.logger.WithField("client", client.String()).WithField("authority", r.roster.Authority()).Info("client joined")
		r.deliver(deliveries)
	}
}

// RemoveClient removes a client
// This method must return quickly
func (r *Room) RemoveClient(client *Client) (lastClient bool) {
	r.lock.Lock()
	delete(r.clients, client.ID)
	nClients := len(r.clients)
	r.lock.Unlock()

	if nClients == 0 {
		return true
	}

	r.execInRunLoop <- func() {
		deliveries, ok := r.roster.Leave(client.ID)
		if !ok {
			return
		}

		r.logger.WithField("client", client.String()).WithField("authority", r.roster.Authority()).Info("client left")
		r.deliver(deliveries)
	}

	return false
}

// ReceivedMessage is called when a peer sends a message to the room
func (r *Room) ReceivedMessage(c *Client, msg *protocol.Message) {
	r.execInRunLoop <- func() {
		deliveries := r.roster.Route(c.ID, msg)
		if len(deliveries) == 0 {
			r.logger.WithField("client", c.String()).WithField("msg", msg.String()).Debug("message not routed")
			return
		}

		r.deliver(deliveries)
	}
}

// NOTE: must only be called from the run loop
func (r *Room) deliver(deliveries []Delivery) {
	for _, d := range deliveries {
		r.lock.RLock()
		client, ok := r.clients[d.To]
		r.lock.RUnlock()

		if !ok {
			continue
		}

		if !client.Send(d.Message) {
			r.logger.WithField("client", client.String()).Warn("client is not keeping up, disconnecting")
			client.Disconnect("too slow")
		}
	}
}
