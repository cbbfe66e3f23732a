package relay

import (
	"github.com/sirupsen/logrus"
)

// Stats is a point in time summary of the open rooms
type Stats struct {
	Rooms int `json:"rooms"`
	Peers int `json:"peers"`
}

// PitBoss is responsible for dispatching peers to rooms
type PitBoss struct {
	capacity   int
	logger     logrus.FieldLogger
	rooms      map[string]*Room
	connect    chan *Client
	disconnect chan *Client
	stats      chan chan Stats
}

// NewPitBoss returns a new dispatch object
// Rooms it creates admit up to capacity peers
func NewPitBoss(capacity int, logger logrus.FieldLogger) *PitBoss {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &PitBoss{
		capacity:   capacity,
		logger:     logger,
		rooms:      make(map[string]*Room),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
		stats:      make(chan chan Stats),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			p.logger.WithField("client", client.String()).Debug("client connected")
			room, found := p.rooms[client.RoomName]
			if !found {
				room = NewRoom(client.RoomName, p.capacity)
				room.StartShift()
				p.rooms[client.RoomName] = room
				p.logger.WithFields(logrus.Fields{
					"room":     client.RoomName,
					"capacity": p.capacity,
					"open":     len(p.rooms),
				}).Info("room opened")
			}

			room.AddClient(client)
		case client := <-p.disconnect:
			p.logger.WithField("client", client.String()).Debug("client disconnected")
			room, found := p.rooms[client.RoomName]
			if !found {
				p.logger.WithField("room", client.RoomName).WithField("type", "exception").Error("room not found")
				continue
			}

			if room.RemoveClient(client) {
				room.EndShift()
				delete(p.rooms, client.RoomName)
				p.logger.WithField("room", client.RoomName).WithField("open", len(p.rooms)).Info("room closed")
			}
		case reply := <-p.stats:
			s := Stats{Rooms: len(p.rooms)}
			for _, room := range p.rooms {
				s.Peers += len(room.Clients())
			}

			reply <- s
		}
	}
}

// Stats returns the number of open rooms and connected peers
// It blocks until the run loop answers
func (p *PitBoss) Stats() Stats {
	reply := make(chan Stats, 1)
	p.stats <- reply
	return <-reply
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}
