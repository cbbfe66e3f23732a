package relay

import (
	"errors"
	"lucky-server/pkg/protocol"
	"time"
)

// ErrRoomFull is returned when a room is at capacity
var ErrRoomFull = errors.New("room is full")

// ErrDuplicatePeer is returned when a peer ID is already a member
var ErrDuplicatePeer = errors.New("peer is already in the room")

// Delivery is a message addressed to a single member
type Delivery struct {
	To      string
	Message *protocol.Message
}

// Roster tracks the members of a room in join order and decides where messages go
// The earliest member still present is the authority. Roster is not safe for concurrent use
type Roster struct {
	capacity int
	members  []*protocol.PeerInfo
	now      func() time.Time
}

// NewRoster returns an empty roster that admits up to capacity members
func NewRoster(capacity int) *Roster {
	return &Roster{
		capacity: capacity,
		now:      time.Now,
	}
}

// Len returns the number of members
func (r *Roster) Len() int {
	return len(r.members)
}

// Authority returns the ID of the authority, or an empty string if the room is empty
func (r *Roster) Authority() string {
	if len(r.members) == 0 {
		return ""
	}

	return r.members[0].ID
}

// Peers returns a copy of the members in join order
func (r *Roster) Peers() []*protocol.PeerInfo {
	peers := make([]*protocol.PeerInfo, len(r.members))
	for i, m := range r.members {
		peers[i] = r.snapshot(m)
	}

	return peers
}

// Has returns true if id is a member
func (r *Roster) Has(id string) bool {
	return r.index(id) >= 0
}

// Join admits a peer
// The joiner is welcomed with the full member list and every other member is told about the joiner
func (r *Roster) Join(id, name string) ([]Delivery, error) {
	if r.Has(id) {
		return nil, ErrDuplicatePeer
	}

	if len(r.members) >= r.capacity {
		return nil, ErrRoomFull
	}

	peer := &protocol.PeerInfo{
		ID:       id,
		Name:     name,
		JoinedAt: r.now(),
	}
	r.members = append(r.members, peer)

	authority := r.Authority()
	self := r.snapshot(peer)
	deliveries := []Delivery{{
		To:      id,
		Message: protocol.Welcome(self, r.Peers(), authority),
	}}

	for _, m := range r.members {
		if m.ID == id {
			continue
		}

		deliveries = append(deliveries, Delivery{
			To:      m.ID,
			Message: protocol.PeerJoined(self, authority),
		})
	}

	return deliveries, nil
}

// Leave removes a member and tells everyone left, along with the new authority
// It returns false if id was not a member
func (r *Roster) Leave(id string) ([]Delivery, bool) {
	i := r.index(id)
	if i < 0 {
		return nil, false
	}

	peer := r.members[i]
	r.members = append(r.members[:i], r.members[i+1:]...)

	authority := r.Authority()
	left := r.snapshot(peer)
	left.IsAuthority = false

	deliveries := make([]Delivery, 0, len(r.members))
	for _, m := range r.members {
		deliveries = append(deliveries, Delivery{
			To:      m.ID,
			Message: protocol.PeerLeft(left, authority),
		})
	}

	return deliveries, true
}

// Route addresses a message sent by a member
// A message with a recipient goes to that member only, otherwise it goes to every member, the sender included.
// From is always overwritten with the sender so a member cannot speak for another
func (r *Roster) Route(from string, msg *protocol.Message) []Delivery {
	if !r.Has(from) || msg == nil {
		return nil
	}

	if msg.Method.IsControl() {
		return nil
	}

	if msg.To != "" {
		if !r.Has(msg.To) {
			return nil
		}

		m := *msg
		m.From = from
		return []Delivery{{To: msg.To, Message: &m}}
	}

	deliveries := make([]Delivery, 0, len(r.members))
	for _, member := range r.members {
		m := *msg
		m.From = from
		deliveries = append(deliveries, Delivery{To: member.ID, Message: &m})
	}

	return deliveries
}

func (r *Roster) index(id string) int {
	for i, m := range r.members {
		if m.ID == id {
			return i
		}
	}

	return -1
}

func (r *Roster) snapshot(p *protocol.PeerInfo) *protocol.PeerInfo {
	c := *p
	c.IsAuthority = p.ID == r.Authority()
	return &c
}
