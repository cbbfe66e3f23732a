package session

import (
	"lucky-server/pkg/observer"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/participant"
	"lucky-server/pkg/protocol"

	"github.com/sirupsen/logrus"
)

// Slot identifies which participant reference changed
type Slot string

// Slot constants
const (
	SlotLocal  Slot = "local"
	SlotRemote Slot = "remote"
)

// SlotChange is raised when the local or remote participant is replaced
// Old or New may be nil
type SlotChange struct {
	Slot Slot
	Old  *participant.Participant
	New  *participant.Participant
}

// Session is the per-process view of a room
// It owns at most one local and one remote participant. It is not safe for concurrent use,
// every method must be called from the process's run loop
type Session struct {
	startingBalance int
	transport       participant.Transport
	logger          logrus.FieldLogger

	self      *protocol.PeerInfo
	authority string
	local     *participant.Participant
	remote    *participant.Participant

	slotChanged    observer.Subject[SlotChange]
	outcomeApplied observer.Subject[outcome.Outcome]
}

// New returns a session that has not been welcomed by the relay yet
func New(startingBalance int, transport participant.Transport, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Session{
		startingBalance: startingBalance,
		transport:       transport,
		logger:          logger,
	}
}

// Self returns this process's peer, or nil before the welcome
func (s *Session) Self() *protocol.PeerInfo {
	return s.self
}

// Local returns the participant owned by this process, or nil
func (s *Session) Local() *participant.Participant {
	return s.local
}

// Remote returns the other participant, or nil
func (s *Session) Remote() *participant.Participant {
	return s.remote
}

// Participants returns the present participants, local first
func (s *Session) Participants() []*participant.Participant {
	participants := make([]*participant.Participant, 0, 2)
	if s.local != nil {
		participants = append(participants, s.local)
	}

	if s.remote != nil {
		participants = append(participants, s.remote)
	}

	return participants
}

// AuthorityID returns the peer ID the relay elected as authority
func (s *Session) AuthorityID() string {
	return s.authority
}

// IsAuthority returns true if the local participant is owned here and this peer is the elected authority
func (s *Session) IsAuthority() bool {
	return s.local != nil && s.local.IsOwned() && s.self != nil && s.self.ID == s.authority
}

// OnSlotChanged registers fn for local and remote participant changes
func (s *Session) OnSlotChanged(fn func(SlotChange)) *observer.Subscription {
	return s.slotChanged.Subscribe(fn)
}

// OnOutcomeApplied registers fn for every outcome broadcast received
func (s *Session) OnOutcomeApplied(fn func(outcome.Outcome)) *observer.Subscription {
	return s.outcomeApplied.Subscribe(fn)
}

// HandleMessage applies a message delivered by the transport
func (s *Session) HandleMessage(msg *protocol.Message) {
	log := s.logger.WithField("method", msg.Method.String()).WithField("from", msg.From)
	log.Trace("handling message")

	switch msg.Method {
	case protocol.MethodWelcome:
		s.welcome(msg)
	case protocol.MethodPeerJoined:
		s.peerJoined(msg)
	case protocol.MethodPeerLeft:
		s.peerLeft(msg)
	case protocol.MethodRejected:
		log.WithField("reason", msg.Reason).Warn("relay rejected this peer")
	case protocol.MethodOutcomePicked:
		if !msg.Outcome.Valid() {
			log.Warn("ignoring invalid outcome")
			return
		}

		s.outcomeApplied.Publish(msg.Outcome)
	default:
		p := s.participantByID(msg.From)
		if p == nil {
			log.Debug("dropping update for unknown participant")
			return
		}

		if !p.Apply(msg) {
			log.Warn("unknown message")
		}
	}
}

// Clear drops both participants, as when leaving the room
func (s *Session) Clear() {
	s.setRemote(nil)
	s.setLocal(nil)
	s.self = nil
	s.authority = ""
}

func (s *Session) welcome(msg *protocol.Message) {
	if msg.Peer == nil {
		s.logger.Warn("welcome without a peer")
		return
	}

	s.self = msg.Peer
	s.authority = msg.Authority
	s.setLocal(participant.NewLocal(msg.Peer.ID, msg.Peer.Name, s.startingBalance, s.transport, s.logger))

	for _, peer := range msg.Peers {
		if peer.ID == s.self.ID {
			continue
		}

		s.addRemote(peer)
	}
}

func (s *Session) peerJoined(msg *protocol.Message) {
	if msg.Peer == nil {
		return
	}

	if msg.Authority != "" {
		s.authority = msg.Authority
	}

	if !s.addRemote(msg.Peer) {
		return
	}

	if s.local != nil {
		s.local.PushSnapshot(msg.Peer.ID)
	}
}

func (s *Session) peerLeft(msg *protocol.Message) {
	s.authority = msg.Authority
	if msg.Peer != nil && s.remote != nil && s.remote.ID == msg.Peer.ID {
		s.setRemote(nil)
	}
}

func (s *Session) addRemote(peer *protocol.PeerInfo) bool {
	if s.remote != nil {
		s.logger.WithField("peer", peer.ID).Warn("remote slot already taken")
		return false
	}

	s.setRemote(participant.NewReplica(peer.ID, peer.Name, s.startingBalance, s.logger))
	return true
}

func (s *Session) participantByID(id string) *participant.Participant {
	if s.local != nil && s.local.ID == id {
		return s.local
	}

	if s.remote != nil && s.remote.ID == id {
		return s.remote
	}

	return nil
}

func (s *Session) setLocal(p *participant.Participant) {
	if s.local == p {
		return
	}

	old := s.local
	s.local = p
	s.slotChanged.Publish(SlotChange{Slot: SlotLocal, Old: old, New: p})
}

func (s *Session) setRemote(p *participant.Participant) {
	if s.remote == p {
		return
	}

	old := s.remote
	s.remote = p
	s.slotChanged.Publish(SlotChange{Slot: SlotRemote, Old: old, New: p})
}
