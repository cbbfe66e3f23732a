package protocol

import (
	"errors"
	"fmt"
	"lucky-server/pkg/outcome"
	"time"
)

// ErrUnknownMethod is returned when decoding a method name that does not exist
var ErrUnknownMethod = errors.New("unknown method")

// Method identifies a remote call
type Method int

// Method constants
// The relay control methods are only ever sent by the relay
const (
	MethodWelcome Method = iota + 1
	MethodPeerJoined
	MethodPeerLeft
	MethodRejected

	MethodSetWagerAmount
	MethodSetWagerSelection
	MethodSetBalance
	MethodSetCommitted
	MethodOutcomePicked
)

var methodNames = map[Method]string{
	MethodWelcome:           "welcome",
	MethodPeerJoined:        "peer-joined",
	MethodPeerLeft:          "peer-left",
	MethodRejected:          "rejected",
	MethodSetWagerAmount:    "set-wager-amount",
	MethodSetWagerSelection: "set-wager-selection",
	MethodSetBalance:        "set-balance",
	MethodSetCommitted:      "set-committed",
	MethodOutcomePicked:     "outcome-picked",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}

	return fmt.Sprintf("method(%d)", int(m))
}

// IsControl returns true for methods originated by the relay
func (m Method) IsControl() bool {
	return m >= MethodWelcome && m <= MethodRejected
}

// MarshalText encodes the method name
func (m Method) MarshalText() ([]byte, error) {
	name, ok := methodNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(m))
	}

	return []byte(name), nil
}

// UnmarshalText decodes the method name
func (m *Method) UnmarshalText(b []byte) error {
	for method, name := range methodNames {
		if name == string(b) {
			*m = method
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrUnknownMethod, string(b))
}

// PeerInfo describes a member of a room
type PeerInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	JoinedAt    time.Time `json:"joinedAt"`
	IsAuthority bool      `json:"isAuthority"`
}

// Message is a single remote call
// From is stamped by the relay. An empty To addresses every peer, including the sender
type Message struct {
	Method  Method          `json:"method"`
	From    string          `json:"from,omitempty"`
	To      string          `json:"to,omitempty"`
	Amount  int             `json:"amount"`
	Outcome outcome.Outcome `json:"outcome"`
	Flag    bool            `json:"flag"`

	// relay control fields
	Peer      *PeerInfo   `json:"peer,omitempty"`
	Peers     []*PeerInfo `json:"peers,omitempty"`
	Authority string      `json:"authority,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

func (m *Message) String() string {
	switch m.Method {
	case MethodSetWagerAmount, MethodSetBalance:
		return fmt.Sprintf("%s(%d) from=%s to=%s", m.Method, m.Amount, m.From, m.To)
	case MethodSetWagerSelection, MethodOutcomePicked:
		return fmt.Sprintf("%s(%s) from=%s to=%s", m.Method, m.Outcome, m.From, m.To)
	case MethodSetCommitted:
		return fmt.Sprintf("%s(%t) from=%s to=%s", m.Method, m.Flag, m.From, m.To)
	}

	return fmt.Sprintf("%s from=%s to=%s", m.Method, m.From, m.To)
}

// SetWagerAmount returns a message replicating a wager amount
func SetWagerAmount(amount int) *Message {
	return &Message{Method: MethodSetWagerAmount, Amount: amount}
}

// SetWagerSelection returns a message replicating a wager selection
func SetWagerSelection(o outcome.Outcome) *Message {
	return &Message{Method: MethodSetWagerSelection, Outcome: o}
}

// SetBalance returns a message replicating a balance
func SetBalance(balance int) *Message {
	return &Message{Method: MethodSetBalance, Amount: balance}
}

// SetCommitted returns a message replicating a commit flag
func SetCommitted(committed bool) *Message {
	return &Message{Method: MethodSetCommitted, Flag: committed}
}

// OutcomePicked returns the message the authority broadcasts after a draw
func OutcomePicked(o outcome.Outcome) *Message {
	return &Message{Method: MethodOutcomePicked, Outcome: o}
}

// Welcome is sent by the relay to a peer that just joined
// peers includes the joiner itself
func Welcome(self *PeerInfo, peers []*PeerInfo, authority string) *Message {
	return &Message{Method: MethodWelcome, Peer: self, Peers: peers, Authority: authority}
}

// PeerJoined is sent by the relay to existing members when a new peer joins
func PeerJoined(peer *PeerInfo, authority string) *Message {
	return &Message{Method: MethodPeerJoined, Peer: peer, Authority: authority}
}

// PeerLeft is sent by the relay to remaining members when a peer leaves
func PeerLeft(peer *PeerInfo, authority string) *Message {
	return &Message{Method: MethodPeerLeft, Peer: peer, Authority: authority}
}

// Rejected is sent by the relay when a peer cannot join
func Rejected(reason string) *Message {
	return &Message{Method: MethodRejected, Reason: reason}
}
