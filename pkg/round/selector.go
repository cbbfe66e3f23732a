package round

import (
	"lucky-server/internal/rng"
	"lucky-server/pkg/outcome"
	"lucky-server/pkg/protocol"

	"github.com/sirupsen/logrus"
)

// Authority reports whether this process may draw the outcome
type Authority interface {
	IsAuthority() bool
}

// Broadcaster sends a remote call to every peer, the sender included
type Broadcaster interface {
	SendToAll(msg *protocol.Message) error
}

// Selector draws an outcome and broadcasts it
type Selector struct {
	authority Authority
	transport Broadcaster
	generator rng.Generator
	outcomes  []outcome.Outcome
	logger    logrus.FieldLogger
}

// NewSelector returns a selector drawing uniformly over every outcome
func NewSelector(authority Authority, transport Broadcaster, generator rng.Generator, logger logrus.FieldLogger) *Selector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Selector{
		authority: authority,
		transport: transport,
		generator: generator,
		outcomes:  outcome.All(),
		logger:    logger,
	}
}

// PickAndBroadcast draws an outcome and sends it to every peer
// It does nothing and returns false unless this process is the authority.
// The drawn outcome is not applied here, the authority receives its own broadcast like everyone else
func (s *Selector) PickAndBroadcast() (outcome.Outcome, bool) {
	if !s.authority.IsAuthority() {
		return 0, false
	}

	o := s.outcomes[s.generator.Intn(len(s.outcomes))]
	if err := s.transport.SendToAll(protocol.OutcomePicked(o)); err != nil {
		s.logger.WithError(err).Error("could not broadcast outcome")
		return o, false
	}

	s.logger.WithField("outcome", o.String()).Debug("outcome picked")
	return o, true
}
