package round

import (
	"lucky-server/internal/schedtest"
	"lucky-server/pkg/loopback"
	"lucky-server/pkg/session"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testOptions = Options{
	NeutralPause: time.Second,
	RevealPause:  2 * time.Second,
}

// fixedGenerator always draws the same index
type fixedGenerator int

func (f fixedGenerator) Intn(n int) int {
	return int(f) % n
}

type seat struct {
	session     *session.Session
	coordinator *Coordinator
	endpoint    *loopback.Endpoint
}

func sit(t *testing.T, hub *loopback.Hub, name string, scheduler Scheduler, draw int) *seat {
	t.Helper()

	ep := hub.Endpoint(name)
	s := session.New(100, ep, nil)
	selector := NewSelector(s, ep, fixedGenerator(draw), nil)
	c := NewCoordinator(s, selector, scheduler, testOptions, nil)
	if !assert.NoError(t, ep.Join(s.HandleMessage)) {
		t.FailNow()
	}

	return &seat{
		session:     s,
		coordinator: c,
		endpoint:    ep,
	}
}

func newScheduler() *schedtest.Manual {
	return schedtest.New()
}
