package round

import (
	"lucky-server/pkg/participant"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllCommitted(t *testing.T) {
	a := assert.New(t)

	p1 := participant.NewReplica("a", "Alice", 100, nil)
	p2 := participant.NewReplica("b", "Bob", 100, nil)

	a.True(AllCommitted())
	a.True(AllCommitted(nil, nil))
	a.False(AllCommitted(p1, p2))

	p1.ApplyCommit(true)
	a.False(AllCommitted(p1, p2))
	a.True(AllCommitted(p1, nil))
	a.True(AllCommitted(p1))

	p2.ApplyCommit(true)
	a.True(AllCommitted(p1, p2))

	p1.ApplyCommit(false)
	a.False(AllCommitted(p1, p2))
}
