package protocol

import (
	"encoding/json"
	"errors"
	"lucky-server/pkg/outcome"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("set-wager-amount", MethodSetWagerAmount.String())
	a.Equal("outcome-picked", MethodOutcomePicked.String())
	a.Equal("method(99)", Method(99).String())

	a.True(MethodWelcome.IsControl())
	a.True(MethodRejected.IsControl())
	a.False(MethodSetBalance.IsControl())
	a.False(MethodOutcomePicked.IsControl())
}

func TestMessage_JSON(t *testing.T) {
	a := assert.New(t)

	msg := SetWagerSelection(outcome.Green)
	msg.From = "peer-1"
	b, err := json.Marshal(msg)
	a.NoError(err)
	a.JSONEq(`{"method":"set-wager-selection","from":"peer-1","amount":0,"outcome":{"id":1,"name":"Green"},"flag":false}`, string(b))

	var decoded Message
	a.NoError(json.Unmarshal(b, &decoded))
	a.Equal(*msg, decoded)
}

func TestMessage_unknownMethod(t *testing.T) {
	a := assert.New(t)

	var decoded Message
	err := json.Unmarshal([]byte(`{"method":"bogus"}`), &decoded)
	a.Error(err)
	a.True(errors.Is(err, ErrUnknownMethod))

	_, err = json.Marshal(&Message{Method: Method(0)})
	a.Error(err)
}

func TestConstructors(t *testing.T) {
	a := assert.New(t)

	a.Equal(&Message{Method: MethodSetWagerAmount, Amount: 40}, SetWagerAmount(40))
	a.Equal(&Message{Method: MethodSetBalance, Amount: 140}, SetBalance(140))
	a.Equal(&Message{Method: MethodSetCommitted, Flag: true}, SetCommitted(true))
	a.Equal(&Message{Method: MethodOutcomePicked, Outcome: outcome.Red}, OutcomePicked(outcome.Red))

	self := &PeerInfo{ID: "b", Name: "Bob"}
	w := Welcome(self, []*PeerInfo{{ID: "a"}, self}, "a")
	a.Equal(MethodWelcome, w.Method)
	a.Equal("a", w.Authority)
	a.Len(w.Peers, 2)

	a.Equal("full", Rejected("full").Reason)
}

func TestMessage_String(t *testing.T) {
	a := assert.New(t)
	a.Equal("set-wager-amount(40) from= to=", SetWagerAmount(40).String())
	a.Equal("outcome-picked(Red) from= to=", OutcomePicked(outcome.Red).String())
	a.Equal("set-committed(true) from= to=", SetCommitted(true).String())
	a.Equal("rejected from= to=", Rejected("x").String())
}
