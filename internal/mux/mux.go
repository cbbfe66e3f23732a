package mux

import (
	"context"
	"errors"
	"lucky-server/internal/config"
	"lucky-server/internal/util"
	"lucky-server/pkg/relay"
	"net/http"
	"strings"
	"unicode/utf8"

	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxPeerNameKey ctxKey = iota
	ctxRoomNameKey
)

const maxNameLength = 32

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *relay.PitBoss

	// store for testing purposes
	roomRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string) *Mux {
	pitBoss := relay.NewPitBoss(config.Instance().Game.MaxParticipants, nil)
	pitBoss.StartShift()

	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
	}

	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	{
		this.roomRouter = this.Router.PathPrefix("/room/{room:[A-Za-z0-9_-]{1,64}}").Subrouter()
		this.roomRouter.Use(this.roomMiddleware)

		r := this.roomRouter
		r.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomWS())
	}

	return this
}

// roomMiddleware resolves the room and the display name the peer asked for
// A peer that does not pick a name is given a random one
func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomName := gmux.Vars(r)["room"]

		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			name = util.GetRandomName()
		}

		if utf8.RuneCountInString(name) > maxNameLength {
			writeJSONError(w, http.StatusBadRequest, errors.New("name is too long"))
			return
		}

		ctx := context.WithValue(r.Context(), ctxRoomNameKey, roomName)
		ctx = context.WithValue(ctx, ctxPeerNameKey, name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
