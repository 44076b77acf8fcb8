package app

import (
	"context"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Room    domain.RoomID
	Name    domain.DisplayName
	Pending domain.RoomID
	Signal  core.SignalConnection
	Cancel  context.CancelFunc
	Client  string
}

// Registry maps live connections to their room and display name.
// Access is serialized by the Coordinator.
type Registry struct {
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

func (r *Registry) Bind(sid core.ConnID, sig core.SignalConnection, cancel context.CancelFunc, client string) {
	r.conns[sid] = &connEntry{Signal: sig, Cancel: cancel, Client: client}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("client", client).Msg("bound connection")
}

func (r *Registry) Unbind(sid core.ConnID) (*connEntry, bool) {
	e, ok := r.conns[sid]
	if ok {
		delete(r.conns, sid)
		log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbound connection")
	}
	return e, ok
}

func (r *Registry) Get(sid core.ConnID) (*connEntry, bool) {
	e, ok := r.conns[sid]
	return e, ok
}

// RoomOf returns the admitted room and name of sid.
func (r *Registry) RoomOf(sid core.ConnID) (domain.RoomID, domain.DisplayName, bool) {
	e, ok := r.conns[sid]
	if !ok || e.Room == "" {
		return "", "", false
	}
	return e.Room, e.Name, true
}

func (r *Registry) SetRoom(sid core.ConnID, room domain.RoomID, name domain.DisplayName) bool {
	e, ok := r.conns[sid]
	if !ok {
		return false
	}
	e.Room = room
	e.Name = name
	e.Pending = ""
	return true
}

func (r *Registry) ClearRoom(sid core.ConnID) {
	if e, ok := r.conns[sid]; ok {
		e.Room = ""
	}
}

func (r *Registry) SetPending(sid core.ConnID, room domain.RoomID, name domain.DisplayName) {
	if e, ok := r.conns[sid]; ok {
		e.Pending = room
		e.Name = name
	}
}

func (r *Registry) ClearPending(sid core.ConnID) {
	if e, ok := r.conns[sid]; ok {
		e.Pending = ""
	}
}

func (r *Registry) Signal(sid core.ConnID) (core.SignalConnection, bool) {
	e, ok := r.conns[sid]
	if !ok || e.Signal == nil {
		return nil, false
	}
	return e.Signal, true
}

// Cancel tears down the transport of sid. Cleanup runs when the
// adapter reports the disconnect.
func (r *Registry) Cancel(sid core.ConnID) bool {
	e, ok := r.conns[sid]
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled connection")
	return true
}

func (r *Registry) Len() int { return len(r.conns) }
