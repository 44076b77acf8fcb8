package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// Rooms lists live rooms for the REST view.
func (c *Coordinator) Rooms() []core.RoomInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.RoomInfo, 0, c.rooms.Len())
	for _, id := range c.rooms.IDs() {
		r, _ := c.rooms.Get(id)
		out = append(out, core.RoomInfo{
			ID:          id,
			MemberCount: r.MemberCount(),
			HasTrainer:  r.HasMemberWhere(domain.DisplayName.IsTrainer),
			Pending:     len(c.moderation.Pending(id)),
		})
	}
	return out
}

// Members returns the roster of room in join order.
func (c *Coordinator) Members(room domain.RoomID) ([]core.MemberDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rooms.Get(room)
	if !ok {
		return nil, false
	}
	return r.Members(""), true
}

// PendingEntries lists requests waiting in room, oldest first.
func (c *Coordinator) PendingEntries(room domain.RoomID) []domain.EntryRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moderation.Pending(room)
}

// KickRecord exposes the current record for name in room.
func (c *Coordinator) KickRecord(room domain.RoomID, name domain.DisplayName) (domain.KickRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moderation.Record(room, name)
}

// HasModeration reports whether room has any moderation entry.
func (c *Coordinator) HasModeration(room domain.RoomID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.moderation.Has(room)
}

// RoomOf reports the current room of sid.
func (c *Coordinator) RoomOf(sid core.ConnID) (domain.RoomID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, _, ok := c.registry.RoomOf(sid)
	return room, ok
}

type Stats struct {
	Connections int `json:"connections"`
	Rooms       int `json:"rooms"`
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Connections: c.registry.Len(), Rooms: c.rooms.Len()}
}
