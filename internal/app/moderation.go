package app

import (
	"sort"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type roomModeration struct {
	kicks   map[domain.DisplayName]*domain.KickRecord
	pending map[core.ConnID]*domain.EntryRequest
}

// ModerationStore holds kick records and pending entry requests per room.
type ModerationStore struct {
	rooms map[domain.RoomID]*roomModeration
}

func NewModerationStore() *ModerationStore {
	return &ModerationStore{rooms: make(map[domain.RoomID]*roomModeration)}
}

func (s *ModerationStore) room(id domain.RoomID) *roomModeration {
	m, ok := s.rooms[id]
	if !ok {
		m = &roomModeration{
			kicks:   make(map[domain.DisplayName]*domain.KickRecord),
			pending: make(map[core.ConnID]*domain.EntryRequest),
		}
		s.rooms[id] = m
	}
	return m
}

// Kick writes a fresh, unapproved record for name.
func (s *ModerationStore) Kick(id domain.RoomID, name, by domain.DisplayName, at time.Time) domain.KickRecord {
	rec := &domain.KickRecord{Name: name, KickTime: at, KickedBy: by}
	s.room(id).kicks[name] = rec
	return *rec
}

func (s *ModerationStore) Record(id domain.RoomID, name domain.DisplayName) (domain.KickRecord, bool) {
	m, ok := s.rooms[id]
	if !ok {
		return domain.KickRecord{}, false
	}
	rec, ok := m.kicks[name]
	if !ok {
		return domain.KickRecord{}, false
	}
	return *rec, true
}

func (s *ModerationStore) DeleteRecord(id domain.RoomID, name domain.DisplayName) {
	m, ok := s.rooms[id]
	if !ok {
		return
	}
	delete(m.kicks, name)
	s.dropIfIdle(id, m)
}

// Approve lets name past its cooldown. It reports whether a record existed.
func (s *ModerationStore) Approve(id domain.RoomID, name domain.DisplayName) bool {
	m, ok := s.rooms[id]
	if !ok {
		return false
	}
	rec, ok := m.kicks[name]
	if !ok {
		return false
	}
	rec.Approved = true
	return true
}

// AddPending queues req unless the connection already waits in this room.
func (s *ModerationStore) AddPending(id domain.RoomID, req domain.EntryRequest) bool {
	m := s.room(id)
	sid := core.ConnID(req.ConnID)
	if _, ok := m.pending[sid]; ok {
		return false
	}
	m.pending[sid] = &req
	return true
}

func (s *ModerationStore) PopPending(id domain.RoomID, sid core.ConnID) (domain.EntryRequest, bool) {
	m, ok := s.rooms[id]
	if !ok {
		return domain.EntryRequest{}, false
	}
	req, ok := m.pending[sid]
	if !ok {
		return domain.EntryRequest{}, false
	}
	delete(m.pending, sid)
	s.dropIfIdle(id, m)
	return *req, true
}

// Pending lists waiting requests oldest first.
func (s *ModerationStore) Pending(id domain.RoomID) []domain.EntryRequest {
	m, ok := s.rooms[id]
	if !ok {
		return nil
	}
	out := make([]domain.EntryRequest, 0, len(m.pending))
	for _, req := range m.pending {
		out = append(out, *req)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ConnID < out[j].ConnID
		}
		return out[i].RequestedAt.Before(out[j].RequestedAt)
	})
	return out
}

// Clear drops the whole entry for a room and returns the requests that
// were still waiting.
func (s *ModerationStore) Clear(id domain.RoomID) []domain.EntryRequest {
	pending := s.Pending(id)
	delete(s.rooms, id)
	return pending
}

func (s *ModerationStore) Has(id domain.RoomID) bool {
	_, ok := s.rooms[id]
	return ok
}

func (s *ModerationStore) dropIfIdle(id domain.RoomID, m *roomModeration) {
	if len(m.kicks) == 0 && len(m.pending) == 0 {
		delete(s.rooms, id)
	}
}
