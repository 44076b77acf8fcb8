package app

import (
	"sort"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// RoomManager is the room store. Rooms are created on first admission and
// deleted by the Coordinator the moment they empty.
type RoomManager struct {
	rooms map[domain.RoomID]*core.Room
}

func NewRoomManager() *RoomManager {
	return &RoomManager{rooms: make(map[domain.RoomID]*core.Room)}
}

func (m *RoomManager) GetOrCreate(id domain.RoomID) *core.Room {
	if room, ok := m.rooms[id]; ok {
		return room
	}
	room := core.NewRoom(id)
	m.rooms[id] = room
	return room
}

func (m *RoomManager) Get(id domain.RoomID) (*core.Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

func (m *RoomManager) Delete(id domain.RoomID) {
	delete(m.rooms, id)
}

func (m *RoomManager) Len() int { return len(m.rooms) }

// IDs returns room ids sorted for stable output.
func (m *RoomManager) IDs() []domain.RoomID {
	out := make([]domain.RoomID, 0, len(m.rooms))
	for id := range m.rooms {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
