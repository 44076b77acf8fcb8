package core

import (
	"sort"

	"github.com/dkeye/Meet/internal/domain"
)

// Room is the in-memory member map of one meeting.
// It is not safe for concurrent use; the owner serializes access.
type Room struct {
	ID      domain.RoomID
	members map[ConnID]domain.DisplayName
	order   map[ConnID]uint64
	seq     uint64
}

func NewRoom(id domain.RoomID) *Room {
	return &Room{
		ID:      id,
		members: make(map[ConnID]domain.DisplayName),
		order:   make(map[ConnID]uint64),
	}
}

// AddMember inserts or renames sid.
func (r *Room) AddMember(sid ConnID, name domain.DisplayName) {
	if _, ok := r.members[sid]; !ok {
		r.seq++
		r.order[sid] = r.seq
	}
	r.members[sid] = name
}

// RemoveMember deletes sid and returns its display name.
func (r *Room) RemoveMember(sid ConnID) (domain.DisplayName, bool) {
	name, ok := r.members[sid]
	if !ok {
		return "", false
	}
	delete(r.members, sid)
	delete(r.order, sid)
	return name, true
}

func (r *Room) MemberCount() int { return len(r.members) }

func (r *Room) Empty() bool { return len(r.members) == 0 }

// Members lists members in join order, skipping exclude.
func (r *Room) Members(exclude ConnID) []MemberDTO {
	out := make([]MemberDTO, 0, len(r.members))
	for sid, name := range r.members {
		if sid == exclude {
			continue
		}
		dto := MemberDTO{ID: sid, DisplayName: name, Trainer: name.IsTrainer()}
		if id, ok := name.AttendanceID(); ok {
			dto.AttendanceID = id
		}
		out = append(out, dto)
	}
	sort.Slice(out, func(i, j int) bool { return r.order[out[i].ID] < r.order[out[j].ID] })
	return out
}

// IDs returns member ids in join order.
func (r *Room) IDs() []ConnID {
	ms := r.Members("")
	out := make([]ConnID, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

// HasMemberWhere reports whether any member name satisfies pred.
func (r *Room) HasMemberWhere(pred func(domain.DisplayName) bool) bool {
	for _, name := range r.members {
		if pred(name) {
			return true
		}
	}
	return false
}

// MembersWhere returns ids of members whose name satisfies pred, in join order.
func (r *Room) MembersWhere(pred func(domain.DisplayName) bool) []ConnID {
	var out []ConnID
	for _, m := range r.Members("") {
		if pred(m.DisplayName) {
			out = append(out, m.ID)
		}
	}
	return out
}
