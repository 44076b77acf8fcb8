package app

import (
	"fmt"
	"math"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Admission is the outcome of one join attempt.
type Admission int

const (
	Admitted Admission = iota
	Queued
	AlreadyQueued
	CooldownActive
)

func (a Admission) String() string {
	switch a {
	case Admitted:
		return "admitted"
	case Queued:
		return "queued"
	case AlreadyQueued:
		return "already_queued"
	case CooldownActive:
		return "cooldown_active"
	}
	return "unknown"
}

// Join runs the admission checks for sid in order: kick cooldown, trainer
// bypass, unmoderated room, then the approval queue. The cooldown check runs
// first, so a kicked trainer name is rejected like anyone else. A record that
// no longer blocks is consumed here, whether it expired or was approved.
func (c *Coordinator) Join(sid core.ConnID, room domain.RoomID, name domain.DisplayName) (Admission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.registry.Get(sid)
	if !ok {
		return 0, ErrUnknownConnection
	}
	logger := log.With().Str("module", "app.admission").Str("sid", string(sid)).Str("room", string(room)).Str("name", string(name)).Logger()

	current, _, inRoom := c.registry.RoomOf(sid)
	if inRoom && current == room {
		c.rooms.GetOrCreate(room).AddMember(sid, name)
		c.registry.SetRoom(sid, room, name)
		c.sendRoster(sid, room)
		logger.Info().Msg("already a member, roster resent")
		return Admitted, nil
	}

	// A rejected join leaves the current membership and any pending
	// request alone.
	now := c.now()
	rec, hasRecord := c.moderation.Record(room, name)
	if hasRecord && rec.Blocks(now, c.cooldown) {
		c.rejectCooldown(sid, room, name, rec, now)
		logger.Info().Time("kick_time", rec.KickTime).Msg("join rejected, cooldown active")
		return CooldownActive, nil
	}

	if inRoom {
		c.removeMember(sid, true)
	}
	if entry.Pending != "" && entry.Pending != room {
		c.dropPending(sid)
	}

	if hasRecord {
		c.moderation.DeleteRecord(room, name)
		if rec.Approved && !rec.Expired(now, c.cooldown) {
			// A trainer already let this name back in.
			c.admit(sid, room, name)
			logger.Info().Msg("rejoin admitted on approval")
			return Admitted, nil
		}
	}

	if name.IsTrainer() {
		c.admit(sid, room, name)
		return Admitted, nil
	}

	r, exists := c.rooms.Get(room)
	if !exists || !r.HasMemberWhere(domain.DisplayName.IsTrainer) {
		c.admit(sid, room, name)
		return Admitted, nil
	}

	req := domain.EntryRequest{ConnID: string(sid), Name: name, RequestedAt: now}
	if !c.moderation.AddPending(room, req) {
		logger.Debug().Msg("entry request already pending")
		return AlreadyQueued, nil
	}
	c.registry.SetPending(sid, room, name)
	c.send(sid, EventEntryPermissionRequired, roomNotice{
		RoomID:  room,
		Message: "Waiting for the trainer to approve your entry.",
	})
	n := c.notifyTrainers(room, EventEntryRequest, entryRequest{
		UserID:      sid,
		DisplayName: name,
		RequestedAt: now.UnixMilli(),
	})
	logger.Info().Int("trainers", n).Msg("entry request queued")
	return Queued, nil
}

func (c *Coordinator) rejectCooldown(sid core.ConnID, room domain.RoomID, name domain.DisplayName, rec domain.KickRecord, now time.Time) {
	minutes := remainingMinutes(rec.Remaining(now, c.cooldown))
	c.send(sid, EventKickPermissionRequired, cooldownActive{
		Message:       fmt.Sprintf("You were removed from this meeting by %s. You can rejoin in %d minutes or when a trainer approves your request.", rec.KickedBy, minutes),
		RemainingTime: minutes,
		KickedBy:      rec.KickedBy,
	})
	c.notifyTrainers(room, EventRejoinRequest, rejoinRequest{
		UserID:        sid,
		DisplayName:   name,
		RemainingTime: minutes,
		KickedBy:      rec.KickedBy,
	})
}

func (c *Coordinator) sendRoster(sid core.ConnID, room domain.RoomID) {
	r, ok := c.rooms.Get(room)
	if !ok {
		return
	}
	roster := roomUsers{Users: []userJoined{}}
	for _, m := range r.Members(sid) {
		roster.Users = append(roster.Users, userJoined{UserID: m.ID, DisplayName: m.DisplayName})
	}
	c.send(sid, EventRoomUsers, roster)
}

func remainingMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}
