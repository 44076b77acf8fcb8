package app

import (
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// authorize checks that sid is a member of room and, when enforced, a trainer.
func (c *Coordinator) authorize(sid core.ConnID, room domain.RoomID) (domain.DisplayName, error) {
	if _, ok := c.registry.Get(sid); !ok {
		return "", ErrUnknownConnection
	}
	current, name, ok := c.registry.RoomOf(sid)
	if !ok || current != room {
		return "", ErrNotInRoom
	}
	if c.enforceRoles && !name.IsTrainer() {
		return "", ErrNotTrainer
	}
	return name, nil
}

// Kick removes target from the kicker's room and starts the rejoin cooldown
// for the target's display name.
func (c *Coordinator) Kick(kicker, target core.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, _, ok := c.registry.RoomOf(kicker)
	if !ok {
		return ErrNotInRoom
	}
	kickerName, err := c.authorize(kicker, room)
	if err != nil {
		return err
	}
	targetRoom, targetName, ok := c.registry.RoomOf(target)
	if !ok || targetRoom != room || target == kicker {
		log.Debug().Str("module", "app.moderation").Str("target", string(target)).Msg("kick target not in room")
		return nil
	}

	c.send(target, EventKickedFromMeeting, kickedFromMeeting{
		RoomID:     room,
		KickerName: kickerName,
		Message:    fmt.Sprintf("You have been removed from the meeting by %s", kickerName),
	})
	c.broadcast(room, target, EventUserKicked, userKicked{UserID: target, UserName: targetName, KickerName: kickerName})
	c.broadcast(room, target, EventUserLeft, userRef{UserID: target})
	c.broadcast(room, target, EventScreenShareStopped, userRef{UserID: target})

	// Removal runs before the record is written: a kicked trainer clears the
	// room's moderation state on the way out.
	c.removeMember(target, false)
	if _, ok := c.rooms.Get(room); ok {
		c.moderation.Kick(room, targetName, kickerName, c.now())
	}
	c.registry.Cancel(target)

	log.Info().Str("module", "app.moderation").Str("room", string(room)).Str("kicker", string(kickerName)).Str("target", string(targetName)).Msg("participant kicked")
	return nil
}

// ApproveRejoin lifts the cooldown of name and tells the requester to retry.
func (c *Coordinator) ApproveRejoin(trainer core.ConnID, room domain.RoomID, name domain.DisplayName, requester core.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	trainerName, err := c.authorize(trainer, room)
	if err != nil {
		return err
	}
	found := c.moderation.Approve(room, name)
	c.send(requester, EventRejoinApproved, roomNotice{
		RoomID:  room,
		Message: fmt.Sprintf("%s approved your request. You can rejoin the meeting now.", trainerName),
	})
	log.Info().Str("module", "app.moderation").Str("room", string(room)).Str("name", string(name)).Bool("record", found).Msg("rejoin approved")
	return nil
}

// DenyRejoin leaves the record alone; the cooldown keeps running.
func (c *Coordinator) DenyRejoin(trainer core.ConnID, room domain.RoomID, name domain.DisplayName, requester core.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.authorize(trainer, room); err != nil {
		return err
	}
	c.send(requester, EventRejoinDenied, roomNotice{
		RoomID:  room,
		Message: "Your request to rejoin the meeting was denied.",
	})
	log.Info().Str("module", "app.moderation").Str("room", string(room)).Str("name", string(name)).Msg("rejoin denied")
	return nil
}

func (c *Coordinator) ApproveEntry(trainer core.ConnID, room domain.RoomID, target core.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.authorize(trainer, room); err != nil {
		return err
	}
	req, ok := c.moderation.PopPending(room, target)
	if !ok {
		return ErrNoPendingRequest
	}
	c.admit(target, room, req.Name)
	c.send(target, EventEntryApproved, roomNotice{RoomID: room, Message: "The trainer approved your entry."})
	return nil
}

func (c *Coordinator) DenyEntry(trainer core.ConnID, room domain.RoomID, target core.ConnID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.authorize(trainer, room); err != nil {
		return err
	}
	if _, ok := c.moderation.PopPending(room, target); !ok {
		return ErrNoPendingRequest
	}
	c.registry.ClearPending(target)
	c.send(target, EventEntryDenied, roomNotice{RoomID: room, Message: "The trainer denied your entry."})
	log.Info().Str("module", "app.moderation").Str("room", string(room)).Str("target", string(target)).Msg("entry denied")
	return nil
}

// EndMeeting closes the room for everyone. Members keep their transports
// but lose their membership; every cooldown in the room is forgotten.
func (c *Coordinator) EndMeeting(trainer core.ConnID, room domain.RoomID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, err := c.authorize(trainer, room)
	if err != nil {
		return err
	}
	r, ok := c.rooms.Get(room)
	if !ok {
		return nil
	}
	c.broadcast(room, "", EventMeetingEnded, roomNotice{
		RoomID:  room,
		Message: fmt.Sprintf("The meeting has been ended by %s.", name),
	})
	c.clearModeration(room)
	for _, sid := range r.IDs() {
		r.RemoveMember(sid)
		c.registry.ClearRoom(sid)
	}
	c.rooms.Delete(room)
	log.Info().Str("module", "app.moderation").Str("room", string(room)).Str("by", string(name)).Msg("meeting ended")
	return nil
}
