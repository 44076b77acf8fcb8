package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

const DefaultKickCooldown = 2 * time.Hour

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrNotInRoom         = errors.New("not a member of the room")
	ErrNotTrainer        = errors.New("trainer role required")
	ErrNoPendingRequest  = errors.New("no pending entry request")
)

type Options struct {
	KickCooldown       time.Duration
	EnforceTrainerRole bool
	Policy             Policy
	Now                func() time.Time
}

// Coordinator owns the connection registry, the room store and the
// moderation store. One mutex serializes every event so a join, kick or
// disconnect on the same room can never interleave.
type Coordinator struct {
	mu         sync.Mutex
	registry   *Registry
	rooms      *RoomManager
	moderation *ModerationStore

	policy       Policy
	cooldown     time.Duration
	enforceRoles bool
	now          func() time.Time
}

func NewCoordinator(opts Options) *Coordinator {
	if opts.KickCooldown <= 0 {
		opts.KickCooldown = DefaultKickCooldown
	}
	if opts.Policy == nil {
		opts.Policy = DropPolicy{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		registry:     NewRegistry(),
		rooms:        NewRoomManager(),
		moderation:   NewModerationStore(),
		policy:       opts.Policy,
		cooldown:     opts.KickCooldown,
		enforceRoles: opts.EnforceTrainerRole,
		now:          opts.Now,
	}
}

// Connect registers a freshly opened transport. It is not in any room yet.
func (c *Coordinator) Connect(sid core.ConnID, sig core.SignalConnection, cancel context.CancelFunc, client string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Bind(sid, sig, cancel, client)
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Msg("connected")
}

// Disconnect purges sid everywhere. Unknown ids are ignored.
func (c *Coordinator) Disconnect(sid core.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.registry.Get(sid); !ok {
		return
	}
	c.dropPending(sid)
	c.removeMember(sid, true)
	c.registry.Unbind(sid)
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Msg("disconnected")
}

// Leave detaches sid from room without closing its transport.
func (c *Coordinator) Leave(sid core.ConnID, room domain.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.registry.Get(sid); ok && e.Pending == room {
		c.dropPending(sid)
	}
	current, _, ok := c.registry.RoomOf(sid)
	if !ok || current != room {
		log.Debug().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(room)).Msg("leave for stale room")
		return
	}
	c.removeMember(sid, true)
}

// admit places sid in room, announces it to the others and hands it the roster.
func (c *Coordinator) admit(sid core.ConnID, room domain.RoomID, name domain.DisplayName) {
	r := c.rooms.GetOrCreate(room)
	r.AddMember(sid, name)
	c.registry.SetRoom(sid, room, name)

	c.broadcast(room, sid, EventUserJoined, userJoined{UserID: sid, DisplayName: name})
	c.sendRoster(sid, room)
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(room)).Str("name", string(name)).Int("members", r.MemberCount()).Msg("admitted")
}

// removeMember detaches sid from its room and returns the departed name.
// An emptied room is deleted together with its moderation state; a
// departing trainer lifts all moderation state of the room.
func (c *Coordinator) removeMember(sid core.ConnID, announce bool) (domain.RoomID, domain.DisplayName, bool) {
	roomID, _, ok := c.registry.RoomOf(sid)
	if !ok {
		return "", "", false
	}
	c.registry.ClearRoom(sid)
	room, ok := c.rooms.Get(roomID)
	if !ok {
		return "", "", false
	}
	name, ok := room.RemoveMember(sid)
	if !ok {
		return "", "", false
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(roomID)).Msg("removed from room")

	if announce {
		c.broadcast(roomID, "", EventUserLeft, userRef{UserID: sid})
	}
	if room.Empty() {
		c.rooms.Delete(roomID)
		c.clearModeration(roomID)
		log.Info().Str("module", "app.coordinator").Str("room", string(roomID)).Msg("room deleted")
		return roomID, name, true
	}
	if name.IsTrainer() {
		c.broadcast(roomID, "", EventTrainerLeft, trainerLeft{
			UserID:      sid,
			DisplayName: name,
			Message:     "The trainer has left the meeting. Rejoin restrictions are lifted.",
		})
		c.clearModeration(roomID)
	}
	return roomID, name, true
}

// clearModeration wipes a room's moderation entry and turns away whoever
// was still waiting for approval.
func (c *Coordinator) clearModeration(room domain.RoomID) {
	for _, req := range c.moderation.Clear(room) {
		sid := core.ConnID(req.ConnID)
		c.registry.ClearPending(sid)
		c.send(sid, EventEntryDenied, roomNotice{RoomID: room, Message: "No trainer is available to approve your entry. Please try again."})
	}
}

func (c *Coordinator) dropPending(sid core.ConnID) {
	e, ok := c.registry.Get(sid)
	if !ok || e.Pending == "" {
		return
	}
	c.moderation.PopPending(e.Pending, sid)
	c.registry.ClearPending(sid)
}

// send is fire-and-forget; failures are handled by the backpressure policy.
func (c *Coordinator) send(sid core.ConnID, event string, payload any) {
	sig, ok := c.registry.Signal(sid)
	if !ok {
		log.Debug().Str("module", "app.coordinator").Str("sid", string(sid)).Str("event", event).Msg("send to unknown connection dropped")
		return
	}
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("event", event).Msg("encode")
		return
	}
	c.deliver(sid, sig, event, frame)
}

func (c *Coordinator) deliver(sid core.ConnID, sig core.SignalConnection, event string, frame core.Frame) {
	err := sig.TrySend(frame)
	switch {
	case err == nil:
	case errors.Is(err, core.ErrBackpressure):
		room, _, _ := c.registry.RoomOf(sid)
		action := c.policy.OnBackPressure(room, sid)
		log.Warn().Str("module", "app.coordinator").Str("sid", string(sid)).Str("event", event).Int("action", int(action)).Msg("outbound queue full")
		if action == Disconnect {
			c.registry.Cancel(sid)
		}
	default:
		log.Debug().Err(err).Str("module", "app.coordinator").Str("sid", string(sid)).Str("event", event).Msg("send failed")
	}
}

// broadcast sends one frame to every member of room except skip.
func (c *Coordinator) broadcast(room domain.RoomID, skip core.ConnID, event string, payload any) int {
	r, ok := c.rooms.Get(room)
	if !ok {
		return 0
	}
	frame, err := Encode(event, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("event", event).Msg("encode")
		return 0
	}
	sent := 0
	for _, sid := range r.IDs() {
		if sid == skip {
			continue
		}
		sig, ok := c.registry.Signal(sid)
		if !ok {
			continue
		}
		c.deliver(sid, sig, event, frame)
		sent++
	}
	log.Debug().Str("module", "app.coordinator").Str("room", string(room)).Str("event", event).Int("sent_to", sent).Msg("broadcast")
	return sent
}

// notifyTrainers sends to every trainer currently in room.
func (c *Coordinator) notifyTrainers(room domain.RoomID, event string, payload any) int {
	r, ok := c.rooms.Get(room)
	if !ok {
		return 0
	}
	trainers := r.MembersWhere(domain.DisplayName.IsTrainer)
	for _, sid := range trainers {
		c.send(sid, event, payload)
	}
	return len(trainers)
}
