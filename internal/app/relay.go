package app

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

// Relay forwards a negotiation payload from one connection to another. Only
// the origin id is rewritten; the payload passes through uninterpreted.
// Frames for unknown targets are dropped.
func (c *Coordinator) Relay(from core.ConnID, kind RelayKind, target core.ConnID, payload json.RawMessage) {
	field := kind.field()
	if field == "" {
		log.Warn().Str("module", "app.relay").Str("kind", string(kind)).Msg("unknown relay kind")
		return
	}
	if !json.Valid(payload) {
		log.Warn().Str("module", "app.relay").Str("from", string(from)).Str("kind", string(kind)).Msg("relay payload is not JSON, dropped")
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	sig, ok := c.registry.Signal(target)
	if !ok {
		log.Debug().Str("module", "app.relay").Str("from", string(from)).Str("to", string(target)).Str("kind", string(kind)).Msg("target gone, dropped")
		return
	}
	frame, err := encodeRelay(kind, from, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.relay").Str("kind", string(kind)).Msg("encode")
		return
	}
	c.deliver(target, sig, string(kind), frame)
}

// StatusUpdate tells the sender's room about its media toggles.
func (c *Coordinator) StatusUpdate(from core.ConnID, audio, video json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, _, ok := c.registry.RoomOf(from)
	if !ok {
		return
	}
	c.broadcast(room, from, EventUserStatusUpdate, statusUpdate{UserID: from, AudioEnabled: audio, VideoEnabled: video})
}

func (c *Coordinator) ScreenShare(from core.ConnID, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, _, ok := c.registry.RoomOf(from)
	if !ok {
		return
	}
	event := EventScreenShareStopped
	if started {
		event = EventScreenShareStarted
	}
	c.broadcast(room, from, event, userRef{UserID: from})
}

// Chat delivers a message to the whole room, sender included. The server
// stamps the time and the sender's registered name.
func (c *Coordinator) Chat(from core.ConnID, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	room, name, ok := c.registry.RoomOf(from)
	if !ok {
		return
	}
	c.broadcast(room, "", EventChatMessage, chatMessage{
		UserID:    from,
		RoomID:    room,
		Message:   message,
		Sender:    name,
		Timestamp: c.now().UnixMilli(),
	})
}
