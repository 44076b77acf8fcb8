package app

import (
	"encoding/json"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// Outbound event names.
const (
	EventUserJoined              = "user-joined"
	EventRoomUsers               = "room-users"
	EventUserLeft                = "user-left"
	EventUserStatusUpdate        = "user-status-update"
	EventScreenShareStarted      = "screen-share-started"
	EventScreenShareStopped      = "screen-share-stopped"
	EventChatMessage             = "chat-message"
	EventKickedFromMeeting       = "kicked-from-meeting"
	EventUserKicked              = "user-kicked"
	EventRejoinRequest           = "rejoin-request"
	EventKickPermissionRequired  = "kick-permission-required"
	EventRejoinApproved          = "rejoin-approved"
	EventRejoinDenied            = "rejoin-denied"
	EventEntryPermissionRequired = "entry-permission-required"
	EventEntryRequest            = "entry-request"
	EventEntryApproved           = "entry-approved"
	EventEntryDenied             = "entry-denied"
	EventTrainerLeft             = "trainer-left"
	EventMeetingEnded            = "meeting-ended"
	EventOffer                   = "offer"
	EventAnswer                  = "answer"
	EventICECandidate            = "ice-candidate"
)

// RelayKind names a negotiation message forwarded between two connections.
type RelayKind string

const (
	RelayOffer        RelayKind = EventOffer
	RelayAnswer       RelayKind = EventAnswer
	RelayICECandidate RelayKind = EventICECandidate
)

// field is the payload key carried by each relay kind.
func (k RelayKind) field() string {
	switch k {
	case RelayOffer:
		return "offer"
	case RelayAnswer:
		return "answer"
	case RelayICECandidate:
		return "candidate"
	}
	return ""
}

type userRef struct {
	UserID core.ConnID `json:"userId"`
}

type userJoined struct {
	UserID      core.ConnID        `json:"userId"`
	DisplayName domain.DisplayName `json:"displayName"`
}

type roomUsers struct {
	Users []userJoined `json:"users"`
}

type statusUpdate struct {
	UserID       core.ConnID     `json:"userId"`
	AudioEnabled json.RawMessage `json:"audioEnabled,omitempty"`
	VideoEnabled json.RawMessage `json:"videoEnabled,omitempty"`
}

type chatMessage struct {
	UserID    core.ConnID        `json:"userId"`
	RoomID    domain.RoomID      `json:"roomId"`
	Message   string             `json:"message"`
	Sender    domain.DisplayName `json:"sender"`
	Timestamp int64              `json:"timestamp"`
}

type kickedFromMeeting struct {
	RoomID     domain.RoomID      `json:"roomId"`
	KickerName domain.DisplayName `json:"kickerName"`
	Message    string             `json:"message"`
}

type userKicked struct {
	UserID     core.ConnID        `json:"userId"`
	UserName   domain.DisplayName `json:"userName"`
	KickerName domain.DisplayName `json:"kickerName"`
}

type cooldownActive struct {
	Message       string             `json:"message"`
	RemainingTime int                `json:"remainingTime"`
	KickedBy      domain.DisplayName `json:"kickedBy"`
}

type rejoinRequest struct {
	UserID        core.ConnID        `json:"userId"`
	DisplayName   domain.DisplayName `json:"displayName"`
	RemainingTime int                `json:"remainingTime"`
	KickedBy      domain.DisplayName `json:"kickedBy"`
}

type roomNotice struct {
	RoomID  domain.RoomID `json:"roomId"`
	Message string        `json:"message"`
}

type entryRequest struct {
	UserID      core.ConnID        `json:"userId"`
	DisplayName domain.DisplayName `json:"displayName"`
	RequestedAt int64              `json:"requestedAt"`
}

type trainerLeft struct {
	UserID      core.ConnID        `json:"userId"`
	DisplayName domain.DisplayName `json:"displayName"`
	Message     string             `json:"message"`
}

// Encode renders payload as a flat frame: {"type": event, ...payload}.
// payload must marshal to a JSON object.
func Encode(event string, payload any) (core.Frame, error) {
	head, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	body := []byte("{}")
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", event, err)
		}
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("encode %s: payload is not an object", event)
	}
	out := make([]byte, 0, len(head)+len(body)+10)
	out = append(out, `{"type":`...)
	out = append(out, head...)
	if len(body) > 2 {
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// encodeRelay copies payload into the frame byte for byte:
// {"type": kind, "userId": from, <field>: payload}.
func encodeRelay(kind RelayKind, from core.ConnID, payload json.RawMessage) (core.Frame, error) {
	head, err := Encode(string(kind), userRef{UserID: from})
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(kind.field())
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(head)+len(key)+len(payload)+2)
	out = append(out, head[:len(head)-1]...)
	out = append(out, ',')
	out = append(out, key...)
	out = append(out, ':')
	out = append(out, payload...)
	out = append(out, '}')
	return out, nil
}
