package signal

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/core"
)

// Adapter-level outbound events.
const (
	EventConnected    = "connected"
	EventError        = "error"
	EventUnauthorized = "unauthorized"
	EventPong         = "pong"
)

// Error codes carried in "error" frames.
const (
	ErrCodeBadPayload       = "bad_payload"
	ErrCodeUnknownType      = "unknown_type"
	ErrCodeInvalidName      = "invalid_name"
	ErrCodeInvalidRoom      = "invalid_room"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeNoPendingRequest = "no_pending_request"
	ErrCodeInternal         = "internal"
)

type connected struct {
	UserID core.ConnID `json:"userId"`
}

type errorFrame struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type unauthorized struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

type joinRoomPayload struct {
	RoomID      string `json:"roomId" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

type roomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

// relayPayload covers offer, answer and ice-candidate; userId is the target.
type relayPayload struct {
	Target    string          `json:"userId" validate:"required"`
	Offer     json.RawMessage `json:"offer"`
	Answer    json.RawMessage `json:"answer"`
	Candidate json.RawMessage `json:"candidate"`
}

type statusPayload struct {
	AudioEnabled json.RawMessage `json:"audioEnabled"`
	VideoEnabled json.RawMessage `json:"videoEnabled"`
}

// chatPayload ignores any client-claimed sender.
type chatPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message" validate:"required,max=4096"`
}

type kickPayload struct {
	RoomID       string `json:"roomId"`
	TargetUserID string `json:"targetUserId" validate:"required"`
	KickerName   string `json:"kickerName"`
}

type entryPayload struct {
	RoomID string `json:"roomId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

type rejoinPayload struct {
	RoomID      string `json:"roomId" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
	UserID      string `json:"userId" validate:"required"`
}
