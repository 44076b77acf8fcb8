package core

import (
	"github.com/dkeye/Meet/internal/domain"
)

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID           ConnID             `json:"userId"`
	DisplayName  domain.DisplayName `json:"displayName"`
	Trainer      bool               `json:"trainer,omitempty"`
	AttendanceID string             `json:"attendanceId,omitempty"`
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	HasTrainer  bool          `json:"has_trainer"`
	Pending     int           `json:"pending_requests"`
}
