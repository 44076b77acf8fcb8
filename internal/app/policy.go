package app

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	Disconnect
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(room domain.RoomID, sid core.ConnID) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, core.ConnID) BackpressureAction {
	return DropFrame
}

type DisconnectPolicy struct{}

func (DisconnectPolicy) OnBackPressure(domain.RoomID, core.ConnID) BackpressureAction {
	return Disconnect
}

// PolicyFor maps the config value to a Policy; unknown values drop.
func PolicyFor(mode string) Policy {
	if mode == "disconnect" {
		return DisconnectPolicy{}
	}
	return DropPolicy{}
}
