package signal

import "github.com/dkeye/Meet/internal/core"

// handleKick ignores the claimed kickerName; the registered name is used.
func (ctl *SignalWSController) handleKick(sid core.ConnID, conn *WsSignalConn, data []byte) {
	var p kickPayload
	if !ctl.decode(sid, conn, "kick-participant", data, &p) {
		return
	}
	ctl.reportAction(sid, conn, "kick-participant", ctl.Coord.Kick(sid, core.ConnID(p.TargetUserID)))
}

func (ctl *SignalWSController) handleEntry(sid core.ConnID, conn *WsSignalConn, data []byte, approve bool) {
	action := "deny-entry"
	if approve {
		action = "approve-entry"
	}
	var p entryPayload
	if !ctl.decode(sid, conn, action, data, &p) {
		return
	}
	room, ok := ctl.roomID(conn, p.RoomID)
	if !ok {
		return
	}
	target := core.ConnID(p.UserID)
	var err error
	if approve {
		err = ctl.Coord.ApproveEntry(sid, room, target)
	} else {
		err = ctl.Coord.DenyEntry(sid, room, target)
	}
	ctl.reportAction(sid, conn, action, err)
}

func (ctl *SignalWSController) handleRejoin(sid core.ConnID, conn *WsSignalConn, data []byte, approve bool) {
	action := "deny-rejoin"
	if approve {
		action = "approve-rejoin"
	}
	var p rejoinPayload
	if !ctl.decode(sid, conn, action, data, &p) {
		return
	}
	room, ok := ctl.roomID(conn, p.RoomID)
	if !ok {
		return
	}
	name, ok := ctl.displayName(conn, p.DisplayName)
	if !ok {
		return
	}
	requester := core.ConnID(p.UserID)
	var err error
	if approve {
		err = ctl.Coord.ApproveRejoin(sid, room, name, requester)
	} else {
		err = ctl.Coord.DenyRejoin(sid, room, name, requester)
	}
	ctl.reportAction(sid, conn, action, err)
}

func (ctl *SignalWSController) handleEndMeeting(sid core.ConnID, conn *WsSignalConn, data []byte) {
	var p roomPayload
	if !ctl.decode(sid, conn, "end-meeting", data, &p) {
		return
	}
	room, ok := ctl.roomID(conn, p.RoomID)
	if !ok {
		return
	}
	ctl.reportAction(sid, conn, "end-meeting", ctl.Coord.EndMeeting(sid, room))
}
