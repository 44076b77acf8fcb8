package signal

import (
	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p joinRoomPayload
	if !ctl.decode(sid, conn, "join-room", data, &p) {
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
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		ctl.sendError(conn, ErrCodeRateLimited, "too many join attempts, slow down")
		return
	}

	res, err := ctl.Coord.Join(sid, room, name)
	if err != nil {
		ctl.reportAction(sid, conn, "join-room", err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Str("result", res.String()).Msg("join")
}

// handleLeave leaves the room; the socket stays open.
func (ctl *SignalWSController) handleLeave(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p roomPayload
	if !ctl.decode(sid, conn, "leave-room", data, &p) {
		return
	}
	room, ok := ctl.roomID(conn, p.RoomID)
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(room)).Msg("leave")
	ctl.Coord.Leave(sid, room)
}
