package signal

import (
	"github.com/dkeye/Meet/internal/core"
)

func (ctl *SignalWSController) handleStatus(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p statusPayload
	if !ctl.decode(sid, conn, "user-status-update", data, &p) {
		return
	}
	ctl.Coord.StatusUpdate(sid, p.AudioEnabled, p.VideoEnabled)
}

func (ctl *SignalWSController) handleChat(
	sid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	var p chatPayload
	if !ctl.decode(sid, conn, "chat-message", data, &p) {
		return
	}
	ctl.Coord.Chat(sid, p.Message)
}
