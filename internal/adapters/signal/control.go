package signal

import (
	"encoding/json"
	"errors"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, EventPong, nil)
}

func (ctl *SignalWSController) sendError(conn *WsSignalConn, code, msg string) {
	ctl.sendJSON(conn, EventError, errorFrame{Error: code, Message: msg})
}

// decode unmarshals data into dst and checks its required fields.
func (ctl *SignalWSController) decode(sid core.ConnID, conn *WsSignalConn, event string, data []byte, dst any) bool {
	if err := json.Unmarshal(data, dst); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", event).Msg("bad payload")
		ctl.sendError(conn, ErrCodeBadPayload, err.Error())
		return false
	}
	if err := ctl.validate.Struct(dst); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", event).Msg("invalid payload")
		ctl.sendError(conn, ErrCodeBadPayload, err.Error())
		return false
	}
	return true
}

// roomID normalizes an inbound room id, replying invalid_room on failure.
func (ctl *SignalWSController) roomID(conn *WsSignalConn, raw string) (domain.RoomID, bool) {
	room, err := domain.NewRoomID(raw)
	if err != nil {
		ctl.sendError(conn, ErrCodeInvalidRoom, err.Error())
		return "", false
	}
	return room, true
}

func (ctl *SignalWSController) displayName(conn *WsSignalConn, raw string) (domain.DisplayName, bool) {
	name, err := domain.NewDisplayName(raw)
	if err != nil {
		ctl.sendError(conn, ErrCodeInvalidName, err.Error())
		return "", false
	}
	return name, true
}

// reportAction turns a coordinator error into a reply for the caller.
func (ctl *SignalWSController) reportAction(sid core.ConnID, conn *WsSignalConn, action string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, app.ErrNotTrainer), errors.Is(err, app.ErrNotInRoom):
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("action", action).Msg("unauthorized")
		ctl.sendJSON(conn, EventUnauthorized, unauthorized{Action: action, Message: err.Error()})
	case errors.Is(err, app.ErrNoPendingRequest):
		ctl.sendError(conn, ErrCodeNoPendingRequest, err.Error())
	case errors.Is(err, app.ErrUnknownConnection):
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Str("action", action).Msg("stale connection")
	default:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("action", action).Msg("action failed")
		ctl.sendError(conn, ErrCodeInternal, "action failed")
	}
}
