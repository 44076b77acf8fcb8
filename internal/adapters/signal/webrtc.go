package signal

import (
	"encoding/json"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/rs/zerolog/log"
)

// handleRelay forwards offer, answer and ice-candidate frames peer to peer.
// The session description or candidate is never parsed here.
func (ctl *SignalWSController) handleRelay(
	sid core.ConnID,
	conn *WsSignalConn,
	kind app.RelayKind,
	data []byte,
) {
	var p relayPayload
	if !ctl.decode(sid, conn, string(kind), data, &p) {
		return
	}
	var body json.RawMessage
	switch kind {
	case app.RelayOffer:
		body = p.Offer
	case app.RelayAnswer:
		body = p.Answer
	case app.RelayICECandidate:
		body = p.Candidate
	}
	if len(body) == 0 {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", string(kind)).Msg("relay without payload")
		ctl.sendError(conn, ErrCodeBadPayload, "missing "+string(kind)+" payload")
		return
	}
	ctl.Coord.Relay(sid, kind, core.ConnID(p.Target), body)
}
