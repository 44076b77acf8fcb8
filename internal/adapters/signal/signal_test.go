package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:         "test",
		ReadLimit:    65536,
		PingPeriod:   54 * time.Second,
		WriteWait:    time.Second,
		SendBuffer:   64,
		Backpressure: "drop",
		Moderation: config.Moderation{
			KickCooldown:       2 * time.Hour,
			EnforceTrainerRole: true,
		},
		JoinRate: config.JoinRate{Limit: 5, Interval: 10 * time.Second},
	}
}

type testServer struct {
	srv   *httptest.Server
	coord *app.Coordinator
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	coord := app.NewCoordinator(app.Options{
		KickCooldown:       cfg.Moderation.KickCooldown,
		EnforceTrainerRole: cfg.Moderation.EnforceTrainerRole,
		Policy:             app.PolicyFor(cfg.Backpressure),
	})
	ctl := NewSignalWSController(coord, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{srv: srv, coord: coord}
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
	id string
}

func (ts *testServer) dial(t *testing.T) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	cl := &client{t: t, ws: ws}
	hello := cl.expect(EventConnected)
	cl.id = hello["userId"].(string)
	require.NotEmpty(t, cl.id)
	return cl
}

func (cl *client) send(v any) {
	cl.t.Helper()
	require.NoError(cl.t, cl.ws.WriteJSON(v))
}

func (cl *client) next() (map[string]any, error) {
	_ = cl.ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := cl.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// expect skips frames until one of type typ arrives.
func (cl *client) expect(typ string) map[string]any {
	cl.t.Helper()
	for {
		m, err := cl.next()
		require.NoError(cl.t, err, "waiting for %s", typ)
		if m["type"] == typ {
			return m
		}
	}
}

func (cl *client) join(room, name string) {
	cl.t.Helper()
	cl.send(map[string]any{"type": "join-room", "roomId": room, "displayName": name})
}

func TestSignalJoinAndRoster(t *testing.T) {
	ts := newTestServer(t, testConfig())
	a, b := ts.dial(t), ts.dial(t)

	a.join("R1", "Ann")
	roster := a.expect(app.EventRoomUsers)
	assert.Empty(t, roster["users"])

	b.join("R1", "Ben (7)")
	joined := a.expect(app.EventUserJoined)
	assert.Equal(t, b.id, joined["userId"])
	assert.Equal(t, "Ben (7)", joined["displayName"])

	roster = b.expect(app.EventRoomUsers)
	users := roster["users"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, a.id, users[0].(map[string]any)["userId"])
}

func TestSignalRelayOffer(t *testing.T) {
	ts := newTestServer(t, testConfig())
	a, b := ts.dial(t), ts.dial(t)

	a.send(map[string]any{
		"type":   "offer",
		"userId": b.id,
		"offer":  map[string]any{"type": "offer", "sdp": "v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\n"},
	})
	got := b.expect(app.EventOffer)
	assert.Equal(t, a.id, got["userId"])
	offer := got["offer"].(map[string]any)
	assert.Equal(t, "offer", offer["type"])
	assert.Equal(t, "v=0\r\no=- 1 2 IN IP4 127.0.0.1\r\n", offer["sdp"])

	b.send(map[string]any{"type": "ice-candidate", "userId": a.id, "candidate": map[string]any{"candidate": "candidate:1 1 udp 1 10.0.0.1 5000 typ host", "sdpMid": "0"}})
	cand := a.expect(app.EventICECandidate)
	assert.Equal(t, b.id, cand["userId"])
	assert.Equal(t, "0", cand["candidate"].(map[string]any)["sdpMid"])
}

func TestSignalRejectsMalformedFrames(t *testing.T) {
	ts := newTestServer(t, testConfig())
	a := ts.dial(t)

	require.NoError(t, a.ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	assert.Equal(t, ErrCodeBadPayload, a.expect(EventError)["error"])

	a.send(map[string]any{"type": "join-room", "roomId": "R1"})
	assert.Equal(t, ErrCodeBadPayload, a.expect(EventError)["error"])

	a.send(map[string]any{"type": "join-room", "roomId": "R1", "displayName": strings.Repeat("x", 65)})
	assert.Equal(t, ErrCodeInvalidName, a.expect(EventError)["error"])

	a.send(map[string]any{"type": "offer", "userId": "someone"})
	assert.Equal(t, ErrCodeBadPayload, a.expect(EventError)["error"])

	a.send(map[string]any{"type": "teleport"})
	assert.Equal(t, ErrCodeUnknownType, a.expect(EventError)["error"])

	// The connection survives all of the above.
	a.send(map[string]any{"type": "ping"})
	a.expect(EventPong)
}

func TestSignalUnauthorizedModeration(t *testing.T) {
	ts := newTestServer(t, testConfig())
	carol, bob := ts.dial(t), ts.dial(t)
	carol.join("R1", "Carol")
	carol.expect(app.EventRoomUsers)
	bob.join("R1", "Bob")
	bob.expect(app.EventRoomUsers)

	carol.send(map[string]any{"type": "kick-participant", "roomId": "R1", "targetUserId": bob.id, "kickerName": "Carol (trainer)"})
	denied := carol.expect(EventUnauthorized)
	assert.Equal(t, "kick-participant", denied["action"])

	carol.send(map[string]any{"type": "end-meeting", "roomId": "R1"})
	assert.Equal(t, "end-meeting", carol.expect(EventUnauthorized)["action"])

	members, ok := ts.coord.Members("R1")
	require.True(t, ok)
	assert.Len(t, members, 2)
}

func TestSignalKickClosesTarget(t *testing.T) {
	ts := newTestServer(t, testConfig())
	carol, alice := ts.dial(t), ts.dial(t)
	carol.join("R1", "Carol (9)")
	carol.expect(app.EventRoomUsers)
	alice.join("R1", "Alice (trainer)")
	alice.expect(app.EventRoomUsers)

	alice.send(map[string]any{"type": "kick-participant", "roomId": "R1", "targetUserId": carol.id})

	kicked := carol.expect(app.EventKickedFromMeeting)
	assert.Equal(t, "Alice (trainer)", kicked["kickerName"])
	_, err := carol.next()
	for err == nil {
		_, err = carol.next()
	}
	var netErr net.Error
	assert.False(t, errors.As(err, &netErr) && netErr.Timeout(), "socket was not closed: %v", err)

	assert.Equal(t, carol.id, alice.expect(app.EventUserKicked)["userId"])
	assert.Equal(t, carol.id, alice.expect(app.EventUserLeft)["userId"])

	rejoin := ts.dial(t)
	rejoin.join("R1", "Carol (9)")
	assert.Equal(t, float64(120), rejoin.expect(app.EventKickPermissionRequired)["remainingTime"])
	assert.Equal(t, rejoin.id, alice.expect(app.EventRejoinRequest)["userId"])
}

func TestSignalEntryApproval(t *testing.T) {
	ts := newTestServer(t, testConfig())
	alice, bob := ts.dial(t), ts.dial(t)
	alice.join("R1", "Alice (trainer)")
	alice.expect(app.EventRoomUsers)

	bob.join("R1", "Bob (42)")
	bob.expect(app.EventEntryPermissionRequired)
	req := alice.expect(app.EventEntryRequest)
	assert.Equal(t, bob.id, req["userId"])

	alice.send(map[string]any{"type": "approve-entry", "roomId": "R1", "userId": bob.id})
	assert.Equal(t, bob.id, alice.expect(app.EventUserJoined)["userId"])
	bob.expect(app.EventRoomUsers)
	bob.expect(app.EventEntryApproved)

	alice.send(map[string]any{"type": "deny-entry", "roomId": "R1", "userId": bob.id})
	assert.Equal(t, ErrCodeNoPendingRequest, alice.expect(EventError)["error"])
}

func TestSignalNormalizesRoomAndName(t *testing.T) {
	ts := newTestServer(t, testConfig())
	alice, bob := ts.dial(t), ts.dial(t)
	alice.join(" R1 ", "Alice (trainer)")
	alice.expect(app.EventRoomUsers)
	bob.join("R1", "Bob")
	bob.expect(app.EventEntryPermissionRequired)
	alice.expect(app.EventEntryRequest)

	alice.send(map[string]any{"type": "approve-entry", "roomId": "R1 ", "userId": bob.id})
	assert.Equal(t, bob.id, alice.expect(app.EventUserJoined)["userId"])
	bob.expect(app.EventEntryApproved)

	alice.send(map[string]any{"type": "end-meeting", "roomId": "   "})
	assert.Equal(t, ErrCodeInvalidRoom, alice.expect(EventError)["error"])
	alice.send(map[string]any{"type": "approve-rejoin", "roomId": "R1", "displayName": "  ", "userId": bob.id})
	assert.Equal(t, ErrCodeInvalidName, alice.expect(EventError)["error"])

	bob.send(map[string]any{"type": "leave-room", "roomId": "\tR1 "})
	assert.Equal(t, bob.id, alice.expect(app.EventUserLeft)["userId"])

	members, ok := ts.coord.Members("R1")
	require.True(t, ok)
	assert.Len(t, members, 1)
}

func TestSignalJoinRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.JoinRate.Limit = 2
	ts := newTestServer(t, cfg)
	a := ts.dial(t)

	a.join("R1", "Ann")
	a.expect(app.EventRoomUsers)
	a.join("R1", "Ann")
	a.expect(app.EventRoomUsers)
	a.join("R1", "Ann")
	assert.Equal(t, ErrCodeRateLimited, a.expect(EventError)["error"])
}

func TestSignalDisconnectAnnouncesLeave(t *testing.T) {
	ts := newTestServer(t, testConfig())
	a, b := ts.dial(t), ts.dial(t)
	a.join("R1", "Ann")
	a.expect(app.EventRoomUsers)
	b.join("R1", "Ben")
	b.expect(app.EventRoomUsers)

	require.NoError(t, b.ws.Close())
	assert.Equal(t, b.id, a.expect(app.EventUserLeft)["userId"])

	require.Eventually(t, func() bool {
		return ts.coord.Stats().Connections == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSignalChatEchoAndStatus(t *testing.T) {
	ts := newTestServer(t, testConfig())
	a, b := ts.dial(t), ts.dial(t)
	a.join("R1", "Ann")
	a.expect(app.EventRoomUsers)
	b.join("R1", "Ben")
	b.expect(app.EventRoomUsers)

	a.send(map[string]any{"type": "chat-message", "roomId": "R1", "message": "hi all", "sender": "Mallory"})
	for _, cl := range []*client{a, b} {
		msg := cl.expect(app.EventChatMessage)
		assert.Equal(t, "hi all", msg["message"])
		assert.Equal(t, "Ann", msg["sender"])
		assert.Equal(t, a.id, msg["userId"])
	}

	a.send(map[string]any{"type": "user-status-update", "audioEnabled": false, "videoEnabled": true})
	st := b.expect(app.EventUserStatusUpdate)
	assert.Equal(t, a.id, st["userId"])
	assert.Equal(t, false, st["audioEnabled"])
	assert.Equal(t, true, st["videoEnabled"])

	a.send(map[string]any{"type": "screen-share-started"})
	assert.Equal(t, a.id, b.expect(app.EventScreenShareStarted)["userId"])
}

func TestCheckOrigin(t *testing.T) {
	cfg := testConfig()
	ctl := NewSignalWSController(app.NewCoordinator(app.Options{}), cfg)
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.True(t, ctl.checkOrigin(req))

	cfg.AllowedOrigins = []string{"https://meet.example"}
	assert.False(t, ctl.checkOrigin(req))
	req.Header.Set("Origin", "https://meet.example")
	assert.True(t, ctl.checkOrigin(req))
	req.Header.Del("Origin")
	assert.True(t, ctl.checkOrigin(req))
}

func TestWsSignalConnTrySend(t *testing.T) {
	c := &WsSignalConn{send: make(chan core.Frame, 1)}
	require.NoError(t, c.TrySend(core.Frame("a")))
	assert.ErrorIs(t, c.TrySend(core.Frame("b")), core.ErrBackpressure)

	c.closed = true
	assert.ErrorIs(t, c.TrySend(core.Frame("c")), core.ErrConnectionClosed)
}

func TestHandleSignalRecoversPanics(t *testing.T) {
	ctl := &SignalWSController{}
	c := &WsSignalConn{send: make(chan core.Frame, 4)}
	assert.NotPanics(t, func() {
		ctl.handleSignal("sid", c, []byte(`{"type":"screen-share-started"}`))
	})
}
