package app

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	full   bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return core.ErrConnectionClosed
	}
	if f.full {
		return core.ErrBackpressure
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) types(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, e := range f.events(t) {
		out = append(out, e["type"].(string))
	}
	return out
}

// find returns every event of the given type.
func (f *fakeConn) find(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, e := range f.events(t) {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeConn) rawFrames(t *testing.T, typ string) [][]byte {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, fr := range f.frames {
		var env struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal(fr, &env))
		if env.Type == typ {
			out = append(out, fr)
		}
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.frames = nil
	f.mu.Unlock()
}

type harness struct {
	t        *testing.T
	c        *Coordinator
	clock    time.Time
	conns    map[core.ConnID]*fakeConn
	canceled map[core.ConnID]int
}

func newHarness(t *testing.T, opts Options) *harness {
	h := &harness{
		t:        t,
		clock:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		conns:    make(map[core.ConnID]*fakeConn),
		canceled: make(map[core.ConnID]int),
	}
	opts.Now = func() time.Time { return h.clock }
	h.c = NewCoordinator(opts)
	return h
}

func (h *harness) connect(sid core.ConnID) *fakeConn {
	fc := &fakeConn{}
	h.conns[sid] = fc
	h.c.Connect(sid, fc, func() { h.canceled[sid]++ }, "client-"+string(sid))
	return fc
}

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func (h *harness) resetAll() {
	for _, fc := range h.conns {
		fc.reset()
	}
}

func memberIDs(ms []core.MemberDTO) []core.ConnID {
	out := make([]core.ConnID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	return out
}
