package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type frame map[string]any

// recorder is an in-memory Transport that keeps every frame per connection.
type recorder struct {
	mu     sync.Mutex
	frames map[string][]frame
	closed []string
}

func newRecorder() *recorder {
	return &recorder{frames: make(map[string][]frame)}
}

func (r *recorder) Send(connID string, buf []byte) error {
	var f frame
	if err := json.Unmarshal(buf, &f); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[connID] = append(r.frames[connID], f)
	return nil
}

func (r *recorder) Close(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, connID)
}

func (r *recorder) all(connID string) []frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]frame(nil), r.frames[connID]...)
}

func (r *recorder) ofType(connID, typ string) []frame {
	var out []frame
	for _, f := range r.all(connID) {
		if f["type"] == typ {
			out = append(out, f)
		}
	}
	return out
}

func (r *recorder) last(connID, typ string) frame {
	fs := r.ofType(connID, typ)
	if len(fs) == 0 {
		return nil
	}
	return fs[len(fs)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = make(map[string][]frame)
	r.closed = nil
}

type harness struct {
	t   *testing.T
	rm  *RoomManager
	c   *Coordinator
	rec *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	rm := NewRoomManager(WithGameRand(func() *rand.Rand {
		return rand.New(rand.NewPCG(3, 5))
	}))
	t.Cleanup(rm.Shutdown)
	rec := newRecorder()
	return &harness{t: t, rm: rm, c: NewCoordinator(rm, rec, Pacing{}), rec: rec}
}

func (h *harness) send(connID string, format string, args ...any) {
	h.c.OnMessage(context.Background(), connID, []byte(fmt.Sprintf(format, args...)))
}

func (h *harness) lastError(connID string) string {
	f := h.rec.last(connID, "error")
	if f == nil {
		return ""
	}
	return f["message"].(string)
}

// seat creates a room hosted by ids[0] and joins the rest. Names are "N-<id>".
func (h *harness) seat(ids ...string) string {
	h.t.Helper()
	h.send(ids[0], `{"type":"create_room","player_name":"N-%s"}`, ids[0])
	created := h.rec.last(ids[0], "room_created")
	require.NotNil(h.t, created, "room_created for %s", ids[0])
	code := created["room_code"].(string)
	for _, id := range ids[1:] {
		h.send(id, `{"type":"join_room","player_name":"N-%s","room_code":"%s"}`, id, code)
		require.NotNil(h.t, h.rec.last(id, "room_joined"), "room_joined for %s: %s", id, h.lastError(id))
	}
	return code
}

func (h *harness) currentBidder(observer string) string {
	f := h.rec.last(observer, "bid_turn")
	require.NotNil(h.t, f)
	return f["current_bidder_id"].(string)
}

func (h *harness) currentPlayer(observer string) string {
	f := h.rec.last(observer, "play_turn")
	require.NotNil(h.t, f)
	return f["current_player_id"].(string)
}

// playFirstValid plays the first legal card offered to the current player.
func (h *harness) playFirstValid(observer string) {
	h.t.Helper()
	id := h.currentPlayer(observer)
	req := h.rec.last(id, "play_request")
	require.NotNil(h.t, req, "play_request for %s", id)
	card := req["valid_cards"].([]any)[0].(map[string]any)
	h.send(id, `{"type":"play_card","suit":"%s","rank":%v}`, card["suit"], card["rank"])
	require.Empty(h.t, h.lastError(id))
}
