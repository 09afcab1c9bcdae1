package observer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"chunkfall.ai/internal/protocol"
	"chunkfall.ai/internal/sim/engine"
)

type fakeSource struct {
	join  chan engine.ObserverJoinRequest
	leave chan string
	frame protocol.StatusFrame
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		join:  make(chan engine.ObserverJoinRequest, 1),
		leave: make(chan string, 1),
		frame: protocol.StatusFrame{Type: protocol.TypeGenStatus, ProtocolVersion: protocol.Version, Tick: 7, Generators: []protocol.GeneratorStatus{}},
	}
}

func (f *fakeSource) ObserverJoin() chan<- engine.ObserverJoinRequest { return f.join }
func (f *fakeSource) ObserverLeave() chan<- string                    { return f.leave }
func (f *fakeSource) LatestStatus() protocol.StatusFrame              { return f.frame }

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5555": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: expected %v, got %v", addr, want, got)
		}
	}
}

func TestBootstrapHandler(t *testing.T) {
	s := NewServer(newFakeSource(), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/observer/bootstrap", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec := httptest.NewRecorder()
	s.BootstrapHandler()(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var frame protocol.StatusFrame
	if err := json.Unmarshal(rec.Body.Bytes(), &frame); err != nil || frame.Tick != 7 {
		t.Fatalf("unexpected body %q err=%v", rec.Body.String(), err)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/v1/observer/bootstrap", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rec = httptest.NewRecorder()
	s.BootstrapHandler()(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for remote clients, got %d", rec.Code)
	}
}

func TestWSHandler_StreamsFrames(t *testing.T) {
	src := newFakeSource()
	srv := httptest.NewServer(NewServer(src, nil).WSHandler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var join engine.ObserverJoinRequest
	select {
	case join = <-src.join:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for join")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first protocol.StatusFrame
	if err := conn.ReadJSON(&first); err != nil || first.Tick != 7 {
		t.Fatalf("expected the bootstrap frame first, got %+v err=%v", first, err)
	}

	join.Out <- []byte(`{"type":"GEN_STATUS","protocol_version":"1.0","tick":8,"generators":[],"animations":0,"mined_total":0}`)
	var next protocol.StatusFrame
	if err := conn.ReadJSON(&next); err != nil || next.Tick != 8 {
		t.Fatalf("expected streamed frame, got %+v err=%v", next, err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	select {
	case id := <-src.leave:
		if id != join.SessionID {
			t.Fatalf("expected leave for %s, got %s", join.SessionID, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for leave")
	}
}
