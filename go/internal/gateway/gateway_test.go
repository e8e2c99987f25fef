package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/truthbid/go/internal/events"
	"github.com/mcdev12/truthbid/go/internal/game"
	"github.com/mcdev12/truthbid/go/internal/orchestrator"
	"github.com/mcdev12/truthbid/go/internal/room"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *Service) {
	t.Helper()
	registry := room.NewRegistry(room.WithCodeSource(func() string { return "QRSTU" }))
	svc := NewService(DefaultConfig(), registry)
	orch := orchestrator.NewOrchestrator(
		registry,
		game.NewEngine(game.DefaultRules()),
		svc.Emitter(),
		nil,
		orchestrator.DefaultConfig(),
	)
	svc.SetDispatcher(orch)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(events.Inbound{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

// expect reads frames until event arrives, failing on timeout.
func expect(t *testing.T, conn *websocket.Conn, event string) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if f.Event == event {
			return f
		}
	}
}

func TestGatewayBidRound(t *testing.T) {
	srv, svc := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, events.CreateRoom, events.CreateRoomPayload{PlayerName: "alice"})
	var created events.RoomCreatedPayload
	if err := json.Unmarshal(expect(t, host, events.RoomCreated).Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.RoomCode != "QRSTU" {
		t.Fatalf("room code = %q, want QRSTU", created.RoomCode)
	}

	send(t, guest, events.JoinRoom, events.JoinRoomPayload{RoomCode: "qrstu", PlayerName: "bob"})
	expect(t, guest, events.RoomJoined)
	expect(t, host, events.PlayerJoined)

	three, five := 3, 5
	send(t, host, events.SubmitBid, events.SubmitBidPayload{RoomCode: "QRSTU", Bid: &three})
	send(t, guest, events.SubmitBid, events.SubmitBidPayload{RoomCode: "QRSTU", Bid: &five})

	var complete events.BidCompletePayload
	if err := json.Unmarshal(expect(t, host, events.BidComplete).Data, &complete); err != nil {
		t.Fatal(err)
	}
	if complete.Winner != "guest" || complete.HostTokens != 9 || complete.GuestTokens != 7 {
		t.Fatalf("bid_complete = %+v", complete)
	}

	if stats := svc.Stats(); stats.TotalConnections != 2 || stats.ActiveRooms != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestGatewayHostDisconnect(t *testing.T) {
	srv, _ := newTestServer(t)
	host := dial(t, srv)
	guest := dial(t, srv)

	send(t, host, events.CreateRoom, events.CreateRoomPayload{PlayerName: "alice"})
	expect(t, host, events.RoomCreated)
	send(t, guest, events.JoinRoom, events.JoinRoomPayload{RoomCode: "QRSTU", PlayerName: "bob"})
	expect(t, guest, events.RoomJoined)

	host.Close()
	expect(t, guest, events.HostDisconnected)
}

func TestGatewayRejectsInvalidFrame(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	var payload events.ErrorPayload
	if err := json.Unmarshal(expect(t, conn, events.Error).Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Message != "Invalid request" {
		t.Fatalf("message = %q", payload.Message)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	dial(t, srv)

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(srv.URL + "/ws/stats")
		if err != nil {
			t.Fatal(err)
		}
		var stats Stats
		err = json.NewDecoder(resp.Body).Decode(&stats)
		resp.Body.Close()
		if err != nil {
			t.Fatal(err)
		}
		if stats.TotalConnections == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("stats = %+v, want one connection", stats)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"http://localhost:5173"})
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "http://localhost:5173", want: true},
		{origin: "https://evil.example", want: false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		if got := check(r); got != tt.want {
			t.Fatalf("origin %q allowed = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestSendQueueOverflowClosesConnection(t *testing.T) {
	cfg := DefaultConnectionConfig()
	cfg.QueueSize = 1
	cm := NewConnectionManager(cfg, nil)

	ids := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := cm.UpgradeConnection(w, r)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ids <- id
	}))
	defer srv.Close()

	conn := dial(t, srv)
	id := <-ids

	// The manager is not started, so the queue fills after one frame.
	cm.Send(id, events.New(events.BidComplete, nil))
	cm.Send(id, events.New(events.RoundStarted, nil))

	if n := cm.ConnectionCount(); n != 0 {
		t.Fatalf("ConnectionCount() = %d, want 0 after overflow", n)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection still open after queue overflow")
	}
}
