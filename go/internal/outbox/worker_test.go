package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePublisher struct {
	mu        sync.Mutex
	failures  int
	attempts  int
	published []Event
}

func (p *fakePublisher) Publish(ctx context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts++
	if p.failures > 0 {
		p.failures--
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) snapshot() (int, []Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts, append([]Event(nil), p.published...)
}

func testConfig() Config {
	return Config{BufferSize: 8, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestWorkerPublishesRecordedEvents(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWorker(testConfig(), pub)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	w.Record("QRSTU", EventRoomCreated, RoomCreatedPayload{SessionID: "s1", HostName: "alice"})
	w.Record("QRSTU", EventRoomClosed, RoomClosedPayload{Reason: "expired"})

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	_, published := pub.snapshot()
	if len(published) != 2 {
		t.Fatalf("published %d events, want 2", len(published))
	}
	if published[0].EventType != EventRoomCreated || published[1].EventType != EventRoomClosed {
		t.Fatalf("event order = %s, %s", published[0].EventType, published[1].EventType)
	}

	var payload RoomCreatedPayload
	if err := json.Unmarshal(published[0].Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.HostName != "alice" || published[0].RoomCode != "QRSTU" {
		t.Fatalf("event = %+v payload = %+v", published[0], payload)
	}
}

func TestWorkerRetries(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		wantAttempts int
		wantDone     int
	}{
		{name: "recovers", failures: 2, wantAttempts: 3, wantDone: 1},
		{name: "gives up", failures: 10, wantAttempts: 3, wantDone: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{failures: tt.failures}
			w := NewWorker(testConfig(), pub)
			if err := w.Start(context.Background()); err != nil {
				t.Fatal(err)
			}
			w.Record("QRSTU", EventBidResolved, BidResolvedPayload{Round: 1})
			if err := w.Stop(); err != nil {
				t.Fatal(err)
			}

			attempts, published := pub.snapshot()
			if attempts != tt.wantAttempts || len(published) != tt.wantDone {
				t.Fatalf("attempts = %d published = %d, want %d and %d", attempts, len(published), tt.wantAttempts, tt.wantDone)
			}
		})
	}
}

func TestRecordDropsWhenFull(t *testing.T) {
	w := NewWorker(Config{BufferSize: 1, MaxRetries: 0, RetryDelay: time.Millisecond})
	w.Record("QRSTU", EventRoundStarted, RoundStartedPayload{Round: 2})
	w.Record("QRSTU", EventRoundStarted, RoundStartedPayload{Round: 3})

	if got := len(w.queue); got != 1 {
		t.Fatalf("queue length = %d, want 1", got)
	}
}

func TestWorkerStartTwice(t *testing.T) {
	w := NewWorker(testConfig())
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(context.Background()); err == nil {
		t.Fatal("second Start succeeded")
	}
}

func TestNATSSubject(t *testing.T) {
	p := &NATSPublisher{config: DefaultNATSConfig()}
	if got, want := p.Subject(EventGameFinished), "truthbid.room.GameFinished"; got != want {
		t.Fatalf("Subject() = %q, want %q", got, want)
	}
}

func TestEnvelope(t *testing.T) {
	data, err := marshalEnvelope(Event{
		RoomCode:  "QRSTU",
		EventType: EventTruthGuessed,
		Payload:   json.RawMessage(`{"round":1}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["eventType"] != EventTruthGuessed || got["roomCode"] != "QRSTU" {
		t.Fatalf("envelope = %v", got)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthChecker(t *testing.T) {
	pub := &fakePublisher{}
	w := NewWorker(testConfig(), pub)

	if got := NewHealthChecker(w, nil, nil).Check(context.Background()); got.Healthy {
		t.Fatalf("stopped worker reported healthy: %+v", got)
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tests := []struct {
		name string
		db   Pinger
		want bool
	}{
		{name: "no database", db: nil, want: true},
		{name: "database up", db: fakePinger{}, want: true},
		{name: "database down", db: fakePinger{err: errors.New("refused")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewHealthChecker(w, nil, tt.db).Check(context.Background())
			if got.Healthy != tt.want {
				t.Fatalf("Healthy = %v, want %v (errors %v)", got.Healthy, tt.want, got.Errors)
			}
		})
	}
}

func TestWorkerStats(t *testing.T) {
	pub := &fakePublisher{failures: 10}
	w := NewWorker(testConfig(), pub)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Record("QRSTU", EventRoomCreated, RoomCreatedPayload{})
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	stats := w.Stats()
	if stats.Failed != 1 || stats.Published != 0 || stats.Running {
		t.Fatalf("stats = %+v", stats)
	}
}
