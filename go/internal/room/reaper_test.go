package room

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/truthbid/go/internal/models"
)

func TestReaperSweepsOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	r := NewRegistry(WithClock(clock), WithCodeSource(sequence("AAAAA")))
	if _, err := r.Create(host("ann"), models.NewGameState(10)); err != nil {
		t.Fatal(err)
	}

	expired := make(chan Expiry, 1)
	reaper := NewReaper(r, DefaultReaperConfig(), func(e Expiry) { expired <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reaper.Run(ctx)

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}

	// First tick: 15 minutes idle, nothing to do.
	clock.Advance(15 * time.Minute)
	// Second tick: 30 minutes idle, still within the limit.
	clock.Advance(15 * time.Minute)
	// Third tick: 45 minutes idle.
	clock.Advance(15 * time.Minute)

	select {
	case e := <-expired:
		if e.Code != "AAAAA" || e.Reason != ReasonInactive {
			t.Fatalf("expiry = %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not sweep the idle session")
	}
}
