package remote

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/babanuki/internal/game"
)

type fakeState struct {
	mu   sync.Mutex
	snap game.Snapshot
}

func (f *fakeState) Snapshot() game.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone()
}

func (f *fakeState) Replace(s game.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s.Clone()
}

// fakeRemote keeps the last stored snapshot and serves it back.
type fakeRemote struct {
	mu       sync.Mutex
	stored   game.Snapshot
	fetchErr error
	fetches  int
	release  chan struct{} // when set, Store blocks until closed
	entered  chan struct{}
}

func (f *fakeRemote) Fetch(ctx context.Context) (game.Snapshot, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return game.Snapshot{}, "", f.fetchErr
	}
	return f.stored.Clone(), "rev", nil
}

func (f *fakeRemote) Store(ctx context.Context, snap game.Snapshot) error {
	if f.entered != nil {
		close(f.entered)
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = snap.Clone()
	return nil
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func TestPushThenPullReproducesSnapshot(t *testing.T) {
	want := game.Snapshot{
		SeatMap:    game.SeatMap{"table1": {"player2", "player1"}},
		PlayerData: game.PlayerData{"player1": game.NewProfile("player1"), "player2": game.NewProfile("player2")},
	}
	local := &fakeState{snap: want.Clone()}
	rem := &fakeRemote{}
	c := NewCoordinator(rem, local, time.Hour)

	if err := c.Push(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	local.Replace(game.EmptySnapshot())
	if err := c.Pull(context.Background()); err != nil {
		t.Fatalf("pull: %v", err)
	}
	if got := local.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pull after push:\n got %+v\nwant %+v", got, want)
	}
}

func TestPushSingleFlight(t *testing.T) {
	rem := &fakeRemote{release: make(chan struct{}), entered: make(chan struct{})}
	c := NewCoordinator(rem, &fakeState{snap: game.EmptySnapshot()}, time.Hour)

	done := make(chan error, 1)
	go func() { done <- c.Push(context.Background()) }()
	<-rem.entered

	if !c.Pushing() {
		t.Fatal("expected push in flight")
	}
	if err := c.Push(context.Background()); !errors.Is(err, ErrPushInFlight) {
		t.Fatalf("expected ErrPushInFlight, got %v", err)
	}

	close(rem.release)
	if err := <-done; err != nil {
		t.Fatalf("first push: %v", err)
	}
	if c.Pushing() {
		t.Fatal("guard not released")
	}
}

func TestPullFailureKeepsLocalState(t *testing.T) {
	want := game.Snapshot{SeatMap: game.SeatMap{"table1": {}}, PlayerData: game.PlayerData{}}
	local := &fakeState{snap: want.Clone()}
	c := NewCoordinator(&fakeRemote{fetchErr: ErrSyncFailure}, local, time.Hour)

	if err := c.Pull(context.Background()); !errors.Is(err, ErrSyncFailure) {
		t.Fatalf("expected ErrSyncFailure, got %v", err)
	}
	if got := local.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("local state changed: %+v", got)
	}
}

func TestRunPullsPeriodically(t *testing.T) {
	rem := &fakeRemote{stored: game.EmptySnapshot()}
	c := NewCoordinator(rem, &fakeState{}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { c.Run(ctx); close(done) }()

	deadline := time.After(2 * time.Second)
	for rem.fetchCount() < 2 {
		select {
		case <-deadline:
			t.Fatal("Run did not pull")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRunSkipsWhilePushing(t *testing.T) {
	rem := &fakeRemote{stored: game.EmptySnapshot()}
	c := NewCoordinator(rem, &fakeState{snap: game.EmptySnapshot()}, 5*time.Millisecond)
	c.pushing.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	if n := rem.fetchCount(); n != 0 {
		t.Fatalf("pulled %d times during push", n)
	}
}
