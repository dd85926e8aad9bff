// Package agent runs the per-terminal sync engine: it polls the document
// store, keeps the movement board derived from the print room and pre-shift
// rows, and pushes local edits back after a quiet period.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/augesrob/Badger-sub000/internal/reconcile"
	"github.com/augesrob/Badger-sub000/internal/snapshot"
)

var (
	// ErrNotLoaded is returned by edits made before the first successful pull.
	// Applying them to an empty document would wipe the store on push.
	ErrNotLoaded = errors.New("snapshot not loaded yet")

	ErrPullInFlight = errors.New("pull already in flight")
	ErrPushInFlight = errors.New("push already in flight")
)

// Remote is the document store as seen by one agent.
type Remote interface {
	Fetch(ctx context.Context) (snapshot.Snapshot, error)
	Push(ctx context.Context, s snapshot.Snapshot) (int64, error)
}

// Config holds the engine's two schedules.
type Config struct {
	PullInterval time.Duration
	Debounce     time.Duration
}

// Phase is what the engine is doing right now. Recomputing the board happens
// inside a pull while the engine lock is held, so it never shows up here.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhasePulling    Phase = "pulling"
	PhaseDebouncing Phase = "debouncing"
	PhasePushing    Phase = "pushing"
)

// SyncState is the badge shown to the operator.
type SyncState string

const (
	StateSynced  SyncState = "synced"
	StateSyncing SyncState = "syncing"
	StateError   SyncState = "error"
)

// Status is a point-in-time view of the engine.
type Status struct {
	Phase      Phase     `json:"phase"`
	State      SyncState `json:"state"`
	Loaded     bool      `json:"loaded"`
	Pending    bool      `json:"pending"`
	LastSync   int64     `json:"lastSync"`
	LastError  string    `json:"lastError,omitempty"`
	Pulls      int       `json:"pulls"`
	PullErrors int       `json:"pullErrors"`
	Pushes     int       `json:"pushes"`
	PushErrors int       `json:"pushErrors"`
}

// Engine owns one agent's copy of the snapshot. All edits go through its
// methods, which validate, apply, recompute the movement board and schedule a
// push, in that order.
type Engine struct {
	remote       Remote
	layout       snapshot.Layout
	clock        clockwork.Clock
	pullInterval time.Duration
	debounce     time.Duration

	wg sync.WaitGroup

	mu           sync.Mutex
	ctx          context.Context
	snap         snapshot.Snapshot
	loaded       bool
	pending      bool   // local edits the store has not seen
	generation   uint64 // bumped on every applied edit
	timer        clockwork.Timer
	armSeq       uint64 // identifies the armed timer
	pullInFlight bool
	pushInFlight bool
	pushQueued   bool
	pushDone     chan struct{}
	closed       bool
	lastErr      error
	lastSync     int64
	pulls        int
	pullErrors   int
	pushes       int
	pushErrors   int
}

// NewEngine creates an engine. A nil clock means wall time.
func NewEngine(cfg Config, remote Remote, layout snapshot.Layout, clk clockwork.Clock) (*Engine, error) {
	if remote == nil {
		return nil, errors.New("remote is required")
	}
	if cfg.PullInterval <= 0 {
		return nil, fmt.Errorf("pull interval must be positive, got %s", cfg.PullInterval)
	}
	if cfg.Debounce <= 0 {
		return nil, fmt.Errorf("debounce window must be positive, got %s", cfg.Debounce)
	}
	if clk == nil {
		clk = clockwork.NewRealClock()
	}

	return &Engine{
		remote:       remote,
		layout:       layout,
		clock:        clk,
		pullInterval: cfg.PullInterval,
		debounce:     cfg.Debounce,
		ctx:          context.Background(),
		snap:         snapshot.Empty(),
	}, nil
}

// Run pulls once, then on every tick of the pull interval until ctx is done.
// Each tick's pull runs in its own goroutine; a tick that lands while a pull
// is still in flight is skipped.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()

	log.Println("Starting sync engine...")
	e.pullAndLog(ctx)

	ticker := e.clock.NewTicker(e.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sync engine shutting down.")
			e.Close()
			e.wg.Wait()
			return
		case <-ticker.Chan():
			e.wg.Add(1)
			go func() {
				defer e.wg.Done()
				e.pullAndLog(ctx)
			}()
		}
	}
}

func (e *Engine) pullAndLog(ctx context.Context) {
	if err := e.Pull(ctx); err != nil && !errors.Is(err, ErrPullInFlight) {
		log.Printf("Pull cycle failed: %v", err)
	}
}

// Close cancels the pending push timer. Edits can still be applied and
// pushed with Flush, but nothing is scheduled any more.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.stopTimerLocked()
}

// Pull reads the store and folds the result into local state:
//
//   - on error the current snapshot is kept;
//   - while a push is in flight the result is dropped, since applying it
//     would undo the write;
//   - while local edits are pending they win, and a push is re-armed if none
//     is scheduled (this is how a failed push gets retried);
//   - a document read before one of our own pushes completed, or older than
//     the last one we saw, is stale and dropped;
//   - otherwise the pulled document is adopted and the board recomputed.
//     If that changes the board, the result is pushed back.
func (e *Engine) Pull(ctx context.Context) error {
	e.mu.Lock()
	if e.pullInFlight {
		e.mu.Unlock()
		return ErrPullInFlight
	}
	e.pullInFlight = true
	pushesBefore := e.pushes
	e.mu.Unlock()

	pulled, err := e.remote.Fetch(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pullInFlight = false
	e.pulls++

	if err != nil {
		if !snapshot.IsMalformed(err) {
			e.pullErrors++
			e.lastErr = err
			return fmt.Errorf("pull: %w", err)
		}
		log.Printf("Warning: pulled snapshot was incomplete: %v", err)
	}
	e.lastErr = nil
	known := e.lastSync
	if pulled.LastSync > e.lastSync {
		e.lastSync = pulled.LastSync
	}

	if e.pushInFlight {
		log.Println("Push in flight; discarding pulled snapshot.")
		return nil
	}

	if e.loaded && e.pending {
		if e.timer == nil {
			e.armLocked()
		}
		return nil
	}

	if e.loaded && (e.pushes != pushesBefore || pulled.LastSync < known) {
		log.Printf("Discarding stale snapshot (lastSync %d, have %d).", pulled.LastSync, known)
		return nil
	}

	e.adoptLocked(pulled)
	return nil
}

// adoptLocked replaces local state with a pulled document. Sticky movement
// fields come from the pulled board so other agents' status changes are
// seen, falling back to local rows for trucks the pulled board lacks.
func (e *Engine) adoptLocked(pulled snapshot.Snapshot) {
	pulled.Normalize()

	sticky := make(map[string]snapshot.MovementTruck, len(e.snap.MovementTrucks)+len(pulled.MovementTrucks))
	for num, m := range e.snap.MovementTrucks {
		sticky[num] = m
	}
	for num, m := range pulled.MovementTrucks {
		sticky[num] = m
	}

	board := reconcile.Recompute(sticky, pulled)
	changed := !reconcile.Equal(board, pulled.MovementTrucks)

	pulled.MovementTrucks = board
	e.snap = pulled
	if !e.loaded {
		log.Printf("Snapshot loaded: %d print room, %d pre-shift, %d on the board", len(pulled.PrintRoomTrucks), len(pulled.PreShiftTrucks), len(board))
	}
	e.loaded = true

	if changed {
		e.pending = true
		e.generation++
		e.armLocked()
	}
}

// Push writes the whole local snapshot to the store, replacing whatever is
// there. A failed push keeps the edits pending and is not retried here.
func (e *Engine) Push(ctx context.Context) error {
	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return ErrNotLoaded
	}
	if e.pushInFlight {
		e.pushQueued = true
		e.mu.Unlock()
		return ErrPushInFlight
	}
	e.stopTimerLocked()
	e.pushInFlight = true
	e.pushDone = make(chan struct{})
	gen := e.generation
	out := e.snap.Clone()
	e.mu.Unlock()

	lastSync, err := e.remote.Push(ctx, out)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.pushInFlight = false
	close(e.pushDone)
	queued := e.pushQueued
	e.pushQueued = false
	e.pushes++

	if err != nil {
		e.pushErrors++
		e.lastErr = err
		log.Printf("Push failed; local edits kept until the next cycle: %v", err)
		return fmt.Errorf("push: %w", err)
	}

	e.lastErr = nil
	e.lastSync = lastSync
	e.snap.LastSync = lastSync

	if e.generation == gen {
		e.pending = false
		return nil
	}
	// Edits landed while the write was in flight.
	if queued || e.timer == nil {
		e.armLocked()
	}
	return nil
}

// Flush pushes pending edits now, waiting out a push already in flight.
func (e *Engine) Flush(ctx context.Context) error {
	for {
		e.mu.Lock()
		if !e.loaded || !e.pending {
			e.mu.Unlock()
			return nil
		}
		if e.pushInFlight {
			done := e.pushDone
			e.mu.Unlock()
			select {
			case <-done:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		e.mu.Unlock()

		err := e.Push(ctx)
		if errors.Is(err, ErrPushInFlight) {
			continue
		}
		return err
	}
}

// Sync flushes pending edits and then pulls.
func (e *Engine) Sync(ctx context.Context) error {
	if err := e.Flush(ctx); err != nil {
		return err
	}
	if err := e.Pull(ctx); err != nil && !errors.Is(err, ErrPullInFlight) {
		return err
	}
	return nil
}

// armLocked (re)starts the debounce timer. Timer callbacks run on their own
// goroutine, so one that could not be stopped in time may still arrive; only
// the callback of the most recently armed timer may push.
func (e *Engine) armLocked() {
	if e.closed {
		return
	}
	e.stopTimerLocked()
	e.armSeq++
	seq := e.armSeq
	e.timer = e.clock.AfterFunc(e.debounce, func() { e.debounceFired(seq) })
}

func (e *Engine) stopTimerLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) debounceFired(seq uint64) {
	e.mu.Lock()
	if e.closed || e.timer == nil || seq != e.armSeq {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	ctx := e.ctx
	e.mu.Unlock()

	if err := e.Push(ctx); err != nil && !errors.Is(err, ErrPushInFlight) {
		log.Printf("Scheduled push failed: %v", err)
	}
}

// Snapshot returns a copy of the local document.
func (e *Engine) Snapshot() snapshot.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.Clone()
}

// Status reports the engine's phase and sync badge.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		Phase:      PhaseIdle,
		State:      StateSynced,
		Loaded:     e.loaded,
		Pending:    e.pending,
		LastSync:   e.lastSync,
		Pulls:      e.pulls,
		PullErrors: e.pullErrors,
		Pushes:     e.pushes,
		PushErrors: e.pushErrors,
	}

	switch {
	case e.pushInFlight:
		st.Phase = PhasePushing
	case e.pullInFlight:
		st.Phase = PhasePulling
	case e.timer != nil:
		st.Phase = PhaseDebouncing
	}

	switch {
	case e.lastErr != nil:
		st.State = StateError
		st.LastError = e.lastErr.Error()
	case st.Phase != PhaseIdle || e.pending || !e.loaded:
		st.State = StateSyncing
	}
	return st
}
