// Package session tracks per-session derived artifacts (insights, podcast
// script and audio) and coordinates their one-time background computation.
//
// Each session moves through a small lifecycle: Empty (documents uploaded,
// nothing computed), Building (the build function is running), then Ready or
// Failed. Waiters block on a per-session channel that is closed exactly once
// when the build finishes, so any number of concurrent requests observe the
// same result without re-running the build.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/docsift/docsift/internal/insights"
)

var (
	// ErrSessionNotFound means no session with the given id exists.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAlreadyBuilding means a build is in progress for the session.
	ErrAlreadyBuilding = errors.New("session build already in progress")
)

// State is a session's lifecycle position.
type State int

const (
	StateEmpty State = iota
	StateBuilding
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// BuildResult is what a completed session build produced. Once published to
// waiters it is read-only; mutable follow-up state such as the synthesized
// audio key lives on the session entry instead.
type BuildResult struct {
	Insights *insights.Result
	Text     string // combined document text the build ran over
	ScriptA  []string
	ScriptB  []string
	BuiltAt  time.Time
}

// BuildFunc computes a session's derived artifacts. It is invoked at most
// once per session generation.
type BuildFunc func(ctx context.Context, sessionID string) (*BuildResult, error)

type session struct {
	id         string
	state      State
	result     *BuildResult
	err        error
	audioKey   string        // artifact key of synthesized audio, "" until attached
	done       chan struct{} // closed when a Building session finishes
	lastAccess time.Time
}

// Orchestrator owns the session table, runs builds, and sweeps idle
// sessions.
type Orchestrator struct {
	mu       sync.Mutex
	sessions map[string]*session

	build      BuildFunc
	log        *slog.Logger
	ttl        time.Duration
	sweepEvery time.Duration

	// OnEvict, if set, is called (outside the lock) for each evicted or
	// reset session so stored artifacts can be cleaned up.
	OnEvict func(sessionID string)

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates an orchestrator. Sessions idle longer than ttl are evicted by
// a background sweep started with Start.
func New(build BuildFunc, log *slog.Logger, ttl, sweepEvery time.Duration) *Orchestrator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if sweepEvery <= 0 {
		sweepEvery = 10 * time.Minute
	}
	return &Orchestrator{
		sessions:   make(map[string]*session),
		build:      build,
		log:        log,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
	}
}

// Start launches the eviction sweep.
func (o *Orchestrator) Start() {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(o.sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				o.sweep()
			case <-o.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep goroutine.
func (o *Orchestrator) Stop() {
	close(o.stop)
	o.wg.Wait()
}

// Touch records activity for a session, creating an Empty entry if none
// exists.
func (o *Orchestrator) Touch(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		s = &session{id: id, state: StateEmpty}
		o.sessions[id] = s
	}
	s.lastAccess = time.Now()
}

// Reset discards a session's derived state, returning it to Empty. A session
// mid-build cannot be reset. Called when a session's documents change.
func (o *Orchestrator) Reset(id string) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if ok && s.state == StateBuilding {
		o.mu.Unlock()
		return ErrAlreadyBuilding
	}
	o.sessions[id] = &session{id: id, state: StateEmpty, lastAccess: time.Now()}
	o.mu.Unlock()

	if ok && o.OnEvict != nil {
		o.OnEvict(id)
	}
	return nil
}

// StartBuild kicks off the background build for a session. It returns
// ErrAlreadyBuilding if one is running, and is a no-op returning nil if the
// session has already settled: Ready and Failed are terminal until the
// session is reset or evicted, so a failed build is not silently retried.
func (o *Orchestrator) StartBuild(ctx context.Context, id string) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok {
		s = &session{id: id, state: StateEmpty}
		o.sessions[id] = s
	}
	s.lastAccess = time.Now()
	switch s.state {
	case StateBuilding:
		o.mu.Unlock()
		return ErrAlreadyBuilding
	case StateReady, StateFailed:
		o.mu.Unlock()
		return nil
	}
	s.state = StateBuilding
	s.err = nil
	s.result = nil
	s.done = make(chan struct{})
	o.mu.Unlock()

	// The build outlives the request that triggered it.
	buildCtx := context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runBuild(buildCtx, id)
	}()
	return nil
}

func (o *Orchestrator) runBuild(ctx context.Context, id string) {
	start := time.Now()
	result, err := o.build(ctx, id)

	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok || s.state != StateBuilding {
		// Session was replaced while building; drop the result.
		o.mu.Unlock()
		o.log.Warn("discarding build result for replaced session", "session", id)
		return
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
	} else {
		s.state = StateReady
		s.result = result
	}
	s.lastAccess = time.Now()
	close(s.done)
	s.done = nil
	o.mu.Unlock()

	if err != nil {
		o.log.Error("session build failed", "session", id, "error", err, "elapsed", time.Since(start))
	} else {
		o.log.Info("session build complete", "session", id, "elapsed", time.Since(start))
	}
}

// AwaitResult returns the session's build result, blocking while a build is
// in flight. For an Empty session the build is run inline. A Failed session
// returns its build error; an unknown session returns ErrSessionNotFound.
func (o *Orchestrator) AwaitResult(ctx context.Context, id string) (*BuildResult, error) {
	for {
		o.mu.Lock()
		s, ok := o.sessions[id]
		if !ok {
			o.mu.Unlock()
			return nil, ErrSessionNotFound
		}
		s.lastAccess = time.Now()
		switch s.state {
		case StateReady:
			r := s.result
			o.mu.Unlock()
			return r, nil
		case StateFailed:
			err := s.err
			o.mu.Unlock()
			return nil, err
		case StateBuilding:
			done := s.done
			o.mu.Unlock()
			select {
			case <-done:
				// Re-read the outcome.
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case StateEmpty:
			o.mu.Unlock()
			if err := o.StartBuild(ctx, id); err != nil && !errors.Is(err, ErrAlreadyBuilding) {
				return nil, err
			}
		}
	}
}

// GetOrBuild ensures a build has run for the session and returns its
// terminal result. Used by endpoints that need a settled result before a
// follow-up step such as audio synthesis.
func (o *Orchestrator) GetOrBuild(ctx context.Context, id string) (*BuildResult, error) {
	if _, ok := o.Snapshot(id); !ok {
		return nil, ErrSessionNotFound
	}
	if err := o.StartBuild(ctx, id); err != nil && !errors.Is(err, ErrAlreadyBuilding) {
		return nil, err
	}
	return o.AwaitResult(ctx, id)
}

// Evict removes a session's state. A session mid-build is refused; the sweep
// retries it on a later cycle.
func (o *Orchestrator) Evict(id string) error {
	o.mu.Lock()
	s, ok := o.sessions[id]
	if !ok {
		o.mu.Unlock()
		return ErrSessionNotFound
	}
	if s.state == StateBuilding {
		o.mu.Unlock()
		return ErrAlreadyBuilding
	}
	delete(o.sessions, id)
	o.mu.Unlock()

	if o.OnEvict != nil {
		o.OnEvict(id)
	}
	return nil
}

// AttachAudio records the artifact key of the session's synthesized audio.
// Only a Ready session can carry audio.
func (o *Orchestrator) AttachAudio(id, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if s.state != StateReady {
		return errors.New("session has no build result to attach audio to")
	}
	s.audioKey = key
	s.lastAccess = time.Now()
	return nil
}

// AudioKey returns the artifact key of the session's synthesized audio, or
// "" when none has been attached.
func (o *Orchestrator) AudioKey(id string) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return ""
	}
	return s.audioKey
}

// sweep evicts sessions idle past the TTL. Sessions mid-build are never
// evicted.
func (o *Orchestrator) sweep() {
	cutoff := time.Now().Add(-o.ttl)

	o.mu.Lock()
	var evicted []string
	for id, s := range o.sessions {
		if s.state == StateBuilding {
			continue
		}
		if s.lastAccess.Before(cutoff) {
			delete(o.sessions, id)
			evicted = append(evicted, id)
		}
	}
	o.mu.Unlock()

	for _, id := range evicted {
		o.log.Info("evicted idle session", "session", id)
		if o.OnEvict != nil {
			o.OnEvict(id)
		}
	}
}

// Snapshot reports a session's current state without blocking on builds.
func (o *Orchestrator) Snapshot(id string) (State, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return StateEmpty, false
	}
	return s.state, true
}
