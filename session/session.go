// Package session runs a single falling-block board as an ordered set of
// systems: input, gravity, lock, line clear and spawn.
//
// A Session is single-threaded. Enqueue, Step and the accessors must all be
// called from the goroutine that owns the session; Run blocks that goroutine
// until its context is cancelled.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/feedback"
	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/rotate"
	"github.com/plus3/blockfall/shape"
)

// Session owns one board and the scheduler that advances it.
type Session struct {
	cfg       config.Config
	state     *State
	scheduler *Scheduler
	logger    *log.Logger
	notifier  feedback.Notifier
	sink      rotate.Sink
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for rotation diagnostics and, when haptics
// are enabled without an explicit notifier, for feedback.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithNotifier routes feedback notifications to n.
func WithNotifier(n feedback.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithSink routes rotation diagnostics to sink instead of the logger.
func WithSink(sink rotate.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// New builds a session from cfg. The first piece spawns on the first Step.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.sink == nil {
		s.sink = rotate.LogSink{Logger: s.logger}
	}
	if s.notifier == nil {
		s.notifier = feedback.Nop
		if cfg.Haptics {
			s.notifier = feedback.LogNotifier{Logger: s.logger}
		}
	}

	state, err := s.newState()
	if err != nil {
		return nil, err
	}
	s.state = state

	s.scheduler = NewScheduler(state, s.notifier)
	s.scheduler.Register(&InputSystem{})
	s.scheduler.Register(&GravitySystem{})
	s.scheduler.Register(&LockSystem{})
	s.scheduler.Register(&LineClearSystem{})
	s.scheduler.Register(&SpawnSystem{})

	s.logger.Debug("session created", "rows", cfg.Rows, "cols", cfg.Cols, "seed", cfg.Seed)
	return s, nil
}

func (s *Session) newState() (*State, error) {
	g, err := grid.New(s.cfg.Bounds(), s.cfg.BackgroundMarker())
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	palette, err := s.cfg.Markers()
	if err != nil {
		return nil, err
	}

	return &State{
		Grid:      g,
		Engine:    rotate.New(g, rotate.WithSink(s.sink)),
		Bag:       shape.NewBag(s.cfg.Seed),
		Palette:   palette,
		Gravity:   s.cfg.Gravity.Duration,
		LockDelay: s.cfg.LockDelay.Duration,
		Level:     1,
	}, nil
}

// Enqueue schedules an action for the next frame. Actions after game over are dropped.
func (s *Session) Enqueue(actions ...Action) {
	if s.state.GameOver {
		return
	}
	s.state.pending = append(s.state.pending, actions...)
}

// Step advances the board by one frame of dt.
func (s *Session) Step(dt time.Duration) {
	s.scheduler.Once(dt)
}

// Run steps the board every interval until ctx is cancelled.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	s.scheduler.Run(ctx, interval)
}

// Restart clears the board and starts over with a fresh bag from the configured seed.
func (s *Session) Restart() {
	s.state.Grid.Reset()
	s.state.Bag = shape.NewBag(s.cfg.Seed)
	s.state.Active = nil
	s.state.Score, s.state.Lines, s.state.Locked = 0, 0, 0
	s.state.Level = 1
	s.state.GameOver = false
	s.state.pending = s.state.pending[:0]
	s.state.fallTimer, s.state.lockTimer = 0, 0
	s.state.grounded = false
	s.logger.Debug("session restarted")
}

// Snapshot copies the current grid.
func (s *Session) Snapshot() grid.Snapshot {
	return s.state.Grid.Snapshot()
}

// Active returns a copy of the falling piece's nodes, or nil.
func (s *Session) Active() []shape.Node {
	if s.state.Active == nil {
		return nil
	}
	return s.state.Active.Nodes()
}

// Status summarizes score and piece state.
func (s *Session) Status() Status {
	st := Status{
		Score:    s.state.Score,
		Lines:    s.state.Lines,
		Level:    s.state.Level,
		Locked:   s.state.Locked,
		GameOver: s.state.GameOver,
		Next:     s.state.Bag.Peek(3),
	}
	if s.state.Active != nil {
		st.Active = s.state.Active.Kind()
	}
	return st
}

// Stats returns per-system execution statistics.
func (s *Session) Stats() *SchedulerStats {
	return s.scheduler.Stats()
}

// Config returns the configuration the session was built with.
func (s *Session) Config() config.Config {
	return s.cfg
}
