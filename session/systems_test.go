package session

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/blockfall/feedback"
	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/rotate"
	"github.com/plus3/blockfall/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	g, err := grid.New(grid.Bounds{RowMin: 0, RowMax: 19, ColMin: 0, ColMax: 9}, 0)
	require.NoError(t, err)

	palette := make(map[shape.Kind]grid.Marker)
	for i, k := range shape.Catalog() {
		palette[k] = grid.Marker(i + 1)
	}

	return &State{
		Grid:      g,
		Engine:    rotate.New(g),
		Bag:       shape.NewBag(3),
		Palette:   palette,
		Gravity:   time.Hour,
		LockDelay: 0,
		Level:     1,
	}
}

func activate(t *testing.T, state *State, p *shape.Piece) {
	t.Helper()
	for _, n := range p.Nodes() {
		require.NoError(t, state.Grid.SetFill(n.Row, n.Col, n.Color))
	}
	state.Active = p
}

func TestLineClear(t *testing.T) {
	state := newTestState(t)

	// Row 0 is full except columns 3..6; row 1 holds a single stray cell.
	for _, c := range []int{0, 1, 2, 7, 8, 9} {
		require.NoError(t, state.Grid.SetFill(0, c, 9))
	}
	require.NoError(t, state.Grid.SetFill(1, 8, 9))

	activate(t, state, shape.NewPiece(shape.KindI, 1, 5, 4))

	rec := &feedback.Recorder{}
	scheduler := NewScheduler(state, rec)
	scheduler.Register(&InputSystem{})
	scheduler.Register(&GravitySystem{})
	scheduler.Register(&LockSystem{})
	scheduler.Register(&LineClearSystem{})

	state.pending = append(state.pending, HardDrop)
	scheduler.Once(time.Millisecond)

	assert.Nil(t, state.Active)
	assert.Equal(t, 1, state.Lines)
	assert.Equal(t, 100+2*5, state.Score)
	assert.Equal(t, 1, state.Level)
	assert.Equal(t, []grid.Cell{{Row: 0, Col: 8, Marker: 9}}, state.Grid.Snapshot().Filled())
	assert.Equal(t, []feedback.Kind{feedback.HeavyImpact, feedback.Success}, rec.Kinds)
}

func TestLineClearWaitsForLock(t *testing.T) {
	state := newTestState(t)
	for c := 0; c < 10; c++ {
		require.NoError(t, state.Grid.SetFill(0, c, 9))
	}
	activate(t, state, shape.NewPiece(shape.KindO, 2, 10, 4))

	frame := &Frame{State: state, Commands: newCommands()}
	(&LineClearSystem{}).Execute(frame)
	assert.Equal(t, 0, state.Lines, "rows are not collapsed under a falling piece")

	state.Active = nil
	(&LineClearSystem{}).Execute(frame)
	assert.Equal(t, 1, state.Lines)
}

func TestLevelProgression(t *testing.T) {
	state := newTestState(t)
	state.Lines = 8
	for r := 0; r < 2; r++ {
		for c := 0; c < 10; c++ {
			require.NoError(t, state.Grid.SetFill(r, c, 9))
		}
	}

	(&LineClearSystem{}).Execute(&Frame{State: state, Commands: newCommands()})
	assert.Equal(t, 10, state.Lines)
	assert.Equal(t, 2, state.Level)
	assert.Equal(t, 200, state.Score)
}

func TestSpawnBlocked(t *testing.T) {
	state := newTestState(t)
	row, col := state.spawnOrigin()
	for c := col - 2; c <= col+3; c++ {
		require.NoError(t, state.Grid.SetFill(row, c, 9))
		require.NoError(t, state.Grid.SetFill(row+1, c, 9))
	}
	before := state.Grid.Snapshot()

	commands := newCommands()
	(&SpawnSystem{}).Execute(&Frame{State: state, Commands: commands})

	assert.True(t, state.GameOver)
	assert.Nil(t, state.Active)
	assert.True(t, before.Equal(state.Grid.Snapshot()), "a blocked spawn paints nothing")
	assert.Equal(t, []feedback.Kind{feedback.Warning}, commands.notifications)
}

func TestLockDelay(t *testing.T) {
	state := newTestState(t)
	state.LockDelay = 100 * time.Millisecond
	activate(t, state, shape.NewPiece(shape.KindO, 2, 0, 4))

	gravity, lock := &GravitySystem{}, &LockSystem{}
	step := func(dt time.Duration) {
		frame := &Frame{DeltaTime: dt, State: state, Commands: newCommands()}
		gravity.Execute(frame)
		lock.Execute(frame)
	}

	step(60 * time.Millisecond)
	assert.NotNil(t, state.Active, "first grounded frame starts the timer")
	step(60 * time.Millisecond)
	assert.NotNil(t, state.Active)
	step(60 * time.Millisecond)
	assert.Nil(t, state.Active)
	assert.Equal(t, 1, state.Locked)
	assert.Len(t, state.Grid.Snapshot().Filled(), 4, "locked cells stay in the grid")
}

func TestCommandsFlush(t *testing.T) {
	commands := newCommands()
	var order []string

	commands.Defer(func() { order = append(order, "deferred") })
	commands.Notify(feedback.Success)

	commands.Flush(feedback.Func(func(k feedback.Kind) {
		order = append(order, k.String())
	}))
	assert.Equal(t, []string{"success", "deferred"}, order)

	commands.Flush(feedback.Func(func(k feedback.Kind) {
		t.Errorf("unexpected notification %s after flush", k)
	}))
}

type countingSystem struct {
	ExecuteCount int
	LastDelta    time.Duration
}

func (s *countingSystem) Execute(frame *Frame) {
	s.ExecuteCount++
	s.LastDelta = frame.DeltaTime
}

func TestScheduler(t *testing.T) {
	t.Run("system execution order and delta time", func(t *testing.T) {
		scheduler := NewScheduler(newTestState(t), nil)
		var order []int
		scheduler.Register(systemFunc(func(*Frame) { order = append(order, 1) }))
		scheduler.Register(systemFunc(func(*Frame) { order = append(order, 2) }))
		counter := &countingSystem{}
		scheduler.Register(counter)

		scheduler.Once(250 * time.Millisecond)

		assert.Equal(t, []int{1, 2}, order)
		assert.Equal(t, 1, counter.ExecuteCount)
		assert.Equal(t, 250*time.Millisecond, counter.LastDelta)

		stats := scheduler.Stats()
		assert.Equal(t, "countingSystem", stats.Systems[2].Name)
		assert.Equal(t, int64(3), stats.TotalExecutions)
	})

	t.Run("stats before any frame", func(t *testing.T) {
		scheduler := NewScheduler(newTestState(t), nil)
		scheduler.Register(&countingSystem{})

		stats := scheduler.Stats()
		assert.Equal(t, time.Duration(0), stats.Systems[0].MinDuration)
		assert.Equal(t, time.Duration(0), stats.Systems[0].AvgDuration)
	})

	t.Run("context cancellation in run", func(t *testing.T) {
		scheduler := NewScheduler(newTestState(t), nil)
		counter := &countingSystem{}
		scheduler.Register(counter)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan bool)
		go func() {
			scheduler.Run(ctx, time.Millisecond)
			done <- true
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
			t.Fatal("scheduler did not stop after context cancellation")
		}

		assert.Greater(t, counter.ExecuteCount, 0)
	})
}

type systemFunc func(*Frame)

func (f systemFunc) Execute(frame *Frame) {
	f(frame)
}
