package session

import (
	"github.com/plus3/blockfall/feedback"
	"github.com/plus3/blockfall/rotate"
	"github.com/plus3/blockfall/shape"
)

// InputSystem applies queued player actions to the active piece.
type InputSystem struct{}

func (s *InputSystem) Execute(frame *Frame) {
	state := frame.State
	actions := state.pending
	state.pending = state.pending[:0]

	if state.GameOver {
		return
	}

	bg := state.background()
	for _, action := range actions {
		piece := state.Active
		if piece == nil {
			return
		}

		switch action {
		case RotateAction:
			switch state.Engine.Rotate(piece, bg) {
			case rotate.Accepted:
				state.lockTimer = 0
				frame.Commands.Notify(feedback.Success)
			default:
				frame.Commands.Notify(feedback.Failure)
			}

		case MoveLeft, MoveRight:
			dCol := -1
			if action == MoveRight {
				dCol = 1
			}
			if state.Engine.Shift(piece, 0, dCol, bg) == rotate.Accepted {
				state.lockTimer = 0
			}

		case SoftDrop:
			if state.Engine.Shift(piece, -1, 0, bg) == rotate.Accepted {
				state.Score++
				state.fallTimer = 0
			}

		case HardDrop:
			for state.Engine.Shift(piece, -1, 0, bg) == rotate.Accepted {
				state.Score += 2
			}
			state.fallTimer = 0
			state.lockTimer = state.LockDelay
			state.grounded = true
			return
		}
	}
}

// GravitySystem moves the active piece down one row per gravity interval and
// tracks how long it has rested on something.
type GravitySystem struct{}

func (s *GravitySystem) Execute(frame *Frame) {
	state := frame.State
	if state.GameOver || state.Active == nil {
		return
	}

	state.fallTimer += frame.DeltaTime
	for state.fallTimer >= state.Gravity {
		state.fallTimer -= state.Gravity
		if state.Engine.Shift(state.Active, -1, 0, state.background()) != rotate.Accepted {
			state.fallTimer = 0
			break
		}
	}

	wasGrounded := state.grounded
	state.grounded = state.groundedNow()
	switch {
	case !state.grounded:
		state.lockTimer = 0
	case wasGrounded:
		state.lockTimer += frame.DeltaTime
	}
}

// LockSystem settles a grounded piece once the lock delay has elapsed. The
// piece's cells stay filled in the grid; the piece itself is discarded.
type LockSystem struct{}

func (s *LockSystem) Execute(frame *Frame) {
	state := frame.State
	if state.GameOver || state.Active == nil || !state.grounded {
		return
	}
	if state.lockTimer < state.LockDelay {
		return
	}

	state.Active = nil
	state.Locked++
	state.lockTimer = 0
	state.grounded = false
	frame.Commands.Notify(feedback.HeavyImpact)
}

// LineClearSystem removes full rows once no piece is falling.
type LineClearSystem struct{}

func (s *LineClearSystem) Execute(frame *Frame) {
	state := frame.State
	if state.Active != nil {
		return
	}

	rows := state.Grid.FullRows()
	if len(rows) == 0 {
		return
	}

	if err := state.Grid.CollapseRows(rows); err != nil {
		panic(err)
	}

	state.Lines += len(rows)
	state.Score += len(rows) * 100
	state.Level = state.Lines/10 + 1
	frame.Commands.Notify(feedback.Success)
}

// SpawnSystem deals the next piece when none is falling. A spawn that would
// overlap settled cells ends the game.
type SpawnSystem struct{}

func (s *SpawnSystem) Execute(frame *Frame) {
	state := frame.State
	if state.GameOver || state.Active != nil {
		return
	}

	kind := state.Bag.Next()
	row, col := state.spawnOrigin()
	piece := shape.NewPiece(kind, state.Palette[kind], row, col)

	for _, n := range piece.Nodes() {
		free, err := state.Grid.IsBackground(n.Row, n.Col)
		if err != nil || !free {
			state.GameOver = true
			frame.Commands.Notify(feedback.Warning)
			return
		}
	}

	for _, n := range piece.Nodes() {
		if err := state.Grid.SetFill(n.Row, n.Col, n.Color); err != nil {
			panic(err)
		}
	}

	state.Active = piece
	state.fallTimer = 0
	state.lockTimer = 0
	state.grounded = false
	frame.Commands.Notify(feedback.Selection)
}
