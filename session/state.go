package session

import (
	"fmt"
	"time"

	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/rotate"
	"github.com/plus3/blockfall/shape"
)

// Action is a player request applied at the start of the next frame.
type Action uint8

const (
	RotateAction Action = iota + 1
	MoveLeft
	MoveRight
	SoftDrop
	HardDrop
)

func (a Action) String() string {
	switch a {
	case RotateAction:
		return "rotate"
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case SoftDrop:
		return "soft-drop"
	case HardDrop:
		return "hard-drop"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

// ParseScript maps a compact action string to actions: R rotate, < left,
// > right, D soft drop, H or space hard drop. Letters are case-insensitive.
func ParseScript(script string) ([]Action, error) {
	actions := make([]Action, 0, len(script))
	for i, ch := range script {
		switch ch {
		case 'R', 'r':
			actions = append(actions, RotateAction)
		case '<':
			actions = append(actions, MoveLeft)
		case '>':
			actions = append(actions, MoveRight)
		case 'D', 'd':
			actions = append(actions, SoftDrop)
		case ' ', 'H', 'h':
			actions = append(actions, HardDrop)
		default:
			return nil, fmt.Errorf("session: script position %d: unknown action %q", i, ch)
		}
	}
	return actions, nil
}

// State is the mutable board shared by all systems of one session.
type State struct {
	Grid    *grid.Grid
	Engine  *rotate.Engine
	Bag     *shape.Bag
	Palette map[shape.Kind]grid.Marker

	// Active is the falling piece, nil between a lock and the next spawn.
	Active *shape.Piece

	Gravity   time.Duration
	LockDelay time.Duration

	Score    int
	Lines    int
	Level    int
	Locked   int
	GameOver bool

	pending   []Action
	fallTimer time.Duration
	lockTimer time.Duration
	grounded  bool
}

func (s *State) background() grid.Marker {
	return s.Grid.Background()
}

// groundedNow reports whether the active piece cannot move down one row.
func (s *State) groundedNow() bool {
	if s.Active == nil {
		return false
	}
	return !s.Engine.Fits(s.Active, s.Active.TrialShift(-1, 0), s.background())
}

// spawnOrigin centres new pieces one row below the ceiling so offsets of +1
// row stay inside the grid.
func (s *State) spawnOrigin() (row, col int) {
	b := s.Grid.Bounds()
	return b.RowMax - 1, b.ColMin + b.Cols()/2 - 1
}

// Status is a read-only summary of a session.
type Status struct {
	Score    int
	Lines    int
	Level    int
	Locked   int
	GameOver bool
	Active   shape.Kind
	Next     []shape.Kind
}
