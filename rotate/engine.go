// Package rotate validates and commits shape rotations against a grid store.
//
// A rotation is all-or-nothing. The engine asks the shape for a trial node set,
// checks it against the grid bounds and then against occupancy, with the
// shape's own current footprint treated as vacant. Only when both checks pass
// does it commit the rotation on the shape and paint the new footprint. On
// every path, the cells filled by the shape after the call are exactly the
// shape's current nodes.
package rotate

import (
	"fmt"

	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/shape"
)

// Store is the part of the grid the engine reads and writes.
type Store interface {
	Bounds() grid.Bounds
	Cell(row, col int) (grid.Cell, error)
	SetFill(row, col int, m grid.Marker) error
	IsBackground(row, col int) (bool, error)
}

var _ Store = (*grid.Grid)(nil)

// Outcome is the result of a rotation or shift attempt.
type Outcome uint8

const (
	// Accepted means the shape moved and the grid shows its new footprint.
	Accepted Outcome = iota
	// Rejected means a bounds or occupancy check failed; nothing changed.
	Rejected
	// Unsupported means the shape has no next orientation; nothing changed.
	Unsupported
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("Outcome(%d)", uint8(o))
	}
}

// Engine validates and commits rotations against a single grid store.
// It is not safe for concurrent use.
type Engine struct {
	store Store
	sink  Sink
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink routes rejection diagnostics to sink.
func WithSink(sink Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// New creates an engine bound to store. Rejections are discarded unless a sink is given.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		sink:  Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AttemptRotate rotates s if the next orientation is in bounds and free.
// The outcome is observable only through the grid and shape state.
func (e *Engine) AttemptRotate(s shape.Shape, background grid.Marker) {
	e.Rotate(s, background)
}

// Rotate behaves like AttemptRotate and also reports the outcome.
func (e *Engine) Rotate(s shape.Shape, background grid.Marker) Outcome {
	trial, ok := s.TrialRotation()
	if !ok {
		e.sink.Rejected(Rejection{Kind: s.Kind(), Reason: ReasonUnsupported})
		return Unsupported
	}
	return e.apply(s, trial, background, func() {
		s.CommitRotation(trial)
	})
}

// Shift moves m by (dRow, dCol) under the same rules as Rotate.
func (e *Engine) Shift(m shape.Mover, dRow, dCol int, background grid.Marker) Outcome {
	trial := m.TrialShift(dRow, dCol)
	return e.apply(m, trial, background, func() {
		m.CommitShift(dRow, dCol)
	})
}

// Fits reports whether nodes lie in bounds on background cells, ignoring any
// cell currently occupied by s. The grid is left untouched.
func (e *Engine) Fits(s shape.Shape, nodes []shape.Node, background grid.Marker) bool {
	if _, ok := e.checkBounds(nodes); !ok {
		return false
	}

	old := s.Nodes()
	e.erase(old, background)
	_, ok := e.checkOccupancy(nodes)
	e.draw(old)
	return ok
}

func (e *Engine) apply(s shape.Shape, trial []shape.Node, background grid.Marker, commit func()) Outcome {
	if r, ok := e.checkBounds(trial); !ok {
		r.Kind = s.Kind()
		e.sink.Rejected(r)
		return Rejected
	}

	old := s.Nodes()
	e.erase(old, background)

	if r, ok := e.checkOccupancy(trial); !ok {
		e.draw(old)
		r.Kind = s.Kind()
		e.sink.Rejected(r)
		return Rejected
	}

	commit()
	e.draw(s.Nodes())
	return Accepted
}

// checkBounds tests rows before columns and stops at the first violation.
func (e *Engine) checkBounds(nodes []shape.Node) (Rejection, bool) {
	b := e.store.Bounds()
	for _, n := range nodes {
		if !b.ContainsRow(n.Row) {
			return Rejection{Reason: ReasonOutOfBounds, Axis: AxisRow, Row: n.Row, Col: n.Col}, false
		}
	}
	for _, n := range nodes {
		if !b.ContainsCol(n.Col) {
			return Rejection{Reason: ReasonOutOfBounds, Axis: AxisCol, Row: n.Row, Col: n.Col}, false
		}
	}
	return Rejection{}, true
}

// checkOccupancy expects the shape's own footprint to be cleared already.
func (e *Engine) checkOccupancy(nodes []shape.Node) (Rejection, bool) {
	for _, n := range nodes {
		free, err := e.store.IsBackground(n.Row, n.Col)
		if err != nil {
			panic(fmt.Errorf("rotate: occupancy check after bounds check: %w", err))
		}
		if !free {
			cell, _ := e.store.Cell(n.Row, n.Col)
			return Rejection{Reason: ReasonOverlap, Row: n.Row, Col: n.Col, Occupant: cell.Marker}, false
		}
	}
	return Rejection{}, true
}

// erase sets every node's cell to background.
func (e *Engine) erase(nodes []shape.Node, background grid.Marker) {
	for _, n := range nodes {
		e.set(n, background)
	}
}

// draw paints every node's cell with the node's own colour.
func (e *Engine) draw(nodes []shape.Node) {
	for _, n := range nodes {
		e.set(n, n.Color)
	}
}

// set fails only when the shape's geometry disagrees with the grid, which is a
// programming fault rather than a rejected move.
func (e *Engine) set(n shape.Node, m grid.Marker) {
	if err := e.store.SetFill(n.Row, n.Col, m); err != nil {
		panic(fmt.Errorf("rotate: shape footprint outside grid: %w", err))
	}
}
