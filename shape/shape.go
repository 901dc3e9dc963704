// Package shape defines the rotation capability shared by every falling piece
// and the closed set of tetromino variants that implement it.
//
// A shape only knows its own nodes. It never reads or writes the grid; the
// rotate package validates a trial node set against the grid before asking
// the shape to commit it.
package shape

import (
	"slices"

	"github.com/plus3/blockfall/grid"
)

// Node is one cell of a shape's footprint together with the colour it paints.
type Node struct {
	Row   int
	Col   int
	Color grid.Marker
}

// Shape is the capability set the rotation engine depends on.
type Shape interface {
	// Kind identifies the variant for diagnostics.
	Kind() Kind

	// Nodes returns a copy of the current footprint.
	Nodes() []Node

	// TrialRotation returns the footprint of the next orientation without
	// changing any state. ok is false when the variant has no next orientation.
	TrialRotation() (trial []Node, ok bool)

	// CommitRotation advances the orientation and adopts trial as the footprint.
	CommitRotation(trial []Node)
}

// Mover is a Shape that can also be translated.
type Mover interface {
	Shape

	// TrialShift returns the footprint moved by (dRow, dCol) without changing any state.
	TrialShift(dRow, dCol int) []Node

	// CommitShift moves the shape by (dRow, dCol).
	CommitShift(dRow, dCol int)
}

// Positions returns the (row, col) pairs of nodes, in order.
func Positions(nodes []Node) [][2]int {
	out := make([][2]int, len(nodes))
	for i, n := range nodes {
		out[i] = [2]int{n.Row, n.Col}
	}
	return out
}

// Offset is a node position relative to a piece's origin.
type Offset struct {
	Row, Col int
}

// rotate turns an offset a quarter turn clockwise. Rows grow upward.
func (o Offset) rotate() Offset {
	return Offset{Row: -o.Col, Col: o.Row}
}

// Piece is a tetromino-style shape: an origin plus a table of orientations,
// each a set of offsets from that origin.
type Piece struct {
	kind         Kind
	color        grid.Marker
	row, col     int
	orientations [][]Offset
	orientation  int
	nodes        []Node
}

var _ Mover = (*Piece)(nil)

// NewPiece places a piece of the given kind with its origin at (row, col) in
// its spawn orientation. It panics on an unknown kind.
func NewPiece(kind Kind, color grid.Marker, row, col int) *Piece {
	def, ok := catalog[kind]
	if !ok {
		panic("shape.NewPiece: unknown kind " + kind.String())
	}
	return newPiece(kind, color, row, col, orientationTable(def.spawn, def.turns))
}

func newPiece(kind Kind, color grid.Marker, row, col int, table [][]Offset) *Piece {
	p := &Piece{
		kind:         kind,
		color:        color,
		row:          row,
		col:          col,
		orientations: table,
	}
	p.nodes = p.place(p.row, p.col, p.orientation)
	return p
}

// orientationTable expands spawn offsets into turns successive quarter turns.
func orientationTable(spawn []Offset, turns int) [][]Offset {
	table := make([][]Offset, turns)
	current := slices.Clone(spawn)
	for i := range turns {
		table[i] = current
		next := make([]Offset, len(current))
		for j, o := range current {
			next[j] = o.rotate()
		}
		current = next
	}
	return table
}

func (p *Piece) place(row, col, orientation int) []Node {
	offsets := p.orientations[orientation]
	nodes := make([]Node, len(offsets))
	for i, o := range offsets {
		nodes[i] = Node{Row: row + o.Row, Col: col + o.Col, Color: p.color}
	}
	return nodes
}

func (p *Piece) Kind() Kind {
	return p.kind
}

// Color returns the marker every node of the piece paints.
func (p *Piece) Color() grid.Marker {
	return p.color
}

// Origin returns the pivot position of the piece.
func (p *Piece) Origin() (row, col int) {
	return p.row, p.col
}

// Orientation returns the current index into the orientation table.
func (p *Piece) Orientation() int {
	return p.orientation
}

// Orientations returns how many distinct orientations the piece cycles through.
func (p *Piece) Orientations() int {
	return len(p.orientations)
}

func (p *Piece) Nodes() []Node {
	return slices.Clone(p.nodes)
}

func (p *Piece) TrialRotation() ([]Node, bool) {
	if len(p.orientations) < 2 {
		return nil, false
	}
	next := (p.orientation + 1) % len(p.orientations)
	return p.place(p.row, p.col, next), true
}

func (p *Piece) CommitRotation(trial []Node) {
	p.orientation = (p.orientation + 1) % len(p.orientations)
	p.nodes = slices.Clone(trial)
}

func (p *Piece) TrialShift(dRow, dCol int) []Node {
	nodes := make([]Node, len(p.nodes))
	for i, n := range p.nodes {
		nodes[i] = Node{Row: n.Row + dRow, Col: n.Col + dCol, Color: n.Color}
	}
	return nodes
}

func (p *Piece) CommitShift(dRow, dCol int) {
	p.row += dRow
	p.col += dCol
	for i := range p.nodes {
		p.nodes[i].Row += dRow
		p.nodes[i].Col += dCol
	}
}
