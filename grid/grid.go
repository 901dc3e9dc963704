// Package grid provides the fixed-size occupancy store for a falling-block board.
// Every cell holds a Marker; one marker value per grid is designated as the
// background (empty) marker. All access is bounds-checked.
package grid

import (
	"fmt"
	"slices"
)

// Marker is the fill value of a cell. The grid's background marker means empty,
// any other value means filled with that colour.
type Marker int

// Cell is a single addressable grid position and its current marker.
type Cell struct {
	Row    int
	Col    int
	Marker Marker
}

// Bounds is the inclusive row and column range of a grid.
type Bounds struct {
	RowMin, RowMax int
	ColMin, ColMax int
}

// Rows returns the number of rows covered by the bounds.
func (b Bounds) Rows() int {
	return b.RowMax - b.RowMin + 1
}

// Cols returns the number of columns covered by the bounds.
func (b Bounds) Cols() int {
	return b.ColMax - b.ColMin + 1
}

// ContainsRow reports whether row lies within [RowMin, RowMax].
func (b Bounds) ContainsRow(row int) bool {
	return row >= b.RowMin && row <= b.RowMax
}

// ContainsCol reports whether col lies within [ColMin, ColMax].
func (b Bounds) ContainsCol(col int) bool {
	return col >= b.ColMin && col <= b.ColMax
}

// Contains reports whether (row, col) lies within the bounds.
func (b Bounds) Contains(row, col int) bool {
	return b.ContainsRow(row) && b.ContainsCol(col)
}

func (b Bounds) String() string {
	return fmt.Sprintf("rows [%d,%d] cols [%d,%d]", b.RowMin, b.RowMax, b.ColMin, b.ColMax)
}

// Grid is a fixed-size row-major array of cell markers.
// It is not safe for concurrent use; callers serialize access.
type Grid struct {
	bounds     Bounds
	background Marker
	cells      []Marker
}

// New creates a grid covering bounds with every cell set to background.
func New(bounds Bounds, background Marker) (*Grid, error) {
	if bounds.RowMax < bounds.RowMin || bounds.ColMax < bounds.ColMin {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBounds, bounds)
	}

	g := &Grid{
		bounds:     bounds,
		background: background,
		cells:      make([]Marker, bounds.Rows()*bounds.Cols()),
	}
	g.Reset()
	return g, nil
}

// Bounds returns the fixed range of the grid.
func (g *Grid) Bounds() Bounds {
	return g.bounds
}

// Background returns the designated empty marker.
func (g *Grid) Background() Marker {
	return g.background
}

// Contains reports whether (row, col) is addressable.
func (g *Grid) Contains(row, col int) bool {
	return g.bounds.Contains(row, col)
}

func (g *Grid) index(row, col int) (int, error) {
	if !g.bounds.Contains(row, col) {
		return 0, &OutOfBoundsError{Row: row, Col: col, Bounds: g.bounds}
	}
	return (row-g.bounds.RowMin)*g.bounds.Cols() + (col - g.bounds.ColMin), nil
}

// Cell returns the cell at (row, col).
func (g *Grid) Cell(row, col int) (Cell, error) {
	i, err := g.index(row, col)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Row: row, Col: col, Marker: g.cells[i]}, nil
}

// SetFill overwrites the marker of the cell at (row, col).
func (g *Grid) SetFill(row, col int, m Marker) error {
	i, err := g.index(row, col)
	if err != nil {
		return err
	}
	g.cells[i] = m
	return nil
}

// IsBackground reports whether the cell at (row, col) holds the background marker.
func (g *Grid) IsBackground(row, col int) (bool, error) {
	i, err := g.index(row, col)
	if err != nil {
		return false, err
	}
	return g.cells[i] == g.background, nil
}

// Reset sets every cell back to the background marker.
func (g *Grid) Reset() {
	for i := range g.cells {
		g.cells[i] = g.background
	}
}

// FullRows returns the rows, lowest first, in which no cell holds the background marker.
func (g *Grid) FullRows() []int {
	var rows []int
	cols := g.bounds.Cols()
	for r := 0; r < g.bounds.Rows(); r++ {
		line := g.cells[r*cols : (r+1)*cols]
		if !slices.Contains(line, g.background) {
			rows = append(rows, r+g.bounds.RowMin)
		}
	}
	return rows
}

// CollapseRows removes the given rows and shifts every row above them down.
// The rows vacated at the top are filled with the background marker.
// Row 0 is the floor, so "above" means a higher row index.
func (g *Grid) CollapseRows(rows []int) error {
	remove := make(map[int]bool, len(rows))
	for _, r := range rows {
		if !g.bounds.ContainsRow(r) {
			return &OutOfBoundsError{Row: r, Col: g.bounds.ColMin, Bounds: g.bounds}
		}
		remove[r-g.bounds.RowMin] = true
	}
	if len(remove) == 0 {
		return nil
	}

	cols := g.bounds.Cols()
	dst := 0
	for src := 0; src < g.bounds.Rows(); src++ {
		if remove[src] {
			continue
		}
		if dst != src {
			copy(g.cells[dst*cols:(dst+1)*cols], g.cells[src*cols:(src+1)*cols])
		}
		dst++
	}
	for i := dst * cols; i < len(g.cells); i++ {
		g.cells[i] = g.background
	}
	return nil
}

// Snapshot returns an immutable copy of the current cell markers.
func (g *Grid) Snapshot() Snapshot {
	return Snapshot{
		bounds:     g.bounds,
		background: g.background,
		cells:      slices.Clone(g.cells),
	}
}

// Snapshot is a point-in-time copy of a grid, used for rendering and comparisons.
type Snapshot struct {
	bounds     Bounds
	background Marker
	cells      []Marker
}

// Bounds returns the range the snapshot was taken over.
func (s Snapshot) Bounds() Bounds {
	return s.bounds
}

// Background returns the empty marker of the source grid.
func (s Snapshot) Background() Marker {
	return s.background
}

// At returns the marker at (row, col), or the background marker when out of range.
func (s Snapshot) At(row, col int) Marker {
	if !s.bounds.Contains(row, col) {
		return s.background
	}
	return s.cells[(row-s.bounds.RowMin)*s.bounds.Cols()+(col-s.bounds.ColMin)]
}

// Filled returns every non-background cell in row-major order.
func (s Snapshot) Filled() []Cell {
	var out []Cell
	cols := s.bounds.Cols()
	for i, m := range s.cells {
		if m == s.background {
			continue
		}
		out = append(out, Cell{
			Row:    i/cols + s.bounds.RowMin,
			Col:    i%cols + s.bounds.ColMin,
			Marker: m,
		})
	}
	return out
}

// Equal reports whether two snapshots have identical bounds, background and cells.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.bounds == other.bounds &&
		s.background == other.background &&
		slices.Equal(s.cells, other.cells)
}
