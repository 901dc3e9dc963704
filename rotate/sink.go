package rotate

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/plus3/blockfall/grid"
	"github.com/plus3/blockfall/shape"
)

// Reason classifies why a rotation or shift did not happen.
type Reason uint8

const (
	ReasonUnsupported Reason = iota + 1
	ReasonOutOfBounds
	ReasonOverlap
)

func (r Reason) String() string {
	switch r {
	case ReasonUnsupported:
		return "unsupported"
	case ReasonOutOfBounds:
		return "out of bounds"
	case ReasonOverlap:
		return "overlap"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// Axis names the bounds dimension a trial node violated.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisRow
	AxisCol
)

func (a Axis) String() string {
	switch a {
	case AxisRow:
		return "row"
	case AxisCol:
		return "col"
	default:
		return "none"
	}
}

// Rejection describes a refused rotation or shift. Row and Col identify the
// first offending trial node; they are zero for ReasonUnsupported.
type Rejection struct {
	Kind     shape.Kind
	Reason   Reason
	Axis     Axis
	Row, Col int
	Occupant grid.Marker
}

// Sink receives rejection diagnostics. Implementations must not touch the grid.
type Sink interface {
	Rejected(r Rejection)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(r Rejection)

func (f SinkFunc) Rejected(r Rejection) {
	f(r)
}

// Discard drops every rejection.
var Discard Sink = SinkFunc(func(Rejection) {})

// LogSink reports rejections at debug level.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Rejected(r Rejection) {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}

	kv := []any{"shape", r.Kind, "reason", r.Reason}
	switch r.Reason {
	case ReasonOutOfBounds:
		kv = append(kv, "axis", r.Axis, "row", r.Row, "col", r.Col)
	case ReasonOverlap:
		kv = append(kv, "row", r.Row, "col", r.Col, "occupant", r.Occupant)
	}
	logger.Debug("rotation refused", kv...)
}

// Recorder keeps every rejection in order. Intended for tests.
type Recorder struct {
	Rejections []Rejection
}

func (r *Recorder) Rejected(rej Rejection) {
	r.Rejections = append(r.Rejections, rej)
}

// Last returns the most recent rejection, if any.
func (r *Recorder) Last() (Rejection, bool) {
	if len(r.Rejections) == 0 {
		return Rejection{}, false
	}
	return r.Rejections[len(r.Rejections)-1], true
}

// Reset forgets recorded rejections.
func (r *Recorder) Reset() {
	r.Rejections = r.Rejections[:0]
}
