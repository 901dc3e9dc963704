// Package feedback defines the fire-and-forget notification sink used for
// haptic-style feedback around game events. Notifiers never report errors
// back to the caller, and nothing in the rotation core depends on them.
package feedback

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
)

// Kind names a feedback pattern.
type Kind uint8

const (
	Default Kind = iota
	Vibrate
	Selection
	Success
	Warning
	Failure
	LightImpact
	MediumImpact
	HeavyImpact
)

var kindNames = [...]string{
	Default:      "default",
	Vibrate:      "vibrate",
	Selection:    "selection",
	Success:      "success",
	Warning:      "warning",
	Failure:      "failure",
	LightImpact:  "light-impact",
	MediumImpact: "medium-impact",
	HeavyImpact:  "heavy-impact",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Notifier receives feedback requests.
type Notifier interface {
	Notify(k Kind)
}

// Func adapts a function to a Notifier.
type Func func(k Kind)

func (f Func) Notify(k Kind) {
	f(k)
}

// Nop ignores every notification.
var Nop Notifier = Func(func(Kind) {})

// LogNotifier writes each notification to a logger at debug level.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(k Kind) {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("feedback", "kind", k)
}

// Recorder keeps every notification in order. Intended for tests.
type Recorder struct {
	Kinds []Kind
}

func (r *Recorder) Notify(k Kind) {
	r.Kinds = append(r.Kinds, k)
}

// Count returns how many times k was notified.
func (r *Recorder) Count(k Kind) int {
	n := 0
	for _, got := range r.Kinds {
		if got == k {
			n++
		}
	}
	return n
}

// Has reports whether k was notified at least once.
func (r *Recorder) Has(k Kind) bool {
	return slices.Contains(r.Kinds, k)
}
