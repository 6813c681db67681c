// Package progress wraps go-pretty's progress writer behind a meter that
// degrades to a no-op when stderr is not a terminal. It only decorates the
// iteration; ordering and results are unaffected.
package progress

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-isatty"
)

// Meter tracks one unit-counted operation. The zero value is a no-op.
type Meter struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

// New starts rendering a tracker with the given message. total may be 0 for
// indeterminate work (tar streams do not announce a member count).
func New(message string, total int64) *Meter {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return &Meter{}
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetAutoStop(false)
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = false

	t := &progress.Tracker{Message: message, Total: total, Units: progress.UnitsDefault}
	pw.AppendTracker(t)
	go pw.Render()
	return &Meter{pw: pw, tracker: t}
}

// Inc advances the meter by n units.
func (m *Meter) Inc(n int64) {
	if m == nil || m.tracker == nil {
		return
	}
	m.tracker.Increment(n)
}

// Done marks the work finished and stops rendering.
func (m *Meter) Done() {
	if m == nil || m.tracker == nil {
		return
	}
	m.tracker.MarkAsDone()
	m.pw.Stop()
	for m.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
