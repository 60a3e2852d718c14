package ui

import "github.com/scribe-term/scribe/internal/kernel"

// kernelStartedMsg reports the outcome of a kernel launch.
type kernelStartedMsg struct {
	interpreter string
	err         error
}

// execDoneMsg carries the terminal result of one cell execution.
type execDoneMsg struct {
	cell int
	res  *kernel.Result
	err  error
}

// refreshSettledMsg reports that the coordinator's post-cell catalog refresh
// has finished, so the next queued cell can be submitted without racing it.
type refreshSettledMsg struct{}

// fileChangedMsg reports an external modification of the notebook file.
type fileChangedMsg struct{}

// watchErrMsg reports a watcher failure; watching stops but editing goes on.
type watchErrMsg struct{ err error }

// repaintMsg forces a redraw after background record updates settle.
type repaintMsg struct{}
