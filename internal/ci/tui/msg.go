package tui

import "github.com/hervold/jukeboard/internal/ci/pipeline"

// Msg is the interface for all watch TUI messages.
// All message types implement this sealed interface.
//
//sumtype:decl
type Msg interface {
	sealed()
}

// MsgJobStatus is sent when a job or step changes status. Step is -1 for
// job-level changes.
type MsgJobStatus struct {
	JobID  string
	Status pipeline.Status
	Step   int
}

func (MsgJobStatus) sealed() {}

// MsgRunFinished is sent when the workflow run has settled.
type MsgRunFinished struct {
	Result *pipeline.Result
	Err    error
}

func (MsgRunFinished) sealed() {}
