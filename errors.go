package liveview

import (
	"errors"
	"fmt"

	"github.com/e7canasta/orion-care-sensor/modules/live-view/internal/delivery"
)

// ErrFrameFlow marks a new-sample callback that found no sample. It is
// counted in Stats and never shown to the user.
var ErrFrameFlow = delivery.ErrNoSample

// ErrStopTransition marks a pipeline that refused to stop. It is logged
// and never returned.
var ErrStopTransition = errors.New("failed to set pipeline to null state")

// InitializationError is returned by New when the engine runtime cannot be
// initialized.
type InitializationError struct {
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed: %v", e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// PipelineBuildError is returned by Start when the pipeline description
// cannot be turned into a pipeline.
type PipelineBuildError struct {
	// Spec is the description that was parsed
	Spec string
	Err  error
}

func (e *PipelineBuildError) Error() string {
	return fmt.Sprintf("pipeline build failed: %v", e.Err)
}

func (e *PipelineBuildError) Unwrap() error { return e.Err }

// StateTransitionError is returned by Start when the pipeline refuses to
// enter the playing state.
type StateTransitionError struct {
	Err error
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("state transition failed: %v", e.Err)
}

func (e *StateTransitionError) Unwrap() error { return e.Err }
