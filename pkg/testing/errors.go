package testing

import (
	"sync"
	"testing"

	"github.com/go-drift/reactron/pkg/errors"
)

// ErrorRecorder is an errors.ErrorHandler that keeps every report.
type ErrorRecorder struct {
	mu         sync.Mutex
	Errors     []*errors.EngineError
	Panics     []*errors.PanicError
	Components []*errors.ComponentError
}

// CaptureErrors installs an ErrorRecorder as the global error handler for
// the duration of t.
func CaptureErrors(t *testing.T) *ErrorRecorder {
	rec := &ErrorRecorder{}
	errors.SetHandler(rec)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return rec
}

func (r *ErrorRecorder) HandleError(err *errors.EngineError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, err)
}

func (r *ErrorRecorder) HandlePanic(err *errors.PanicError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Panics = append(r.Panics, err)
}

func (r *ErrorRecorder) HandleComponentError(err *errors.ComponentError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Components = append(r.Components, err)
}

// Count returns the total number of reports.
func (r *ErrorRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors) + len(r.Panics) + len(r.Components)
}
