package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported engine, component and panic
	// error. It is a LogHandler writing to slog.Default() unless replaced.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler replaces DefaultHandler. Nil restores a default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		h = &LogHandler{}
	}
	DefaultHandler = h
}

func currentHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report hands a host or invariant failure to the handler, stamping it if
// it carries no timestamp.
func Report(err *EngineError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	currentHandler().HandleError(err)
}

// ReportPanic hands a recovered panic to the handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	currentHandler().HandlePanic(err)
}

// ReportComponentError hands a failed component invocation to the handler.
func ReportComponentError(err *ComponentError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	currentHandler().HandleComponentError(err)
}

// Recover reports a panic of the deferring function as a PanicError for op
// and lets the function return normally. An *InvariantError is reported and
// then re-panicked, since it means the engine's own state is broken.
//
//	defer errors.Recover("devserver.writePump")
func Recover(op string) {
	if r := recover(); r != nil {
		recovered(op, r, nil)
	}
}

// RecoverWithCallback is Recover that also passes the panic value to
// callback once it has been reported.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		recovered(op, r, callback)
	}
}

func recovered(op string, r any, callback func(any)) {
	ReportPanic(&PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	})
	if inv, ok := r.(*InvariantError); ok {
		panic(inv)
	}
	if callback != nil {
		callback(r)
	}
}

// CaptureStack returns the caller's stack, one function and file:line pair
// per frame. Frames inside the runtime's panic machinery are left out so a
// trace taken during recovery starts near the panic site.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") && !strings.HasPrefix(frame.Function, packagePath+".") {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

const packagePath = "github.com/go-drift/reactron/pkg/errors"
