package errors

import pkgerrors "github.com/pkg/errors"

// StackTracer is satisfied by errors carrying a recorded stack trace.
type StackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// ErrorTracer pairs an operator-facing message with the underlying cause and
// its stack trace. Infrastructure failures (postgres, redis, kafka) travel
// through the engine as tracers; domain failures use ErrorDetails instead.
type ErrorTracer struct {
	Message string
	Err     error
}

// NewTracer creates a tracer with the given message and no cause yet.
func NewTracer(message string) *ErrorTracer {
	return &ErrorTracer{
		Message: message,
	}
}

// TracerFromError wraps err keeping its own text as the message. A stack
// trace is recorded at the call site unless err already carries one.
func TracerFromError(err error) *ErrorTracer {
	return NewTracer(err.Error()).Wrap(err)
}

// Wrap attaches the cause, recording a stack trace here unless one is
// already present.
func (e *ErrorTracer) Wrap(err error) *ErrorTracer {
	if _, ok := err.(StackTracer); ok {
		e.Err = err
	} else {
		e.Err = pkgerrors.WithStack(err)
	}

	return e
}

func (e *ErrorTracer) Error() string {
	return e.Message
}

func (e *ErrorTracer) Unwrap() error {
	return e.Err
}

// StackTrace exposes the cause's stack trace when it has one.
func (e *ErrorTracer) StackTrace() pkgerrors.StackTrace {
	if err, ok := e.Unwrap().(StackTracer); ok {
		return err.StackTrace()
	}
	return nil
}
