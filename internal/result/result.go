// Package result provides the tri-state outcome type returned by
// idempotent maintenance operations: Success when the operation changed
// something, Unchanged when the desired state already held. Genuine
// failures travel on the error return, never inside a Result.
package result

// State tags the outcome of an idempotent operation.
type State int

const (
	// Unchanged means the target state already held and nothing was done.
	Unchanged State = iota
	// Success means the operation brought the target into the desired state.
	Success
)

// String returns the lowercase tag used in CLI output and logs.
func (s State) String() string {
	if s == Success {
		return "success"
	}
	return "unchanged"
}

// Result is a tagged outcome with an optional payload. The payload is
// meaningful only when State is Success; unchanged results never carry
// one.
type Result[T any] struct {
	State State
	Value T
}

// Successful reports a state change with no payload.
func Successful[T any]() Result[T] {
	return Result[T]{State: Success}
}

// SuccessfulValue reports a state change carrying a payload, such as a
// freshly generated password.
func SuccessfulValue[T any](value T) Result[T] {
	return Result[T]{State: Success, Value: value}
}

// NoChange reports that the desired state already held.
func NoChange[T any]() Result[T] {
	return Result[T]{State: Unchanged}
}

// Changed reports whether the operation modified anything.
func (r Result[T]) Changed() bool {
	return r.State == Success
}

// IfChanged maps a boolean change signal (typically an affected-row
// count) onto a payload-free Result.
func IfChanged[T any](changed bool) Result[T] {
	if changed {
		return Successful[T]()
	}
	return NoChange[T]()
}
