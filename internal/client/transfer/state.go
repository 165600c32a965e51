package transfer

import "fmt"

// State is a step of the upload state machine.
type State int

const (
	Idle State = iota
	Encrypting
	SlotAllocated
	Uploading
	Registering
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Encrypting:
		return "encrypting"
	case SlotAllocated:
		return "slot allocated"
	case Uploading:
		return "uploading"
	case Registering:
		return "registering"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Done || s == Failed
}

// Error is a failed upload. State is where the transfer was when it failed;
// Err is the cause and is what errors.Is and errors.As see.
type Error struct {
	State State
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upload failed while %s: %v", e.State, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
