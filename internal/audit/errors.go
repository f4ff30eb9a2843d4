package audit

import "errors"

// ErrInboxFull signals the worker inbox is saturated and the event was
// dropped. Emitters count it like any other append failure.
var ErrInboxFull = errors.New("audit inbox full")
