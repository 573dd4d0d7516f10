package event

import "errors"

// ErrStopPropagation stops later listeners; Dispatch still returns nil
var ErrStopPropagation = errors.New("stop propagation")
