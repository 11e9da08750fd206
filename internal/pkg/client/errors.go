package client

import "github.com/pkg/errors"

// ErrUnknownSignal indicates the server sent a signal that is neither GO nor WAIT.
var ErrUnknownSignal = errors.New("unknown signal")
