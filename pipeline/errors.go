package pipeline

import (
	"errors"

	"mediapass/naming"
)

var (
	// ErrConfig wraps every setting that cannot be turned into a command.
	ErrConfig = errors.New("invalid configuration")

	// ErrCollision is returned when an output would overwrite a batch input
	// or another output.
	ErrCollision = naming.ErrCollision

	// ErrMissingResource is returned when an executable, input or output
	// directory does not exist.
	ErrMissingResource = errors.New("missing resource")
)
