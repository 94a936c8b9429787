package skeleton

import (
	"errors"
	"fmt"
)

// Structural errors returned by Parse.
var (
	ErrRootNotFound   = errors.New("skeleton root not found")
	ErrDuplicateName  = errors.New("duplicate node name")
	ErrEndBeforeStart = errors.New("chain end before chain start")
)

// StructuralError describes a hierarchy problem tied to one node.
type StructuralError struct {
	Category Category
	Node     string
	Err      error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Err, e.Node, e.Category)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
