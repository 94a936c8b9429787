package rig

import (
	"errors"
	"fmt"
)

// Rig errors
var (
	ErrNotARig            = errors.New("not a valid rig")
	ErrNotPositionable    = errors.New("alignment node is not positionable")
	ErrDuplicateComponent = errors.New("component already exists")
	ErrUnknownType        = errors.New("unknown component type")
	ErrDuplicateType      = errors.New("component type already registered")
	ErrInvalidDefinition  = errors.New("component definition needs a type and a build function")
	ErrNoDocument         = errors.New("rig has no saved document")
	ErrNoSource           = errors.New("rig has no skeleton source")
	ErrNoBaker            = errors.New("rig has no baker")
	ErrDifferentScene     = errors.New("rigs live in different scenes")
	ErrInvalidIdentifier  = errors.New("invalid identifier format")
)

// BuildError records one fragment that could not be built.
type BuildError struct {
	Index int
	Key   ComponentKey
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("fragment %d (%s): %v", e.Index, e.Key, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
