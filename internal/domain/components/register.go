package components

import (
	"errors"
	"fmt"

	"github.com/ncomes/MechanicalArt-sub001/internal/domain/rig"
	"github.com/ncomes/MechanicalArt-sub001/internal/domain/scene"
)

// Component type tags.
const (
	TypeWorld           = "world"
	TypeCog             = "cog"
	TypePelvis          = "pelvis"
	TypeFK              = "fk"
	TypeIK              = "ik"
	TypeMultiConstraint = "multiconstraint"
	TypeTwist           = "twist"
)

// Argument names.
const (
	ArgJoint       = "joint"
	ArgStartJoint  = "start_joint"
	ArgEndJoint    = "end_joint"
	ArgSource      = "source_object"
	ArgTargets     = "targets"
	ArgDefaultName = "default_name"
	ArgJoints      = "joints"
)

var (
	ErrMissingJoint   = errors.New("no joint to build on")
	ErrChainTooShort  = errors.New("chain too short")
	ErrNoSourceHandle = errors.New("space switch needs a source handle")
	ErrNoTargets      = errors.New("space switch needs targets")
)

// Definitions returns every built-in component definition.
func Definitions() []rig.Definition {
	return []rig.Definition{
		{Type: TypeWorld, Version: 1, SingleInstance: true, Build: buildWorld,
			Description: "Top-level placement handle driving the skeleton root"},
		{Type: TypeCog, Version: 1, SingleInstance: true, Build: buildCog,
			Description: "Centre of gravity handle, placed on the pelvis"},
		{Type: TypePelvis, Version: 1, SingleInstance: true, Build: buildPelvis,
			Description: "Pelvis handle driving the pelvis joint"},
		{Type: TypeFK, Version: 2, Build: buildFK,
			Description: "Forward kinematics: one handle per chain joint"},
		{Type: TypeIK, Version: 1, Build: buildIK,
			Description: "End handle plus pole vector on a chain"},
		{Type: TypeMultiConstraint, Version: 1, Nested: true, Build: buildMultiConstraint,
			Description: "Space switch nested under a handle"},
		{Type: TypeTwist, Version: 1, AutoDerived: true, Build: buildTwist, Derive: deriveTwist,
			Description: "Twist joint followers, derived from twist sets"},
	}
}

// Register adds the built-in types to reg.
func Register(reg *rig.Registry) error {
	for _, def := range Definitions() {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("registering %s: %w", def.Type, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in types.
func NewRegistry() *rig.Registry {
	reg := rig.NewRegistry()
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}

func base(sc *scene.Scene, id scene.NodeID) string {
	return scene.BaseName(sc.Name(id))
}
