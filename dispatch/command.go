// Package dispatch exposes the registry's command surface as a closed
// set of tagged variants, one per operation, so an embedding shell gets
// exhaustiveness from the type system instead of matching on command
// strings.
package dispatch

import (
	"github.com/jdbancal/MyFavoriteDouble/registry"
	"github.com/jdbancal/MyFavoriteDouble/scalar"
)

// Command is the sealed set of registry operations. Exactly the types
// in this file implement it.
type Command interface {
	isCommand()
}

// New creates a default-constructed value.
type New struct{}

// NewFromBuffer creates a value from a 1x1 host buffer.
type NewFromBuffer struct {
	Buffer *scalar.Buffer
}

// CopyOf creates an independent copy of an existing value.
type CopyOf struct {
	Source registry.Handle
}

// Delete releases a value. Exactly once per handle.
type Delete struct {
	Target registry.Handle
}

// IsValid asks whether a handle is currently live.
type IsValid struct {
	Target registry.Handle
}

// Display renders a value to the dispatcher's output writer.
type Display struct {
	Target registry.Handle
}

// ToBuffer exports a value as a 1x1 host buffer.
type ToBuffer struct {
	Target registry.Handle
}

// Plus creates a new value holding the component-wise sum of two others.
type Plus struct {
	A registry.Handle
	B registry.Handle
}

func (New) isCommand()           {}
func (NewFromBuffer) isCommand() {}
func (CopyOf) isCommand()        {}
func (Delete) isCommand()        {}
func (IsValid) isCommand()       {}
func (Display) isCommand()       {}
func (ToBuffer) isCommand()      {}
func (Plus) isCommand()          {}
