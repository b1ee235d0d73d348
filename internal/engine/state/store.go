package state

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Object types.
const (
	TypeState   = "state"
	TypeChannel = "channel"
)

// Common is the descriptor part of an object.
type Common struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"` // value type: string, float, boolean, array
	Role  string `json:"role,omitempty"`
	Read  bool   `json:"read,omitempty"`
	Write bool   `json:"write,omitempty"`
	Def   any    `json:"def"`
}

// Object describes what lives under an id. It is created once and never
// rewritten by EnsureObject.
type Object struct {
	Type   string         `json:"type"`
	Common Common         `json:"common"`
	Native map[string]any `json:"native,omitempty"`
}

// State is the current value stored under an id.
type State struct {
	Val any       `json:"val"`
	Ack bool      `json:"ack"`
	Ts  time.Time `json:"ts"`
}

// Entry is an object with its current state, as returned by List.
type Entry struct {
	ID     string
	Object Object
	State  *State // nil for channels and never-written states
}

// Store is a hierarchical key/value state store. Ids are dot-delimited paths.
type Store interface {
	// EnsureObject creates the object if absent. A new state object whose
	// Common.Def is set starts with that value.
	EnsureObject(ctx context.Context, id string, obj Object) error
	// GetState returns nil, nil when no state exists.
	GetState(ctx context.Context, id string) (*State, error)
	SetState(ctx context.Context, id string, val any, ack bool) error
	// List returns the entry at prefix and every entry below it, sorted by
	// id. A trailing "." lists only the children; "" lists everything.
	List(ctx context.Context, prefix string) ([]Entry, error)
	Close() error
}

var errEmptyID = errors.New("state: id is required")

// Join builds a dot-delimited id from path segments.
func Join(parts ...string) string {
	return strings.Join(parts, ".")
}

// ReadOnlyState returns the descriptor used for values this program owns.
func ReadOnlyState(name, valueType string) Object {
	return Object{
		Type: TypeState,
		Common: Common{
			Name:  name,
			Type:  valueType,
			Read:  true,
			Write: false,
		},
		Native: map[string]any{},
	}
}

// Channel returns a grouping object.
func Channel(name string) Object {
	return Object{
		Type:   TypeChannel,
		Common: Common{Name: name},
		Native: map[string]any{},
	}
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errEmptyID
	}
	return nil
}

// underPrefix reports whether id is prefix itself or nested below it.
// Matching is per path segment, so "1" does not select "10.name". A prefix
// ending in "." selects only the children.
func underPrefix(id, prefix string) bool {
	if prefix == "" || strings.HasSuffix(prefix, ".") {
		return strings.HasPrefix(id, prefix)
	}
	return id == prefix || strings.HasPrefix(id, prefix+".")
}
