package storage

import (
	"fmt"
	"strings"
)

// State is the local lifecycle tag of a stored entry relative to the remote
// service. It is bookkeeping only and never persisted.
type State int

const (
	StateUnchanged State = iota
	StateNew
	StateModified
	StateDeleted
)

// States lists every lifecycle state in declaration order.
var States = []State{StateUnchanged, StateNew, StateModified, StateDeleted}

func (s State) String() string {
	switch s {
	case StateUnchanged:
		return "unchanged"
	case StateNew:
		return "new"
	case StateModified:
		return "modified"
	case StateDeleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Pending reports whether the state still has to be pushed to the remote.
func (s State) Pending() bool {
	return s == StateNew || s == StateModified || s == StateDeleted
}

// ParseState converts a state name as printed by String.
func ParseState(value string) (State, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, state := range States {
		if state.String() == normalized {
			return state, nil
		}
	}
	return 0, fmt.Errorf("unknown state %q (valid: unchanged, new, modified, deleted)", value)
}
