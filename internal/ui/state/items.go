package state

import "github.com/atomicstack/replay-control/internal/recorder"

// CloneItems produces a shallow copy of the provided recordings.
func CloneItems(items []recorder.Recording) []recorder.Recording {
	dup := make([]recorder.Recording, len(items))
	copy(dup, items)
	return dup
}
