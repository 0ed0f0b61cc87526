package cli

import "fmt"

type noSnapshotError struct {
	workspace string
}

func (e noSnapshotError) Error() string {
	return fmt.Sprintf("no saved map in workspace %q; run `mindmap new` or `mindmap import <file>` first", e.workspace)
}

func errNoSnapshot(workspace string) error {
	return noSnapshotError{workspace: workspace}
}

type badSlotError struct {
	index int
	count int
}

func (e badSlotError) Error() string {
	return fmt.Sprintf("history slot %d does not exist (have %d)", e.index, e.count)
}

func errBadSlot(index, count int) error {
	return badSlotError{index: index, count: count}
}
