package schedule

import (
	"sort"
	"time"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

const (
	// SlotHeight is the vertical pitch of one stacked task
	SlotHeight = 50
	// SlotPadding is the offset of the first slot from the lane top
	SlotPadding = 8
	// LanePadding is added below the last slot
	LanePadding = 16
	// MinLaneHeight is the height of a lane with one or zero tasks
	MinLaneHeight = 60
)

// Slot is a task and its vertical position index within a lane
type Slot struct {
	Task  entities.Task
	Index int
}

// Lane holds the tasks sharing one production line label
type Lane struct {
	Line  string
	Slots []Slot
}

// GroupByLine buckets tasks by line. Lanes come back sorted by line label;
// inside a lane tasks keep their input order and each task takes the next
// slot index. Slots are ordinal: two tasks get different slots even when
// their dates never overlap.
func GroupByLine(tasks []entities.Task) []Lane {
	byLine := make(map[string][]Slot)
	for _, task := range tasks {
		slots := byLine[task.Line]
		byLine[task.Line] = append(slots, Slot{Task: task, Index: len(slots)})
	}

	lines := make([]string, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Strings(lines)

	lanes := make([]Lane, 0, len(lines))
	for _, line := range lines {
		lanes = append(lanes, Lane{Line: line, Slots: byLine[line]})
	}
	return lanes
}

// RowHeight returns the pixel height of a lane holding taskCount tasks
func RowHeight(taskCount int) int {
	h := taskCount*SlotHeight + LanePadding
	if h < MinLaneHeight {
		return MinLaneHeight
	}
	return h
}

// SlotOffset returns the vertical offset of a slot from its lane's top
func SlotOffset(slot int) int {
	return slot*SlotHeight + SlotPadding
}

// IsOverdue reports whether a task ended before today and is not completed
func IsOverdue(task entities.Task, now time.Time, loc *time.Location) bool {
	if task.Status == entities.Completed {
		return false
	}
	return Normalize(task.End, loc).Before(Normalize(now, loc))
}
