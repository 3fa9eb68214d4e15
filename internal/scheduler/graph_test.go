package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskflowhq/taskflow-api/internal/models"
)

func day(n int) *time.Time {
	t := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	return &t
}

func task(id uint64, position int, start, due *time.Time) models.Task {
	return models.Task{ID: id, Position: position, StartDate: start, DueDate: due, ProjectID: 1}
}

func edge(from, to uint64) models.TaskDependency {
	return models.TaskDependency{FromTaskID: from, ToTaskID: to, Kind: models.DependencyFinishToStart, ProjectID: 1}
}

func TestPathExists(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{task(1, 0, nil, nil), task(2, 1, nil, nil), task(3, 2, nil, nil), task(4, 3, nil, nil)},
		[]models.TaskDependency{edge(1, 2), edge(2, 3)},
	)

	assert.True(t, snap.PathExists(1, 3))
	assert.True(t, snap.PathExists(2, 3))
	assert.False(t, snap.PathExists(3, 1))
	assert.False(t, snap.PathExists(1, 4))
	assert.True(t, snap.PathExists(2, 2), "a node reaches itself")
}

func TestTopoOrder(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{task(3, 0, nil, nil), task(1, 1, nil, nil), task(2, 2, nil, nil)},
		[]models.TaskDependency{edge(1, 2), edge(2, 3)},
	)

	order, stuck := snap.TopoOrder()
	assert.Nil(t, stuck)
	assert.Equal(t, []uint64{1, 2, 3}, order)
}

func TestTopoOrder_ResidualCycle(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{task(1, 0, nil, nil), task(2, 1, nil, nil), task(3, 2, nil, nil), task(4, 3, nil, nil)},
		[]models.TaskDependency{edge(1, 2), edge(2, 3), edge(3, 2), edge(1, 4)},
	)

	order, stuck := snap.TopoOrder()
	assert.ElementsMatch(t, []uint64{2, 3}, stuck, "cycle members are never dequeued")
	assert.Contains(t, order, uint64(1))
	assert.Contains(t, order, uint64(4))
}

// The reference scenario: T1 two days, T2 (three days) and T3 (one day) both
// depend on T1. Longest chain is T1→T2 at five days; T3 can slip two days.
func TestCriticalPath_ReferenceScenario(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(2)),
			task(2, 1, day(2), day(5)),
			task(3, 2, day(2), day(3)),
		},
		[]models.TaskDependency{edge(1, 2), edge(1, 3)},
	)

	result, stuck := snap.CriticalPath()
	assert.Nil(t, stuck)
	assert.Equal(t, 5, result.ProjectLength)
	assert.Equal(t, []uint64{1, 2}, result.CriticalPath)

	bySlack := make(map[uint64]int)
	for _, ts := range result.Tasks {
		bySlack[ts.TaskID] = ts.Slack
	}
	assert.Equal(t, 0, bySlack[1])
	assert.Equal(t, 0, bySlack[2])
	assert.Equal(t, 2, bySlack[3])
}

func TestCriticalPath_ExcludesPartiallyDatedTasks(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(2)),
			task(2, 1, day(2), nil), // due missing: excluded
			task(3, 2, day(2), day(4)),
		},
		[]models.TaskDependency{edge(1, 2), edge(1, 3)},
	)

	result, stuck := snap.CriticalPath()
	assert.Nil(t, stuck)
	assert.Len(t, result.Tasks, 2)
	assert.Equal(t, []uint64{1, 3}, result.CriticalPath)
}

func TestCriticalPath_SameDayTaskHasZeroDuration(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(0)),
			task(2, 1, day(0), day(3)),
		},
		[]models.TaskDependency{edge(1, 2)},
	)

	result, stuck := snap.CriticalPath()
	assert.Nil(t, stuck)
	assert.Equal(t, 3, result.ProjectLength)
	assert.Equal(t, 0, result.Tasks[0].Duration)
	assert.True(t, result.Tasks[0].Critical)
}

func TestAutoSchedule(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(2)), // dated: untouched
			task(2, 1, nil, nil),       // depends on T1: starts day 3
			task(3, 2, nil, nil),       // depends on T2: starts after T2's due
			task(4, 3, nil, nil),       // no predecessors: starts today
		},
		[]models.TaskDependency{edge(1, 2), edge(2, 3)},
	)

	assignments, stuck := snap.AutoSchedule(today)
	assert.Nil(t, stuck)
	assert.Len(t, assignments, 3, "dated task untouched")

	byTask := make(map[uint64]struct{ start, due time.Time })
	for _, a := range assignments {
		byTask[a.TaskID] = struct{ start, due time.Time }{a.StartDate, a.DueDate}
	}

	// T2: predecessor due day 2, so start day 3, default 3-day duration.
	assert.Equal(t, *day(3), byTask[2].start)
	assert.Equal(t, *day(6), byTask[2].due)

	// T3: starts the day after T2's assigned due.
	assert.Equal(t, *day(7), byTask[3].start)
	assert.Equal(t, *day(10), byTask[3].due)

	// T4: no predecessors, defaults to today.
	assert.Equal(t, today, byTask[4].start)
	assert.Equal(t, today.AddDate(0, 0, 3), byTask[4].due)
}

func TestAutoSchedule_KeepsExistingDueWhenFillingStart(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := NewSnapshot(
		[]models.Task{task(1, 0, nil, day(10))},
		nil,
	)

	assignments, stuck := snap.AutoSchedule(today)
	assert.Nil(t, stuck)
	assert.Len(t, assignments, 1)
	assert.Equal(t, today, assignments[0].StartDate)
	assert.Equal(t, *day(10), assignments[0].DueDate)
}

func TestAutoSchedule_KeepsExistingStartWhenFillingDue(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(2)),
			task(2, 1, day(1), nil), // start set by hand, inside T1's span
			task(3, 2, day(5), nil), // start set by hand, no predecessors
		},
		[]models.TaskDependency{edge(1, 2)},
	)

	assignments, stuck := snap.AutoSchedule(today)
	assert.Nil(t, stuck)
	assert.Len(t, assignments, 2)

	byTask := make(map[uint64]struct{ start, due time.Time })
	for _, a := range assignments {
		byTask[a.TaskID] = struct{ start, due time.Time }{a.StartDate, a.DueDate}
	}

	// T2 keeps its hand-set start even though T1's due would push it later.
	assert.Equal(t, *day(1), byTask[2].start)
	assert.Equal(t, *day(4), byTask[2].due)

	// T3 keeps its hand-set start instead of falling back to today.
	assert.Equal(t, *day(5), byTask[3].start)
	assert.Equal(t, *day(8), byTask[3].due)
}

func TestAutoSchedule_CollapsesWhenPredecessorsPassManualDue(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := NewSnapshot(
		[]models.Task{
			task(1, 0, day(0), day(5)),
			task(2, 1, nil, day(2)), // due set by hand, before T1 finishes
		},
		[]models.TaskDependency{edge(1, 2)},
	)

	assignments, stuck := snap.AutoSchedule(today)
	assert.Nil(t, stuck)
	assert.Len(t, assignments, 1)

	// The hand-set due survives; the start collapses onto it.
	assert.Equal(t, *day(2), assignments[0].DueDate)
	assert.Equal(t, *day(2), assignments[0].StartDate)
}

func TestAutoSchedule_ReportsResidualCycle(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{task(1, 0, nil, nil), task(2, 1, nil, nil)},
		[]models.TaskDependency{edge(1, 2), edge(2, 1)},
	)

	assignments, stuck := snap.AutoSchedule(time.Now())
	assert.Nil(t, assignments)
	assert.ElementsMatch(t, []uint64{1, 2}, stuck)
}

func TestChainPairs(t *testing.T) {
	snap := NewSnapshot(
		[]models.Task{task(7, 0, nil, nil), task(3, 1, nil, nil), task(9, 2, nil, nil)},
		nil,
	)
	assert.Equal(t, [][2]uint64{{7, 3}, {3, 9}}, snap.ChainPairs())

	single := NewSnapshot([]models.Task{task(1, 0, nil, nil)}, nil)
	assert.Nil(t, single.ChainPairs())
}
