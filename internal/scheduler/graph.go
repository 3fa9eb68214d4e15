package scheduler

import (
	"time"

	"github.com/taskflowhq/taskflow-api/internal/constants"
	"github.com/taskflowhq/taskflow-api/internal/models"
	"github.com/taskflowhq/taskflow-api/internal/repository"
)

// fifo is a FIFO queue over task IDs. The head index avoids reslicing the
// front on every pop.
type fifo struct {
	items []uint64
	head  int
}

func (q *fifo) push(v uint64) {
	q.items = append(q.items, v)
}

func (q *fifo) pop() (uint64, bool) {
	if q.head >= len(q.items) {
		return 0, false
	}
	v := q.items[q.head]
	q.head++
	return v, true
}

// Snapshot is a consistent view of one project's tasks and edges, read once
// at the start of an operation. All traversals compute against it; a
// concurrent mutation is simply seen by the next invocation.
type Snapshot struct {
	tasks map[uint64]*models.Task
	order []uint64 // task IDs by position
	succ  map[uint64][]uint64
	pred  map[uint64][]uint64
}

// NewSnapshot builds a snapshot from tasks (assumed position-ordered) and
// edges. Edges referencing unknown tasks are ignored.
func NewSnapshot(tasks []models.Task, edges []models.TaskDependency) *Snapshot {
	s := &Snapshot{
		tasks: make(map[uint64]*models.Task, len(tasks)),
		order: make([]uint64, 0, len(tasks)),
		succ:  make(map[uint64][]uint64),
		pred:  make(map[uint64][]uint64),
	}
	for i := range tasks {
		t := &tasks[i]
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	for _, e := range edges {
		if _, ok := s.tasks[e.FromTaskID]; !ok {
			continue
		}
		if _, ok := s.tasks[e.ToTaskID]; !ok {
			continue
		}
		s.succ[e.FromTaskID] = append(s.succ[e.FromTaskID], e.ToTaskID)
		s.pred[e.ToTaskID] = append(s.pred[e.ToTaskID], e.FromTaskID)
	}
	return s
}

// PathExists reports whether to is reachable from from along existing edges.
// Used as the cycle probe before inserting an edge: adding from→to creates a
// cycle exactly when from is already reachable from to.
func (s *Snapshot) PathExists(from, to uint64) bool {
	if from == to {
		return true
	}
	seen := map[uint64]bool{from: true}
	var q fifo
	q.push(from)
	for {
		cur, ok := q.pop()
		if !ok {
			return false
		}
		for _, next := range s.succ[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				q.push(next)
			}
		}
	}
}

// TopoOrder runs Kahn's algorithm. It returns the topological order and the
// IDs never dequeued; a non-empty second slice means a residual cycle.
// Position order breaks ties so the result is deterministic.
func (s *Snapshot) TopoOrder() ([]uint64, []uint64) {
	indegree := make(map[uint64]int, len(s.tasks))
	for _, id := range s.order {
		indegree[id] = len(s.pred[id])
	}

	var q fifo
	for _, id := range s.order {
		if indegree[id] == 0 {
			q.push(id)
		}
	}

	order := make([]uint64, 0, len(s.tasks))
	for {
		id, ok := q.pop()
		if !ok {
			break
		}
		order = append(order, id)
		for _, next := range s.succ[id] {
			indegree[next]--
			if indegree[next] == 0 {
				q.push(next)
			}
		}
	}

	if len(order) == len(s.tasks) {
		return order, nil
	}

	inOrder := make(map[uint64]bool, len(order))
	for _, id := range order {
		inOrder[id] = true
	}
	var stuck []uint64
	for _, id := range s.order {
		if !inOrder[id] {
			stuck = append(stuck, id)
		}
	}
	return order, stuck
}

// durationDays is the whole-day span between start and due. Same-day tasks
// have zero duration, which is legal.
func durationDays(start, due time.Time) int {
	return int(dateOnly(due).Sub(dateOnly(start)).Hours() / 24)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TaskSchedule is one task's critical-path annotation, in whole days relative
// to the project's earliest start.
type TaskSchedule struct {
	TaskID         uint64 `json:"task_id"`
	Duration       int    `json:"duration"`
	EarliestStart  int    `json:"earliest_start"`
	EarliestFinish int    `json:"earliest_finish"`
	LatestStart    int    `json:"latest_start"`
	LatestFinish   int    `json:"latest_finish"`
	Slack          int    `json:"slack"`
	Critical       bool   `json:"critical"`
}

// CriticalPathResult is the outcome of a critical-path computation.
type CriticalPathResult struct {
	// Tasks holds annotations for every dated task, in topological order.
	Tasks []TaskSchedule `json:"tasks"`
	// CriticalPath lists zero-slack task IDs ordered by earliest start.
	CriticalPath []uint64 `json:"critical_path"`
	// ProjectLength is the minimum completion time in days.
	ProjectLength int `json:"project_length"`
}

// CriticalPath runs the standard forward-pass/backward-pass computation over
// the dated tasks of the snapshot. Tasks missing a start or due date are
// excluded; edges touching them do not constrain the dated subgraph. Returns
// the stuck task IDs when the graph has a residual cycle.
func (s *Snapshot) CriticalPath() (*CriticalPathResult, []uint64) {
	order, stuck := s.TopoOrder()
	if len(stuck) > 0 {
		return nil, stuck
	}

	dated := make(map[uint64]bool, len(order))
	for _, id := range order {
		if s.tasks[id].Dated() {
			dated[id] = true
		}
	}

	dur := make(map[uint64]int, len(dated))
	for id := range dated {
		t := s.tasks[id]
		dur[id] = durationDays(*t.StartDate, *t.DueDate)
	}

	// Forward pass: earliest start is the max earliest finish among dated
	// predecessors.
	es := make(map[uint64]int, len(dated))
	ef := make(map[uint64]int, len(dated))
	projectLength := 0
	for _, id := range order {
		if !dated[id] {
			continue
		}
		start := 0
		for _, p := range s.pred[id] {
			if dated[p] && ef[p] > start {
				start = ef[p]
			}
		}
		es[id] = start
		ef[id] = start + dur[id]
		if ef[id] > projectLength {
			projectLength = ef[id]
		}
	}

	// Backward pass: latest finish is the min latest start among dated
	// successors, defaulting to the project end for sinks.
	ls := make(map[uint64]int, len(dated))
	lf := make(map[uint64]int, len(dated))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if !dated[id] {
			continue
		}
		finish := projectLength
		for _, nxt := range s.succ[id] {
			if dated[nxt] && ls[nxt] < finish {
				finish = ls[nxt]
			}
		}
		lf[id] = finish
		ls[id] = finish - dur[id]
	}

	result := &CriticalPathResult{ProjectLength: projectLength}
	for _, id := range order {
		if !dated[id] {
			continue
		}
		slack := ls[id] - es[id]
		result.Tasks = append(result.Tasks, TaskSchedule{
			TaskID:         id,
			Duration:       dur[id],
			EarliestStart:  es[id],
			EarliestFinish: ef[id],
			LatestStart:    ls[id],
			LatestFinish:   lf[id],
			Slack:          slack,
			Critical:       slack == 0,
		})
	}

	// Zero-slack tasks ordered by earliest start form the critical path.
	for start := 0; start <= projectLength; start++ {
		for _, ts := range result.Tasks {
			if ts.Critical && ts.EarliestStart == start {
				result.CriticalPath = append(result.CriticalPath, ts.TaskID)
			}
		}
	}

	return result, nil
}

// AutoSchedule fills missing dates via a forward topological pass: the
// earliest feasible start is the maximum due date among direct predecessors
// plus one day, defaulting to today for sources. A manually set date is never
// overwritten; only its missing counterpart is filled, so tasks that already
// carry both dates are left untouched. Returns the stuck task IDs when a
// residual cycle prevents the traversal from completing.
func (s *Snapshot) AutoSchedule(today time.Time) ([]repository.DateAssignment, []uint64) {
	order, stuck := s.TopoOrder()
	if len(stuck) > 0 {
		return nil, stuck
	}

	today = dateOnly(today)

	// effectiveDue carries both pre-existing and freshly assigned due dates
	// forward through the traversal.
	effectiveDue := make(map[uint64]time.Time, len(order))
	var assignments []repository.DateAssignment

	for _, id := range order {
		t := s.tasks[id]
		if t.Dated() {
			effectiveDue[id] = dateOnly(*t.DueDate)
			continue
		}

		var start time.Time
		if t.StartDate != nil {
			start = dateOnly(*t.StartDate)
		} else {
			start = today
			for _, p := range s.pred[id] {
				if due, ok := effectiveDue[p]; ok {
					candidate := due.AddDate(0, 0, 1)
					if candidate.After(start) {
						start = candidate
					}
				}
			}
		}

		var due time.Time
		if t.DueDate != nil {
			due = dateOnly(*t.DueDate)
			if start.After(due) {
				// Predecessors push past the manual due; collapse to a
				// zero-duration task rather than move the due.
				start = due
			}
		} else {
			due = start.AddDate(0, 0, constants.DefaultTaskDurationDays)
		}

		assignments = append(assignments, repository.DateAssignment{
			TaskID:    id,
			StartDate: start,
			DueDate:   due,
		})
		effectiveDue[id] = due
	}

	return assignments, nil
}

// ChainPairs returns the consecutive (from, to) pairs of the snapshot's
// position order, the shape of the auto-generated finish-to-start chain.
func (s *Snapshot) ChainPairs() [][2]uint64 {
	if len(s.order) < 2 {
		return nil
	}
	pairs := make([][2]uint64, 0, len(s.order)-1)
	for i := 0; i+1 < len(s.order); i++ {
		pairs = append(pairs, [2]uint64{s.order[i], s.order[i+1]})
	}
	return pairs
}
