package driver

import "mako/internal/project"

// Queue is the builder's LIFO work list. An id waits in it at most once.
type Queue struct {
	items   []project.ModuleID
	pending map[project.ModuleID]struct{}
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[project.ModuleID]struct{})}
}

// Push adds id unless it is already waiting; it reports whether it was added.
func (q *Queue) Push(id project.ModuleID) bool {
	if _, ok := q.pending[id]; ok {
		return false
	}
	q.pending[id] = struct{}{}
	q.items = append(q.items, id)
	return true
}

// Pop removes the most recently pushed id.
func (q *Queue) Pop() (project.ModuleID, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	last := len(q.items) - 1
	id := q.items[last]
	q.items = q.items[:last]
	delete(q.pending, id)
	return id, true
}

func (q *Queue) Len() int { return len(q.items) }
