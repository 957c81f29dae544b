// Implements the ReadyQueue and BlockedSet that hold processes between dispatches.

package sim

import (
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// ReadyQueue is a FIFO of READY processes. Insertion order is dispatch order
// for both algorithms; RR differs only in re-enqueueing preempted processes.
type ReadyQueue struct {
	q *linkedlistqueue.Queue
}

// NewReadyQueue returns an empty queue.
func NewReadyQueue() *ReadyQueue {
	return &ReadyQueue{q: linkedlistqueue.New()}
}

// Enqueue adds a process to the tail.
func (rq *ReadyQueue) Enqueue(p *Process) {
	rq.q.Enqueue(p)
}

// Dequeue removes the head. Returns nil if the queue is empty.
func (rq *ReadyQueue) Dequeue() *Process {
	v, ok := rq.q.Dequeue()
	if !ok {
		return nil
	}
	return v.(*Process)
}

// Peek returns the head without removing it, or nil.
func (rq *ReadyQueue) Peek() *Process {
	v, ok := rq.q.Peek()
	if !ok {
		return nil
	}
	return v.(*Process)
}

// Len returns the number of queued processes.
func (rq *ReadyQueue) Len() int { return rq.q.Size() }

// Empty reports whether nothing is queued.
func (rq *ReadyQueue) Empty() bool { return rq.q.Empty() }

// Items returns the queued processes head first.
func (rq *ReadyQueue) Items() []*Process {
	return toProcesses(rq.q.Values())
}

// Names joins the names of queued READY processes with ", ".
func (rq *ReadyQueue) Names() string {
	var names []string
	for _, p := range rq.Items() {
		if p.State == StateReady {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

// BlockedSet holds BLOCKED processes. Each member counts down on its own;
// insertion order is kept only so that snapshots are deterministic.
type BlockedSet struct {
	list *arraylist.List
}

// NewBlockedSet returns an empty set.
func NewBlockedSet() *BlockedSet {
	return &BlockedSet{list: arraylist.New()}
}

// Add inserts a process.
func (bs *BlockedSet) Add(p *Process) {
	bs.list.Add(p)
}

// Remove deletes a process; no-op if absent.
func (bs *BlockedSet) Remove(p *Process) {
	if i := bs.list.IndexOf(p); i >= 0 {
		bs.list.Remove(i)
	}
}

// Len returns the number of blocked processes.
func (bs *BlockedSet) Len() int { return bs.list.Size() }

// Empty reports whether nothing is blocked.
func (bs *BlockedSet) Empty() bool { return bs.list.Empty() }

// Items returns the blocked processes in insertion order.
func (bs *BlockedSet) Items() []*Process {
	return toProcesses(bs.list.Values())
}

// Names joins the names of blocked processes with ", ".
func (bs *BlockedSet) Names() string {
	items := bs.Items()
	names := make([]string, len(items))
	for i, p := range items {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

func toProcesses(values []interface{}) []*Process {
	out := make([]*Process, len(values))
	for i, v := range values {
		out[i] = v.(*Process)
	}
	return out
}
