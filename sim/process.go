// Defines the Process struct that models one simulated process in the scheduler.
// Tracks the burst sequence, the active phase, countdowns and accounting used by reports.

package sim

import (
	"fmt"
	"strings"
)

// BurstKind distinguishes CPU demand from I/O demand.
type BurstKind string

const (
	BurstCPU BurstKind = "CPU"
	BurstIO  BurstKind = "IO"
)

// Burst is one contiguous phase of a process's lifecycle.
type Burst struct {
	Kind     BurstKind
	Duration int64 // positive multiple of TickUnit
}

func (b Burst) String() string {
	return fmt.Sprintf("%s(%d)", b.Kind, b.Duration)
}

// CPU and IO are shorthands for building burst sequences.
func CPU(d int64) Burst { return Burst{Kind: BurstCPU, Duration: d} }
func IO(d int64) Burst  { return Burst{Kind: BurstIO, Duration: d} }

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	StateNew        ProcessState = "NEW"
	StateReady      ProcessState = "READY"
	StateRunning    ProcessState = "RUNNING"
	StateBlocked    ProcessState = "BLOCKED"
	StateTerminated ProcessState = "TERMINATED"
	// StateHandoff is the one-tick "in the OS" state between an arrival or an
	// I/O completion and joining the ready queue.
	StateHandoff ProcessState = "HANDOFF"
)

// Process models a single process's lifecycle in the simulation.
type Process struct {
	Name        string // Unique identifier, also the occupancy row label
	ArrivalTime int64  // Multiple of TickUnit, >= 0

	bursts   []Burst // working sequence
	original []Burst // untouched copy for reporting

	cursor           int   // index of the active phase; len(bursts) means terminated
	remainingInPhase int64 // counts down while the active CPU phase runs
	remainingBlock   int64 // counts down while BLOCKED

	State        ProcessState
	HandoffCount int // number of passes through HANDOFF

	// Accounting, filled in by the engine.
	CPUServed int64 // CPU time actually consumed
	IOServed  int64 // I/O time actually waited
	ReadyWait int64 // time spent queued in READY
	FirstRun  int64 // start time of the first tick it ran, -1 until then
	Finish    int64 // label of the tick it terminated, -1 until then
	row       RowID
}

// NewProcess creates a process in the NEW state with the first phase armed.
// The burst slice is copied; callers may reuse it.
func NewProcess(name string, arrival int64, bursts []Burst) *Process {
	p := &Process{
		Name:        name,
		ArrivalTime: arrival,
		bursts:      append([]Burst(nil), bursts...),
		original:    append([]Burst(nil), bursts...),
		State:       StateNew,
		FirstRun:    -1,
		Finish:      -1,
	}
	if len(p.bursts) > 0 {
		p.remainingInPhase = p.bursts[0].Duration
	}
	return p
}

// CurrentPhase returns the active phase, or false once the process has run out of phases.
func (p *Process) CurrentPhase() (Burst, bool) {
	if p.cursor < len(p.bursts) {
		return p.bursts[p.cursor], true
	}
	return Burst{}, false
}

// AdvancePhase moves the cursor to the next phase and arms its countdown.
// Only cursor and remainingInPhase change.
func (p *Process) AdvancePhase() {
	p.cursor++
	if p.cursor < len(p.bursts) {
		p.remainingInPhase = p.bursts[p.cursor].Duration
	} else {
		p.remainingInPhase = 0
	}
}

// IsTerminated reports whether every phase has been consumed.
func (p *Process) IsTerminated() bool {
	return p.cursor >= len(p.bursts)
}

// Cursor returns the index of the active phase.
func (p *Process) Cursor() int { return p.cursor }

// RemainingInPhase returns what is left of the active CPU phase.
func (p *Process) RemainingInPhase() int64 { return p.remainingInPhase }

// RemainingBlock returns what is left of the current I/O wait.
func (p *Process) RemainingBlock() int64 { return p.remainingBlock }

// Bursts returns a copy of the original burst sequence.
func (p *Process) Bursts() []Burst {
	return append([]Burst(nil), p.original...)
}

// TotalCPUTime sums the CPU bursts of the original sequence.
func (p *Process) TotalCPUTime() int64 { return p.total(BurstCPU) }

// TotalIOTime sums the I/O bursts of the original sequence.
func (p *Process) TotalIOTime() int64 { return p.total(BurstIO) }

func (p *Process) total(kind BurstKind) int64 {
	var sum int64
	for _, b := range p.original {
		if b.Kind == kind {
			sum += b.Duration
		}
	}
	return sum
}

// Turnaround is Finish - ArrivalTime, or -1 if the process never finished.
func (p *Process) Turnaround() int64 {
	if p.Finish < 0 {
		return -1
	}
	return p.Finish - p.ArrivalTime
}

// Sequence renders the original bursts as "CPU(10) → IO(20) → CPU(10)".
func (p *Process) Sequence() string {
	parts := make([]string, len(p.original))
	for i, b := range p.original {
		parts[i] = b.String()
	}
	return strings.Join(parts, " → ")
}

// clone returns an independent copy, burst slices included.
func (p *Process) clone() *Process {
	cp := *p
	cp.bursts = append([]Burst(nil), p.bursts...)
	cp.original = append([]Burst(nil), p.original...)
	return &cp
}

// Row returns the occupancy row assigned at registration.
func (p *Process) Row() RowID { return p.row }

func (p Process) String() string {
	return fmt.Sprintf("Process: (Name: %s, State: %s, Cursor: %d/%d, ArrivalTime: %d)", p.Name, p.State, p.cursor, len(p.bursts), p.ArrivalTime)
}
