// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Outcome summarizes how a run ended.
type Outcome struct {
	Ticks     int    // number of ticks executed
	Makespan  int64  // label of the last executed tick
	Converged bool   // false when the tick ceiling stopped the run
	Warning   string // set when Converged is false
}

// Engine is the core object that holds the tick clock, the queues and the
// tick loop. It is single-threaded and not safe for concurrent use.
type Engine struct {
	cfg       Config
	processes []*Process

	ready   *ReadyQueue
	blocked *BlockedSet
	// pending holds processes in HANDOFF; they are promoted to READY first
	// thing on the next tick, never on the tick they entered HANDOFF.
	pending []*Process
	running *Process
	// quantumRemaining is only meaningful while running is set under RR.
	quantumRemaining int64

	tick  int
	log   *EventLog
	table *OccupancyTable

	ran     bool
	outcome Outcome
}

// NewEngine validates cfg and returns an engine ready for RegisterProcess.
func NewEngine(cfg Config) (*Engine, error) {
	e := &Engine{}
	if err := e.Configure(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure validates cfg and resets every queue, the log, the table and
// the registered processes.
func (e *Engine) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg.withDefaults()
	e.processes = nil
	e.ready = NewReadyQueue()
	e.blocked = NewBlockedSet()
	e.pending = nil
	e.running = nil
	e.quantumRemaining = 0
	e.tick = 0
	e.log = NewEventLog()
	e.table = NewOccupancyTable(nil)
	e.ran = false
	e.outcome = Outcome{}
	return nil
}

// RegisterProcess adds a process before Run. Names must be unique and at most
// MaxProcesses processes may be registered.
func (e *Engine) RegisterProcess(name string, arrival int64, bursts []Burst) error {
	if e.ran {
		return ErrAlreadyRun
	}
	if name == "" {
		return &ConfigError{Field: "name", Reason: "process name must not be empty"}
	}
	for _, p := range e.processes {
		if p.Name == name {
			return &ConfigError{Field: "name", Reason: fmt.Sprintf("duplicate process name %q", name)}
		}
	}
	if len(e.processes) >= MaxProcesses {
		return &ConfigError{Field: "processes", Reason: fmt.Sprintf("at most %d processes are supported", MaxProcesses)}
	}
	if arrival < 0 || arrival%TickUnit != 0 {
		return &ConfigError{Field: name + ".arrival", Reason: fmt.Sprintf("must be a non-negative multiple of %d, got %d", TickUnit, arrival)}
	}
	if err := validateBursts(name, bursts); err != nil {
		return err
	}
	p := NewProcess(name, arrival, bursts)
	p.row = RowProcess(len(e.processes))
	e.processes = append(e.processes, p)
	return nil
}

// Run advances the simulation until every process terminates or the tick
// ceiling is reached. Hitting the ceiling is reported through Outcome, not as
// an error.
func (e *Engine) Run() (Outcome, error) {
	if e.ran {
		return e.outcome, ErrAlreadyRun
	}
	if len(e.processes) == 0 {
		return Outcome{}, &ConfigError{Field: "processes", Reason: "no processes registered"}
	}
	e.ran = true
	e.table = NewOccupancyTable(e.names())

	logrus.Infof("Starting %s simulation with %d processes, quantum=%d, max ticks=%d",
		e.cfg.Algorithm, len(e.processes), e.cfg.Quantum, e.cfg.MaxTicks)

	for {
		e.step()
		if e.done() {
			e.outcome = Outcome{Ticks: e.tick, Makespan: e.Clock(), Converged: true}
			break
		}
		if e.tick >= e.cfg.MaxTicks {
			e.outcome = Outcome{
				Ticks:    e.tick,
				Makespan: e.Clock(),
				Warning:  fmt.Sprintf("simulation stopped after %d ticks before every process terminated", e.tick),
			}
			logrus.Warnf("[tick %04d] %s", e.tick, e.outcome.Warning)
			break
		}
	}
	logrus.Infof("[tick %04d] Simulation ended, makespan=%d, events=%d", e.tick, e.outcome.Makespan, e.log.Len())
	return e.outcome, nil
}

// step executes one tick. The order of the phases decides every tie-break.
func (e *Engine) step() {
	k := e.tick
	e.table.EnsureColumn(k)
	e.table.ClearColumn(k)

	e.promotePending()
	if !e.ready.Empty() {
		e.table.SetCell(RowReady, k, e.ready.Names())
	}
	e.admitArrivals()
	e.countdownBlocked()
	if e.cfg.Algorithm == RoundRobin {
		e.preemptExpired()
	}
	e.dispatch()
	e.execute()

	if !e.ready.Empty() {
		e.table.SetCell(RowReady, k, e.ready.Names())
	}
	e.table.SetCell(RowBlocked, k, e.blocked.Names())
	for _, p := range e.ready.Items() {
		p.ReadyWait += TickUnit
	}
	e.tick++
}

// promotePending moves every HANDOFF process to the ready tail, in the order
// they entered HANDOFF.
func (e *Engine) promotePending() {
	for _, p := range e.pending {
		p.State = StateReady
		e.ready.Enqueue(p)
		e.record(EventPromote, p, StateHandoff, StateReady, "")
	}
	e.pending = nil
}

// admitArrivals hands off NEW processes whose arrival falls within the
// current tick, in registration order.
func (e *Engine) admitArrivals() {
	now := e.label()
	for _, p := range e.processes {
		if p.State == StateNew && p.ArrivalTime <= now {
			e.handoff(p, StateNew, EventArrival)
		}
	}
}

// countdownBlocked charges one tick of I/O to every blocked process and
// releases those whose wait is over.
func (e *Engine) countdownBlocked() {
	var released []*Process
	for _, p := range e.blocked.Items() {
		p.remainingBlock -= TickUnit
		p.IOServed += TickUnit
		if p.remainingBlock <= 0 {
			released = append(released, p)
		}
	}
	for _, p := range released {
		e.blocked.Remove(p)
		p.AdvancePhase()
		if p.IsTerminated() {
			e.terminate(p, StateBlocked)
			continue
		}
		e.handoff(p, StateBlocked, EventUnblock)
	}
}

// preemptExpired returns the running process to the ready tail once its
// quantum is spent.
func (e *Engine) preemptExpired() {
	p := e.running
	if p == nil || e.quantumRemaining > 0 {
		return
	}
	if !p.IsTerminated() {
		p.State = StateReady
		e.ready.Enqueue(p)
		e.record(EventPreempt, p, StateRunning, StateReady, "")
		e.table.SetCell(RowReady, e.tick, e.ready.Names())
	}
	e.running = nil
	e.quantumRemaining = 0
}

// dispatch gives an idle CPU to the head of the ready queue.
func (e *Engine) dispatch() {
	if e.running != nil || e.ready.Empty() {
		return
	}
	p := e.ready.Dequeue()
	p.State = StateRunning
	e.running = p
	detail := ""
	if e.cfg.Algorithm == RoundRobin {
		e.quantumRemaining = e.cfg.Quantum
		detail = fmt.Sprintf("quantum %d", e.cfg.Quantum)
	}
	e.record(EventDispatch, p, StateReady, StateRunning, detail)
}

// execute runs the current process for one tick of CPU.
func (e *Engine) execute() {
	p := e.running
	if p == nil {
		return
	}
	phase, ok := p.CurrentPhase()
	if !ok || phase.Kind != BurstCPU {
		return
	}
	e.table.SetCell(p.row, e.tick, CPUMark)
	if p.FirstRun < 0 {
		p.FirstRun = int64(e.tick) * TickUnit
	}
	p.remainingInPhase -= TickUnit
	p.CPUServed += TickUnit
	if e.cfg.Algorithm == RoundRobin {
		e.quantumRemaining -= TickUnit
	}
	if p.remainingInPhase > 0 {
		return
	}

	p.AdvancePhase()
	next, ok := p.CurrentPhase()
	switch {
	case !ok:
		e.terminate(p, StateRunning)
		e.running = nil
		e.quantumRemaining = 0
	case next.Kind == BurstIO:
		p.State = StateBlocked
		p.remainingBlock = next.Duration
		e.blocked.Add(p)
		e.record(EventBlock, p, StateRunning, StateBlocked, fmt.Sprintf("IO %d", next.Duration))
		e.running = nil
		e.quantumRemaining = 0
	default:
		// another CPU phase: keep the CPU, remainingInPhase is already armed
	}
}

// handoff puts p in HANDOFF for promotion on the next tick and labels the OS row.
func (e *Engine) handoff(p *Process, from ProcessState, kind EventKind) {
	p.HandoffCount++
	p.State = StateHandoff
	e.pending = append(e.pending, p)
	label := fmt.Sprintf("%d%s", p.HandoffCount, p.Name)
	e.table.AppendCell(RowOS, e.tick, label)
	e.record(kind, p, from, StateHandoff, label)
}

func (e *Engine) terminate(p *Process, from ProcessState) {
	p.State = StateTerminated
	p.Finish = e.label()
	e.record(EventFinish, p, from, StateTerminated, "")
}

func (e *Engine) record(kind EventKind, p *Process, from, to ProcessState, detail string) {
	ev := Event{
		Time:    e.label(),
		Tick:    e.tick,
		Kind:    kind,
		Process: p.Name,
		From:    from,
		To:      to,
		Detail:  detail,
	}
	e.log.Append(ev)
	logrus.Debugf("[tick %04d] %s", e.tick, ev)
}

// done reports whether every process has terminated and nothing is left in
// any queue, the running slot or the handoff set.
func (e *Engine) done() bool {
	for _, p := range e.processes {
		if p.State != StateTerminated {
			return false
		}
	}
	return e.ready.Empty() && e.blocked.Empty() && e.running == nil && len(e.pending) == 0
}

// label is the timestamp of the current tick: the end of its interval.
func (e *Engine) label() int64 {
	return int64(e.tick+1) * TickUnit
}

func (e *Engine) names() []string {
	names := make([]string, len(e.processes))
	for i, p := range e.processes {
		names[i] = p.Name
	}
	return names
}

// Clock returns the simulated time elapsed so far.
func (e *Engine) Clock() int64 { return int64(e.tick) * TickUnit }

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Processes returns snapshots of the registered processes in registration
// order. Changing them does not affect the engine.
func (e *Engine) Processes() []*Process {
	out := make([]*Process, len(e.processes))
	for i, p := range e.processes {
		out[i] = p.clone()
	}
	return out
}

// Events returns a copy of the event log.
func (e *Engine) Events() []Event { return e.log.Events() }

// Table returns a copy of the occupancy table.
func (e *Engine) Table() *OccupancyTable { return e.table.Clone() }

// Outcome returns how the last run ended.
func (e *Engine) Outcome() Outcome { return e.outcome }

// Running returns a snapshot of the process holding the CPU, or nil.
func (e *Engine) Running() *Process {
	if e.running == nil {
		return nil
	}
	return e.running.clone()
}
