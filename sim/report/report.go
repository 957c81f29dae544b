// Package report derives statistics, a compact CPU timeline and utilization
// figures from a finished simulation, and exports them. It only reads engine
// outputs and never mutates them.
package report

import (
	"github.com/inference-sim/cpusim/sim"
)

// Source is the read-only view of a finished run. *sim.Engine satisfies it.
type Source interface {
	Config() sim.Config
	Processes() []*sim.Process
	Events() []sim.Event
	Table() *sim.OccupancyTable
	Outcome() sim.Outcome
}

// Result is everything a renderer or the run history needs, in plain types.
type Result struct {
	Scenario  string `yaml:"scenario,omitempty"`
	Algorithm string `yaml:"algorithm"`
	Quantum   int64  `yaml:"quantum,omitempty"`
	Ticks     int    `yaml:"ticks"`
	Makespan  int64  `yaml:"makespan"`
	Converged bool   `yaml:"converged"`
	Warning   string `yaml:"warning,omitempty"`

	Processes   []ProcessStats `yaml:"processes"`
	Events      []EventRecord  `yaml:"events"`
	Timeline    []Segment      `yaml:"timeline"`
	Utilization Utilization    `yaml:"utilization"`
	Table       []TableRow     `yaml:"table"`
	Times       []int64        `yaml:"times"`
}

// EventRecord is a serializable copy of sim.Event.
type EventRecord struct {
	Time        int64  `yaml:"time"`
	Tick        int    `yaml:"tick"`
	Kind        string `yaml:"kind"`
	Process     string `yaml:"process"`
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Detail      string `yaml:"detail,omitempty"`
	Description string `yaml:"description"`
}

// TableRow is one row of the occupancy table with its display label.
type TableRow struct {
	Label string   `yaml:"label"`
	Cells []string `yaml:"cells"`
}

// Build collects the full report of a finished run.
func Build(scenario string, src Source) *Result {
	cfg := src.Config()
	out := src.Outcome()
	table := src.Table()
	r := &Result{
		Scenario:  scenario,
		Algorithm: string(cfg.Algorithm),
		Ticks:     out.Ticks,
		Makespan:  out.Makespan,
		Converged: out.Converged,
		Warning:   out.Warning,
		Processes: Stats(src.Processes()),
		Events:    Records(src.Events()),
		Timeline:  Timeline(table),
		Times:     table.Times(),
	}
	if cfg.Algorithm == sim.RoundRobin {
		r.Quantum = cfg.Quantum
	}
	r.Utilization = ComputeUtilization(r.Timeline, r.Processes, out.Ticks)
	for _, row := range table.Rows() {
		r.Table = append(r.Table, TableRow{Label: table.Label(row), Cells: table.Row(row)})
	}
	return r
}

// Records converts engine events into their serializable form.
func Records(events []sim.Event) []EventRecord {
	out := make([]EventRecord, len(events))
	for i, ev := range events {
		out[i] = EventRecord{
			Time:        ev.Time,
			Tick:        ev.Tick,
			Kind:        ev.Kind.String(),
			Process:     ev.Process,
			From:        string(ev.From),
			To:          string(ev.To),
			Detail:      ev.Detail,
			Description: ev.Description(),
		}
	}
	return out
}

// criticalKinds are the transitions worth a line in the summary.
var criticalKinds = map[string]bool{
	sim.EventArrival.String(): true,
	sim.EventFinish.String():  true,
	sim.EventPreempt.String(): true,
}

// CriticalEvents keeps arrivals, terminations and preemptions, in log order.
func CriticalEvents(events []EventRecord) []EventRecord {
	var out []EventRecord
	for _, ev := range events {
		if criticalKinds[ev.Kind] {
			out = append(out, ev)
		}
	}
	return out
}
