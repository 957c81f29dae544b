package report

import "github.com/inference-sim/cpusim/sim"

// ProcessStats is the per-process summary line.
type ProcessStats struct {
	Name       string `yaml:"name"`
	Arrival    int64  `yaml:"arrival"`
	Handoffs   int    `yaml:"handoffs"`
	State      string `yaml:"state"`
	CPUTime    int64  `yaml:"cpu_time"`
	IOTime     int64  `yaml:"io_time"`
	CPUServed  int64  `yaml:"cpu_served"`
	IOServed   int64  `yaml:"io_served"`
	Sequence   string `yaml:"sequence"`
	FirstRun   int64  `yaml:"first_run"`  // -1 if it never ran
	Finish     int64  `yaml:"finish"`     // -1 if it never terminated
	Turnaround int64  `yaml:"turnaround"` // -1 if it never terminated
	Waiting    int64  `yaml:"waiting"`    // time queued in READY
	Response   int64  `yaml:"response"`   // FirstRun - Arrival, -1 if it never ran
}

// Finished reports whether the process terminated.
func (s ProcessStats) Finished() bool { return s.Finish >= 0 }

// Stats summarizes every process in registration order.
func Stats(procs []*sim.Process) []ProcessStats {
	out := make([]ProcessStats, 0, len(procs))
	for _, p := range procs {
		response := int64(-1)
		if p.FirstRun >= 0 {
			response = p.FirstRun - p.ArrivalTime
		}
		out = append(out, ProcessStats{
			Name:       p.Name,
			Arrival:    p.ArrivalTime,
			Handoffs:   p.HandoffCount,
			State:      string(p.State),
			CPUTime:    p.TotalCPUTime(),
			IOTime:     p.TotalIOTime(),
			CPUServed:  p.CPUServed,
			IOServed:   p.IOServed,
			Sequence:   p.Sequence(),
			FirstRun:   p.FirstRun,
			Finish:     p.Finish,
			Turnaround: p.Turnaround(),
			Waiting:    p.ReadyWait,
			Response:   response,
		})
	}
	return out
}

// Averages holds means over finished processes only.
type Averages struct {
	Turnaround float64
	Waiting    float64
	Response   float64
	Finished   int
}

// Average computes means over the processes that terminated.
// Safe for empty input (returns zero-value fields).
func Average(stats []ProcessStats) Averages {
	var a Averages
	for _, s := range stats {
		if !s.Finished() {
			continue
		}
		a.Finished++
		a.Turnaround += float64(s.Turnaround)
		a.Waiting += float64(s.Waiting)
		a.Response += float64(s.Response)
	}
	if a.Finished > 0 {
		n := float64(a.Finished)
		a.Turnaround /= n
		a.Waiting /= n
		a.Response /= n
	}
	return a
}
