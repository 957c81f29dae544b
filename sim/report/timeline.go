package report

import "github.com/inference-sim/cpusim/sim"

// Idle labels timeline segments where no process held the CPU.
const Idle = "idle"

// Segment is a run of consecutive ticks with the same CPU owner.
// Start and End are times, End exclusive.
type Segment struct {
	Owner    string `yaml:"owner"`
	Start    int64  `yaml:"start"`
	End      int64  `yaml:"end"`
	Duration int64  `yaml:"duration"`
}

// Timeline compacts the process rows of the table into CPU ownership
// segments. Adjacent ticks with the same owner merge.
func Timeline(table *sim.OccupancyTable) []Segment {
	var segs []Segment
	for k := 0; k < table.Columns(); k++ {
		owner := Idle
		for _, row := range table.Rows() {
			if row.IsProcess() && table.Cell(row, k) == sim.CPUMark {
				owner = table.Label(row)
				break
			}
		}
		start := int64(k) * sim.TickUnit
		if n := len(segs); n > 0 && segs[n-1].Owner == owner {
			segs[n-1].End += sim.TickUnit
			segs[n-1].Duration += sim.TickUnit
			continue
		}
		segs = append(segs, Segment{Owner: owner, Start: start, End: start + sim.TickUnit, Duration: sim.TickUnit})
	}
	return segs
}

// Utilization is the CPU usage summary of a run.
type Utilization struct {
	Total      int64   `yaml:"total"`
	Busy       int64   `yaml:"busy"`
	Idle       int64   `yaml:"idle"`
	Percent    float64 `yaml:"percent"`
	Finished   int     `yaml:"finished"`
	Throughput float64 `yaml:"throughput"` // finished processes per tick
}

// ComputeUtilization derives usage from the timeline and the process stats.
// Safe for an empty run (returns zero-value fields).
func ComputeUtilization(segs []Segment, stats []ProcessStats, ticks int) Utilization {
	u := Utilization{Total: int64(ticks) * sim.TickUnit}
	for _, s := range segs {
		if s.Owner == Idle {
			u.Idle += s.Duration
		} else {
			u.Busy += s.Duration
		}
	}
	for _, s := range stats {
		if s.Finished() {
			u.Finished++
		}
	}
	if u.Total > 0 {
		u.Percent = float64(u.Busy) / float64(u.Total) * 100
	}
	if ticks > 0 {
		u.Throughput = float64(u.Finished) / float64(ticks)
	}
	return u
}
