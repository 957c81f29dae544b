package scenario

import (
	"fmt"
	"sort"

	"github.com/inference-sim/cpusim/sim"
)

// Built-in presets. Each returns a valid Spec ready for Build.

// Predefined is the three-process example: two I/O-heavy processes arriving
// at 0 and a short CPU-only process arriving at 110.
func Predefined(alg sim.Algorithm, quantum int64) *Spec {
	return &Spec{
		Name: "predefined", Algorithm: string(alg), Quantum: quantum,
		Processes: []ProcessSpec{
			FromBursts("P1", 0, sim.CPU(10), sim.IO(10), sim.CPU(10), sim.IO(30), sim.CPU(10)),
			FromBursts("P2", 0, sim.CPU(10), sim.IO(50), sim.CPU(10), sim.IO(20), sim.CPU(10)),
			FromBursts("P3", 110, sim.CPU(10)),
		},
	}
}

// SingleProcess is one process doing CPU, I/O, CPU.
func SingleProcess(alg sim.Algorithm, quantum int64) *Spec {
	return &Spec{
		Name: "single", Algorithm: string(alg), Quantum: quantum,
		Processes: []ProcessSpec{
			FromBursts("P1", 0, sim.CPU(10), sim.IO(10), sim.CPU(10)),
		},
	}
}

// CPUBoundPair is two CPU-only processes arriving together. Under RR with a
// quantum of 10 they alternate every tick.
func CPUBoundPair(alg sim.Algorithm, quantum int64) *Spec {
	return &Spec{
		Name: "cpu-bound-pair", Algorithm: string(alg), Quantum: quantum,
		Processes: []ProcessSpec{
			FromBursts("P1", 0, sim.CPU(30)),
			FromBursts("P2", 0, sim.CPU(30)),
		},
	}
}

// MixedFour fills every process row with staggered arrivals and mixed
// CPU/I-O profiles.
func MixedFour(alg sim.Algorithm, quantum int64) *Spec {
	return &Spec{
		Name: "mixed-four", Algorithm: string(alg), Quantum: quantum,
		Processes: []ProcessSpec{
			FromBursts("A", 0, sim.CPU(40), sim.IO(20), sim.CPU(10)),
			FromBursts("B", 10, sim.CPU(10), sim.IO(40), sim.CPU(20)),
			FromBursts("C", 20, sim.CPU(20)),
			FromBursts("D", 30, sim.CPU(10), sim.IO(10), sim.CPU(10), sim.IO(10), sim.CPU(10)),
		},
	}
}

var presets = map[string]func(sim.Algorithm, int64) *Spec{
	"predefined":     Predefined,
	"single":         SingleProcess,
	"cpu-bound-pair": CPUBoundPair,
	"mixed-four":     MixedFour,
}

// Preset looks up a built-in scenario by name.
func Preset(name string, alg sim.Algorithm, quantum int64) (*Spec, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %v", name, PresetNames())
	}
	return build(alg, quantum), nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
