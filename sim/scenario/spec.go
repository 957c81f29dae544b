// Package scenario loads simulation inputs from YAML files and provides
// built-in presets. It only produces data for sim.Engine; it has no
// scheduling logic of its own.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cpusim/sim"
)

// Spec is the top-level scenario file.
type Spec struct {
	Name      string        `yaml:"name,omitempty"`
	Algorithm string        `yaml:"algorithm"`
	Quantum   int64         `yaml:"quantum,omitempty"`
	MaxTicks  int           `yaml:"max_ticks,omitempty"` // 0 = sim.DefaultMaxTicks
	Processes []ProcessSpec `yaml:"processes"`
}

// ProcessSpec declares one process.
type ProcessSpec struct {
	Name    string      `yaml:"name"`
	Arrival int64       `yaml:"arrival"`
	Bursts  []BurstSpec `yaml:"bursts"`
}

// BurstSpec declares one CPU or I/O phase.
type BurstSpec struct {
	Kind     string `yaml:"kind"`
	Duration int64  `yaml:"duration"`
}

// burstKinds maps accepted spellings to burst kinds.
var burstKinds = map[string]sim.BurstKind{
	"cpu": sim.BurstCPU,
	"io":  sim.BurstIO,
	"es":  sim.BurstIO,
	"e/s": sim.BurstIO,
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario document with strict field checking.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// Validate checks the scenario without building an engine. Field names in
// errors point into the document, e.g. "processes[1].bursts[2]".
func (s *Spec) Validate() error {
	if _, err := s.Config(); err != nil {
		return err
	}
	if len(s.Processes) == 0 {
		return &sim.ConfigError{Field: "processes", Reason: "at least one process required"}
	}
	if len(s.Processes) > sim.MaxProcesses {
		return &sim.ConfigError{Field: "processes", Reason: fmt.Sprintf("at most %d processes are supported, got %d", sim.MaxProcesses, len(s.Processes))}
	}
	seen := make(map[string]bool)
	for i, p := range s.Processes {
		prefix := fmt.Sprintf("processes[%d]", i)
		if p.Name == "" {
			return &sim.ConfigError{Field: prefix + ".name", Reason: "must not be empty"}
		}
		if seen[p.Name] {
			return &sim.ConfigError{Field: prefix + ".name", Reason: fmt.Sprintf("duplicate process name %q", p.Name)}
		}
		seen[p.Name] = true
		for j, b := range p.Bursts {
			if _, ok := burstKinds[strings.ToLower(b.Kind)]; !ok {
				return &sim.ConfigError{Field: fmt.Sprintf("%s.bursts[%d].kind", prefix, j), Reason: fmt.Sprintf("unknown kind %q; valid: CPU, IO", b.Kind)}
			}
		}
	}
	return nil
}

// Config converts the header fields into an engine configuration.
func (s *Spec) Config() (sim.Config, error) {
	alg, err := sim.ParseAlgorithm(s.Algorithm)
	if err != nil {
		return sim.Config{}, err
	}
	cfg := sim.Config{Algorithm: alg, Quantum: s.Quantum, MaxTicks: s.MaxTicks}
	if err := cfg.Validate(); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// ToBursts converts a process's burst list. Unknown kinds are rejected.
func (p ProcessSpec) ToBursts() ([]sim.Burst, error) {
	out := make([]sim.Burst, len(p.Bursts))
	for i, b := range p.Bursts {
		kind, ok := burstKinds[strings.ToLower(b.Kind)]
		if !ok {
			return nil, &sim.ConfigError{Field: fmt.Sprintf("%s.bursts[%d].kind", p.Name, i), Reason: fmt.Sprintf("unknown kind %q; valid: CPU, IO", b.Kind)}
		}
		out[i] = sim.Burst{Kind: kind, Duration: b.Duration}
	}
	return out, nil
}

// Build validates the scenario and returns an engine with every process
// registered, ready to Run.
func (s *Spec) Build() (*sim.Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	e, err := sim.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range s.Processes {
		bursts, err := p.ToBursts()
		if err != nil {
			return nil, err
		}
		if err := e.RegisterProcess(p.Name, p.Arrival, bursts); err != nil {
			return nil, fmt.Errorf("registering %s: %w", p.Name, err)
		}
	}
	return e, nil
}

// FromBursts builds a ProcessSpec from engine bursts.
func FromBursts(name string, arrival int64, bursts ...sim.Burst) ProcessSpec {
	ps := ProcessSpec{Name: name, Arrival: arrival, Bursts: make([]BurstSpec, len(bursts))}
	for i, b := range bursts {
		ps.Bursts[i] = BurstSpec{Kind: string(b.Kind), Duration: b.Duration}
	}
	return ps
}
