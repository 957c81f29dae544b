package sim

import (
	"errors"
	"fmt"
	"strings"
)

// TickUnit is the fixed simulation step. Every duration, arrival and quantum
// must be a multiple of it.
const TickUnit int64 = 10

// DefaultMaxTicks is the safety ceiling applied when Config.MaxTicks is zero.
const DefaultMaxTicks = 500

// MaxProcesses bounds the number of process rows in the occupancy table.
const MaxProcesses = 4

// Algorithm selects the dispatch policy.
type Algorithm string

const (
	FIFO       Algorithm = "FIFO"
	RoundRobin Algorithm = "RR"
)

// validAlgorithms maps accepted algorithm names.
var validAlgorithms = map[Algorithm]bool{
	FIFO:       true,
	RoundRobin: true,
}

// ParseAlgorithm accepts "fifo", "FIFO", "rr", "RR" and "round-robin".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FIFO", "FCFS":
		return FIFO, nil
	case "RR", "ROUND-ROBIN", "ROUNDROBIN":
		return RoundRobin, nil
	case "":
		return "", &ConfigError{Field: "algorithm", Reason: "no algorithm selected"}
	default:
		return "", &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q; valid: FIFO, RR", name)}
	}
}

// Config groups the engine parameters. It replaces any process-wide state:
// each engine owns its own copy.
type Config struct {
	Algorithm Algorithm
	Quantum   int64 // RR only; multiple of TickUnit, > 0 for RR
	MaxTicks  int   // safety ceiling; 0 means DefaultMaxTicks
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.MaxTicks == 0 {
		c.MaxTicks = DefaultMaxTicks
	}
	return c
}

// Validate checks the algorithm, quantum and tick ceiling.
func (c Config) Validate() error {
	if c.Algorithm == "" {
		return &ConfigError{Field: "algorithm", Reason: "no algorithm selected"}
	}
	if !validAlgorithms[c.Algorithm] {
		return &ConfigError{Field: "algorithm", Reason: fmt.Sprintf("unknown algorithm %q; valid: FIFO, RR", c.Algorithm)}
	}
	if c.Quantum < 0 || c.Quantum%TickUnit != 0 {
		return &ConfigError{Field: "quantum", Reason: fmt.Sprintf("must be a non-negative multiple of %d, got %d", TickUnit, c.Quantum)}
	}
	if c.Algorithm == RoundRobin && c.Quantum <= 0 {
		return &ConfigError{Field: "quantum", Reason: fmt.Sprintf("round robin requires a positive quantum, got %d", c.Quantum)}
	}
	if c.MaxTicks < 0 {
		return &ConfigError{Field: "max_ticks", Reason: fmt.Sprintf("must be positive, got %d", c.MaxTicks)}
	}
	return nil
}

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrAlreadyRun is returned by Run when the engine was not reconfigured
// after a previous run.
var ErrAlreadyRun = errors.New("engine already ran; call Configure and register processes again")

// ConfigError reports input rejected before the simulation starts.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// validateBursts checks a burst sequence: non-empty, starts with CPU,
// alternates CPU and IO, positive multiples of TickUnit.
// prefix names the owner in the error field, e.g. "P1.bursts[2]".
func validateBursts(prefix string, bursts []Burst) error {
	if len(bursts) == 0 {
		return &ConfigError{Field: prefix + ".bursts", Reason: "sequence must not be empty"}
	}
	for i, b := range bursts {
		field := fmt.Sprintf("%s.bursts[%d]", prefix, i)
		if b.Kind != BurstCPU && b.Kind != BurstIO {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("unknown burst kind %q; valid: CPU, IO", b.Kind)}
		}
		want := BurstCPU
		if i%2 == 1 {
			want = BurstIO
		}
		if b.Kind != want {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("expected %s, got %s; sequences alternate starting with CPU", want, b.Kind)}
		}
		if b.Duration <= 0 || b.Duration%TickUnit != 0 {
			return &ConfigError{Field: field, Reason: fmt.Sprintf("duration must be a positive multiple of %d, got %d", TickUnit, b.Duration)}
		}
	}
	return nil
}
