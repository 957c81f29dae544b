// Package sim provides the discrete-time CPU scheduling engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - process.go: Process lifecycle (NEW → HANDOFF → READY → RUNNING → BLOCKED/TERMINATED)
//   - simulator.go: the Engine and its fixed-order tick protocol
//   - occupancy.go: the per-tick snapshot grid renderers consume
//   - event.go: the append-only transition log
//
// # Time
//
// The engine advances in ticks of TickUnit (10) time units. Tick k covers
// [k*10, (k+1)*10) and is labelled (k+1)*10 in the table and the event log.
// A process that arrives or finishes I/O during tick k sits in HANDOFF and
// joins the ready queue at the start of tick k+1.
//
// # Policies
//
// FIFO and RR share one ready queue ordered by insertion. RR additionally
// returns the running process to the tail once its quantum is spent.
//
// Sub-packages build on the engine's read-only outputs:
//   - sim/scenario/: YAML scenario files and built-in presets
//   - sim/report/: statistics, compact timeline, utilization and exports
//   - sim/store/: SQLite run history
package sim
