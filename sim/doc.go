// Package sim provides the placement engine behind the jammed-packing rhythm generator.
//
// # Reading Guide
//
// Start with these three files to understand the generator kernel:
//   - species.go: the species catalog (diameter, softness, abundance) and its edit rules
//   - resistance.go: the pairwise soft-body resistance law and its sum over the history
//   - engine.go: the per-tick loop (score, select, commit, replenish) and the setters
//
// # Architecture
//
// The engine owns four pieces of state and exposes them only through its methods:
//   - Registry (species.go): dense-id species catalog
//   - History (history.go): fixed-capacity window of recent placements
//   - Pool (pool.go): fixed-size set of pending candidates, refilled by abundance
//   - GlobalState (engine.go): clock, softness exponent, fire threshold
//
// Hosts live in sub-packages and drive the engine through Tick, ForcePlacement,
// and the setters:
//   - sim/host/: message and per-sample signal adapters, modulation, audio and lane rendering
//   - sim/store/: run persistence (memory, SQLite)
//   - sim/trace/: placement and edit trace recording
//
// # Key Interfaces
//
//   - SelectionPolicy: pick at most one winner from the scored pool
//     (DrawThenScan, ThresholdPick)
//
// Randomness comes from a single stream per engine; see rng.go for how hosts
// derive independent streams from one seed.
package sim
