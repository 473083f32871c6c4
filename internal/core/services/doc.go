// Package services implements the driving port interfaces: the
// annotation pipeline (parse, detect, classify, assemble), the corpus
// analyser/bucketer, and the deterministic sampling planner plus query
// synthesizer. Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go; all I/O and external capabilities arrive
// through injected ports.
package services
