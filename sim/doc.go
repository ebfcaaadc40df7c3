// Package sim is the step timeline driver.
//
// A Simulator maps a protocol, a scenario and a target step to a snapshot by
// building the protocol's topology, applying the scenario's pre-step
// perturbation and replaying a fresh engine from the baseline. Jumping to an
// arbitrary step is therefore idempotent; nothing is carried between calls.
//
// Compare runs both protocols side by side and Export writes whole timelines
// to a trace for an external renderer.
package sim
