// Package host adapts the placement engine to the two ways it is driven: discrete
// control messages (one tick per "bang") and per-sample signal processing (one
// tick per audio frame, with drive and softness inputs and pulse outputs).
//
// The adapters are thin: every decision is the engine's, and invalid control
// values are left for the engine to ignore. Around the signal adapter sit a noise
// Modulator for its inputs, an audio Renderer for its outputs, and a terminal
// LaneView for watching placements live.
package host
