// Package structure computes the file set a conformant package must contain
// and diffs it against the payload directory on disk.
//
// The expected structure is a pure function of the package format and the
// number of master files actually delivered. Audio packages branch on master
// count (multi-reel masters carry a two-digit suffix); video packages never
// do. Comparison is set-based, so ordering and duplicate listings are
// irrelevant, and mismatch diagnostics enumerate both sets sorted so they are
// stable across runs.
package structure
