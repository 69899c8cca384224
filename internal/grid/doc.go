// Package grid owns the LED matrix raster model.
//
// Ownership boundary:
// - brightness storage and strict/lenient accessors
// - payload serialization (transposed wire order, transforms)
// - diagnostic text dump
//
// The payload order is column-outer, row-inner. Receivers in the field
// depend on it; Transform{SwapAxes: true} gives row-major order for new
// deployments that can change their firmware.
package grid
