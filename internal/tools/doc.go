// Package tools provides host helpers shared by interface discovery
// and the CLIs.
//
// Ownership boundary:
// - command execution with bounded runtime
// - exit code classification
package tools
