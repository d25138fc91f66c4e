// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings in <config dir>/config.toml
package file
