// Package ole drives Excel through COM automation using go-ole.
//
// COM objects created in a single-threaded apartment may only be used
// from the OS thread that created them. Every session therefore owns a
// worker goroutine locked to its thread; all calls into the automation
// object model are marshalled onto that goroutine, so sessions can be
// used from any goroutine (bubbletea commands, MCP handlers, cobra).
//
// On platforms without COM the go-ole stubs make Launch fail with an
// error, which surfaces as domain.ErrHostUnavailable.
package ole
