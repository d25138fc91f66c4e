// Package driven holds the outbound ports of macrorun: everything the
// pipeline needs from the outside world but does not implement itself.
//
// # Host
//
//   - AutomationHost launches the spreadsheet application.
//   - AutomationSession and Document wrap the running application and one
//     open workbook (open, run macro, save as, close).
//
// # Optional collaborators
//
// A nil value switches the feature off instead of failing a stage:
//
//   - WorkbookInspector: preflight of input files before they reach the host.
//   - RunStore: per-stage history rows.
//   - EventSink: log and progress events for the front ends.
//
// Ports here depend on domain and nothing else.
package driven
