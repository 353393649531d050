// Package cli provides the interactive planner command-line client.
//
// It wires configuration, local storage, the API client, and an interactive
// REPL around a single working date. All planner data lives locally; the
// server is only touched by login, by the background reachability probe, and
// by the explicit sync/load commands.
//
// Key features:
//   - Login (remote-first with local fallback) / local signup
//   - Per-date time slots with subtasks: add, edit, complete, remove, rename
//   - Carry over unfinished work from the previous day
//   - History and completion stats across all stored dates
//   - Rate-limited push to the server, explicit pull
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and SyncService.RunHealthProbe for details.
package cli
