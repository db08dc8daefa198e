// Package cli provides the interactive billkeeper host.
//
// It wires configuration, the SQLite-backed cache, the remote store client,
// the reconciliation engine and the report exporter, then runs a REPL that
// stands in for the bill views:
//
//   - fetch              download every remote record into the cache
//   - new                add a bill (pending create)
//   - find <billNo>      show the records with a bill number
//   - edit <billNo>      change a bill (pending update)
//   - search <text>      free-text search over all fields
//   - list               show the whole cache
//   - pending            bill numbers not yet pushed
//   - submit             push pending records
//   - resubmit           wipe the remote store and recreate it from the cache
//   - report <kind>      export paid [date] | unpaid
//   - status             cache freshness and counts
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
