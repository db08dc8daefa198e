// Package client contains the remote side of billkeeper.
//
// # Overview
//
// The package provides:
//  1. The RemoteStore contract: FetchAll, CreateOne, CreateMany, UpdateByKey
//     and DeleteWhere against the remote tabular store, keyed by bill number.
//  2. HTTPClient, the JSON-over-HTTP implementation:
//     GET {base}, POST {base}, PATCH {base}/billNo/{billNo},
//     DELETE {base}/{column}/{value} or DELETE {base}/all.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     SQLite cache, applying the embedded goose migrations.
//
// # Error Handling
//
// Network failures and non-2xx answers surface as *common.TransportError
// (errors.Is(err, common.ErrTransport)). An update of a missing key returns
// common.ErrNotFound. Nothing is retried here; retry policy belongs to the
// reconciliation engine.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call honours ctx.
package client
