// Package common contains the error kinds and protocol constants shared by
// the billkeeper cache, remote client and reconciliation layers.
package common

// IdempotencyKeyHeader carries the client-generated token of a create request
// so the remote store can drop a resubmitted create.
const IdempotencyKeyHeader = "Idempotency-Key"

// AuthorizationHeader carries the optional bearer token of the remote store.
const AuthorizationHeader = "Authorization"
