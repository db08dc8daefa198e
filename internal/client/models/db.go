// Package models defines the client-side billing data model: bill records,
// their local dirty state, the cached snapshot, and the form input used to
// create and edit records.
package models
