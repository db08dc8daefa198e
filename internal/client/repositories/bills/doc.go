// Package bills persists the cached bill records.
//
// Rows keep the order in which the snapshot listed them (the position
// column). bill_no is not unique at this layer: the remote sheet may carry
// duplicates and the cache mirrors them as-is. Amounts and dates are stored
// as their canonical text forms so no precision is lost.
//
// Typical usage inside a transaction:
//
//	repo := bills.NewSQLiteRepository(tx)
//	_ = repo.ReplaceAll(ctx, records)
//	list, _ := repo.GetAll(ctx)
package bills
