package models

import (
	"strings"
	"time"
)

// Snapshot is the local mirror of the remote store. One fetch window applies
// to every record.
type Snapshot struct {
	Records   []BillRecord
	FetchedAt time.Time
	ExpiresAt time.Time
}

// NewSnapshot stamps records with a fetch time and a ttl-derived expiry.
func NewSnapshot(records []BillRecord, fetchedAt time.Time, ttl time.Duration) *Snapshot {
	return &Snapshot{
		Records:   records,
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(ttl),
	}
}

// ExpiredAt reports whether now is past the expiry instant.
func (s *Snapshot) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Clone returns a deep copy so callers never share the record slice.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Records = append([]BillRecord(nil), s.Records...)
	return &out
}

// Dirty returns the keys of records with unpushed local changes, in order.
func (s *Snapshot) Dirty() []string {
	var keys []string
	for _, r := range s.Records {
		if r.IsDirty() {
			keys = append(keys, r.BillNo)
		}
	}
	return keys
}

// Predicate selects records for Query.
type Predicate func(BillRecord) bool

// All matches every record.
func All(BillRecord) bool { return true }

func ByBillNo(billNo string) Predicate {
	return func(r BillRecord) bool { return r.BillNo == billNo }
}

func ByStatus(status PaidStatus) Predicate {
	return func(r BillRecord) bool { return r.PaidStatus == status }
}

// PaidOn matches records settled on the given date.
func PaidOn(d Date) Predicate {
	return func(r BillRecord) bool { return r.PaidStatus == Paid && r.PaidDate == d }
}

// BilledBetween matches billed dates in [from, to]; a zero bound is open.
func BilledBetween(from, to Date) Predicate {
	return func(r BillRecord) bool {
		if !from.IsZero() && r.BilledDate.Before(from) {
			return false
		}
		if !to.IsZero() && to.Before(r.BilledDate) {
			return false
		}
		return true
	}
}

// ContainsText matches when any field contains text, ignoring case.
// Absent paid amounts and dates render as they do in the table view ("0", "-").
func ContainsText(text string) Predicate {
	needle := strings.ToLower(text)
	return func(r BillRecord) bool {
		if needle == "" {
			return true
		}
		for _, v := range r.DisplayFields() {
			if strings.Contains(strings.ToLower(v), needle) {
				return true
			}
		}
		return false
	}
}

// And combines predicates; an empty list matches everything.
func And(ps ...Predicate) Predicate {
	return func(r BillRecord) bool {
		for _, p := range ps {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// DisplayFields returns the table columns in display order:
// name, bill no, billed amount, paid amount, paid status, billed date, paid date.
func (r BillRecord) DisplayFields() []string {
	paidDate := r.PaidDate.String()
	if paidDate == "" {
		paidDate = "-"
	}
	return []string{
		r.Name,
		r.BillNo,
		r.BilledAmount.String(),
		r.PaidAmount.String(),
		r.PaidStatus.Wire(),
		r.BilledDate.String(),
		paidDate,
	}
}
