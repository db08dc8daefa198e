package reconcile

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
)

// Failure is one record the remote store did not accept.
type Failure struct {
	BillNo string
	Kind   models.DirtyKind
	Err    error
}

// Report is the outcome of one reconciliation pass.
type Report struct {
	NothingToDo   bool
	Created       int
	Updated       int
	FailedCreates int
	FailedUpdates int
	// Failures lists failed records in processing order: creates first,
	// then updates, each in snapshot order.
	Failures []Failure
	// RemainingDirty are the bill numbers still pending after the pass.
	RemainingDirty []string
}

// OK reports whether every dirty record was pushed.
func (r *Report) OK() bool {
	return r.FailedCreates == 0 && r.FailedUpdates == 0 && len(r.RemainingDirty) == 0
}

func (r *Report) String() string {
	if r.NothingToDo {
		return "nothing to do"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "created %d, updated %d, failed creates %d, failed updates %d",
		r.Created, r.Updated, r.FailedCreates, r.FailedUpdates)
	if len(r.RemainingDirty) > 0 {
		fmt.Fprintf(&b, "; still pending: %s", strings.Join(r.RemainingDirty, ", "))
	}
	return b.String()
}

func (r *Report) fail(billNo string, kind models.DirtyKind, err error) {
	r.Failures = append(r.Failures, Failure{BillNo: billNo, Kind: kind, Err: err})
	if kind == models.DirtyNew {
		r.FailedCreates++
	} else {
		r.FailedUpdates++
	}
}
