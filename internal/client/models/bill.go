package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaidStatus is either Paid or Unpaid. On the wire the remote sheet uses
// "Yes" and "No".
type PaidStatus string

const (
	Paid   PaidStatus = "Paid"
	Unpaid PaidStatus = "Unpaid"
)

// ParsePaidStatus accepts Paid/Unpaid and the wire forms Yes/No, ignoring case.
func ParsePaidStatus(s string) (PaidStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid", "yes":
		return Paid, nil
	case "unpaid", "no":
		return Unpaid, nil
	default:
		return "", fmt.Errorf("invalid paid status %q", s)
	}
}

// Wire returns the remote representation ("Yes" / "No").
func (p PaidStatus) Wire() string {
	if p == Paid {
		return "Yes"
	}
	return "No"
}

// DirtyState tracks whether a cached record still has to be pushed to the
// remote store.
type DirtyState uint8

const (
	Clean DirtyState = iota
	PendingCreate
	PendingUpdate
)

func (s DirtyState) String() string {
	switch s {
	case PendingCreate:
		return "pending_create"
	case PendingUpdate:
		return "pending_update"
	default:
		return "clean"
	}
}

// ParseDirtyState is the inverse of DirtyState.String.
func ParseDirtyState(s string) (DirtyState, error) {
	switch s {
	case "clean", "":
		return Clean, nil
	case "pending_create":
		return PendingCreate, nil
	case "pending_update":
		return PendingUpdate, nil
	default:
		return Clean, fmt.Errorf("invalid dirty state %q", s)
	}
}

// DirtyKind names the local mutation passed to the cache.
type DirtyKind uint8

const (
	DirtyNew DirtyKind = iota + 1
	DirtyModified
)

func (k DirtyKind) String() string {
	switch k {
	case DirtyNew:
		return "new"
	case DirtyModified:
		return "modified"
	default:
		return fmt.Sprintf("DirtyKind(%d)", uint8(k))
	}
}

// BillRecord is one billing entry. BillNo is the natural key.
//
// The JSON shape matches the remote sheet columns; Dirty and CreateToken are
// local bookkeeping and never leave the process through JSON.
type BillRecord struct {
	BillNo       string
	Name         string
	BilledAmount decimal.Decimal
	PaidAmount   decimal.Decimal
	BilledDate   Date
	PaidDate     Date
	PaidStatus   PaidStatus

	Dirty DirtyState
	// CreateToken is generated when the record is created locally and sent
	// as the idempotency key of the remote create.
	CreateToken string
}

func (r BillRecord) IsNewlyCreated() bool { return r.Dirty == PendingCreate }
func (r BillRecord) IsModified() bool     { return r.Dirty == PendingUpdate }
func (r BillRecord) IsDirty() bool        { return r.Dirty != Clean }

// SameContent compares the business fields and ignores local bookkeeping.
func (r BillRecord) SameContent(o BillRecord) bool {
	return r.BillNo == o.BillNo &&
		r.Name == o.Name &&
		r.BilledAmount.Equal(o.BilledAmount) &&
		r.PaidAmount.Equal(o.PaidAmount) &&
		r.BilledDate == o.BilledDate &&
		r.PaidDate == o.PaidDate &&
		r.PaidStatus == o.PaidStatus
}

type wireRecord struct {
	BillNo       string          `json:"billNo"`
	Name         string          `json:"name"`
	BilledAmount json.RawMessage `json:"billed_amount"`
	PaidAmount   json.RawMessage `json:"paid_amount"`
	BilledDate   Date            `json:"date1"`
	PaidDate     Date            `json:"date2"`
	PaidStatus   string          `json:"paid_or_not"`
}

func (r BillRecord) MarshalJSON() ([]byte, error) {
	w := wireRecord{
		BillNo:       r.BillNo,
		Name:         r.Name,
		BilledAmount: json.RawMessage(`"` + r.BilledAmount.String() + `"`),
		PaidAmount:   json.RawMessage(`"` + r.PaidAmount.String() + `"`),
		BilledDate:   r.BilledDate,
		PaidDate:     r.PaidDate,
		PaidStatus:   r.PaidStatus.Wire(),
	}
	return json.Marshal(w)
}

func (r *BillRecord) UnmarshalJSON(b []byte) error {
	var w wireRecord
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	billed, err := parseAmount(w.BilledAmount)
	if err != nil {
		return fmt.Errorf("billed_amount: %w", err)
	}
	paid, err := parseAmount(w.PaidAmount)
	if err != nil {
		return fmt.Errorf("paid_amount: %w", err)
	}
	status := Unpaid
	if strings.TrimSpace(w.PaidStatus) != "" {
		if status, err = ParsePaidStatus(w.PaidStatus); err != nil {
			return err
		}
	}
	*r = BillRecord{
		BillNo:       w.BillNo,
		Name:         w.Name,
		BilledAmount: billed,
		PaidAmount:   paid,
		BilledDate:   w.BilledDate,
		PaidDate:     w.PaidDate,
		PaidStatus:   status,
	}
	return nil
}

// parseAmount accepts a JSON number, a numeric string, an empty string, or
// null/absent. Empty and null mean zero.
func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Zero, nil
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
	} else {
		s = string(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
