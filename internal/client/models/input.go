package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("validation failed")

var validate = validator.New()

// BillInput is the raw form data supplied by the UI for creating or editing
// a bill. All fields are strings as typed by the user.
type BillInput struct {
	BillNo       string `validate:"required"`
	Name         string `validate:"required"`
	BilledAmount string `validate:"required,numeric"`
	PaidAmount   string `validate:"omitempty,numeric"`
	BilledDate   string `validate:"required,datetime=2006-01-02"`
	PaidDate     string `validate:"omitempty,datetime=2006-01-02"`
	PaidStatus   string `validate:"required,oneof=Paid Unpaid Yes No paid unpaid yes no"`
}

// FieldErrors maps struct field names to the failed validation tag.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, k+":"+v)
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

func (f FieldErrors) Unwrap() error { return ErrValidation }

// Validate checks mandatory fields and formats.
func (in BillInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	out := make(FieldErrors, len(verrs))
	for _, ve := range verrs {
		out[ve.Field()] = ve.Tag()
	}
	return out
}

// Record validates the input and converts it to a clean BillRecord.
func (in BillInput) Record() (BillRecord, error) {
	if err := in.Validate(); err != nil {
		return BillRecord{}, err
	}
	billed, err := decimal.NewFromString(strings.TrimSpace(in.BilledAmount))
	if err != nil {
		return BillRecord{}, fmt.Errorf("%w: billed amount: %v", ErrValidation, err)
	}
	paid := decimal.Zero
	if s := strings.TrimSpace(in.PaidAmount); s != "" {
		if paid, err = decimal.NewFromString(s); err != nil {
			return BillRecord{}, fmt.Errorf("%w: paid amount: %v", ErrValidation, err)
		}
	}
	billedDate, err := ParseDate(in.BilledDate)
	if err != nil {
		return BillRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	paidDate, err := ParseDate(in.PaidDate)
	if err != nil {
		return BillRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	status, err := ParsePaidStatus(in.PaidStatus)
	if err != nil {
		return BillRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return BillRecord{
		BillNo:       strings.TrimSpace(in.BillNo),
		Name:         strings.TrimSpace(in.Name),
		BilledAmount: billed,
		PaidAmount:   paid,
		BilledDate:   billedDate,
		PaidDate:     paidDate,
		PaidStatus:   status,
	}, nil
}

// InputFrom pre-fills an edit form from a cached record.
func InputFrom(r BillRecord) BillInput {
	return BillInput{
		BillNo:       r.BillNo,
		Name:         r.Name,
		BilledAmount: r.BilledAmount.String(),
		PaidAmount:   r.PaidAmount.String(),
		BilledDate:   r.BilledDate.String(),
		PaidDate:     r.PaidDate.String(),
		PaidStatus:   string(r.PaidStatus),
	}
}
