package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/export"
	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/client/reconcile"
	"github.com/dmitrijs2005/billkeeper/internal/client/services"
)

var tableHeader = []string{"NAME", "BILL NO", "BILLED", "PAID AMT", "PAID", "BILLED ON", "PAID ON", ""}

func printTable(w io.Writer, rows []models.BillRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(tableHeader, "\t"))
	for _, r := range rows {
		mark := ""
		if r.IsDirty() {
			mark = "*" + r.Dirty.String()
		}
		fmt.Fprintln(tw, strings.Join(append(r.DisplayFields(), mark), "\t"))
	}
	_ = tw.Flush()
}

func printReport(w io.Writer, rep *reconcile.Report) {
	fmt.Fprintln(w, rep.String())
	for _, f := range rep.Failures {
		fmt.Fprintf(w, "  %s (%s): %v\n", f.BillNo, f.Kind, f.Err)
	}
}

func (a *App) Fetch(ctx context.Context) error {
	n, err := a.bills.Fetch(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Fetched %d bills\n", n)
	return nil
}

// New reads a bill form and adds it to the cache as a pending create.
func (a *App) New(ctx context.Context) error {
	in, err := ReadBillForm(a.reader, a.out, models.BillInput{PaidStatus: string(models.Unpaid)}, false)
	if err != nil {
		return err
	}
	r, err := a.bills.CreateBill(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Bill %s added; run 'submit' to push it\n", r.BillNo)
	return nil
}

func (a *App) Find(ctx context.Context, billNo string) error {
	found, err := a.bills.SearchByBillNo(ctx, billNo)
	if err != nil {
		return err
	}
	printTable(a.out, found)
	if len(found) > 1 {
		fmt.Fprintf(a.out, "%d records share bill number %s; an edit changes all of them\n", len(found), billNo)
	}
	return nil
}

// Edit pre-fills the form from the first record with billNo.
func (a *App) Edit(ctx context.Context, billNo string) error {
	found, err := a.bills.SearchByBillNo(ctx, billNo)
	if err != nil {
		return err
	}
	in, err := ReadBillForm(a.reader, a.out, models.InputFrom(found[0]), true)
	if err != nil {
		return err
	}
	if _, err := a.bills.EditBill(ctx, in); err != nil {
		if errors.Is(err, services.ErrNoChanges) {
			fmt.Fprintln(a.out, "No changes detected")
			return nil
		}
		return err
	}
	fmt.Fprintf(a.out, "Bill %s updated; run 'submit' to push it\n", in.BillNo)
	return nil
}

func (a *App) Search(ctx context.Context, text string) error {
	rows, err := a.bills.Search(ctx, text)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(a.out, "No bills match")
		return nil
	}
	printTable(a.out, rows)
	return nil
}

func (a *App) List(ctx context.Context) error {
	return a.Search(ctx, "")
}

func (a *App) Pending(ctx context.Context) error {
	keys, err := a.bills.Pending(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(a.out, "Nothing pending")
		return nil
	}
	fmt.Fprintln(a.out, "Pending:", strings.Join(keys, ", "))
	return nil
}

func (a *App) Submit(ctx context.Context) error {
	rep, err := a.bills.Submit(ctx)
	if rep != nil {
		printReport(a.out, rep)
	}
	return err
}

func (a *App) Resubmit(ctx context.Context) error {
	rep, err := a.bills.Resubmit(ctx)
	if errors.Is(err, services.ErrNoChanges) {
		fmt.Fprintln(a.out, "No changes since the last resubmission")
		return nil
	}
	if rep != nil {
		printReport(a.out, rep)
	}
	return err
}

// Report exports one of the preset reports:
//
//	report paid             every paid bill
//	report paid 2024-05-28  bills paid on that day
//	report unpaid           every unpaid bill
func (a *App) Report(ctx context.Context, args []string) error {
	spec, err := reportSpec(args)
	if err != nil {
		return err
	}
	loc, err := a.exporter.Export(ctx, spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s saved to %s\n", spec.Title, loc)
	return nil
}

func reportSpec(args []string) (export.ReportSpec, error) {
	if len(args) == 0 {
		return export.ReportSpec{}, errors.New("usage: report paid [YYYY-MM-DD] | unpaid")
	}
	switch strings.ToLower(args[0]) {
	case "paid":
		if len(args) == 1 {
			return export.AllPaid(), nil
		}
		d, err := models.ParseDate(args[1])
		if err != nil {
			return export.ReportSpec{}, err
		}
		if d.IsZero() {
			return export.AllPaid(), nil
		}
		return export.PaidOn(d), nil
	case "unpaid":
		return export.AllUnpaid(), nil
	default:
		return export.ReportSpec{}, fmt.Errorf("unknown report %q", args[0])
	}
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.bills.Status(ctx)
	if err != nil {
		return err
	}
	fresh := "fresh"
	if !st.Fresh {
		fresh = "stale, run 'fetch'"
	}
	fmt.Fprintf(a.out, "%d bills, %d pending, fetched %s, valid until %s (%s)\n",
		st.Records, st.Pending,
		st.FetchedAt.Local().Format(time.DateTime), st.ExpiresAt.Local().Format(time.DateTime), fresh)
	return nil
}
