// Package export supplies filtered bill rows and their totals to a document
// renderer and hands the rendered bytes to a sink.
//
// Layout is not decided here beyond what the renderer needs: a title, the
// rows, the two totals (paid amounts of Paid rows, billed amounts of Unpaid
// rows) and a watermark text.
package export

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/logging"
	"github.com/shopspring/decimal"
)

var ErrEmptyReport = errors.New("no records match the report")

// Querier is the read side of the cache the exporter needs.
type Querier interface {
	Query(ctx context.Context, p models.Predicate) ([]models.BillRecord, error)
}

// ReportSpec names a report and selects its rows.
type ReportSpec struct {
	Title  string
	Filter models.Predicate
}

// PaidOn selects bills settled on d.
func PaidOn(d models.Date) ReportSpec {
	return ReportSpec{Title: "Bill Report for " + d.String(), Filter: models.PaidOn(d)}
}

func AllPaid() ReportSpec {
	return ReportSpec{Title: "Full Bill Report", Filter: models.ByStatus(models.Paid)}
}

func AllUnpaid() ReportSpec {
	return ReportSpec{Title: "Unpaid Bill Report", Filter: models.ByStatus(models.Unpaid)}
}

// Document is what a renderer lays out.
type Document struct {
	Title       string
	Watermark   string
	Rows        []models.BillRecord
	TotalPaid   decimal.Decimal
	TotalUnpaid decimal.Decimal
	GeneratedAt time.Time
}

// Totals returns the sum of PaidAmount over Paid rows and the sum of
// BilledAmount over Unpaid rows.
func Totals(rows []models.BillRecord) (paid, unpaid decimal.Decimal) {
	paid, unpaid = decimal.Zero, decimal.Zero
	for _, r := range rows {
		switch r.PaidStatus {
		case models.Paid:
			paid = paid.Add(r.PaidAmount)
		case models.Unpaid:
			unpaid = unpaid.Add(r.BilledAmount)
		}
	}
	return paid, unpaid
}

// Renderer turns a Document into bytes. Extension includes the dot.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
	Extension() string
	ContentType() string
}

// Sink stores a rendered report and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

type Service struct {
	q         Querier
	renderer  Renderer
	sink      Sink
	watermark string
	now       func() time.Time
	log       logging.Logger
}

func NewService(q Querier, r Renderer, sink Sink, watermark string, log logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{q: q, renderer: r, sink: sink, watermark: watermark, now: time.Now, log: log}
}

// Build queries the cache and computes the totals.
func (s *Service) Build(ctx context.Context, spec ReportSpec) (*Document, error) {
	filter := spec.Filter
	if filter == nil {
		filter = models.All
	}
	rows, err := s.q.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("report %q: %w", spec.Title, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyReport, spec.Title)
	}
	paid, unpaid := Totals(rows)
	return &Document{
		Title:       spec.Title,
		Watermark:   s.watermark,
		Rows:        rows,
		TotalPaid:   paid,
		TotalUnpaid: unpaid,
		GeneratedAt: s.now(),
	}, nil
}

// Export builds, renders and stores the report, returning its location.
func (s *Service) Export(ctx context.Context, spec ReportSpec) (string, error) {
	doc, err := s.Build(ctx, spec)
	if err != nil {
		return "", err
	}
	data, err := s.renderer.Render(doc)
	if err != nil {
		return "", fmt.Errorf("render %q: %w", spec.Title, err)
	}
	name := FileName(spec.Title) + s.renderer.Extension()
	loc, err := s.sink.Put(ctx, name, s.renderer.ContentType(), data)
	if err != nil {
		return "", fmt.Errorf("store %q: %w", name, err)
	}
	s.log.Info(ctx, "report exported", "title", spec.Title, "rows", len(doc.Rows), "location", loc)
	return loc, nil
}

var spaces = regexp.MustCompile(`\s+`)

// FileName lowercases title and joins its words with underscores.
func FileName(title string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
}
