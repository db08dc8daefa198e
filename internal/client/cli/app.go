package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/cache"
	"github.com/dmitrijs2005/billkeeper/internal/client/client"
	"github.com/dmitrijs2005/billkeeper/internal/client/config"
	"github.com/dmitrijs2005/billkeeper/internal/client/export"
	"github.com/dmitrijs2005/billkeeper/internal/client/reconcile"
	"github.com/dmitrijs2005/billkeeper/internal/client/services"
	"github.com/dmitrijs2005/billkeeper/internal/logging"

	_ "modernc.org/sqlite"
)

// statusTimeout bounds the prompt's cache lookup; a running submit holds
// the cache exclusively for the whole pass.
var statusTimeout = 200 * time.Millisecond

// Exporter renders and stores a report, returning its location.
type Exporter interface {
	Export(ctx context.Context, spec export.ReportSpec) (string, error)
}

type App struct {
	config   *config.Config
	bills    services.BillService
	exporter Exporter
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	closers  []func() error
}

// NewApp builds every collaborator from c. The cache store is opened here
// and closed by Run.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{config: c, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout}

	token := c.Token
	if c.PromptToken {
		b, err := GetPassword(a.out, "Enter remote store token: ")
		if err != nil {
			return nil, fmt.Errorf("read token: %w", err)
		}
		token = string(b)
	}

	remote, err := client.NewHTTPClient(client.HTTPOptions{
		BaseURL:     c.RemoteURL,
		Token:       token,
		Timeout:     c.RequestTimeout,
		BatchCreate: c.BatchCreate,
	})
	if err != nil {
		return nil, err
	}

	store := cache.NewSQLiteStore(c.CacheDSN)
	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("open cache %s: %w", c.CacheDSN, err)
	}
	a.closers = append(a.closers, store.Close)

	m := cache.NewManager(store, cache.WithTTL(c.CacheTTL), cache.WithLogger(log))
	engine := reconcile.NewEngine(m, remote,
		reconcile.WithRetries(c.ReconcileRetries, c.ReconcileBackoff),
		reconcile.WithLogger(log))
	a.bills = services.NewBillService(m, remote, engine, log)

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.exporter = export.NewService(m, export.XLSXRenderer{}, sink, c.Watermark, log)

	return a, nil
}

func newSink(ctx context.Context, c *config.Config) (export.Sink, error) {
	if c.S3.Bucket == "" {
		return export.FileSink{Dir: c.ReportDir}, nil
	}
	return export.NewS3Sink(ctx, export.S3Options{
		Bucket:   c.S3.Bucket,
		Prefix:   c.S3.Prefix,
		Region:   c.S3.Region,
		Endpoint: c.S3.Endpoint,
		User:     c.S3.User,
		Password: c.S3.Password,
	})
}

// Close releases the cache store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	printlnFn("Welcome to billkeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// getStatus renders the prompt suffix: record and pending counts, and
// whether the cache has gone stale.
func (a *App) getStatus() string {
	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	st, err := a.bills.Status(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "(busy)"
		}
		if cache.IsAbsent(err) {
			return "(no data)"
		}
		return "(?)"
	}
	s := fmt.Sprintf("(%d bills, %d pending", st.Records, st.Pending)
	if !st.Fresh {
		s += ", stale"
	}
	return s + ")"
}
