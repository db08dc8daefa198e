package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/dmitrijs2005/billkeeper/internal/netx"
)

// HTTPOptions configures HTTPClient.
type HTTPOptions struct {
	// BaseURL is the records collection, e.g. https://host/api/v1/records.
	BaseURL string
	// Token, when set, is sent as a bearer token.
	Token   string
	Timeout time.Duration
	// BatchCreate sends CreateMany as a single request instead of one
	// request per record.
	BatchCreate bool
	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client
}

// HTTPClient implements RemoteStore over the store's JSON API.
type HTTPClient struct {
	base  string
	token string
	batch bool
	http  *http.Client
}

var _ RemoteStore = (*HTTPClient)(nil)

func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url %q: scheme must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPClient{
		base:  strings.TrimRight(opts.BaseURL, "/"),
		token: opts.Token,
		batch: opts.BatchCreate,
		http:  hc,
	}, nil
}

// payload is the request envelope the store expects.
type payload struct {
	Data any `json:"data"`
}

type ack struct {
	Created *int `json:"created"`
	Updated *int `json:"updated"`
	Deleted *int `json:"deleted"`
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body any, out any, header http.Header) error {
	req, err := netx.NewJSONRequest(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+c.token)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return netx.DoJSON(c.http, req, out)
}

func (c *HTTPClient) FetchAll(ctx context.Context) ([]models.BillRecord, error) {
	var records []models.BillRecord
	if err := c.do(ctx, http.MethodGet, c.base, nil, &records, nil); err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) CreateOne(ctx context.Context, r models.BillRecord) (models.BillRecord, error) {
	var h http.Header
	if r.CreateToken != "" {
		h = http.Header{}
		h.Set(common.IdempotencyKeyHeader, r.CreateToken)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, c.base, payload{Data: r}, &raw, h); err != nil {
		return models.BillRecord{}, fmt.Errorf("create %q: %w", r.BillNo, err)
	}
	return echoedOr(raw, r), nil
}

// echoedOr returns the record echoed by the store, or submitted when the
// store only acknowledged the write.
func echoedOr(raw json.RawMessage, submitted models.BillRecord) models.BillRecord {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return submitted
	}
	var a ack
	if err := json.Unmarshal(raw, &a); err == nil && (a.Created != nil || a.Updated != nil) {
		return submitted
	}
	var echoed models.BillRecord
	if err := json.Unmarshal(raw, &echoed); err != nil || echoed.BillNo == "" {
		return submitted
	}
	echoed.Dirty = submitted.Dirty
	echoed.CreateToken = submitted.CreateToken
	return echoed
}

func (c *HTTPClient) CreateMany(ctx context.Context, rs []models.BillRecord) []CreateOutcome {
	out := make([]CreateOutcome, len(rs))
	if len(rs) == 0 {
		return out
	}

	if !c.batch {
		for i, r := range rs {
			rec, err := c.CreateOne(ctx, r)
			out[i] = CreateOutcome{Record: rec, Err: err}
		}
		return out
	}

	var a ack
	err := c.do(ctx, http.MethodPost, c.base, payload{Data: rs}, &a, nil)
	if err == nil && a.Created != nil && *a.Created != len(rs) {
		err = fmt.Errorf("%w: store created %d of %d records", common.ErrTransport, *a.Created, len(rs))
	}
	for i, r := range rs {
		out[i] = CreateOutcome{Record: r}
		if err != nil {
			out[i].Err = fmt.Errorf("create %q: %w", r.BillNo, err)
		}
	}
	return out
}

func (c *HTTPClient) UpdateByKey(ctx context.Context, billNo string, r models.BillRecord) (models.BillRecord, error) {
	target := c.base + "/billNo/" + url.PathEscape(billNo)

	var raw json.RawMessage
	err := c.do(ctx, http.MethodPatch, target, payload{Data: r}, &raw, nil)
	if err != nil {
		var te *common.TransportError
		if errors.As(err, &te) && te.Status == http.StatusNotFound {
			return models.BillRecord{}, fmt.Errorf("update %q: %w", billNo, common.ErrNotFound)
		}
		return models.BillRecord{}, fmt.Errorf("update %q: %w", billNo, err)
	}

	var a ack
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &a); err == nil && a.Updated != nil && *a.Updated == 0 {
			return models.BillRecord{}, fmt.Errorf("update %q: %w", billNo, common.ErrNotFound)
		}
	}
	return echoedOr(raw, r), nil
}

func (c *HTTPClient) DeleteWhere(ctx context.Context, sel Selector) (int, error) {
	var target string
	switch {
	case sel.All:
		target = c.base + "/all"
	case sel.Column != "":
		target = c.base + "/" + url.PathEscape(sel.Column) + "/" + url.PathEscape(sel.Value)
	default:
		return 0, ErrInvalidSelector
	}

	var a ack
	if err := c.do(ctx, http.MethodDelete, target, nil, &a, nil); err != nil {
		return 0, fmt.Errorf("delete %s: %w", sel, err)
	}
	if a.Deleted == nil {
		return 0, nil
	}
	return *a.Deleted, nil
}
