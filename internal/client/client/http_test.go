package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/dmitrijs2005/billkeeper/internal/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

type fakeStore struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request, body map[string]any)
}

func newFakeStore(t *testing.T, h func(w http.ResponseWriter, r *http.Request, body map[string]any)) (*fakeStore, *HTTPClient) {
	t.Helper()
	fs := &fakeStore{handler: h}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &body)
		}
		fs.mu.Lock()
		fs.requests = append(fs.requests, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Header: r.Header.Clone(), Body: body})
		fs.mu.Unlock()
		fs.handler(w, r, body)
	}))
	t.Cleanup(ts.Close)

	c, err := NewHTTPClient(HTTPOptions{BaseURL: ts.URL + "/api/v1/records/", Token: "secret", HTTPClient: ts.Client()})
	require.NoError(t, err)
	return fs, c
}

func bill(no string) models.BillRecord {
	return models.BillRecord{
		BillNo:       no,
		Name:         "Acme",
		BilledAmount: decimal.RequireFromString("100.50"),
		PaidAmount:   decimal.Zero,
		BilledDate:   models.Date{Year: 2024, Month: 3, Day: 1},
		PaidStatus:   models.Unpaid,
	}
}

func TestNewHTTPClient_RejectsBadURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPOptions{BaseURL: "ftp://host/records"})
	require.Error(t, err)
	_, err = NewHTTPClient(HTTPOptions{BaseURL: "://bad"})
	require.Error(t, err)
}

func TestHTTPClient_FetchAll(t *testing.T) {
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		_, _ = w.Write([]byte(`[
			{"billNo":"B-1","name":"Acme","billed_amount":"100","paid_amount":"","date1":"2024-03-01","date2":"","paid_or_not":"No"},
			{"billNo":"B-2","name":"Beta","billed_amount":250.5,"paid_amount":250.5,"date1":"2024-03-02","date2":"2024-03-10","paid_or_not":"Yes"}
		]`))
	})

	got, err := c.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B-1", got[0].BillNo)
	assert.True(t, got[0].PaidAmount.IsZero())
	assert.Equal(t, models.Unpaid, got[0].PaidStatus)
	assert.Equal(t, models.Paid, got[1].PaidStatus)
	assert.Equal(t, "2024-03-10", got[1].PaidDate.String())
	assert.Equal(t, models.Clean, got[1].Dirty)

	require.Len(t, fs.requests, 1)
	assert.Equal(t, http.MethodGet, fs.requests[0].Method)
	assert.Equal(t, "/api/v1/records", fs.requests[0].Path)
	assert.Equal(t, "Bearer secret", fs.requests[0].Header.Get("Authorization"))
}

func TestHTTPClient_FetchAll_Non2xx(t *testing.T) {
	_, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchAll(context.Background())
	require.ErrorIs(t, err, common.ErrTransport)
}

func TestHTTPClient_CreateOne(t *testing.T) {
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"created":1}`))
	})

	in := bill("B-9")
	in.Dirty = models.PendingCreate
	in.CreateToken = "tok-1"

	got, err := c.CreateOne(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	req := fs.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "tok-1", req.Header.Get("Idempotency-Key"))
	data, ok := req.Body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "B-9", data["billNo"])
	assert.Equal(t, "No", data["paid_or_not"])
	assert.Equal(t, "2024-03-01", data["date1"])
	assert.Equal(t, "", data["date2"])
	_, leaked := data["CreateToken"]
	assert.False(t, leaked)
}

func TestHTTPClient_CreateOne_EchoedRecord(t *testing.T) {
	_, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		_, _ = w.Write([]byte(`{"billNo":"B-9","name":"Acme Ltd","billed_amount":"100.50","paid_amount":"0","date1":"2024-03-01","date2":"","paid_or_not":"No"}`))
	})

	in := bill("B-9")
	in.CreateToken = "tok"
	got, err := c.CreateOne(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", got.Name)
	assert.Equal(t, "tok", got.CreateToken)
}

func TestHTTPClient_CreateOne_Failure(t *testing.T) {
	_, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.CreateOne(context.Background(), bill("B-1"))
	require.ErrorIs(t, err, common.ErrTransport)
	assert.Contains(t, err.Error(), `create "B-1"`)
}

func TestHTTPClient_CreateMany_PerRecordDoesNotShortCircuit(t *testing.T) {
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		data := body["data"].(map[string]any)
		if data["billNo"] == "B-2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"created":1}`))
	})

	out := c.CreateMany(context.Background(), []models.BillRecord{bill("B-1"), bill("B-2"), bill("B-3")})
	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.ErrorIs(t, out[1].Err, common.ErrTransport)
	assert.NoError(t, out[2].Err)
	assert.Len(t, fs.requests, 3)
}

func TestHTTPClient_CreateMany_Batch(t *testing.T) {
	var created int
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		_ = json.NewEncoder(w).Encode(map[string]int{"created": created})
	})
	c.batch = true

	created = 2
	out := c.CreateMany(context.Background(), []models.BillRecord{bill("B-1"), bill("B-2")})
	require.Len(t, out, 2)
	assert.NoError(t, out[0].Err)
	assert.NoError(t, out[1].Err)
	require.Len(t, fs.requests, 1)
	data, ok := fs.requests[0].Body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 2)

	created = 1
	out = c.CreateMany(context.Background(), []models.BillRecord{bill("B-1"), bill("B-2")})
	assert.ErrorIs(t, out[0].Err, common.ErrTransport)
	assert.ErrorIs(t, out[1].Err, common.ErrTransport)

	assert.Empty(t, c.CreateMany(context.Background(), nil))
}

func TestHTTPClient_UpdateByKey(t *testing.T) {
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		_, _ = w.Write([]byte(`{"updated":1}`))
	})

	in := bill("B/7 x")
	got, err := c.UpdateByKey(context.Background(), in.BillNo, in)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Equal(t, http.MethodPatch, fs.requests[0].Method)
	assert.Equal(t, "/api/v1/records/billNo/B%2F7%20x", fs.requests[0].Path)
}

func TestHTTPClient_UpdateByKey_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter)
	}{
		{"status 404", func(w http.ResponseWriter) { w.WriteHeader(http.StatusNotFound) }},
		{"zero updated", func(w http.ResponseWriter) { _, _ = w.Write([]byte(`{"updated":0}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) { tt.handler(w) })

			_, err := c.UpdateByKey(context.Background(), "B-1", bill("B-1"))
			require.ErrorIs(t, err, common.ErrNotFound)
			require.NotErrorIs(t, err, common.ErrTransport)
		})
	}
}

func TestHTTPClient_UpdateByKey_Transport(t *testing.T) {
	_, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.UpdateByKey(context.Background(), "B-1", bill("B-1"))
	require.ErrorIs(t, err, common.ErrTransport)
	require.NotErrorIs(t, err, common.ErrNotFound)
}

func TestHTTPClient_DeleteWhere(t *testing.T) {
	fs, c := newFakeStore(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		_, _ = w.Write([]byte(`{"deleted":4}`))
	})
	ctx := context.Background()

	n, err := c.DeleteWhere(ctx, SelectAll())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = c.DeleteWhere(ctx, SelectBy("paid_or_not", "No"))
	require.NoError(t, err)

	_, err = c.DeleteWhere(ctx, Selector{})
	require.ErrorIs(t, err, ErrInvalidSelector)

	require.Len(t, fs.requests, 2)
	assert.Equal(t, "/api/v1/records/all", fs.requests[0].Path)
	assert.Equal(t, "/api/v1/records/paid_or_not/No", fs.requests[1].Path)
	assert.Equal(t, http.MethodDelete, fs.requests[1].Method)
}

func TestSelector_String(t *testing.T) {
	assert.Equal(t, "all", SelectAll().String())
	assert.Equal(t, "billNo=B-1", SelectBy("billNo", "B-1").String())
}
