package cache

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/billkeeper/internal/client/models"
	"github.com/shopspring/decimal"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func rec(no string, status models.PaidStatus, billed int64) models.BillRecord {
	r := models.BillRecord{
		BillNo:       no,
		Name:         "Customer " + no,
		BilledAmount: decimal.NewFromInt(billed),
		PaidAmount:   decimal.Zero,
		BilledDate:   models.Date{Year: 2024, Month: time.May, Day: 20},
		PaidStatus:   status,
	}
	if status == models.Paid {
		r.PaidAmount = decimal.NewFromInt(billed)
		r.PaidDate = models.Date{Year: 2024, Month: time.May, Day: 28}
	}
	return r
}

func keys(rs []models.BillRecord) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.BillNo)
	}
	return out
}
