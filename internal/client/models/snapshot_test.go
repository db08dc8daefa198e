package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []BillRecord {
	return []BillRecord{
		{BillNo: "A1", Name: "Asha", BilledAmount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(100),
			BilledDate: Date{2024, time.January, 2}, PaidDate: Date{2024, time.January, 9}, PaidStatus: Paid},
		{BillNo: "A2", Name: "Bala", BilledAmount: decimal.NewFromInt(250),
			BilledDate: Date{2024, time.February, 1}, PaidStatus: Unpaid, Dirty: PendingUpdate},
		{BillNo: "A3", Name: "Chitra", BilledAmount: decimal.NewFromInt(75),
			BilledDate: Date{2024, time.March, 15}, PaidStatus: Unpaid},
	}
}

func TestSnapshot_Expiry(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSnapshot(nil, at, 24*time.Hour)
	require.Equal(t, at.Add(24*time.Hour), s.ExpiresAt)
	require.False(t, s.ExpiredAt(at))
	require.False(t, s.ExpiredAt(s.ExpiresAt))
	require.True(t, s.ExpiredAt(s.ExpiresAt.Add(time.Nanosecond)))
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	s := NewSnapshot(sampleRecords(), time.Now(), time.Hour)
	c := s.Clone()
	c.Records[0].Name = "changed"
	require.Equal(t, "Asha", s.Records[0].Name)

	var nilSnap *Snapshot
	require.Nil(t, nilSnap.Clone())
}

func TestSnapshot_Dirty(t *testing.T) {
	s := NewSnapshot(sampleRecords(), time.Now(), time.Hour)
	require.Equal(t, []string{"A2"}, s.Dirty())
}

func TestPredicates(t *testing.T) {
	recs := sampleRecords()
	count := func(p Predicate) int {
		n := 0
		for _, r := range recs {
			if p(r) {
				n++
			}
		}
		return n
	}

	require.Equal(t, 3, count(All))
	require.Equal(t, 1, count(ByBillNo("A3")))
	require.Equal(t, 2, count(ByStatus(Unpaid)))
	require.Equal(t, 1, count(PaidOn(Date{2024, time.January, 9})))
	require.Equal(t, 0, count(PaidOn(Date{2024, time.January, 10})))
	require.Equal(t, 2, count(BilledBetween(Date{2024, time.January, 15}, Date{})))
	require.Equal(t, 1, count(BilledBetween(Date{2024, time.January, 15}, Date{2024, time.February, 28})))
	require.Equal(t, 1, count(ContainsText("chit")))
	require.Equal(t, 1, count(ContainsText("2024-01")))
	require.Equal(t, 3, count(ContainsText("")))
	require.Equal(t, 1, count(And(ByStatus(Unpaid), ContainsText("bala"))))
}

func TestDisplayFields(t *testing.T) {
	r := sampleRecords()[2]
	require.Equal(t, []string{"Chitra", "A3", "75", "0", "No", "2024-03-15", "-"}, r.DisplayFields())
}
