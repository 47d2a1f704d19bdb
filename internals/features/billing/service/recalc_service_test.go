// file: internals/features/billing/service/recalc_service_test.go
package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schedModel "trainerku_backend/internals/features/schedules/model"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name             string
		price, allocated float64
		want             SessionPaymentStatus
	}{
		{name: "unpaid", price: 20, allocated: 0, want: SessionPaymentStatusUnpaid},
		{name: "partial", price: 20, allocated: 10, want: SessionPaymentStatusPartial},
		{name: "paid exactly", price: 20, allocated: 20, want: SessionPaymentStatusPaid},
		{name: "overpaid still paid", price: 20, allocated: 25, want: SessionPaymentStatusPaid},
		{name: "free is paid", price: 0, allocated: 0, want: SessionPaymentStatusPaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveStatus(tc.price, tc.allocated))
		})
	}
}

func TestRecalculateSessionDerivesFreshState(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t)
	p := f.pay(t, 30, false)

	st, err := f.recalc.RecalculateSession(ctx, f.sessions[0].CalendarSessionID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, st.Price)
	assert.Equal(t, 0.0, st.Allocated)
	assert.Equal(t, SessionPaymentStatusUnpaid, st.Status)

	_, err = f.engine.Allocate(ctx, p.PaymentID, f.sessions[0].CalendarSessionID, 12)
	require.NoError(t, err)

	st, err = f.recalc.RecalculateSession(ctx, f.sessions[0].CalendarSessionID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, st.Allocated)
	assert.Equal(t, SessionPaymentStatusPartial, st.Status)
}

func TestRecalculateClientCoversEverySession(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t)
	f.pay(t, 60, true)

	states, err := f.recalc.RecalculateClient(ctx, f.client.ClientID)
	require.NoError(t, err)
	require.Len(t, states, 3)
	for _, st := range states {
		assert.Equal(t, SessionPaymentStatusPaid, st.Status)
	}
}

func TestClientSummaryRollup(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t)

	third := f.sessions[2]
	third.CalendarSessionStatus = schedModel.SessionStatusCanceled
	require.NoError(t, f.store.Sessions().Update(ctx, &third))

	f.pay(t, 30, true) // covers session 0 fully, session 1 half

	agg := NewAnalyticsAggregator(f.store, f.pricing, f.engine, f.recalc)
	sum, err := agg.ClientSummary(ctx, f.client.ClientID)
	require.NoError(t, err)

	assert.Equal(t, 30.0, sum.TotalPaid)
	assert.Equal(t, 30.0, sum.TotalAllocated)
	assert.Equal(t, 0.0, sum.UnallocatedBalance)
	assert.Equal(t, 10.0, sum.Outstanding) // session 1's uncovered half

	assert.Equal(t, 2, sum.SessionsPlanned)
	assert.Equal(t, 1, sum.SessionsCanceled)
	assert.Equal(t, 1, sum.SessionsPaid)
	assert.Equal(t, 1, sum.SessionsPartial)
	assert.Equal(t, 1, sum.SessionsUnpaid) // the canceled one carries no cover
}

func TestOverallSummaryListsEveryClient(t *testing.T) {
	ctx := context.Background()
	f := newAllocFixture(t)

	agg := NewAnalyticsAggregator(f.store, f.pricing, f.engine, f.recalc)
	rows, err := agg.OverallSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.client.ClientID, rows[0].ClientID)
}
