// file: internals/features/billing/service/analytics_service.go
package service

import (
	"context"

	"github.com/google/uuid"

	schedModel "trainerku_backend/internals/features/schedules/model"
	"trainerku_backend/internals/store"
)

/* =========================
   Analytics Aggregator
========================= */

// ClientFinanceSummary is a read-only rollup for one client, derived entirely
// through the Resolver and Engine.
type ClientFinanceSummary struct {
	ClientID uuid.UUID `json:"client_id"`

	TotalPaid          float64 `json:"total_paid"`
	TotalAllocated     float64 `json:"total_allocated"`
	UnallocatedBalance float64 `json:"unallocated_balance"`
	// Outstanding sums each chargeable session's uncovered remainder.
	Outstanding float64 `json:"outstanding"`

	SessionsPlanned   int `json:"sessions_planned"`
	SessionsCompleted int `json:"sessions_completed"`
	SessionsCanceled  int `json:"sessions_canceled"`

	SessionsPaid    int `json:"sessions_paid"`
	SessionsPartial int `json:"sessions_partial"`
	SessionsUnpaid  int `json:"sessions_unpaid"`
}

type AnalyticsAggregator struct {
	Store   store.Store
	Pricing *PricingResolver
	Engine  *AllocationEngine
	Recalc  *Recalculator
}

func NewAnalyticsAggregator(s store.Store, p *PricingResolver, e *AllocationEngine, r *Recalculator) *AnalyticsAggregator {
	return &AnalyticsAggregator{Store: s, Pricing: p, Engine: e, Recalc: r}
}

func (a *AnalyticsAggregator) ClientSummary(ctx context.Context, clientID uuid.UUID) (*ClientFinanceSummary, error) {
	client, err := a.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := &ClientFinanceSummary{ClientID: clientID}

	payments, err := a.Store.Payments().ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, p := range payments {
		out.TotalPaid += p.PaymentAmount
	}

	allocs, err := a.Store.Allocations().ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for _, al := range allocs {
		out.TotalAllocated += al.PaymentAllocationAmount
	}

	out.UnallocatedBalance, err = a.Engine.UnallocatedBalance(ctx, client)
	if err != nil {
		return nil, err
	}

	sessions, err := a.Store.Sessions().ListByClient(ctx, clientID, store.SessionFilter{})
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		s := &sessions[i]
		switch s.CalendarSessionStatus {
		case schedModel.SessionStatusPlanned:
			out.SessionsPlanned++
		case schedModel.SessionStatusCompleted:
			out.SessionsCompleted++
		case schedModel.SessionStatusCanceled:
			out.SessionsCanceled++
		}

		st, err := a.Recalc.RecalculateSession(ctx, s.CalendarSessionID)
		if err != nil {
			return nil, err
		}
		switch st.Status {
		case SessionPaymentStatusPaid:
			out.SessionsPaid++
		case SessionPaymentStatusPartial:
			out.SessionsPartial++
		default:
			out.SessionsUnpaid++
		}

		if !s.IsCanceled() && !client.PauseCovers(s.CalendarSessionDate) {
			if rem := st.Price - st.Allocated; rem > 0 {
				out.Outstanding += rem
			}
		}
	}
	return out, nil
}

// OverallSummary aggregates every client's rollup.
func (a *AnalyticsAggregator) OverallSummary(ctx context.Context) ([]ClientFinanceSummary, error) {
	clients, err := a.Store.Clients().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ClientFinanceSummary, 0, len(clients))
	for i := range clients {
		s, err := a.ClientSummary(ctx, clients[i].ClientID)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}
