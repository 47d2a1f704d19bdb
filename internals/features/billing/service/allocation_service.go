// file: internals/features/billing/service/allocation_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	dto "trainerku_backend/internals/features/billing/dto"
	billingModel "trainerku_backend/internals/features/billing/model"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

var validate = validator.New()

/* =========================
   Allocation Engine
========================= */

// AllocationEngine records payment-to-session assignments: manual, bulk,
// automatic and virtual ("effective"). Amount caps are soft invariants kept
// by the algorithms here, not by storage.
type AllocationEngine struct {
	Store   store.Store
	Pricing *PricingResolver

	// Recalc is the invalidation seam; engine mutations poke it after every
	// touched session. Nil is fine (status is derived fresh anyway).
	Recalc *Recalculator

	// Now overrides "today" in tests; nil means the wall clock.
	Now func() time.Time
}

func NewAllocationEngine(s store.Store, p *PricingResolver) *AllocationEngine {
	return &AllocationEngine{Store: s, Pricing: p}
}

func (e *AllocationEngine) today() time.Time {
	if e.Now != nil {
		return helper.DateOnly(e.Now())
	}
	return helper.Today()
}

func (e *AllocationEngine) afterSessionsChanged(ctx context.Context, ids ...uuid.UUID) {
	if e.Recalc == nil {
		return
	}
	for _, id := range ids {
		_, _ = e.Recalc.RecalculateSession(ctx, id)
	}
}

/* ===================== Payments ===================== */

// CreatePayment registers a payment and optionally spreads it over unpaid
// sessions right away (the presentation layer's "auto-allocate" checkbox).
func (e *AllocationEngine) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest) (*billingModel.PaymentModel, error) {
	if err := validate.Struct(req); err != nil {
		return nil, helper.InvalidArgumentf("invalid payment request: %v", err)
	}
	if _, err := e.Store.Clients().FindByID(ctx, req.ClientID); err != nil {
		return nil, err
	}
	payment, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := e.Store.Payments().Create(ctx, &payment); err != nil {
		return nil, err
	}
	if req.AutoAllocate {
		if _, err := e.AutoAllocate(ctx, payment.PaymentID); err != nil {
			return nil, err
		}
	}
	return &payment, nil
}

/* ===================== Manual allocation ===================== */

// Allocate merges amount into the unique (payment, session) row, creating it
// when absent. The payment's total allocations may never exceed its amount.
func (e *AllocationEngine) Allocate(ctx context.Context, paymentID, sessionID uuid.UUID, amount float64) (*billingModel.PaymentAllocationModel, error) {
	if amount <= 0 {
		return nil, helper.InvalidArgumentf("allocation amount must be positive, got %v", amount)
	}
	payment, err := e.Store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if _, err := e.Store.Sessions().FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	already, err := e.sumByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if already+amount > payment.PaymentAmount {
		return nil, helper.InvalidArgumentf("allocating %v exceeds the payment's unallocated remainder %v",
			amount, payment.PaymentAmount-already)
	}
	row, err := e.upsertAllocation(ctx, e.Store, paymentID, sessionID, amount)
	if err != nil {
		return nil, err
	}
	e.afterSessionsChanged(ctx, sessionID)
	return row, nil
}

// Deallocate removes one allocation row and re-derives the freed session.
// Canceled sessions keep their allocations unless deallocated this way.
func (e *AllocationEngine) Deallocate(ctx context.Context, allocationID uuid.UUID) error {
	row, err := e.Store.Allocations().FindByID(ctx, allocationID)
	if err != nil {
		return err
	}
	if err := e.Store.Allocations().Delete(ctx, allocationID); err != nil {
		return err
	}
	e.afterSessionsChanged(ctx, row.PaymentAllocationSessionID)
	return nil
}

// Reallocate atomically replaces all of a payment's allocations and
// recalculates every session touched by the old set and the new set. The
// replacement set as a whole is capped by the payment amount.
func (e *AllocationEngine) Reallocate(ctx context.Context, paymentID uuid.UUID, inputs []dto.AllocationInput) error {
	payment, err := e.Store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return err
	}
	total := 0.0
	for _, in := range inputs {
		if in.Amount <= 0 {
			return helper.InvalidArgumentf("allocation amount must be positive, got %v", in.Amount)
		}
		if _, err := e.Store.Sessions().FindByID(ctx, in.SessionID); err != nil {
			return err
		}
		total += in.Amount
	}
	if total > payment.PaymentAmount {
		return helper.InvalidArgumentf("allocations totalling %v exceed the payment amount %v",
			total, payment.PaymentAmount)
	}

	old, err := e.Store.Allocations().ListByPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	touched := map[uuid.UUID]struct{}{}
	for _, a := range old {
		touched[a.PaymentAllocationSessionID] = struct{}{}
	}

	err = e.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Allocations().DeleteByPayment(ctx, paymentID); err != nil {
			return err
		}
		for _, in := range inputs {
			if _, err := e.upsertAllocation(ctx, tx, paymentID, in.SessionID, in.Amount); err != nil {
				return err
			}
			touched[in.SessionID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id := range touched {
		e.afterSessionsChanged(ctx, id)
	}
	return nil
}

/* ===================== Automatic allocation ===================== */

// AutoAllocate greedily fills the client's chargeable sessions in ascending
// (date, start_time, id) order, covering each session's remaining need
// before advancing, until the payment's unallocated remainder runs out.
// Returns the total amount placed.
func (e *AllocationEngine) AutoAllocate(ctx context.Context, paymentID uuid.UUID) (float64, error) {
	payment, err := e.Store.Payments().FindByID(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	client, err := e.Store.Clients().FindByID(ctx, payment.PaymentClientID)
	if err != nil {
		return 0, err
	}

	already, err := e.sumByPayment(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	remaining := payment.PaymentAmount - already
	if remaining <= 0 {
		return 0, nil
	}

	sessions, err := e.chargeableSessions(ctx, client)
	if err != nil {
		return 0, err
	}

	placed := 0.0
	touched := []uuid.UUID{}
	for i := range sessions {
		if remaining <= 0 {
			break
		}
		s := &sessions[i]
		price, err := e.Pricing.PriceSession(ctx, s)
		if err != nil {
			return 0, err
		}
		allocated, err := e.sumBySession(ctx, s.CalendarSessionID)
		if err != nil {
			return 0, err
		}
		need := price - allocated
		if need <= 0 {
			continue
		}
		take := need
		if take > remaining {
			take = remaining
		}
		if _, err := e.upsertAllocation(ctx, e.Store, paymentID, s.CalendarSessionID, take); err != nil {
			return 0, err
		}
		remaining -= take
		placed += take
		touched = append(touched, s.CalendarSessionID)
	}

	e.afterSessionsChanged(ctx, touched...)
	return placed, nil
}

/* ===================== Read side ===================== */

// GetAllocatedAmount sums persisted allocations only.
func (e *AllocationEngine) GetAllocatedAmount(ctx context.Context, sessionID uuid.UUID) (float64, error) {
	if _, err := e.Store.Sessions().FindByID(ctx, sessionID); err != nil {
		return 0, err
	}
	return e.sumBySession(ctx, sessionID)
}

// GetEffectiveAllocatedAmount is the non-persisted "soft ledger" view: real
// allocation plus the portion of the client's unallocated balance that a
// greedy ascending walk would land on the target session. A session inside
// the current pause window never receives virtual coverage.
func (e *AllocationEngine) GetEffectiveAllocatedAmount(ctx context.Context, sessionID, clientID uuid.UUID) (float64, error) {
	sess, err := e.Store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.CalendarSessionClientID != clientID {
		return 0, helper.NotFoundf("session %s for client %s", sessionID, clientID)
	}
	client, err := e.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return 0, err
	}

	real, err := e.sumBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	price, err := e.Pricing.PriceSession(ctx, sess)
	if err != nil {
		return 0, err
	}
	if real >= price {
		return real, nil
	}
	if sess.IsCanceled() || client.PauseCovers(sess.CalendarSessionDate) {
		return real, nil
	}

	balance, err := e.UnallocatedBalance(ctx, client)
	if err != nil {
		return 0, err
	}
	if balance <= 0 {
		return real, nil
	}

	sessions, err := e.chargeableSessions(ctx, client)
	if err != nil {
		return 0, err
	}
	for i := range sessions {
		s := &sessions[i]
		if s.CalendarSessionID == sessionID {
			shortfall := price - real
			if balance < shortfall {
				shortfall = balance
			}
			return real + shortfall, nil
		}
		sPrice, err := e.Pricing.PriceSession(ctx, s)
		if err != nil {
			return 0, err
		}
		sAlloc, err := e.sumBySession(ctx, s.CalendarSessionID)
		if err != nil {
			return 0, err
		}
		// Zero-price and fully covered sessions consume nothing.
		if shortfall := sPrice - sAlloc; shortfall > 0 {
			balance -= shortfall
			if balance <= 0 {
				return real, nil
			}
		}
	}
	return real, nil
}

// UnallocatedBalance is the client's total payments minus real allocations
// across the client's non-canceled, non-paused sessions.
func (e *AllocationEngine) UnallocatedBalance(ctx context.Context, client *clientModel.ClientModel) (float64, error) {
	payments, err := e.Store.Payments().ListByClient(ctx, client.ClientID)
	if err != nil {
		return 0, err
	}
	paid := 0.0
	for _, p := range payments {
		paid += p.PaymentAmount
	}

	sessions, err := e.chargeableSessions(ctx, client)
	if err != nil {
		return 0, err
	}
	eligible := map[uuid.UUID]struct{}{}
	for _, s := range sessions {
		eligible[s.CalendarSessionID] = struct{}{}
	}

	allocs, err := e.Store.Allocations().ListByClient(ctx, client.ClientID)
	if err != nil {
		return 0, err
	}
	allocated := 0.0
	for _, a := range allocs {
		if _, ok := eligible[a.PaymentAllocationSessionID]; ok {
			allocated += a.PaymentAllocationAmount
		}
	}
	return paid - allocated, nil
}

/* ===================== Internals ===================== */

// chargeableSessions lists the client's non-canceled sessions outside the
// pause window, ascending (date, start_time, id).
func (e *AllocationEngine) chargeableSessions(ctx context.Context, client *clientModel.ClientModel) ([]schedModel.CalendarSessionModel, error) {
	rows, err := e.Store.Sessions().ListByClient(ctx, client.ClientID, store.SessionFilter{
		Statuses: []schedModel.SessionStatus{schedModel.SessionStatusPlanned, schedModel.SessionStatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, s := range rows {
		if client.PauseCovers(s.CalendarSessionDate) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (e *AllocationEngine) upsertAllocation(ctx context.Context, s store.Store, paymentID, sessionID uuid.UUID, amount float64) (*billingModel.PaymentAllocationModel, error) {
	row, err := s.Allocations().FindByPair(ctx, paymentID, sessionID)
	switch {
	case err == nil:
		row.PaymentAllocationAmount += amount
		if err := s.Allocations().Update(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	case isNotFound(err):
		row = &billingModel.PaymentAllocationModel{
			PaymentAllocationPaymentID: paymentID,
			PaymentAllocationSessionID: sessionID,
			PaymentAllocationAmount:    amount,
		}
		if err := s.Allocations().Create(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	default:
		return nil, err
	}
}

func isNotFound(err error) bool { return errors.Is(err, helper.ErrNotFound) }

func (e *AllocationEngine) sumBySession(ctx context.Context, sessionID uuid.UUID) (float64, error) {
	rows, err := e.Store.Allocations().ListBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, a := range rows {
		total += a.PaymentAllocationAmount
	}
	return total, nil
}

func (e *AllocationEngine) sumByPayment(ctx context.Context, paymentID uuid.UUID) (float64, error) {
	rows, err := e.Store.Allocations().ListByPayment(ctx, paymentID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, a := range rows {
		total += a.PaymentAllocationAmount
	}
	return total, nil
}
