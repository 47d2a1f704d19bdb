// file: internals/features/billing/service/recalc_service.go
package service

import (
	"context"

	"github.com/google/uuid"

	"trainerku_backend/internals/store"
)

/* =========================
   Recalculation Coordinator
========================= */

type SessionPaymentStatus string

const (
	SessionPaymentStatusUnpaid  SessionPaymentStatus = "unpaid"
	SessionPaymentStatusPartial SessionPaymentStatus = "partial"
	SessionPaymentStatusPaid    SessionPaymentStatus = "paid"
)

// SessionPaymentState is the derived per-session payment view. It is never
// persisted; every Recalculate* call computes it fresh.
type SessionPaymentState struct {
	SessionID uuid.UUID            `json:"session_id"`
	Price     float64              `json:"price"`
	Allocated float64              `json:"allocated"`
	Status    SessionPaymentStatus `json:"status"`
}

// Recalculator is the invalidation seam mutation paths call into. Today the
// calls are pure re-derivations through the Resolver and Engine; if a cache
// ever appears it must sit strictly behind this type.
type Recalculator struct {
	Store   store.Store
	Pricing *PricingResolver
	Engine  *AllocationEngine
}

// NewBillingServices wires resolver, engine and recalculator together.
func NewBillingServices(s store.Store) (*PricingResolver, *AllocationEngine, *Recalculator) {
	pricing := NewPricingResolver(s)
	engine := NewAllocationEngine(s, pricing)
	recalc := &Recalculator{Store: s, Pricing: pricing, Engine: engine}
	engine.Recalc = recalc
	return pricing, engine, recalc
}

func (r *Recalculator) RecalculateSession(ctx context.Context, sessionID uuid.UUID) (SessionPaymentState, error) {
	sess, err := r.Store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return SessionPaymentState{}, err
	}
	price, err := r.Pricing.PriceSession(ctx, sess)
	if err != nil {
		return SessionPaymentState{}, err
	}
	allocated, err := r.Engine.sumBySession(ctx, sessionID)
	if err != nil {
		return SessionPaymentState{}, err
	}
	return SessionPaymentState{
		SessionID: sessionID,
		Price:     price,
		Allocated: allocated,
		Status:    deriveStatus(price, allocated),
	}, nil
}

func (r *Recalculator) RecalculateClient(ctx context.Context, clientID uuid.UUID) ([]SessionPaymentState, error) {
	if _, err := r.Store.Clients().FindByID(ctx, clientID); err != nil {
		return nil, err
	}
	sessions, err := r.Store.Sessions().ListByClient(ctx, clientID, store.SessionFilter{})
	if err != nil {
		return nil, err
	}
	states := make([]SessionPaymentState, 0, len(sessions))
	for i := range sessions {
		st, err := r.RecalculateSession(ctx, sessions[i].CalendarSessionID)
		if err != nil {
			return nil, err
		}
		states = append(states, st)
	}
	return states, nil
}

func (r *Recalculator) RecalculateAll(ctx context.Context) error {
	clients, err := r.Store.Clients().List(ctx)
	if err != nil {
		return err
	}
	for i := range clients {
		if _, err := r.RecalculateClient(ctx, clients[i].ClientID); err != nil {
			return err
		}
	}
	return nil
}

// Unpriced sessions count as already satisfied.
func deriveStatus(price, allocated float64) SessionPaymentStatus {
	switch {
	case price <= 0 || allocated >= price:
		return SessionPaymentStatusPaid
	case allocated > 0:
		return SessionPaymentStatusPartial
	default:
		return SessionPaymentStatusUnpaid
	}
}
