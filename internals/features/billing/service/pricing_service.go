// file: internals/features/billing/service/pricing_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

/* =========================
   Session Pricing Resolver
========================= */

// PricingResolver computes one session's price by precedence. The chain is an
// explicit ordered list of sources evaluated until one yields a definite
// answer, so the ordering stays auditable and testable in isolation.
type PricingResolver struct {
	Store store.Store

	// Now overrides "today" in tests; nil means the wall clock.
	Now func() time.Time
}

func NewPricingResolver(s store.Store) *PricingResolver { return &PricingResolver{Store: s} }

func (p *PricingResolver) today() time.Time {
	if p.Now != nil {
		return helper.DateOnly(p.Now())
	}
	return helper.Today()
}

type priceSource struct {
	name    string
	resolve func(ctx context.Context, s *schedModel.CalendarSessionModel) (*float64, error)
}

func (p *PricingResolver) sources() []priceSource {
	return []priceSource{
		{name: "session_override", resolve: p.fromOverride},
		{name: "origin_rule", resolve: p.fromOriginRule},
		{name: "active_package", resolve: p.fromActivePackage},
	}
}

// Price resolves a session's price; it never goes negative and falls back to
// zero (unpriced sessions count as already satisfied).
func (p *PricingResolver) Price(ctx context.Context, clientID, sessionID uuid.UUID) (float64, error) {
	sess, err := p.Store.Sessions().FindByID(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.CalendarSessionClientID != clientID {
		return 0, helper.NotFoundf("session %s for client %s", sessionID, clientID)
	}
	return p.PriceSession(ctx, sess)
}

// PriceSession is the allocation engine's entry point when the row is already
// loaded.
func (p *PricingResolver) PriceSession(ctx context.Context, sess *schedModel.CalendarSessionModel) (float64, error) {
	for _, src := range p.sources() {
		v, err := src.resolve(ctx, sess)
		if err != nil {
			return 0, err
		}
		if v != nil {
			if *v < 0 {
				return 0, nil
			}
			return *v, nil
		}
	}
	return 0, nil
}

/* =========================
   Sources, in precedence order
========================= */

// 1) Explicit per-session override; zero is a deliberate "free session".
func (p *PricingResolver) fromOverride(_ context.Context, s *schedModel.CalendarSessionModel) (*float64, error) {
	return s.CalendarSessionPriceOverride, nil
}

// 2) Base price of the originating rule. The back-reference may dangle after
// a template replace; that is not an error, just a pass to the next source.
func (p *PricingResolver) fromOriginRule(ctx context.Context, s *schedModel.CalendarSessionModel) (*float64, error) {
	if s.CalendarSessionRuleID == nil {
		return nil, nil
	}
	rule, err := p.Store.Rules().FindByID(ctx, *s.CalendarSessionRuleID)
	if err != nil {
		if errors.Is(err, helper.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rule.ScheduleRuleBasePrice, nil
}

// 3) Per-session price of the client's most-recently-created active package.
func (p *PricingResolver) fromActivePackage(ctx context.Context, s *schedModel.CalendarSessionModel) (*float64, error) {
	packs, err := p.Store.Packages().ListByClient(ctx, s.CalendarSessionClientID)
	if err != nil {
		return nil, err
	}
	today := p.today()
	for i := range packs {
		if packs[i].IsActiveOn(today) {
			return helper.Ptr(packs[i].PerSessionPrice()), nil
		}
	}
	return nil, nil
}
