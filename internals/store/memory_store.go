// file: internals/store/memory_store.go
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	billingModel "trainerku_backend/internals/features/billing/model"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
)

/* =========================
   In-memory store
========================= */

// MemoryStore backs the service tests and any embedded single-user setup.
// Entities are stored and handed out by value, so callers never alias rows.
type MemoryStore struct {
	mu sync.RWMutex

	clients     map[uuid.UUID]clientModel.ClientModel
	templates   map[uuid.UUID]schedModel.ScheduleTemplateModel
	rules       map[uuid.UUID]schedModel.ScheduleRuleModel
	sessions    map[uuid.UUID]schedModel.CalendarSessionModel
	packages    map[uuid.UUID]billingModel.PackageModel
	payments    map[uuid.UUID]billingModel.PaymentModel
	allocations map[uuid.UUID]billingModel.PaymentAllocationModel

	// Creation tick so "latest wins" ordering stays stable even when several
	// rows share one wall-clock timestamp.
	seq   uint64
	ticks map[uuid.UUID]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		clients:     map[uuid.UUID]clientModel.ClientModel{},
		templates:   map[uuid.UUID]schedModel.ScheduleTemplateModel{},
		rules:       map[uuid.UUID]schedModel.ScheduleRuleModel{},
		sessions:    map[uuid.UUID]schedModel.CalendarSessionModel{},
		packages:    map[uuid.UUID]billingModel.PackageModel{},
		payments:    map[uuid.UUID]billingModel.PaymentModel{},
		allocations: map[uuid.UUID]billingModel.PaymentAllocationModel{},
		ticks:       map[uuid.UUID]uint64{},
	}
}

func (s *MemoryStore) Clients() ClientRepo         { return &memClientRepo{s} }
func (s *MemoryStore) Templates() TemplateRepo     { return &memTemplateRepo{s} }
func (s *MemoryStore) Rules() RuleRepo             { return &memRuleRepo{s} }
func (s *MemoryStore) Sessions() SessionRepo       { return &memSessionRepo{s} }
func (s *MemoryStore) Packages() PackageRepo       { return &memPackageRepo{s} }
func (s *MemoryStore) Payments() PaymentRepo       { return &memPaymentRepo{s} }
func (s *MemoryStore) Allocations() AllocationRepo { return &memAllocationRepo{s} }

// Transaction runs fn directly: there is no multi-write scope in memory, and
// the callers' recalculation passes are idempotent.
func (s *MemoryStore) Transaction(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *MemoryStore) tick(id uuid.UUID) {
	s.seq++
	s.ticks[id] = s.seq
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

/* ===================== Clients ===================== */

type memClientRepo struct{ s *MemoryStore }

func (r *memClientRepo) Create(_ context.Context, m *clientModel.ClientModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ClientID = newID(m.ClientID)
	stamp(&m.ClientCreatedAt, &m.ClientUpdatedAt)
	r.s.clients[m.ClientID] = *m
	r.s.tick(m.ClientID)
	return nil
}

func (r *memClientRepo) FindByID(_ context.Context, id uuid.UUID) (*clientModel.ClientModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.clients[id]
	if !ok {
		return nil, helper.NotFoundf("client %s", id)
	}
	return &row, nil
}

func (r *memClientRepo) Update(_ context.Context, m *clientModel.ClientModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.clients[m.ClientID]; !ok {
		return helper.NotFoundf("client %s", m.ClientID)
	}
	m.ClientUpdatedAt = time.Now().UTC()
	r.s.clients[m.ClientID] = *m
	return nil
}

func (r *memClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	return nil
}

func (r *memClientRepo) List(_ context.Context) ([]clientModel.ClientModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := make([]clientModel.ClientModel, 0, len(r.s.clients))
	for _, c := range r.s.clients {
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool {
		return r.s.ticks[rows[i].ClientID] < r.s.ticks[rows[j].ClientID]
	})
	return rows, nil
}

/* ===================== Templates ===================== */

type memTemplateRepo struct{ s *MemoryStore }

func (r *memTemplateRepo) Create(_ context.Context, m *schedModel.ScheduleTemplateModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ScheduleTemplateID = newID(m.ScheduleTemplateID)
	stamp(&m.ScheduleTemplateCreatedAt, &m.ScheduleTemplateUpdatedAt)
	r.s.templates[m.ScheduleTemplateID] = *m
	r.s.tick(m.ScheduleTemplateID)
	return nil
}

func (r *memTemplateRepo) FindByID(_ context.Context, id uuid.UUID) (*schedModel.ScheduleTemplateModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.templates[id]
	if !ok {
		return nil, helper.NotFoundf("schedule template %s", id)
	}
	return &row, nil
}

func (r *memTemplateRepo) FindLatestByClient(_ context.Context, clientID uuid.UUID) (*schedModel.ScheduleTemplateModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var best *schedModel.ScheduleTemplateModel
	var bestTick uint64
	for id, t := range r.s.templates {
		if t.ScheduleTemplateClientID != clientID {
			continue
		}
		if best == nil || r.s.ticks[id] > bestTick {
			tt := t
			best = &tt
			bestTick = r.s.ticks[id]
		}
	}
	if best == nil {
		return nil, helper.NotFoundf("schedule template for client %s", clientID)
	}
	return best, nil
}

func (r *memTemplateRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]schedModel.ScheduleTemplateModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []schedModel.ScheduleTemplateModel{}
	for _, t := range r.s.templates {
		if t.ScheduleTemplateClientID == clientID {
			rows = append(rows, t)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return r.s.ticks[rows[i].ScheduleTemplateID] < r.s.ticks[rows[j].ScheduleTemplateID]
	})
	return rows, nil
}

func (r *memTemplateRepo) Update(_ context.Context, m *schedModel.ScheduleTemplateModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[m.ScheduleTemplateID]; !ok {
		return helper.NotFoundf("schedule template %s", m.ScheduleTemplateID)
	}
	m.ScheduleTemplateUpdatedAt = time.Now().UTC()
	r.s.templates[m.ScheduleTemplateID] = *m
	return nil
}

func (r *memTemplateRepo) DeleteByClient(_ context.Context, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.templates {
		if t.ScheduleTemplateClientID == clientID {
			delete(r.s.templates, id)
		}
	}
	return nil
}

/* ===================== Rules ===================== */

type memRuleRepo struct{ s *MemoryStore }

func (r *memRuleRepo) Create(_ context.Context, m *schedModel.ScheduleRuleModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.ScheduleRuleID = newID(m.ScheduleRuleID)
	stamp(&m.ScheduleRuleCreatedAt, &m.ScheduleRuleUpdatedAt)
	r.s.rules[m.ScheduleRuleID] = *m
	r.s.tick(m.ScheduleRuleID)
	return nil
}

func (r *memRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*schedModel.ScheduleRuleModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.rules[id]
	if !ok {
		return nil, helper.NotFoundf("schedule rule %s", id)
	}
	return &row, nil
}

func (r *memRuleRepo) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]schedModel.ScheduleRuleModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []schedModel.ScheduleRuleModel{}
	for _, m := range r.s.rules {
		if m.ScheduleRuleTemplateID == templateID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ScheduleRulePosition != rows[j].ScheduleRulePosition {
			return rows[i].ScheduleRulePosition < rows[j].ScheduleRulePosition
		}
		return r.s.ticks[rows[i].ScheduleRuleID] < r.s.ticks[rows[j].ScheduleRuleID]
	})
	return rows, nil
}

func (r *memRuleRepo) Update(_ context.Context, m *schedModel.ScheduleRuleModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rules[m.ScheduleRuleID]; !ok {
		return helper.NotFoundf("schedule rule %s", m.ScheduleRuleID)
	}
	m.ScheduleRuleUpdatedAt = time.Now().UTC()
	r.s.rules[m.ScheduleRuleID] = *m
	return nil
}

func (r *memRuleRepo) DeleteByTemplate(_ context.Context, templateID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.rules {
		if m.ScheduleRuleTemplateID == templateID {
			delete(r.s.rules, id)
		}
	}
	return nil
}

/* ===================== Sessions ===================== */

type memSessionRepo struct{ s *MemoryStore }

func (r *memSessionRepo) Create(_ context.Context, m *schedModel.CalendarSessionModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.CalendarSessionID = newID(m.CalendarSessionID)
	m.CalendarSessionDate = helper.DateOnly(m.CalendarSessionDate)
	stamp(&m.CalendarSessionCreatedAt, &m.CalendarSessionUpdatedAt)
	r.s.sessions[m.CalendarSessionID] = *m
	r.s.tick(m.CalendarSessionID)
	return nil
}

func (r *memSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*schedModel.CalendarSessionModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.sessions[id]
	if !ok {
		return nil, helper.NotFoundf("session %s", id)
	}
	return &row, nil
}

func (r *memSessionRepo) Update(_ context.Context, m *schedModel.CalendarSessionModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.sessions[m.CalendarSessionID]; !ok {
		return helper.NotFoundf("session %s", m.CalendarSessionID)
	}
	m.CalendarSessionDate = helper.DateOnly(m.CalendarSessionDate)
	m.CalendarSessionUpdatedAt = time.Now().UTC()
	r.s.sessions[m.CalendarSessionID] = *m
	return nil
}

func matchesFilter(m schedModel.CalendarSessionModel, f SessionFilter) bool {
	if f.DateFrom != nil && m.CalendarSessionDate.Before(helper.DateOnly(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && m.CalendarSessionDate.After(helper.DateOnly(*f.DateTo)) {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, st := range f.Statuses {
			if m.CalendarSessionStatus == st {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (r *memSessionRepo) ListByClient(_ context.Context, clientID uuid.UUID, f SessionFilter) ([]schedModel.CalendarSessionModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []schedModel.CalendarSessionModel{}
	for _, m := range r.s.sessions {
		if m.CalendarSessionClientID == clientID && matchesFilter(m, f) {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CalendarSessionDate.Equal(rows[j].CalendarSessionDate) {
			return rows[i].CalendarSessionDate.Before(rows[j].CalendarSessionDate)
		}
		if rows[i].CalendarSessionStartTime != rows[j].CalendarSessionStartTime {
			return rows[i].CalendarSessionStartTime < rows[j].CalendarSessionStartTime
		}
		return rows[i].CalendarSessionID.String() < rows[j].CalendarSessionID.String()
	})
	return rows, nil
}

func (r *memSessionRepo) ListByKey(_ context.Context, clientID uuid.UUID, date time.Time, startTime string) ([]schedModel.CalendarSessionModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	day := helper.DateOnly(date)
	rows := []schedModel.CalendarSessionModel{}
	for _, m := range r.s.sessions {
		if m.CalendarSessionClientID == clientID &&
			m.CalendarSessionDate.Equal(day) &&
			m.CalendarSessionStartTime == startTime {
			rows = append(rows, m)
		}
	}
	return rows, nil
}

func (r *memSessionRepo) DeleteByClient(_ context.Context, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.sessions {
		if m.CalendarSessionClientID == clientID {
			delete(r.s.sessions, id)
		}
	}
	return nil
}

/* ===================== Packages ===================== */

type memPackageRepo struct{ s *MemoryStore }

func (r *memPackageRepo) Create(_ context.Context, m *billingModel.PackageModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.PackageID = newID(m.PackageID)
	stamp(&m.PackageCreatedAt, &m.PackageUpdatedAt)
	r.s.packages[m.PackageID] = *m
	r.s.tick(m.PackageID)
	return nil
}

func (r *memPackageRepo) FindByID(_ context.Context, id uuid.UUID) (*billingModel.PackageModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.packages[id]
	if !ok {
		return nil, helper.NotFoundf("package %s", id)
	}
	return &row, nil
}

func (r *memPackageRepo) Update(_ context.Context, m *billingModel.PackageModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.packages[m.PackageID]; !ok {
		return helper.NotFoundf("package %s", m.PackageID)
	}
	m.PackageUpdatedAt = time.Now().UTC()
	r.s.packages[m.PackageID] = *m
	return nil
}

func (r *memPackageRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]billingModel.PackageModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []billingModel.PackageModel{}
	for _, m := range r.s.packages {
		if m.PackageClientID == clientID {
			rows = append(rows, m)
		}
	}
	// Newest first.
	sort.Slice(rows, func(i, j int) bool {
		return r.s.ticks[rows[i].PackageID] > r.s.ticks[rows[j].PackageID]
	})
	return rows, nil
}

func (r *memPackageRepo) DeleteByClient(_ context.Context, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.packages {
		if m.PackageClientID == clientID {
			delete(r.s.packages, id)
		}
	}
	return nil
}

/* ===================== Payments ===================== */

type memPaymentRepo struct{ s *MemoryStore }

func (r *memPaymentRepo) Create(_ context.Context, m *billingModel.PaymentModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.PaymentID = newID(m.PaymentID)
	stamp(&m.PaymentCreatedAt, &m.PaymentUpdatedAt)
	r.s.payments[m.PaymentID] = *m
	r.s.tick(m.PaymentID)
	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billingModel.PaymentModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.payments[id]
	if !ok {
		return nil, helper.NotFoundf("payment %s", id)
	}
	return &row, nil
}

func (r *memPaymentRepo) Update(_ context.Context, m *billingModel.PaymentModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.payments[m.PaymentID]; !ok {
		return helper.NotFoundf("payment %s", m.PaymentID)
	}
	m.PaymentUpdatedAt = time.Now().UTC()
	r.s.payments[m.PaymentID] = *m
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payments, id)
	return nil
}

func (r *memPaymentRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]billingModel.PaymentModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []billingModel.PaymentModel{}
	for _, m := range r.s.payments {
		if m.PaymentClientID == clientID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].PaymentPaidAt.Equal(rows[j].PaymentPaidAt) {
			return rows[i].PaymentPaidAt.Before(rows[j].PaymentPaidAt)
		}
		return r.s.ticks[rows[i].PaymentID] < r.s.ticks[rows[j].PaymentID]
	})
	return rows, nil
}

func (r *memPaymentRepo) DeleteByClient(_ context.Context, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.payments {
		if m.PaymentClientID == clientID {
			delete(r.s.payments, id)
		}
	}
	return nil
}

/* ===================== Allocations ===================== */

type memAllocationRepo struct{ s *MemoryStore }

func (r *memAllocationRepo) Create(_ context.Context, m *billingModel.PaymentAllocationModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m.PaymentAllocationID = newID(m.PaymentAllocationID)
	stamp(&m.PaymentAllocationCreatedAt, &m.PaymentAllocationUpdatedAt)
	r.s.allocations[m.PaymentAllocationID] = *m
	r.s.tick(m.PaymentAllocationID)
	return nil
}

func (r *memAllocationRepo) FindByID(_ context.Context, id uuid.UUID) (*billingModel.PaymentAllocationModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.allocations[id]
	if !ok {
		return nil, helper.NotFoundf("allocation %s", id)
	}
	return &row, nil
}

func (r *memAllocationRepo) FindByPair(_ context.Context, paymentID, sessionID uuid.UUID) (*billingModel.PaymentAllocationModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.allocations {
		if m.PaymentAllocationPaymentID == paymentID && m.PaymentAllocationSessionID == sessionID {
			mm := m
			return &mm, nil
		}
	}
	return nil, helper.NotFoundf("allocation (payment %s, session %s)", paymentID, sessionID)
}

func (r *memAllocationRepo) Update(_ context.Context, m *billingModel.PaymentAllocationModel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.allocations[m.PaymentAllocationID]; !ok {
		return helper.NotFoundf("allocation %s", m.PaymentAllocationID)
	}
	m.PaymentAllocationUpdatedAt = time.Now().UTC()
	r.s.allocations[m.PaymentAllocationID] = *m
	return nil
}

func (r *memAllocationRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.allocations, id)
	return nil
}

func (r *memAllocationRepo) listWhere(keep func(billingModel.PaymentAllocationModel) bool) []billingModel.PaymentAllocationModel {
	rows := []billingModel.PaymentAllocationModel{}
	for _, m := range r.s.allocations {
		if keep(m) {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return r.s.ticks[rows[i].PaymentAllocationID] < r.s.ticks[rows[j].PaymentAllocationID]
	})
	return rows
}

func (r *memAllocationRepo) ListByPayment(_ context.Context, paymentID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listWhere(func(m billingModel.PaymentAllocationModel) bool {
		return m.PaymentAllocationPaymentID == paymentID
	}), nil
}

func (r *memAllocationRepo) ListBySession(_ context.Context, sessionID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listWhere(func(m billingModel.PaymentAllocationModel) bool {
		return m.PaymentAllocationSessionID == sessionID
	}), nil
}

func (r *memAllocationRepo) ListByClient(_ context.Context, clientID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listWhere(func(m billingModel.PaymentAllocationModel) bool {
		sess, ok := r.s.sessions[m.PaymentAllocationSessionID]
		return ok && sess.CalendarSessionClientID == clientID
	}), nil
}

func (r *memAllocationRepo) DeleteByPayment(_ context.Context, paymentID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.allocations {
		if m.PaymentAllocationPaymentID == paymentID {
			delete(r.s.allocations, id)
		}
	}
	return nil
}

func (r *memAllocationRepo) DeleteByClient(_ context.Context, clientID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.allocations {
		if sess, ok := r.s.sessions[m.PaymentAllocationSessionID]; ok &&
			sess.CalendarSessionClientID == clientID {
			delete(r.s.allocations, id)
		}
	}
	return nil
}
