// file: internals/store/store.go
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	billingModel "trainerku_backend/internals/features/billing/model"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
)

/* =========================
   Entity Store contract
========================= */

// Store is injected into every service at construction. Two implementations
// exist: GORM/Postgres for the real database and an in-memory one for tests.
// All FindByID methods return helper.ErrNotFound-wrapped errors for unknown
// ids; list methods return empty slices, never nil errors for empty results.
type Store interface {
	Clients() ClientRepo
	Templates() TemplateRepo
	Rules() RuleRepo
	Sessions() SessionRepo
	Packages() PackageRepo
	Payments() PaymentRepo
	Allocations() AllocationRepo

	// Transaction runs fn inside the store's transactional scope where one is
	// available. The memory store runs fn directly: bulk callers stay correct
	// because recalculation is idempotent and repairs derived views.
	Transaction(ctx context.Context, fn func(Store) error) error
}

// SessionFilter narrows ListByClient. Date bounds are inclusive at day
// granularity; an empty status list matches every status.
type SessionFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Statuses []schedModel.SessionStatus
}

type ClientRepo interface {
	Create(ctx context.Context, m *clientModel.ClientModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*clientModel.ClientModel, error)
	Update(ctx context.Context, m *clientModel.ClientModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]clientModel.ClientModel, error)
}

type TemplateRepo interface {
	Create(ctx context.Context, m *schedModel.ScheduleTemplateModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*schedModel.ScheduleTemplateModel, error)
	// FindLatestByClient returns the most recently created template — the one
	// that wins when a client has several.
	FindLatestByClient(ctx context.Context, clientID uuid.UUID) (*schedModel.ScheduleTemplateModel, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]schedModel.ScheduleTemplateModel, error)
	Update(ctx context.Context, m *schedModel.ScheduleTemplateModel) error
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

type RuleRepo interface {
	Create(ctx context.Context, m *schedModel.ScheduleRuleModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*schedModel.ScheduleRuleModel, error)
	// ListByTemplate preserves the template's rule order (position, then id).
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]schedModel.ScheduleRuleModel, error)
	Update(ctx context.Context, m *schedModel.ScheduleRuleModel) error
	DeleteByTemplate(ctx context.Context, templateID uuid.UUID) error
}

type SessionRepo interface {
	Create(ctx context.Context, m *schedModel.CalendarSessionModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*schedModel.CalendarSessionModel, error)
	Update(ctx context.Context, m *schedModel.CalendarSessionModel) error
	// ListByClient returns sessions ordered ascending by (date, start_time,
	// id) — the allocation walk depends on this ordering.
	ListByClient(ctx context.Context, clientID uuid.UUID, f SessionFilter) ([]schedModel.CalendarSessionModel, error)
	// ListByKey resolves the generator's composite existence key.
	ListByKey(ctx context.Context, clientID uuid.UUID, date time.Time, startTime string) ([]schedModel.CalendarSessionModel, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

type PackageRepo interface {
	Create(ctx context.Context, m *billingModel.PackageModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PackageModel, error)
	Update(ctx context.Context, m *billingModel.PackageModel) error
	// ListByClient returns newest-created first (pricing takes the head).
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PackageModel, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

type PaymentRepo interface {
	Create(ctx context.Context, m *billingModel.PaymentModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PaymentModel, error)
	Update(ctx context.Context, m *billingModel.PaymentModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PaymentModel, error)
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}

type AllocationRepo interface {
	Create(ctx context.Context, m *billingModel.PaymentAllocationModel) error
	FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PaymentAllocationModel, error)
	// FindByPair resolves the unique (payment, session) row.
	FindByPair(ctx context.Context, paymentID, sessionID uuid.UUID) (*billingModel.PaymentAllocationModel, error)
	Update(ctx context.Context, m *billingModel.PaymentAllocationModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]billingModel.PaymentAllocationModel, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]billingModel.PaymentAllocationModel, error)
	// ListByClient spans all allocations whose session belongs to the client.
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PaymentAllocationModel, error)
	DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error
	DeleteByClient(ctx context.Context, clientID uuid.UUID) error
}
