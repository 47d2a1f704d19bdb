// file: internals/store/gorm_store.go
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	billingModel "trainerku_backend/internals/features/billing/model"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
)

/* =========================
   GORM-backed store
========================= */

type GormStore struct{ DB *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{DB: db} }

func (s *GormStore) Clients() ClientRepo         { return &gormClientRepo{s.DB} }
func (s *GormStore) Templates() TemplateRepo     { return &gormTemplateRepo{s.DB} }
func (s *GormStore) Rules() RuleRepo             { return &gormRuleRepo{s.DB} }
func (s *GormStore) Sessions() SessionRepo       { return &gormSessionRepo{s.DB} }
func (s *GormStore) Packages() PackageRepo       { return &gormPackageRepo{s.DB} }
func (s *GormStore) Payments() PaymentRepo       { return &gormPaymentRepo{s.DB} }
func (s *GormStore) Allocations() AllocationRepo { return &gormAllocationRepo{s.DB} }

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{DB: tx})
	})
}

func notFoundOr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.NotFoundf(format, args...)
	}
	return err
}

/* ===================== Clients ===================== */

type gormClientRepo struct{ db *gorm.DB }

func (r *gormClientRepo) Create(ctx context.Context, m *clientModel.ClientModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*clientModel.ClientModel, error) {
	var row clientModel.ClientModel
	if err := r.db.WithContext(ctx).Where("client_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "client %s", id)
	}
	return &row, nil
}

func (r *gormClientRepo) Update(ctx context.Context, m *clientModel.ClientModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&clientModel.ClientModel{}, "client_id = ?", id).Error
}

func (r *gormClientRepo) List(ctx context.Context) ([]clientModel.ClientModel, error) {
	rows := []clientModel.ClientModel{}
	err := r.db.WithContext(ctx).Order("client_created_at, client_id").Find(&rows).Error
	return rows, err
}

/* ===================== Templates ===================== */

type gormTemplateRepo struct{ db *gorm.DB }

func (r *gormTemplateRepo) Create(ctx context.Context, m *schedModel.ScheduleTemplateModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormTemplateRepo) FindByID(ctx context.Context, id uuid.UUID) (*schedModel.ScheduleTemplateModel, error) {
	var row schedModel.ScheduleTemplateModel
	if err := r.db.WithContext(ctx).Where("schedule_template_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "schedule template %s", id)
	}
	return &row, nil
}

func (r *gormTemplateRepo) FindLatestByClient(ctx context.Context, clientID uuid.UUID) (*schedModel.ScheduleTemplateModel, error) {
	var row schedModel.ScheduleTemplateModel
	err := r.db.WithContext(ctx).
		Where("schedule_template_client_id = ?", clientID).
		Order("schedule_template_created_at DESC, schedule_template_id DESC").
		Take(&row).Error
	if err != nil {
		return nil, notFoundOr(err, "schedule template for client %s", clientID)
	}
	return &row, nil
}

func (r *gormTemplateRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]schedModel.ScheduleTemplateModel, error) {
	rows := []schedModel.ScheduleTemplateModel{}
	err := r.db.WithContext(ctx).
		Where("schedule_template_client_id = ?", clientID).
		Order("schedule_template_created_at, schedule_template_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormTemplateRepo) Update(ctx context.Context, m *schedModel.ScheduleTemplateModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormTemplateRepo) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&schedModel.ScheduleTemplateModel{}, "schedule_template_client_id = ?", clientID).Error
}

/* ===================== Rules ===================== */

type gormRuleRepo struct{ db *gorm.DB }

func (r *gormRuleRepo) Create(ctx context.Context, m *schedModel.ScheduleRuleModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*schedModel.ScheduleRuleModel, error) {
	var row schedModel.ScheduleRuleModel
	if err := r.db.WithContext(ctx).Where("schedule_rule_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "schedule rule %s", id)
	}
	return &row, nil
}

func (r *gormRuleRepo) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]schedModel.ScheduleRuleModel, error) {
	rows := []schedModel.ScheduleRuleModel{}
	err := r.db.WithContext(ctx).
		Where("schedule_rule_template_id = ?", templateID).
		Order("schedule_rule_position, schedule_rule_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormRuleRepo) Update(ctx context.Context, m *schedModel.ScheduleRuleModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormRuleRepo) DeleteByTemplate(ctx context.Context, templateID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&schedModel.ScheduleRuleModel{}, "schedule_rule_template_id = ?", templateID).Error
}

/* ===================== Sessions ===================== */

type gormSessionRepo struct{ db *gorm.DB }

func (r *gormSessionRepo) Create(ctx context.Context, m *schedModel.CalendarSessionModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*schedModel.CalendarSessionModel, error) {
	var row schedModel.CalendarSessionModel
	if err := r.db.WithContext(ctx).Where("calendar_session_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "session %s", id)
	}
	return &row, nil
}

func (r *gormSessionRepo) Update(ctx context.Context, m *schedModel.CalendarSessionModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormSessionRepo) ListByClient(ctx context.Context, clientID uuid.UUID, f SessionFilter) ([]schedModel.CalendarSessionModel, error) {
	q := r.db.WithContext(ctx).Where("calendar_session_client_id = ?", clientID)
	if f.DateFrom != nil {
		q = q.Where("calendar_session_date >= ?", helper.DateOnly(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("calendar_session_date <= ?", helper.DateOnly(*f.DateTo))
	}
	if len(f.Statuses) > 0 {
		q = q.Where("calendar_session_status IN ?", f.Statuses)
	}
	rows := []schedModel.CalendarSessionModel{}
	err := q.Order("calendar_session_date, calendar_session_start_time, calendar_session_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormSessionRepo) ListByKey(ctx context.Context, clientID uuid.UUID, date time.Time, startTime string) ([]schedModel.CalendarSessionModel, error) {
	rows := []schedModel.CalendarSessionModel{}
	err := r.db.WithContext(ctx).
		Where("calendar_session_client_id = ? AND calendar_session_date = ? AND calendar_session_start_time = ?",
			clientID, helper.DateOnly(date), startTime).
		Find(&rows).Error
	return rows, err
}

func (r *gormSessionRepo) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&schedModel.CalendarSessionModel{}, "calendar_session_client_id = ?", clientID).Error
}

/* ===================== Packages ===================== */

type gormPackageRepo struct{ db *gorm.DB }

func (r *gormPackageRepo) Create(ctx context.Context, m *billingModel.PackageModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormPackageRepo) FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PackageModel, error) {
	var row billingModel.PackageModel
	if err := r.db.WithContext(ctx).Where("package_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "package %s", id)
	}
	return &row, nil
}

func (r *gormPackageRepo) Update(ctx context.Context, m *billingModel.PackageModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormPackageRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PackageModel, error) {
	rows := []billingModel.PackageModel{}
	err := r.db.WithContext(ctx).
		Where("package_client_id = ?", clientID).
		Order("package_created_at DESC, package_id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *gormPackageRepo) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&billingModel.PackageModel{}, "package_client_id = ?", clientID).Error
}

/* ===================== Payments ===================== */

type gormPaymentRepo struct{ db *gorm.DB }

func (r *gormPaymentRepo) Create(ctx context.Context, m *billingModel.PaymentModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PaymentModel, error) {
	var row billingModel.PaymentModel
	if err := r.db.WithContext(ctx).Where("payment_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "payment %s", id)
	}
	return &row, nil
}

func (r *gormPaymentRepo) Update(ctx context.Context, m *billingModel.PaymentModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormPaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&billingModel.PaymentModel{}, "payment_id = ?", id).Error
}

func (r *gormPaymentRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PaymentModel, error) {
	rows := []billingModel.PaymentModel{}
	err := r.db.WithContext(ctx).
		Where("payment_client_id = ?", clientID).
		Order("payment_paid_at, payment_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormPaymentRepo) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&billingModel.PaymentModel{}, "payment_client_id = ?", clientID).Error
}

/* ===================== Allocations ===================== */

type gormAllocationRepo struct{ db *gorm.DB }

func (r *gormAllocationRepo) Create(ctx context.Context, m *billingModel.PaymentAllocationModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *gormAllocationRepo) FindByID(ctx context.Context, id uuid.UUID) (*billingModel.PaymentAllocationModel, error) {
	var row billingModel.PaymentAllocationModel
	if err := r.db.WithContext(ctx).Where("payment_allocation_id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "allocation %s", id)
	}
	return &row, nil
}

func (r *gormAllocationRepo) FindByPair(ctx context.Context, paymentID, sessionID uuid.UUID) (*billingModel.PaymentAllocationModel, error) {
	var row billingModel.PaymentAllocationModel
	err := r.db.WithContext(ctx).
		Where("payment_allocation_payment_id = ? AND payment_allocation_session_id = ?", paymentID, sessionID).
		Take(&row).Error
	if err != nil {
		return nil, notFoundOr(err, "allocation (payment %s, session %s)", paymentID, sessionID)
	}
	return &row, nil
}

func (r *gormAllocationRepo) Update(ctx context.Context, m *billingModel.PaymentAllocationModel) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormAllocationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&billingModel.PaymentAllocationModel{}, "payment_allocation_id = ?", id).Error
}

func (r *gormAllocationRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	rows := []billingModel.PaymentAllocationModel{}
	err := r.db.WithContext(ctx).
		Where("payment_allocation_payment_id = ?", paymentID).
		Order("payment_allocation_created_at, payment_allocation_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormAllocationRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	rows := []billingModel.PaymentAllocationModel{}
	err := r.db.WithContext(ctx).
		Where("payment_allocation_session_id = ?", sessionID).
		Order("payment_allocation_created_at, payment_allocation_id").
		Find(&rows).Error
	return rows, err
}

func (r *gormAllocationRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]billingModel.PaymentAllocationModel, error) {
	rows := []billingModel.PaymentAllocationModel{}
	err := r.db.WithContext(ctx).
		Joins("JOIN calendar_sessions ON calendar_sessions.calendar_session_id = payment_allocations.payment_allocation_session_id").
		Where("calendar_sessions.calendar_session_client_id = ?", clientID).
		Find(&rows).Error
	return rows, err
}

func (r *gormAllocationRepo) DeleteByPayment(ctx context.Context, paymentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&billingModel.PaymentAllocationModel{}, "payment_allocation_payment_id = ?", paymentID).Error
}

func (r *gormAllocationRepo) DeleteByClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
DELETE FROM payment_allocations pa
USING calendar_sessions cs
WHERE cs.calendar_session_id = pa.payment_allocation_session_id
  AND cs.calendar_session_client_id = ?`, clientID).Error
}
