// file: internals/features/schedules/service/template_edit_service.go
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	dto "trainerku_backend/internals/features/schedules/dto"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

var validate = validator.New()

/* =========================
   Template service
========================= */

// TemplateService owns template create/replace and the ordered side effects
// of window edits. Cancellation always runs before regeneration: the other
// order would either resurrect just-canceled sessions or let the same pass
// immediately cancel freshly generated ones.
type TemplateService struct {
	Store     store.Store
	Generator *Generator
}

func NewTemplateService(s store.Store, g *Generator) *TemplateService {
	return &TemplateService{Store: s, Generator: g}
}

// Create registers a new template (the newest one wins for its client),
// materializes its rules and runs generation.
func (svc *TemplateService) Create(ctx context.Context, req dto.CreateScheduleTemplateRequest) (*schedModel.ScheduleTemplateModel, int, error) {
	if err := validate.Struct(req); err != nil {
		return nil, 0, helper.InvalidArgumentf("invalid template request: %v", err)
	}
	if _, err := svc.Store.Clients().FindByID(ctx, req.ClientID); err != nil {
		return nil, 0, err
	}
	validFrom, validTo, err := req.Window()
	if err != nil {
		return nil, 0, err
	}

	tpl := schedModel.ScheduleTemplateModel{
		ScheduleTemplateClientID:    req.ClientID,
		ScheduleTemplateValidFrom:   validFrom,
		ScheduleTemplateValidTo:     validTo,
		ScheduleTemplateHorizonDays: schedModel.DefaultHorizonDays,
	}
	if req.HorizonDays != nil {
		tpl.ScheduleTemplateHorizonDays = *req.HorizonDays
	}

	err = svc.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Templates().Create(ctx, &tpl); err != nil {
			return err
		}
		return createRules(ctx, tx, tpl.ScheduleTemplateID, req.Rules)
	})
	if err != nil {
		return nil, 0, err
	}

	created, err := svc.Generator.Generate(ctx, tpl.ScheduleTemplateID, 0)
	if err != nil {
		return nil, 0, err
	}
	return &tpl, created, nil
}

// Replace swaps a template's window and rule list wholesale, applying the
// cancellation state machine first, then regenerating.
func (svc *TemplateService) Replace(ctx context.Context, templateID uuid.UUID, req dto.ReplaceScheduleTemplateRequest) (int, error) {
	if err := validate.Struct(req); err != nil {
		return 0, helper.InvalidArgumentf("invalid template request: %v", err)
	}
	tpl, err := svc.Store.Templates().FindByID(ctx, templateID)
	if err != nil {
		return 0, err
	}
	newFrom, newTo, err := req.Window()
	if err != nil {
		return 0, err
	}

	oldFrom := helper.DateOnly(tpl.ScheduleTemplateValidFrom)
	oldTo := tpl.ScheduleTemplateValidTo
	clientID := tpl.ScheduleTemplateClientID

	err = svc.Store.Transaction(ctx, func(tx store.Store) error {
		// 1) Narrowing valid_to cancels generated sessions past the new end.
		//    valid_to itself stays inside the window, so "past" is strict.
		if newTo != nil && oldTo != nil && newTo.Before(helper.DateOnly(*oldTo)) {
			if err := cancelGeneratedAfter(ctx, tx, clientID, *newTo); err != nil {
				return err
			}
		}
		// 2) Setting valid_to for the first time cancels what now falls
		//    outside the finite window.
		if newTo != nil && oldTo == nil {
			if err := cancelGeneratedAfter(ctx, tx, clientID, *newTo); err != nil {
				return err
			}
		}
		// 3) Moving valid_from later cancels generated sessions before it.
		if newFrom.After(oldFrom) {
			if err := cancelGeneratedBefore(ctx, tx, clientID, newFrom); err != nil {
				return err
			}
		}

		tpl.ScheduleTemplateValidFrom = newFrom
		tpl.ScheduleTemplateValidTo = newTo
		if req.HorizonDays != nil {
			tpl.ScheduleTemplateHorizonDays = *req.HorizonDays
		}
		if err := tx.Templates().Update(ctx, tpl); err != nil {
			return err
		}

		if err := tx.Rules().DeleteByTemplate(ctx, tpl.ScheduleTemplateID); err != nil {
			return err
		}
		return createRules(ctx, tx, tpl.ScheduleTemplateID, req.Rules)
	})
	if err != nil {
		return 0, err
	}

	// 4) Regeneration repopulates the (possibly shrunk) window consistently.
	return svc.Generator.Generate(ctx, tpl.ScheduleTemplateID, 0)
}

/* =========================
   Internals
========================= */

func createRules(ctx context.Context, tx store.Store, templateID uuid.UUID, inputs []dto.ScheduleRuleInput) error {
	for i, in := range inputs {
		rule, err := in.ToModel(templateID, i)
		if err != nil {
			return err
		}
		if err := tx.Rules().Create(ctx, &rule); err != nil {
			return err
		}
	}
	return nil
}

// cancelGeneratedAfter cancels non-custom, non-canceled sessions dated
// strictly after the given day.
func cancelGeneratedAfter(ctx context.Context, tx store.Store, clientID uuid.UUID, day time.Time) error {
	from := helper.DateOnly(day).AddDate(0, 0, 1)
	return cancelGenerated(ctx, tx, clientID, store.SessionFilter{DateFrom: &from})
}

// cancelGeneratedBefore cancels non-custom, non-canceled sessions dated
// strictly before the given day.
func cancelGeneratedBefore(ctx context.Context, tx store.Store, clientID uuid.UUID, day time.Time) error {
	to := helper.DateOnly(day).AddDate(0, 0, -1)
	return cancelGenerated(ctx, tx, clientID, store.SessionFilter{DateTo: &to})
}

func cancelGenerated(ctx context.Context, tx store.Store, clientID uuid.UUID, f store.SessionFilter) error {
	rows, err := tx.Sessions().ListByClient(ctx, clientID, f)
	if err != nil {
		return err
	}
	for i := range rows {
		s := rows[i]
		if s.IsCustom() || s.IsCanceled() {
			continue
		}
		s.CalendarSessionStatus = schedModel.SessionStatusCanceled
		if err := tx.Sessions().Update(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}
