// file: internals/features/clients/service/client_service.go
package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	dto "trainerku_backend/internals/features/clients/dto"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

var validate = validator.New()

/* =========================
   Client lifecycle
========================= */

// ClientService owns the pause/archive lifecycle and the cascade delete.
// Regeneration after a lifecycle change is the caller's move — generation is
// re-runnable wholesale, so there is nothing to diff here.
type ClientService struct {
	Store store.Store
}

func NewClientService(s store.Store) *ClientService { return &ClientService{Store: s} }

func (svc *ClientService) Create(ctx context.Context, req dto.CreateClientRequest) (*clientModel.ClientModel, error) {
	if err := validate.Struct(req); err != nil {
		return nil, helper.InvalidArgumentf("invalid client request: %v", err)
	}
	m, err := req.ToModel()
	if err != nil {
		return nil, err
	}
	if err := svc.Store.Clients().Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Pause suspends future materialization and marks the window whose days are
// excluded from generation and charging.
func (svc *ClientService) Pause(ctx context.Context, clientID uuid.UUID, from, to time.Time) error {
	if helper.DateOnly(to).Before(helper.DateOnly(from)) {
		return helper.InvalidArgumentf("pause window ends (%s) before it starts (%s)",
			helper.FormatDate(to), helper.FormatDate(from))
	}
	client, err := svc.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	client.ClientStatus = clientModel.ClientStatusPaused
	client.ClientPauseFrom = helper.Ptr(helper.DateOnly(from))
	client.ClientPauseTo = helper.Ptr(helper.DateOnly(to))
	return svc.Store.Clients().Update(ctx, client)
}

// Resume reactivates the client. The recorded window stays: its days remain
// excluded historically.
func (svc *ClientService) Resume(ctx context.Context, clientID uuid.UUID) error {
	client, err := svc.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	client.ClientStatus = clientModel.ClientStatusActive
	return svc.Store.Clients().Update(ctx, client)
}

// Archive freezes the schedule from archiveDate on: generation stops there
// and existing non-custom sessions on/after it are canceled.
func (svc *ClientService) Archive(ctx context.Context, clientID uuid.UUID, archiveDate time.Time) error {
	client, err := svc.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	cutoff := helper.DateOnly(archiveDate)
	client.ClientStatus = clientModel.ClientStatusArchived
	client.ClientArchiveDate = &cutoff

	return svc.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Clients().Update(ctx, client); err != nil {
			return err
		}
		rows, err := tx.Sessions().ListByClient(ctx, clientID, store.SessionFilter{DateFrom: &cutoff})
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
	})
}

// Delete removes the client and every dependent record in one transactional
// scope — the only hard delete of sessions in the system.
func (svc *ClientService) Delete(ctx context.Context, clientID uuid.UUID) error {
	client, err := svc.Store.Clients().FindByID(ctx, clientID)
	if err != nil {
		return err
	}
	return svc.Store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Allocations().DeleteByClient(ctx, client.ClientID); err != nil {
			return err
		}
		if err := tx.Payments().DeleteByClient(ctx, client.ClientID); err != nil {
			return err
		}
		if err := tx.Packages().DeleteByClient(ctx, client.ClientID); err != nil {
			return err
		}
		if err := tx.Sessions().DeleteByClient(ctx, client.ClientID); err != nil {
			return err
		}
		templates, err := tx.Templates().ListByClient(ctx, client.ClientID)
		if err != nil {
			return err
		}
		for i := range templates {
			if err := tx.Rules().DeleteByTemplate(ctx, templates[i].ScheduleTemplateID); err != nil {
				return err
			}
		}
		if err := tx.Templates().DeleteByClient(ctx, client.ClientID); err != nil {
			return err
		}
		return tx.Clients().Delete(ctx, client.ClientID)
	})
}
