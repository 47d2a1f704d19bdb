// file: internals/features/backup/service/backup_service_test.go
package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingModel "trainerku_backend/internals/features/billing/model"
	billingService "trainerku_backend/internals/features/billing/service"
	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := helper.ParseDate(s)
	require.NoError(t, err)
	return d
}

func newBackupService(s store.Store) *BackupService {
	_, _, recalc := billingService.NewBillingServices(s)
	return NewBackupService(s, recalc)
}

func seedWorld(t *testing.T, s store.Store) *clientModel.ClientModel {
	t.Helper()
	ctx := context.Background()

	client := clientModel.ClientModel{
		ClientName:      "Budi",
		ClientStatus:    clientModel.ClientStatusActive,
		ClientStartDate: day(t, "2024-01-01"),
	}
	require.NoError(t, s.Clients().Create(ctx, &client))

	tpl := schedModel.ScheduleTemplateModel{
		ScheduleTemplateClientID:    client.ClientID,
		ScheduleTemplateValidFrom:   day(t, "2024-05-06"),
		ScheduleTemplateHorizonDays: 60,
	}
	require.NoError(t, s.Templates().Create(ctx, &tpl))

	rule := schedModel.ScheduleRuleModel{
		ScheduleRuleTemplateID: tpl.ScheduleTemplateID,
		ScheduleRuleWeekday:    1,
		ScheduleRuleStartTime:  "10:00",
		ScheduleRuleBasePrice:  helper.Ptr(30.0),
		ScheduleRuleIsActive:   true,
	}
	require.NoError(t, s.Rules().Create(ctx, &rule))

	sess := schedModel.CalendarSessionModel{
		CalendarSessionClientID:  client.ClientID,
		CalendarSessionDate:      day(t, "2024-05-06"),
		CalendarSessionStartTime: "10:00",
		CalendarSessionStatus:    schedModel.SessionStatusPlanned,
		CalendarSessionRuleID:    helper.Ptr(rule.ScheduleRuleID),
	}
	require.NoError(t, s.Sessions().Create(ctx, &sess))

	pay := billingModel.PaymentModel{
		PaymentClientID: client.ClientID,
		PaymentPaidAt:   day(t, "2024-05-06"),
		PaymentAmount:   100,
		PaymentMethod:   billingModel.PaymentMethodTransfer,
	}
	require.NoError(t, s.Payments().Create(ctx, &pay))

	alloc := billingModel.PaymentAllocationModel{
		PaymentAllocationPaymentID: pay.PaymentID,
		PaymentAllocationSessionID: sess.CalendarSessionID,
		PaymentAllocationAmount:    30,
	}
	require.NoError(t, s.Allocations().Create(ctx, &alloc))
	return &client
}

func TestExportRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemoryStore()
	client := seedWorld(t, src)

	data, err := newBackupService(src).Export(ctx)
	require.NoError(t, err)

	var doc BackupDocument
	require.NoError(t, sonic.Unmarshal(data, &doc))
	assert.Equal(t, SchemaVersion, doc.SchemaVersion)
	assert.Equal(t, AppVersion, doc.AppVersion)
	require.Len(t, doc.Clients, 1)
	require.Len(t, doc.Sessions, 1)
	require.Len(t, doc.Allocations, 1)

	dst := store.NewMemoryStore()
	require.NoError(t, newBackupService(dst).Restore(ctx, data))

	got, err := dst.Clients().FindByID(ctx, client.ClientID)
	require.NoError(t, err)
	assert.Equal(t, "Budi", got.ClientName)

	sessions, err := dst.Sessions().ListByClient(ctx, client.ClientID, store.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, day(t, "2024-05-06"), sessions[0].CalendarSessionDate)

	allocs, err := dst.Allocations().ListByClient(ctx, client.ClientID)
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, 30.0, allocs[0].PaymentAllocationAmount)
}

func TestRestoreMergesById(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	client := seedWorld(t, s)

	data, err := newBackupService(s).Export(ctx)
	require.NoError(t, err)

	// Local edit after the export; restoring puts the document's state back
	// without duplicating rows.
	client.ClientName = "Budi (edited)"
	require.NoError(t, s.Clients().Update(ctx, client))

	require.NoError(t, newBackupService(s).Restore(ctx, data))

	clients, err := s.Clients().List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Budi", clients[0].ClientName)
}

func TestRestoreMergesRulesById(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	client := seedWorld(t, s)

	data, err := newBackupService(s).Export(ctx)
	require.NoError(t, err)

	templates, err := s.Templates().ListByClient(ctx, client.ClientID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	rules, err := s.Rules().ListByTemplate(ctx, templates[0].ScheduleTemplateID)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	// A local rule edit after the export must roll back on restore, same as
	// every other collection.
	edited := rules[0]
	edited.ScheduleRuleBasePrice = helper.Ptr(99.0)
	require.NoError(t, s.Rules().Update(ctx, &edited))

	require.NoError(t, newBackupService(s).Restore(ctx, data))

	rules, err = s.Rules().ListByTemplate(ctx, templates[0].ScheduleTemplateID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	require.NotNil(t, rules[0].ScheduleRuleBasePrice)
	assert.Equal(t, 30.0, *rules[0].ScheduleRuleBasePrice)
}

func TestRestoreRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	doc := map[string]any{"schema_version": SchemaVersion + 1}
	data, err := sonic.Marshal(doc)
	require.NoError(t, err)

	err = newBackupService(s).Restore(ctx, data)
	assert.True(t, errors.Is(err, ErrSchemaTooNew))
}

func TestRestoreMigratesLegacySchema(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	doc := map[string]any{
		"schema_version": 1,
		"clients": []map[string]any{
			{
				"client_id":         "6f1e1d2c-9a64-4f09-8f0b-7f3c1a2b3c4d",
				"client_name":       "Budi",
				"client_status":     "active",
				"client_start_date": "2024-01-01T00:00:00Z",
			},
		},
		"templates": []map[string]any{
			{
				"schedule_template_id":         "7a2b3c4d-5e6f-4a1b-9c8d-0e1f2a3b4c5d",
				"schedule_template_client_id":  "6f1e1d2c-9a64-4f09-8f0b-7f3c1a2b3c4d",
				"schedule_template_valid_from": "2024-05-06T00:00:00Z",
				// no horizon field in the legacy layout
			},
		},
	}
	data, err := sonic.Marshal(doc)
	require.NoError(t, err)

	require.NoError(t, newBackupService(s).Restore(ctx, data))

	clients, err := s.Clients().List(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)

	templates, err := s.Templates().ListByClient(ctx, clients[0].ClientID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, schedModel.DefaultHorizonDays, templates[0].ScheduleTemplateHorizonDays)
}

func TestRestoreRejectsGarbage(t *testing.T) {
	err := newBackupService(store.NewMemoryStore()).Restore(context.Background(), []byte("bukan json"))
	assert.Error(t, err)
}
