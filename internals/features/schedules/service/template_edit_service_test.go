// file: internals/features/schedules/service/template_edit_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientModel "trainerku_backend/internals/features/clients/model"
	dto "trainerku_backend/internals/features/schedules/dto"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

type tplFixture struct {
	store  *store.MemoryStore
	svc    *TemplateService
	client *clientModel.ClientModel
}

func newTplFixture(t *testing.T) *tplFixture {
	t.Helper()
	s := store.NewMemoryStore()
	client := clientModel.ClientModel{
		ClientName:      "Budi",
		ClientStatus:    clientModel.ClientStatusActive,
		ClientStartDate: day(t, "2024-01-01"),
	}
	require.NoError(t, s.Clients().Create(context.Background(), &client))

	g := NewGenerator(s)
	g.Now = fixedNow(t, "2024-05-06")
	return &tplFixture{store: s, svc: NewTemplateService(s, g), client: &client}
}

func mondayTenRules() []dto.ScheduleRuleInput {
	return []dto.ScheduleRuleInput{
		{Weekday: 1, StartTime: "10:00", BasePrice: helper.Ptr(30.0)},
	}
}

func (f *tplFixture) create(t *testing.T) *schedModel.ScheduleTemplateModel {
	t.Helper()
	tpl, created, err := f.svc.Create(context.Background(), dto.CreateScheduleTemplateRequest{
		ClientID: f.client.ClientID,
		ReplaceScheduleTemplateRequest: dto.ReplaceScheduleTemplateRequest{
			ValidFrom:   "2024-05-06",
			ValidTo:     helper.Ptr("2024-06-30"),
			HorizonDays: helper.Ptr(60),
			Rules:       mondayTenRules(),
		},
	})
	require.NoError(t, err)
	require.Equal(t, 8, created)
	return tpl
}

func (f *tplFixture) sessionsByStatus(t *testing.T) map[schedModel.SessionStatus][]schedModel.CalendarSessionModel {
	t.Helper()
	rows, err := f.store.Sessions().ListByClient(context.Background(), f.client.ClientID, store.SessionFilter{})
	require.NoError(t, err)
	out := map[schedModel.SessionStatus][]schedModel.CalendarSessionModel{}
	for _, s := range rows {
		out[s.CalendarSessionStatus] = append(out[s.CalendarSessionStatus], s)
	}
	return out
}

func TestTemplateCreateGeneratesAndPersistsRules(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)

	tpl := f.create(t)
	rules, err := f.store.Rules().ListByTemplate(ctx, tpl.ScheduleTemplateID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 1, rules[0].ScheduleRuleWeekday)
	assert.Equal(t, "10:00", rules[0].ScheduleRuleStartTime)
	assert.Equal(t, 0, rules[0].ScheduleRulePosition)
}

func TestTemplateCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)

	_, _, err := f.svc.Create(ctx, dto.CreateScheduleTemplateRequest{
		ClientID: f.client.ClientID,
		ReplaceScheduleTemplateRequest: dto.ReplaceScheduleTemplateRequest{
			ValidFrom: "2024-05-06",
			Rules:     nil, // at least one rule required
		},
	})
	assert.True(t, errors.Is(err, helper.ErrInvalidArgument))
}

func TestTemplateShrinkCancelsBeyondNewEnd(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)
	tpl := f.create(t)

	// A hand-placed June session must survive the shrink untouched.
	custom := schedModel.CalendarSessionModel{
		CalendarSessionClientID:  f.client.ClientID,
		CalendarSessionDate:      day(t, "2024-06-05"),
		CalendarSessionStartTime: "08:00",
		CalendarSessionStatus:    schedModel.SessionStatusPlanned,
	}
	require.NoError(t, f.store.Sessions().Create(ctx, &custom))

	created, err := f.svc.Replace(ctx, tpl.ScheduleTemplateID, dto.ReplaceScheduleTemplateRequest{
		ValidFrom: "2024-05-06",
		ValidTo:   helper.Ptr("2024-05-31"),
		Rules:     mondayTenRules(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	byStatus := f.sessionsByStatus(t)
	require.Len(t, byStatus[schedModel.SessionStatusCanceled], 4) // June Mondays
	for _, s := range byStatus[schedModel.SessionStatusCanceled] {
		assert.True(t, s.CalendarSessionDate.After(day(t, "2024-05-31")))
	}
	// May Mondays plus the custom one.
	require.Len(t, byStatus[schedModel.SessionStatusPlanned], 5)

	got, err := f.store.Sessions().FindByID(ctx, custom.CalendarSessionID)
	require.NoError(t, err)
	assert.Equal(t, schedModel.SessionStatusPlanned, got.CalendarSessionStatus)

	// Regeneration after the shrink must not resurrect the canceled June rows.
	created, err = f.svc.Replace(ctx, tpl.ScheduleTemplateID, dto.ReplaceScheduleTemplateRequest{
		ValidFrom: "2024-05-06",
		ValidTo:   helper.Ptr("2024-05-31"),
		Rules:     mondayTenRules(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, f.sessionsByStatus(t)[schedModel.SessionStatusCanceled], 4)
}

func TestTemplateFirstValidToCancelsBeyondNewEnd(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)

	// An open-ended template whose sessions already reach into June.
	tpl := schedModel.ScheduleTemplateModel{
		ScheduleTemplateClientID:    f.client.ClientID,
		ScheduleTemplateValidFrom:   day(t, "2024-05-06"),
		ScheduleTemplateHorizonDays: 60,
	}
	require.NoError(t, f.store.Templates().Create(ctx, &tpl))
	rule := schedModel.ScheduleRuleModel{
		ScheduleRuleTemplateID:    tpl.ScheduleTemplateID,
		ScheduleRuleWeekday:       1,
		ScheduleRuleStartTime:     "10:00",
		ScheduleRuleIsActive:      true,
		ScheduleRuleIntervalWeeks: 1,
	}
	require.NoError(t, f.store.Rules().Create(ctx, &rule))
	for _, date := range []string{"2024-05-06", "2024-05-13", "2024-05-20", "2024-05-27",
		"2024-06-03", "2024-06-10", "2024-06-17", "2024-06-24"} {
		row := schedModel.CalendarSessionModel{
			CalendarSessionClientID:  f.client.ClientID,
			CalendarSessionDate:      day(t, date),
			CalendarSessionStartTime: "10:00",
			CalendarSessionStatus:    schedModel.SessionStatusPlanned,
			CalendarSessionRuleID:    helper.Ptr(rule.ScheduleRuleID),
		}
		require.NoError(t, f.store.Sessions().Create(ctx, &row))
	}
	custom := schedModel.CalendarSessionModel{
		CalendarSessionClientID:  f.client.ClientID,
		CalendarSessionDate:      day(t, "2024-06-05"),
		CalendarSessionStartTime: "08:00",
		CalendarSessionStatus:    schedModel.SessionStatusPlanned,
	}
	require.NoError(t, f.store.Sessions().Create(ctx, &custom))

	// Setting valid_to for the first time makes the window finite.
	created, err := f.svc.Replace(ctx, tpl.ScheduleTemplateID, dto.ReplaceScheduleTemplateRequest{
		ValidFrom: "2024-05-06",
		ValidTo:   helper.Ptr("2024-05-31"),
		Rules:     mondayTenRules(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created) // May Mondays already occupied

	byStatus := f.sessionsByStatus(t)
	require.Len(t, byStatus[schedModel.SessionStatusCanceled], 4)
	for _, s := range byStatus[schedModel.SessionStatusCanceled] {
		assert.True(t, s.CalendarSessionDate.After(day(t, "2024-05-31")))
		assert.False(t, s.IsCustom())
	}
	require.Len(t, byStatus[schedModel.SessionStatusPlanned], 5)

	got, err := f.store.Sessions().FindByID(ctx, custom.CalendarSessionID)
	require.NoError(t, err)
	assert.Equal(t, schedModel.SessionStatusPlanned, got.CalendarSessionStatus)
}

func TestTemplateLaterValidFromCancelsEarlierSessions(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)
	tpl := f.create(t)

	created, err := f.svc.Replace(ctx, tpl.ScheduleTemplateID, dto.ReplaceScheduleTemplateRequest{
		ValidFrom: "2024-05-20",
		ValidTo:   helper.Ptr("2024-06-30"),
		Rules:     mondayTenRules(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	byStatus := f.sessionsByStatus(t)
	require.Len(t, byStatus[schedModel.SessionStatusCanceled], 2) // 05-06, 05-13
	for _, s := range byStatus[schedModel.SessionStatusCanceled] {
		assert.True(t, s.CalendarSessionDate.Before(day(t, "2024-05-20")))
	}
	assert.Len(t, byStatus[schedModel.SessionStatusPlanned], 6)
}

func TestTemplateRuleSwapKeepsExistingSessions(t *testing.T) {
	ctx := context.Background()
	f := newTplFixture(t)
	tpl := f.create(t)

	// Same window, Wednesday instead of Monday: the old sessions stay and the
	// new weekday fills in alongside them.
	created, err := f.svc.Replace(ctx, tpl.ScheduleTemplateID, dto.ReplaceScheduleTemplateRequest{
		ValidFrom: "2024-05-06",
		ValidTo:   helper.Ptr("2024-06-30"),
		Rules: []dto.ScheduleRuleInput{
			{Weekday: 3, StartTime: "10:00", BasePrice: helper.Ptr(35.0)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, created) // Wednesdays 05-08 .. 06-26

	byStatus := f.sessionsByStatus(t)
	assert.Empty(t, byStatus[schedModel.SessionStatusCanceled])
	assert.Len(t, byStatus[schedModel.SessionStatusPlanned], 16)

	rules, err := f.store.Rules().ListByTemplate(ctx, tpl.ScheduleTemplateID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 3, rules[0].ScheduleRuleWeekday)
}
