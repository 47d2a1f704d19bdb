// file: internals/features/schedules/service/generate_sessions_service.go
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	clientModel "trainerku_backend/internals/features/clients/model"
	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
	"trainerku_backend/internals/store"
)

// Horizon cap regardless of what the template asks for.
const maxHorizonDays = 366

/* =========================
   Generator
========================= */

// Generator expands a template's weekly rules into dated sessions inside a
// rolling horizon. It is safe to re-run wholesale after any template edit,
// pause/resume or archive change: the composite (client, date, start_time)
// existence check makes regeneration idempotent.
type Generator struct {
	Store store.Store

	// Now overrides "today" in tests; nil means the wall clock.
	Now func() time.Time
}

func NewGenerator(s store.Store) *Generator { return &Generator{Store: s} }

func (g *Generator) today() time.Time {
	if g.Now != nil {
		return helper.DateOnly(g.Now())
	}
	return helper.Today()
}

// Generate returns the number of sessions created. Archived/paused clients
// and templates outside their validity window are legitimate no-ops, not
// errors; only unresolved ids raise.
func (g *Generator) Generate(ctx context.Context, templateID uuid.UUID, horizonDays int) (int, error) {
	tpl, err := g.Store.Templates().FindByID(ctx, templateID)
	if err != nil {
		return 0, err
	}
	client, err := g.Store.Clients().FindByID(ctx, tpl.ScheduleTemplateClientID)
	if err != nil {
		return 0, err
	}

	today := g.today()

	// Archive freeze: once today reaches the cutoff the schedule stays as-is.
	if client.ClientStatus == clientModel.ClientStatusArchived && client.ArchiveCovers(today) {
		return 0, nil
	}

	// Open-ended templates opportunistically get "end of next calendar month"
	// persisted as valid_to. A user-set value is never touched, even when it
	// already lies in the past.
	if tpl.ScheduleTemplateValidTo == nil {
		derived := helper.EndOfNextMonth(today)
		tpl.ScheduleTemplateValidTo = &derived
		if err := g.Store.Templates().Update(ctx, tpl); err != nil {
			return 0, err
		}
	}

	if today.Before(helper.DateOnly(tpl.ScheduleTemplateValidFrom)) ||
		today.After(helper.DateOnly(*tpl.ScheduleTemplateValidTo)) {
		return 0, nil
	}

	// Pausing suspends future materialization entirely.
	if !client.IsActive() {
		return 0, nil
	}

	horizon := horizonDays
	if horizon <= 0 {
		horizon = tpl.Horizon()
	}
	if horizon > maxHorizonDays {
		horizon = maxHorizonDays
	}

	rules, err := g.Store.Rules().ListByTemplate(ctx, tpl.ScheduleTemplateID)
	if err != nil {
		return 0, err
	}

	created := 0
	err = g.Store.Transaction(ctx, func(tx store.Store) error {
		for i := 0; i < horizon; i++ {
			d := today.AddDate(0, 0, i)
			if !helper.WithinWindow(d, &tpl.ScheduleTemplateValidFrom, tpl.ScheduleTemplateValidTo) {
				continue
			}
			// Nothing materializes before the working relationship starts.
			if d.Before(helper.DateOnly(client.ClientStartDate)) {
				continue
			}
			if client.PauseCovers(d) || client.ArchiveCovers(d) {
				continue
			}
			for _, rule := range rules {
				if !rule.ScheduleRuleIsActive {
					continue
				}
				if !dateMatchesRule(d, tpl.ScheduleTemplateValidFrom, rule) {
					continue
				}
				ok, err := g.shouldCreate(ctx, tx, client.ClientID, d, rule.ScheduleRuleStartTime)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				row := schedModel.CalendarSessionModel{
					CalendarSessionClientID:     client.ClientID,
					CalendarSessionDate:         d,
					CalendarSessionStartTime:    rule.ScheduleRuleStartTime,
					CalendarSessionStatus:       schedModel.SessionStatusPlanned,
					CalendarSessionRuleID:       helper.Ptr(rule.ScheduleRuleID),
					CalendarSessionRuleSnapshot: buildRuleSnapshot(rule),
				}
				// Seed the rule's base price as an override so the session
				// keeps its price even if the rule is later replaced.
				if rule.ScheduleRuleBasePrice != nil {
					row.CalendarSessionPriceOverride = helper.Ptr(*rule.ScheduleRuleBasePrice)
				}
				if err := tx.Sessions().Create(ctx, &row); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// shouldCreate applies the idempotence rule: skip when a non-canceled session
// already occupies the slot, or a canceled custom one does (the user took the
// slot away by hand).
func (g *Generator) shouldCreate(ctx context.Context, tx store.Store, clientID uuid.UUID, date time.Time, startTime string) (bool, error) {
	existing, err := tx.Sessions().ListByKey(ctx, clientID, date, startTime)
	if err != nil {
		return false, err
	}
	for _, s := range existing {
		if !s.IsCanceled() {
			return false, nil
		}
		if s.IsCanceled() && s.IsCustom() {
			return false, nil
		}
	}
	return true, nil
}

/* =========================
   Rule matching & snapshot
========================= */

func dateMatchesRule(d, validFrom time.Time, r schedModel.ScheduleRuleModel) bool {
	if helper.ISOWeekday(d) != r.ScheduleRuleWeekday {
		return false
	}
	wk := helper.WeeksBetween(validFrom, d)
	if wk < 0 {
		return false
	}
	if wk%r.Interval() != 0 {
		return false
	}
	if len(r.ScheduleRuleWeeksOfMonth) > 0 {
		wm := helper.WeekOfMonthISO(d)
		ok := false
		for _, w := range r.ScheduleRuleWeeksOfMonth {
			if int(w) == wm {
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

func buildRuleSnapshot(r schedModel.ScheduleRuleModel) datatypes.JSONMap {
	out := datatypes.JSONMap{
		"rule_id":        r.ScheduleRuleID.String(),
		"template_id":    r.ScheduleRuleTemplateID.String(),
		"weekday":        r.ScheduleRuleWeekday,
		"start_time":     r.ScheduleRuleStartTime,
		"interval_weeks": r.Interval(),
	}
	if r.ScheduleRuleBasePrice != nil {
		out["base_price"] = *r.ScheduleRuleBasePrice
	}
	if len(r.ScheduleRuleWeeksOfMonth) > 0 {
		arr := make([]int, 0, len(r.ScheduleRuleWeeksOfMonth))
		for _, w := range r.ScheduleRuleWeeksOfMonth {
			arr = append(arr, int(w))
		}
		out["weeks_of_month"] = arr
	}
	return out
}
