// file: internals/features/schedules/dto/schedule_template_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	schedModel "trainerku_backend/internals/features/schedules/model"
	helper "trainerku_backend/internals/helpers"
)

/* =========================================================
   Requests
   ========================================================= */

type ScheduleRuleInput struct {
	// ISO weekday 1=Monday … 7=Sunday.
	Weekday   int    `json:"weekday"    validate:"required,min=1,max=7"`
	StartTime string `json:"start_time" validate:"required"` // "HH:mm" / "HH:mm:ss"

	BasePrice *float64 `json:"base_price,omitempty" validate:"omitempty,gte=0"`
	IsActive  *bool    `json:"is_active,omitempty"`

	// Optional recurrence extensions; defaults mean plain weekly.
	IntervalWeeks *int  `json:"interval_weeks,omitempty" validate:"omitempty,min=1"`
	WeeksOfMonth  []int `json:"weeks_of_month,omitempty" validate:"omitempty,dive,min=1,max=5"`
}

type ReplaceScheduleTemplateRequest struct {
	ValidFrom   string              `json:"valid_from" validate:"required"` // "YYYY-MM-DD"
	ValidTo     *string             `json:"valid_to,omitempty"`             // nil = open-ended
	HorizonDays *int                `json:"horizon_days,omitempty" validate:"omitempty,min=1,max=366"`
	Rules       []ScheduleRuleInput `json:"rules" validate:"required,min=1,dive"`
}

type CreateScheduleTemplateRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	ReplaceScheduleTemplateRequest
}

/* =========================================================
   Conversions
   ========================================================= */

func (r ReplaceScheduleTemplateRequest) Window() (validFrom time.Time, validTo *time.Time, err error) {
	validFrom, err = helper.ParseDate(r.ValidFrom)
	if err != nil {
		return time.Time{}, nil, err
	}
	if r.ValidTo != nil {
		to, err := helper.ParseDate(*r.ValidTo)
		if err != nil {
			return time.Time{}, nil, err
		}
		validTo = &to
	}
	return validFrom, validTo, nil
}

func (in ScheduleRuleInput) ToModel(templateID uuid.UUID, position int) (schedModel.ScheduleRuleModel, error) {
	start, err := helper.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return schedModel.ScheduleRuleModel{}, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	interval := 1
	if in.IntervalWeeks != nil {
		interval = *in.IntervalWeeks
	}
	var weeks pq.Int64Array
	for _, w := range in.WeeksOfMonth {
		weeks = append(weeks, int64(w))
	}
	return schedModel.ScheduleRuleModel{
		ScheduleRuleTemplateID:    templateID,
		ScheduleRulePosition:      position,
		ScheduleRuleWeekday:       in.Weekday,
		ScheduleRuleStartTime:     start,
		ScheduleRuleBasePrice:     in.BasePrice,
		ScheduleRuleIsActive:      active,
		ScheduleRuleIntervalWeeks: interval,
		ScheduleRuleWeeksOfMonth:  weeks,
	}, nil
}
