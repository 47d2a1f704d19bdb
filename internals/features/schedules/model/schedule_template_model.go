// file: internals/features/schedules/model/schedule_template_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

/* ===================== Template ===================== */

const DefaultHorizonDays = 90

// ScheduleTemplateModel is the recurring weekly rule set for one client.
// A client has at most one effective template: the most recently created one
// wins, and edits replace the rule list wholesale.
type ScheduleTemplateModel struct {
	// PK
	ScheduleTemplateID uuid.UUID `json:"schedule_template_id" gorm:"type:uuid;primaryKey;column:schedule_template_id;default:gen_random_uuid()"`

	ScheduleTemplateClientID uuid.UUID `json:"schedule_template_client_id" gorm:"type:uuid;not null;index;column:schedule_template_client_id"`

	// Validity window. A nil valid_to is open-ended until the generator
	// opportunistically derives and persists one; a user-set value is never
	// overridden, even when it lies in the past.
	ScheduleTemplateValidFrom time.Time  `json:"schedule_template_valid_from" gorm:"type:date;not null;column:schedule_template_valid_from"`
	ScheduleTemplateValidTo   *time.Time `json:"schedule_template_valid_to,omitempty" gorm:"type:date;column:schedule_template_valid_to"`

	// Rolling generation horizon in days.
	ScheduleTemplateHorizonDays int `json:"schedule_template_horizon_days" gorm:"type:integer;not null;default:90;column:schedule_template_horizon_days"`

	// Timestamps
	ScheduleTemplateCreatedAt time.Time `json:"schedule_template_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:schedule_template_created_at"`
	ScheduleTemplateUpdatedAt time.Time `json:"schedule_template_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:schedule_template_updated_at"`
}

func (ScheduleTemplateModel) TableName() string { return "schedule_templates" }

func (t *ScheduleTemplateModel) Horizon() int {
	if t.ScheduleTemplateHorizonDays > 0 {
		return t.ScheduleTemplateHorizonDays
	}
	return DefaultHorizonDays
}

/* ===================== Rule ===================== */

// ScheduleRuleModel is one weekday+time slot within a template. Rules are
// replaced together with their template; sessions keep the old rule id as a
// dangling back-reference with defined fallback semantics in pricing.
type ScheduleRuleModel struct {
	// PK
	ScheduleRuleID uuid.UUID `json:"schedule_rule_id" gorm:"type:uuid;primaryKey;column:schedule_rule_id;default:gen_random_uuid()"`

	ScheduleRuleTemplateID uuid.UUID `json:"schedule_rule_template_id" gorm:"type:uuid;not null;index;column:schedule_rule_template_id"`

	// Order within the template's rule list.
	ScheduleRulePosition int `json:"schedule_rule_position" gorm:"type:integer;not null;default:0;column:schedule_rule_position"`

	// ISO weekday: 1=Monday … 7=Sunday.
	ScheduleRuleWeekday int `json:"schedule_rule_weekday" gorm:"type:smallint;not null;column:schedule_rule_weekday;check:schedule_rule_weekday BETWEEN 1 AND 7"`

	// Canonical "HH:mm".
	ScheduleRuleStartTime string `json:"schedule_rule_start_time" gorm:"type:varchar(5);not null;column:schedule_rule_start_time"`

	ScheduleRuleBasePrice *float64 `json:"schedule_rule_base_price,omitempty" gorm:"type:numeric;column:schedule_rule_base_price;check:schedule_rule_base_price >= 0"`
	ScheduleRuleIsActive  bool     `json:"schedule_rule_is_active" gorm:"not null;default:true;column:schedule_rule_is_active"`

	// Recurrence extensions. Defaults (1, empty) mean plain weekly.
	ScheduleRuleIntervalWeeks int           `json:"schedule_rule_interval_weeks" gorm:"type:integer;not null;default:1;column:schedule_rule_interval_weeks"`
	ScheduleRuleWeeksOfMonth  pq.Int64Array `json:"schedule_rule_weeks_of_month,omitempty" gorm:"type:integer[];column:schedule_rule_weeks_of_month"`

	// Timestamps
	ScheduleRuleCreatedAt time.Time `json:"schedule_rule_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:schedule_rule_created_at"`
	ScheduleRuleUpdatedAt time.Time `json:"schedule_rule_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:schedule_rule_updated_at"`
}

func (ScheduleRuleModel) TableName() string { return "schedule_rules" }

func (r *ScheduleRuleModel) Interval() int {
	if r.ScheduleRuleIntervalWeeks > 0 {
		return r.ScheduleRuleIntervalWeeks
	}
	return 1
}
