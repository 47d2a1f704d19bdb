// file: internals/features/schedules/model/calendar_session_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ===================== Status Constants ===================== */

type SessionStatus string

const (
	SessionStatusPlanned   SessionStatus = "planned"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCanceled  SessionStatus = "canceled"
)

/* ===================== Model ===================== */

// CalendarSessionModel is one dated, timed occurrence for a client. Sessions
// are created by generation (rule back-reference + snapshot) or by hand
// (custom), and are never hard-deleted except through client cascade delete.
type CalendarSessionModel struct {
	// PK
	CalendarSessionID uuid.UUID `json:"calendar_session_id" gorm:"type:uuid;primaryKey;column:calendar_session_id;default:gen_random_uuid()"`

	CalendarSessionClientID uuid.UUID `json:"calendar_session_client_id" gorm:"type:uuid;not null;index;column:calendar_session_client_id"`

	CalendarSessionDate      time.Time     `json:"calendar_session_date"       gorm:"type:date;not null;index;column:calendar_session_date"`
	CalendarSessionStartTime string        `json:"calendar_session_start_time" gorm:"type:varchar(5);not null;column:calendar_session_start_time"`
	CalendarSessionStatus    SessionStatus `json:"calendar_session_status"     gorm:"type:varchar(20);not null;default:planned;column:calendar_session_status"`

	// Origin: nil rule id = custom session. The rule id is a stable
	// identifier, not a live reference; the rule may be deleted independently.
	CalendarSessionRuleID       *uuid.UUID        `json:"calendar_session_rule_id,omitempty" gorm:"type:uuid;column:calendar_session_rule_id"`
	CalendarSessionRuleSnapshot datatypes.JSONMap `json:"calendar_session_rule_snapshot,omitempty" gorm:"type:jsonb;column:calendar_session_rule_snapshot"`

	CalendarSessionIsEdited bool `json:"calendar_session_is_edited" gorm:"not null;default:false;column:calendar_session_is_edited"`

	// Highest-precedence price source. Zero is a valid override.
	CalendarSessionPriceOverride *float64 `json:"calendar_session_price_override,omitempty" gorm:"type:numeric;column:calendar_session_price_override;check:calendar_session_price_override >= 0"`

	CalendarSessionNotes *string `json:"calendar_session_notes,omitempty" gorm:"type:text;column:calendar_session_notes"`

	// Timestamps
	CalendarSessionCreatedAt time.Time `json:"calendar_session_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:calendar_session_created_at"`
	CalendarSessionUpdatedAt time.Time `json:"calendar_session_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:calendar_session_updated_at"`
}

func (CalendarSessionModel) TableName() string { return "calendar_sessions" }

/* ===================== Derivations ===================== */

func (s *CalendarSessionModel) IsCustom() bool { return s.CalendarSessionRuleID == nil }

func (s *CalendarSessionModel) IsCanceled() bool {
	return s.CalendarSessionStatus == SessionStatusCanceled
}
