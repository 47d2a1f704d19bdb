// file: internals/features/clients/model/client_model.go
package model

import (
	"time"

	"github.com/google/uuid"

	helper "trainerku_backend/internals/helpers"
)

/* ===================== Status Constants ===================== */

type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusPaused   ClientStatus = "paused"
	ClientStatusArchived ClientStatus = "archived"
)

/* ===================== Model ===================== */

type ClientModel struct {
	// PK
	ClientID uuid.UUID `json:"client_id" gorm:"type:uuid;primaryKey;column:client_id;default:gen_random_uuid()"`

	ClientName   string       `json:"client_name"   gorm:"type:text;not null;column:client_name"`
	ClientStatus ClientStatus `json:"client_status" gorm:"type:varchar(20);not null;default:active;column:client_status"`

	// Start of the working relationship; generation never predates it.
	ClientStartDate time.Time `json:"client_start_date" gorm:"type:date;not null;column:client_start_date"`

	// Pause window (inclusive, day granularity). Both set or both nil.
	ClientPauseFrom *time.Time `json:"client_pause_from,omitempty" gorm:"type:date;column:client_pause_from"`
	ClientPauseTo   *time.Time `json:"client_pause_to,omitempty"   gorm:"type:date;column:client_pause_to"`

	// Archive cutoff: schedule is permanently frozen on/after this date.
	ClientArchiveDate *time.Time `json:"client_archive_date,omitempty" gorm:"type:date;column:client_archive_date"`

	ClientNote *string `json:"client_note,omitempty" gorm:"type:text;column:client_note"`

	// Timestamps
	ClientCreatedAt time.Time `json:"client_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:client_created_at"`
	ClientUpdatedAt time.Time `json:"client_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:client_updated_at"`
}

func (ClientModel) TableName() string { return "clients" }

/* ===================== Derivations ===================== */

func (c *ClientModel) IsActive() bool { return c.ClientStatus == ClientStatusActive }

// PauseCovers reports whether day d falls inside the client's pause window.
// An open-ended window (only one bound set) still excludes matching days.
func (c *ClientModel) PauseCovers(d time.Time) bool {
	if c.ClientPauseFrom == nil && c.ClientPauseTo == nil {
		return false
	}
	return helper.WithinWindow(d, c.ClientPauseFrom, c.ClientPauseTo)
}

// ArchiveCovers reports whether day d is on/after the archive cutoff.
func (c *ClientModel) ArchiveCovers(d time.Time) bool {
	if c.ClientArchiveDate == nil {
		return false
	}
	return !helper.DateOnly(d).Before(helper.DateOnly(*c.ClientArchiveDate))
}
