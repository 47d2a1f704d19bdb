// file: internals/features/billing/model/package_model.go
package model

import (
	"time"

	"github.com/google/uuid"

	helper "trainerku_backend/internals/helpers"
)

/* ===================== Status Constants ===================== */

type PackageStatus string

const (
	PackageStatusActive    PackageStatus = "active"
	PackageStatusExhausted PackageStatus = "exhausted"
	PackageStatusExpired   PackageStatus = "expired"
)

/* ===================== Model ===================== */

// PackageModel is a prepaid bundle implying a uniform per-session price
// (total_price / sessions_count).
type PackageModel struct {
	// PK
	PackageID uuid.UUID `json:"package_id" gorm:"type:uuid;primaryKey;column:package_id;default:gen_random_uuid()"`

	PackageClientID uuid.UUID `json:"package_client_id" gorm:"type:uuid;not null;index;column:package_client_id"`

	PackageTotalPrice    float64       `json:"package_total_price"    gorm:"type:numeric;not null;column:package_total_price;check:package_total_price >= 0"`
	PackageSessionsCount int           `json:"package_sessions_count" gorm:"type:integer;not null;column:package_sessions_count;check:package_sessions_count > 0"`
	PackageStatus        PackageStatus `json:"package_status"         gorm:"type:varchar(20);not null;default:active;column:package_status"`

	// Optional validity window.
	PackageValidFrom *time.Time `json:"package_valid_from,omitempty" gorm:"type:date;column:package_valid_from"`
	PackageValidTo   *time.Time `json:"package_valid_to,omitempty"   gorm:"type:date;column:package_valid_to"`

	// Timestamps
	PackageCreatedAt time.Time `json:"package_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:package_created_at"`
	PackageUpdatedAt time.Time `json:"package_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:package_updated_at"`
}

func (PackageModel) TableName() string { return "packages" }

/* ===================== Derivations ===================== */

func (p *PackageModel) PerSessionPrice() float64 {
	if p.PackageSessionsCount <= 0 {
		return 0
	}
	return p.PackageTotalPrice / float64(p.PackageSessionsCount)
}

// IsActiveOn combines the stored status with the optional validity window.
func (p *PackageModel) IsActiveOn(d time.Time) bool {
	if p.PackageStatus != PackageStatusActive {
		return false
	}
	return helper.WithinWindow(d, p.PackageValidFrom, p.PackageValidTo)
}
