// file: internals/features/billing/model/payment_allocation_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentAllocationModel records how much of one payment covers one session.
// At most one row exists per (payment, session) pair; repeated allocation to
// the same pair accumulates into that row.
type PaymentAllocationModel struct {
	// PK
	PaymentAllocationID uuid.UUID `json:"payment_allocation_id" gorm:"type:uuid;primaryKey;column:payment_allocation_id;default:gen_random_uuid()"`

	PaymentAllocationPaymentID uuid.UUID `json:"payment_allocation_payment_id" gorm:"type:uuid;not null;column:payment_allocation_payment_id;uniqueIndex:uq_allocation_payment_session"`
	PaymentAllocationSessionID uuid.UUID `json:"payment_allocation_session_id" gorm:"type:uuid;not null;index;column:payment_allocation_session_id;uniqueIndex:uq_allocation_payment_session"`

	PaymentAllocationAmount float64 `json:"payment_allocation_amount" gorm:"type:numeric;not null;column:payment_allocation_amount;check:payment_allocation_amount > 0"`

	// Timestamps
	PaymentAllocationCreatedAt time.Time `json:"payment_allocation_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:payment_allocation_created_at"`
	PaymentAllocationUpdatedAt time.Time `json:"payment_allocation_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:payment_allocation_updated_at"`
}

func (PaymentAllocationModel) TableName() string { return "payment_allocations" }
