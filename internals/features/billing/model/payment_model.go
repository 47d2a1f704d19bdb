// file: internals/features/billing/model/payment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

/* ===================== Method Constants ===================== */

const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
	PaymentMethodOther    = "other"
)

/* ===================== Model ===================== */

type PaymentModel struct {
	// PK
	PaymentID uuid.UUID `json:"payment_id" gorm:"type:uuid;primaryKey;column:payment_id;default:gen_random_uuid()"`

	PaymentClientID uuid.UUID `json:"payment_client_id" gorm:"type:uuid;not null;index;column:payment_client_id"`

	PaymentPaidAt  time.Time `json:"payment_paid_at" gorm:"type:timestamptz;not null;column:payment_paid_at"`
	PaymentAmount  float64   `json:"payment_amount"  gorm:"type:numeric;not null;column:payment_amount;check:payment_amount > 0"`
	PaymentMethod  string    `json:"payment_method"  gorm:"type:varchar(20);not null;default:cash;column:payment_method"`
	PaymentComment *string   `json:"payment_comment,omitempty" gorm:"type:text;column:payment_comment"`

	// Timestamps
	PaymentCreatedAt time.Time `json:"payment_created_at" gorm:"type:timestamptz;not null;autoCreateTime;column:payment_created_at"`
	PaymentUpdatedAt time.Time `json:"payment_updated_at" gorm:"type:timestamptz;not null;autoUpdateTime;column:payment_updated_at"`
}

func (PaymentModel) TableName() string { return "payments" }
