// file: internals/features/billing/dto/payment_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	billingModel "trainerku_backend/internals/features/billing/model"
	helper "trainerku_backend/internals/helpers"
)

/* =========================================================
   Requests
   ========================================================= */

type CreatePaymentRequest struct {
	ClientID uuid.UUID `json:"client_id" validate:"required"`
	Amount   float64   `json:"amount"    validate:"required,gt=0"`
	Method   string    `json:"method"    validate:"omitempty,oneof=cash transfer card other"`
	PaidAt   *string   `json:"paid_at,omitempty"` // "YYYY-MM-DD"; nil = now
	Comment  *string   `json:"comment,omitempty"`

	// Spread the new payment over unpaid sessions right away.
	AutoAllocate bool `json:"auto_allocate"`
}

func (r CreatePaymentRequest) ToModel() (billingModel.PaymentModel, error) {
	paidAt := time.Now().UTC()
	if r.PaidAt != nil {
		d, err := helper.ParseDate(*r.PaidAt)
		if err != nil {
			return billingModel.PaymentModel{}, err
		}
		paidAt = d
	}
	method := r.Method
	if method == "" {
		method = billingModel.PaymentMethodCash
	}
	return billingModel.PaymentModel{
		PaymentClientID: r.ClientID,
		PaymentPaidAt:   paidAt,
		PaymentAmount:   r.Amount,
		PaymentMethod:   method,
		PaymentComment:  r.Comment,
	}, nil
}

type AllocationInput struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
	Amount    float64   `json:"amount"     validate:"required,gt=0"`
}
