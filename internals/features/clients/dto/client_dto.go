// file: internals/features/clients/dto/client_dto.go
package dto

import (
	clientModel "trainerku_backend/internals/features/clients/model"
	helper "trainerku_backend/internals/helpers"
)

/* =========================================================
   Requests
   ========================================================= */

type CreateClientRequest struct {
	Name      string  `json:"name"       validate:"required"`
	StartDate string  `json:"start_date" validate:"required"` // "YYYY-MM-DD"
	Note      *string `json:"note,omitempty"`
}

func (r CreateClientRequest) ToModel() (clientModel.ClientModel, error) {
	start, err := helper.ParseDate(r.StartDate)
	if err != nil {
		return clientModel.ClientModel{}, err
	}
	return clientModel.ClientModel{
		ClientName:      r.Name,
		ClientStatus:    clientModel.ClientStatusActive,
		ClientStartDate: start,
		ClientNote:      r.Note,
	}, nil
}
