package dto

import (
	"rentgear/internal/domains/equipment/model"
	"rentgear/shared"
	gDto "rentgear/shared/dto"
)

type EquipmentResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DailyRate   int64  `json:"daily_rate"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Active      bool   `json:"active"`
	gDto.Metadata
}

func (r *EquipmentResponse) FromModel(mod model.Equipment) {
	r.ID = mod.ID
	r.OwnerID = mod.OwnerID
	r.Name = mod.Name
	r.Description = mod.Description
	r.DailyRate = mod.DailyRate
	r.PhotoURL = mod.PhotoURL
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)
}

type GetEquipmentResponse struct {
	Equipment []EquipmentResponse `json:"equipment"`
	TotalPage int                 `json:"total_page"`
	TotalData int                 `json:"total_data"`
}

func (r *GetEquipmentResponse) FromModels(models []model.Equipment, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Equipment = make([]EquipmentResponse, len(models))
	for i, mod := range models {
		r.Equipment[i].FromModel(mod)
	}
}

type UploadPhotoResponse struct {
	PhotoURL string `json:"photo_url"`
}
