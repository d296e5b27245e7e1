package dto

import (
	"rentgear/internal/domains/payout/model"
	"rentgear/shared"
	gDto "rentgear/shared/dto"
)

type PayoutResponse struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id"`
	OwnerID     string `json:"owner_id"`
	Amount      int64  `json:"amount"`
	PlatformFee int64  `json:"platform_fee"`
	Status      string `json:"status"`
	TransferID  string `json:"transfer_id"`
	gDto.Metadata
}

func (r *PayoutResponse) FromModel(mod model.Payout) {
	r.ID = mod.ID
	r.BookingID = mod.BookingID
	r.OwnerID = mod.OwnerID
	r.Amount = mod.Amount
	r.PlatformFee = mod.PlatformFee
	r.Status = mod.Status
	r.TransferID = mod.TransferID
	r.Metadata.FromModel(mod.Metadata)
}

type GetPayoutsResponse struct {
	Payouts   []PayoutResponse `json:"payouts"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetPayoutsResponse) FromModels(models []model.Payout, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Payouts = make([]PayoutResponse, len(models))
	for i, mod := range models {
		r.Payouts[i].FromModel(mod)
	}
}

type RequestPayoutRequest struct {
	BookingID string `json:"booking_id" validate:"required"`
}

type ConnectResponse struct {
	AccountID     string `json:"account_id"`
	OnboardingURL string `json:"onboarding_url"`
}

type BalanceResponse struct {
	Available int64  `json:"available"`
	Pending   int64  `json:"pending"`
	Currency  string `json:"currency"`
}
