package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"rentgear/internal/domains/booking/model"
)

func validBooking() model.Booking {
	return model.Booking{
		StartDate:   time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC),
		TotalDays:   3,
		DailyRate:   2000,
		Subtotal:    6000,
		ServiceFee:  600,
		TotalAmount: 6600,
	}
}

func TestBooking_ValidateAmounts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *model.Booking)
		wantErr error
	}{
		{
			name:   "consistent booking",
			mutate: func(b *model.Booking) {},
		},
		{
			name: "subtotal not rate times days",
			mutate: func(b *model.Booking) {
				b.Subtotal = 5000
				b.TotalAmount = 5600
			},
			wantErr: model.ErrInvalidAmounts,
		},
		{
			name: "total not subtotal plus fee",
			mutate: func(b *model.Booking) {
				b.TotalAmount = 6000
			},
			wantErr: model.ErrInvalidAmounts,
		},
		{
			name: "end date before start date",
			mutate: func(b *model.Booking) {
				b.EndDate = b.StartDate.AddDate(0, 0, -1)
			},
			wantErr: model.ErrInvalidDateRange,
		},
		{
			name: "zero-length range",
			mutate: func(b *model.Booking) {
				b.EndDate = b.StartDate
			},
			wantErr: model.ErrInvalidDateRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := validBooking()
			tt.mutate(&booking)

			err := booking.ValidateAmounts()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
