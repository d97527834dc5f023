package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
)

const (
	tenantID  = "8d4c7f2e-7a1b-4c55-9a3e-0c1f2a3b4c5d"
	bookingID = "0f6b1f56-3a54-4a55-8f0e-9d1c2b3a4f5e"
)

type fakeBookingRepo struct {
	booking *domain.Booking
	err     error
}

func (f *fakeBookingRepo) GetByID(_ context.Context, tenant, id string) (*domain.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.booking == nil || f.booking.TenantID != tenant || f.booking.ID != id {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return f.booking, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestGetByID(t *testing.T) {
	repo := &fakeBookingRepo{booking: &domain.Booking{
		ID:              bookingID,
		BookingNumber:   "BK-261019-0A1B2C",
		TenantID:        tenantID,
		Status:          domain.StatusPending,
		ScheduledAt:     time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 90,
		TotalAmount:     decimal.NewFromInt(110000),
		PaymentStatus:   domain.PaymentPending,
	}}
	svc := NewService(repo, nopLogger{})

	resp, err := svc.GetByID(context.Background(), tenantID, bookingID)
	require.NoError(t, err)
	assert.Equal(t, "BK-261019-0A1B2C", resp.BookingNumber)
	assert.Equal(t, time.Date(2026, 10, 20, 11, 30, 0, 0, time.UTC), resp.EndsAt)
	assert.Equal(t, "pending", resp.PaymentStatus)
}

func TestGetByID_Errors(t *testing.T) {
	tests := []struct {
		name     string
		repo     *fakeBookingRepo
		tenantID string
		id       string
		wantErr  error
	}{
		{name: "invalid id", repo: &fakeBookingRepo{}, tenantID: tenantID, id: "42", wantErr: ErrInvalidInput},
		{name: "not found", repo: &fakeBookingRepo{}, tenantID: tenantID, id: bookingID, wantErr: ErrBookingNotFound},
		{
			name:     "other tenant",
			repo:     &fakeBookingRepo{booking: &domain.Booking{ID: bookingID, TenantID: "another"}},
			tenantID: tenantID,
			id:       bookingID,
			wantErr:  ErrBookingNotFound,
		},
		{name: "repository failure", repo: &fakeBookingRepo{err: errors.New("db down")}, tenantID: tenantID, id: bookingID, wantErr: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewService(tt.repo, nopLogger{}).GetByID(context.Background(), tt.tenantID, tt.id)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
