package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const tableBookings = "bookings"

var bookingColumns = []string{
	"id",
	"booking_number",
	"tenant_id",
	"customer_id",
	"service_id",
	"staff_id",
	"status",
	"scheduled_at",
	"duration_minutes",
	"is_home_visit",
	"home_visit_address",
	"home_visit_latitude",
	"home_visit_longitude",
	"travel_surcharge",
	"travel_distance_km",
	"travel_duration_minutes",
	"travel_buffer_before_minutes",
	"travel_buffer_after_minutes",
	"total_amount",
	"tax_percentage",
	"service_charge_amount",
	"additional_fees_amount",
	"payment_status",
	"dp_amount",
	"paid_amount",
	"payment_method",
	"payment_reference",
	"notes",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет бронирование.
// Пересечение с другим активным бронированием того же сотрудника (с учетом буфера после визита)
// или той же услуги без сотрудника отвергается ограничениями исключения и возвращается как ErrSlotConflict.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"id",
			"booking_number",
			"tenant_id",
			"customer_id",
			"service_id",
			"staff_id",
			"status",
			"scheduled_at",
			"duration_minutes",
			"ends_at",
			"blocked_until",
			"is_home_visit",
			"home_visit_address",
			"home_visit_latitude",
			"home_visit_longitude",
			"travel_surcharge",
			"travel_distance_km",
			"travel_duration_minutes",
			"travel_buffer_before_minutes",
			"travel_buffer_after_minutes",
			"total_amount",
			"tax_percentage",
			"service_charge_amount",
			"additional_fees_amount",
			"payment_status",
			"dp_amount",
			"paid_amount",
			"payment_method",
			"payment_reference",
			"notes",
		).
		Values(
			booking.ID,
			booking.BookingNumber,
			booking.TenantID,
			booking.CustomerID,
			booking.ServiceID,
			booking.StaffID,
			string(booking.Status),
			booking.ScheduledAt.UTC(),
			booking.DurationMinutes,
			booking.EndsAt().UTC(),
			booking.BlockedUntil().UTC(),
			booking.IsHomeVisit,
			booking.HomeVisitAddress,
			booking.HomeVisitLatitude,
			booking.HomeVisitLongitude,
			booking.TravelSurcharge,
			booking.TravelDistanceKm,
			booking.TravelDurationMinutes,
			booking.TravelBufferBefore,
			booking.TravelBufferAfter,
			booking.TotalAmount,
			booking.TaxPercentage,
			booking.ServiceChargeAmount,
			booking.AdditionalFeesAmount,
			string(booking.PaymentStatus),
			booking.DPAmount,
			booking.PaidAmount,
			booking.PaymentMethod,
			booking.PaymentReference,
			booking.Notes,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if mapped := classifyWriteError(err); mapped != nil {
			return nil, fmt.Errorf("%w: %v", mapped, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование тенанта по ID
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListActiveByService получает активные бронирования услуги, начинающиеся в [from, to).
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListActiveByService(ctx context.Context, tenantID, serviceID string, from, to time.Time) ([]*domain.Booking, error) {
	return r.listActive(ctx, "ListActiveByService", squirrel.Eq{"tenant_id": tenantID, "service_id": serviceID}, from, to)
}

// ListActiveByStaff получает активные бронирования указанных сотрудников в [from, to).
// Внутри транзакции строки блокируются (FOR UPDATE).
func (r *Repository) ListActiveByStaff(ctx context.Context, tenantID string, staffIDs []string, from, to time.Time) ([]*domain.Booking, error) {
	if len(staffIDs) == 0 {
		return []*domain.Booking{}, nil
	}
	return r.listActive(ctx, "ListActiveByStaff", squirrel.Eq{"tenant_id": tenantID, "staff_id": staffIDs}, from, to)
}

// CountActiveHomeVisits считает активные выезды тенанта по всем услугам в [from, to)
func (r *Repository) CountActiveHomeVisits(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableBookings).
		Where(squirrel.Eq{
			"tenant_id":     tenantID,
			"is_home_visit": true,
			"status":        activeStatuses(),
		}).
		Where(squirrel.GtOrEq{"scheduled_at": from.UTC()}).
		Where(squirrel.Lt{"scheduled_at": to.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveHomeVisits - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveHomeVisits - scan count: %w", ErrScanRow, err)
	}

	return count, nil
}

// LockResource берет транзакционную advisory-блокировку по ключу
// (например, сотрудник+дата или услуга+дата). Снимается при завершении транзакции.
func (r *Repository) LockResource(ctx context.Context, key string) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: LockResource %s", ErrTransaction, key)
	}

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
		return fmt.Errorf("%w: LockResource - advisory lock %s: %w", ErrExecQuery, key, err)
	}

	return nil
}

func (r *Repository) listActive(ctx context.Context, op string, filter squirrel.Eq, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(filter).
		Where(squirrel.Eq{"status": activeStatuses()}).
		Where(squirrel.GtOrEq{"scheduled_at": from.UTC()}).
		Where(squirrel.Lt{"scheduled_at": to.UTC()}).
		OrderBy("scheduled_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %w", ErrExecQuery, op, err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %w", ErrScanRow, op, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %w", ErrScanRow, op, err)
	}

	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var (
		b                     domain.Booking
		status, paymentStatus string
	)

	err := row.Scan(
		&b.ID,
		&b.BookingNumber,
		&b.TenantID,
		&b.CustomerID,
		&b.ServiceID,
		&b.StaffID,
		&status,
		&b.ScheduledAt,
		&b.DurationMinutes,
		&b.IsHomeVisit,
		&b.HomeVisitAddress,
		&b.HomeVisitLatitude,
		&b.HomeVisitLongitude,
		&b.TravelSurcharge,
		&b.TravelDistanceKm,
		&b.TravelDurationMinutes,
		&b.TravelBufferBefore,
		&b.TravelBufferAfter,
		&b.TotalAmount,
		&b.TaxPercentage,
		&b.ServiceChargeAmount,
		&b.AdditionalFeesAmount,
		&paymentStatus,
		&b.DPAmount,
		&b.PaidAmount,
		&b.PaymentMethod,
		&b.PaymentReference,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(paymentStatus)

	return &b, nil
}

func activeStatuses() []string {
	result := make([]string, 0, len(domain.ActiveStatuses))
	for _, s := range domain.ActiveStatuses {
		result = append(result, string(s))
	}
	return result
}
