package booking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotConflict возвращается, когда ограничение исключения отвергло пересекающееся бронирование
	ErrSlotConflict = errors.New("booking.repository: booking overlaps an existing booking")

	// ErrDuplicateBooking возвращается при повторе id или номера бронирования
	ErrDuplicateBooking = errors.New("booking.repository: duplicate booking")

	// ErrTransaction возвращается, когда операция требует транзакции, а её нет
	ErrTransaction = errors.New("booking.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

// SQLSTATE коды Postgres
const (
	codeExclusionViolation = "23P01"
	codeUniqueViolation    = "23505"
)

// classifyWriteError переводит ошибки ограничений Postgres в ошибки репозитория
func classifyWriteError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case codeExclusionViolation:
		return ErrSlotConflict
	case codeUniqueViolation:
		return ErrDuplicateBooking
	default:
		return nil
	}
}
