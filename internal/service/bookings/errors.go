package bookings

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено у тенанта
	ErrBookingNotFound = errors.New("bookings: booking not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("bookings: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("bookings: internal error")
)
