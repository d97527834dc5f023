package get_availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена у тенанта
	ErrServiceNotFound = errors.New("service not found")

	// ErrServiceInactive возвращается, когда услуга выключена
	ErrServiceInactive = errors.New("service is inactive")

	// ErrStaffNotFound возвращается, когда запрошенный сотрудник не найден
	ErrStaffNotFound = errors.New("staff not found")

	// ErrStaffInactive возвращается, когда запрошенный сотрудник неактивен
	ErrStaffInactive = errors.New("staff is inactive")

	// ErrDateInPast возвращается для даты раньше сегодняшней (в зоне тенанта)
	ErrDateInPast = errors.New("date is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата дальше горизонта бронирования
	ErrDateTooFarInFuture = errors.New("date is too far in the future")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrDependencyUnavailable возвращается, когда настройки тенанта недоступны; запрос можно повторить
	ErrDependencyUnavailable = errors.New("usecase: settings provider unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
