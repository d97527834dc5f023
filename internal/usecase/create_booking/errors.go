package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена у тенанта
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrServiceInactive возвращается, когда услуга выключена
	ErrServiceInactive = errors.New("create_booking: service is inactive")

	// ErrCustomerNotFound возвращается, когда клиент не найден у тенанта
	ErrCustomerNotFound = errors.New("create_booking: customer not found")

	// ErrBookingInPast возвращается, когда момент бронирования уже прошел
	ErrBookingInPast = errors.New("create_booking: booking time is in the past")

	// ErrDateTooFarInFuture возвращается, когда дата дальше горизонта бронирования
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrDateBlocked возвращается, когда дата закрыта тенантом целиком
	ErrDateBlocked = errors.New("create_booking: date is blocked")

	// ErrBusinessClosed возвращается, когда тенант не работает в этот день
	ErrBusinessClosed = errors.New("create_booking: business is closed on this date")

	// ErrOutsideBusinessHours возвращается, когда интервал выходит за часы работы
	ErrOutsideBusinessHours = errors.New("create_booking: booking is outside business hours")

	// ErrHomeVisitNotSupported возвращается, когда услуга не поддерживает выезд
	ErrHomeVisitNotSupported = errors.New("create_booking: service does not support home visits")

	// ErrHomeVisitDisabled возвращается, когда выезды выключены у тенанта
	ErrHomeVisitDisabled = errors.New("create_booking: home visits are disabled")

	// ErrHomeVisitQuotaReached возвращается, когда дневная квота выездов исчерпана
	ErrHomeVisitQuotaReached = errors.New("create_booking: daily home visit quota reached")

	// ErrStaffRequired возвращается, когда услуга требует сотрудника, а автоназначение выключено
	ErrStaffRequired = errors.New("create_booking: staff assignment is required")

	// ErrNoStaffAvailable возвращается, когда ни один сотрудник не может взять бронирование
	ErrNoStaffAvailable = errors.New("create_booking: no staff available")

	// ErrStaffNotFound возвращается, когда сотрудник не найден у тенанта
	ErrStaffNotFound = errors.New("create_booking: staff not found")

	// ErrStaffInactive возвращается, когда сотрудник неактивен
	ErrStaffInactive = errors.New("create_booking: staff is inactive")

	// ErrSlotNotAvailable возвращается, когда интервал уже занят (в том числе при гонке на записи)
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrDependencyUnavailable возвращается, когда настройки тенанта недоступны; запрос можно повторить
	ErrDependencyUnavailable = errors.New("create_booking: settings provider unavailable")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
