package travelcalc

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("travelcalc client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("travelcalc client: invalid response")

	// ErrUnroutable возвращается, когда сервис не смог построить маршрут между точками
	ErrUnroutable = errors.New("travelcalc client: route not found")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Вызывающий код должен использовать нулевые значения поездки.
	ErrServiceDegraded = errors.New("travelcalc unavailable: graceful degradation applied")
)
