package services

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена у тенанта
	ErrServiceNotFound = errors.New("services.repository: service not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("services.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("services.repository: failed to scan row")
)
