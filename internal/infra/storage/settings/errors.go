package settings

import "errors"

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("settings.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("settings.repository: failed to scan row")

	// ErrInvalidDocument возвращается, если JSON настроек не удалось разобрать
	ErrInvalidDocument = errors.New("settings.repository: invalid settings document")
)
