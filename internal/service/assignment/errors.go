package assignment

import "errors"

var (
	// ErrStaffNotFound возвращается, когда запрошенный сотрудник не найден у тенанта
	ErrStaffNotFound = errors.New("assignment: staff not found")

	// ErrStaffInactive возвращается, когда запрошенный сотрудник неактивен
	ErrStaffInactive = errors.New("assignment: staff is inactive")

	// ErrNoStaffAvailable возвращается, когда ни один сотрудник не может взять интервал
	ErrNoStaffAvailable = errors.New("assignment: no staff available")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("assignment: internal error")
)
