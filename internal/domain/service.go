package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service услуга тенанта. Для движка бронирования только для чтения.
type Service struct {
	ID                      string
	TenantID                string
	Name                    string
	BasePrice               decimal.Decimal
	DurationMinutes         int
	SlotGranularityMinutes  int
	HourlyQuota             int
	HomeVisitEligible       bool
	RequiresStaffAssignment bool
	FullDayBooking          bool
	DailyHomeVisitQuota     *int // переопределяет дневную квоту выездов тенанта
	IsActive                bool
}

// Duration длительность услуги
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Granularity шаг генерации слотов в минутах
func (s *Service) Granularity() int {
	if s.SlotGranularityMinutes > 0 {
		return s.SlotGranularityMinutes
	}
	if s.DurationMinutes > 0 {
		return s.DurationMinutes
	}
	return DefaultSlotGranularityMinutes
}

// Quota почасовая квота, не меньше 1
func (s *Service) Quota() int {
	if s.HourlyQuota > 0 {
		return s.HourlyQuota
	}
	return DefaultHourlyQuota
}

// HomeVisitQuota дневная квота выездов по всему тенанту с учетом переопределения услуги.
// 0 - без ограничения.
func (s *Service) HomeVisitQuota(policy HomeVisitPolicy) int {
	if s.DailyHomeVisitQuota != nil && *s.DailyHomeVisitQuota > 0 {
		return *s.DailyHomeVisitQuota
	}
	return policy.DailyQuota
}

// BufferMinutes буфер на дорогу вокруг бронирований сотрудника для этой услуги
func (s *Service) BufferMinutes(policy HomeVisitPolicy) int {
	if s.HomeVisitEligible && policy.Enabled && policy.BufferMinutes > 0 {
		return policy.BufferMinutes
	}
	return 0
}
