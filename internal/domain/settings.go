package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// DaySchedule часы работы в конкретный день недели (настенное время тенанта)
type DaySchedule struct {
	IsOpen bool
	Open   types.TimeString
	Close  types.TimeString
}

// BusinessHours нормализованное расписание тенанта.
// Собирается один раз на границе Settings Provider, дальше используется только эта форма.
type BusinessHours struct {
	Timezone     string
	Days         [7]DaySchedule // индекс - time.Weekday
	BlockedDates []string       // YYYY-MM-DD, закрытие всего тенанта
}

// ForDate возвращает расписание на день недели указанной даты
func (h BusinessHours) ForDate(date time.Time) DaySchedule {
	return h.Days[date.Weekday()]
}

// IsBlocked сообщает, что дата закрыта целиком
func (h BusinessHours) IsBlocked(date time.Time) bool {
	key := date.Format(DateFormat)
	for _, d := range h.BlockedDates {
		if d == key {
			return true
		}
	}
	return false
}

// ChargeType способ расчета сбора
type ChargeType string

const (
	ChargeFixed      ChargeType = "fixed"
	ChargePercentage ChargeType = "percentage"
)

// Charge сбор: фиксированная сумма или процент от подытога
type Charge struct {
	Type  ChargeType
	Value decimal.Decimal
}

// ServiceCharge сервисный сбор
type ServiceCharge struct {
	Required bool
	Charge
}

// AdditionalFee дополнительный сбор
type AdditionalFee struct {
	Name string
	Charge
}

// InvoiceSettings налоги и сборы тенанта
type InvoiceSettings struct {
	TaxPercentage  decimal.Decimal
	ServiceCharge  ServiceCharge
	AdditionalFees []AdditionalFee
}

// Location точка на карте (адрес и/или координаты)
type Location struct {
	Address   string
	Latitude  *float64
	Longitude *float64
}

// HasCoordinates сообщает, что заданы обе координаты
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// IsZero сообщает, что точка не задана
func (l Location) IsZero() bool {
	return l.Address == "" && !l.HasCoordinates()
}

// HomeVisitPolicy политика выездов тенанта
type HomeVisitPolicy struct {
	Enabled       bool
	DailyQuota    int // 0 - без ограничения
	BufferMinutes int
	BaseLocation  Location // откуда выезжает сотрудник
}
