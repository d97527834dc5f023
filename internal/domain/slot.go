package domain

import "time"

// TimeSlot кандидат на бронирование. Не сохраняется, сохраняется только момент бронирования.
type TimeSlot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// Availability результат расчета доступности на дату
type Availability struct {
	Date      time.Time
	IsOpen    bool
	IsBlocked bool
	Slots     []TimeSlot
}
