package domain

import "time"

// Staff сотрудник, выполняющий услуги
type Staff struct {
	ID          string
	TenantID    string
	Name        string
	IsActive    bool
	DailyQuota  int // 0 - без ограничения
	WorkingDays []time.Weekday
}

// WorksOn проверяет, что день недели даты входит в рабочие дни сотрудника.
// Пустой список рабочих дней означает ежедневный график.
func (s *Staff) WorksOn(date time.Time) bool {
	if len(s.WorkingDays) == 0 {
		return true
	}
	wd := date.Weekday()
	for _, d := range s.WorkingDays {
		if d == wd {
			return true
		}
	}
	return false
}

// UnderDailyQuota проверяет, что у сотрудника осталось место в дневной квоте
func (s *Staff) UnderDailyQuota(bookingsToday int) bool {
	return s.DailyQuota <= 0 || bookingsToday < s.DailyQuota
}
