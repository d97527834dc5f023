package slots

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var ErrInvalidSchedule = errors.New("slots: invalid day schedule")

// Window рабочее окно дня в абсолютном времени [Open, Close)
type Window struct {
	Open  time.Time
	Close time.Time
}

// Contains проверяет, что интервал [start, end) целиком внутри окна
func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Open) && !end.After(w.Close)
}

// DayWindow переводит часы работы дня в абсолютные моменты в зоне тенанта.
// Второй результат false, если тенант в этот день закрыт.
func DayWindow(day domain.DaySchedule, date time.Time, loc *time.Location) (Window, bool, error) {
	if !day.IsOpen {
		return Window{}, false, nil
	}

	open, err := day.Open.On(date, loc)
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: open: %v", ErrInvalidSchedule, err)
	}
	closeAt, err := day.Close.On(date, loc)
	if err != nil {
		return Window{}, false, fmt.Errorf("%w: close: %v", ErrInvalidSchedule, err)
	}
	if !closeAt.After(open) {
		return Window{}, false, fmt.Errorf("%w: close %s is not after open %s", ErrInvalidSchedule, day.Close, day.Open)
	}

	return Window{Open: open, Close: closeAt}, true, nil
}

// Generate строит упорядоченные слоты длиной duration с шагом granularity внутри окна.
// Слот попадает в результат, только если его конец не позже закрытия.
// В режиме fullDay возвращается не более одного слота, начинающегося в момент открытия.
// Все слоты помечаются доступными, доступность проставляет оценщик.
func Generate(window Window, durationMinutes, granularityMinutes int, fullDay bool) []domain.TimeSlot {
	if durationMinutes <= 0 || granularityMinutes <= 0 {
		return []domain.TimeSlot{}
	}

	duration := time.Duration(durationMinutes) * time.Minute
	step := time.Duration(granularityMinutes) * time.Minute

	result := make([]domain.TimeSlot, 0)
	for start := window.Open; start.Before(window.Close); start = start.Add(step) {
		end := start.Add(duration)
		if end.After(window.Close) {
			break
		}
		result = append(result, domain.TimeSlot{Start: start, End: end, Available: true})
		if fullDay {
			break
		}
	}

	return result
}

// DayBounds границы календарного дня [00:00, 00:00 следующего дня) в зоне loc
func DayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// LocalDate календарная дата момента t в зоне loc (полночь UTC, для сравнения и форматирования)
func LocalDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
