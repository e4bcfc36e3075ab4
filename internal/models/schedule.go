package models

// PatternEntry — элемент дневной сетки: либо урок (Period > 0),
// либо перемена (BreakMinutes > 0).
type PatternEntry struct {
	Period       int
	BreakMinutes int
	Label        string
}

// SchedulePattern — сетка одного учебного дня, общая для всех дней недели.
// Неизменяемая конфигурация, порядок элементов значим.
type SchedulePattern []PatternEntry

// Periods — номера уроков в порядке сетки (перемены пропускаются).
func (p SchedulePattern) Periods() []int {
	out := make([]int, 0, len(p))
	for _, e := range p {
		if e.Period > 0 {
			out = append(out, e.Period)
		}
	}
	return out
}

// HasPeriod — входит ли номер урока в сетку.
func (p SchedulePattern) HasPeriod(period int) bool {
	for _, e := range p {
		if e.Period == period {
			return true
		}
	}
	return false
}
