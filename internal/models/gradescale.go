package models

import (
	"strconv"
	"strings"
)

// GradeScale — шкала оценок. Definition хранится как текст:
// по строке на диапазон, `оценка;мин;макс`.
type GradeScale struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	Definition string `db:"definition"`
}

// Band — один диапазон шкалы, полуоткрытый процентный интервал [Min, Max).
type Band struct {
	Label string
	Min   float64
	Max   float64
}

func (b Band) Contains(pct float64) bool { return pct >= b.Min && pct < b.Max }

// ParseBands — разбор определения шкалы. Кривые строки (не три поля,
// нечисловые границы) пропускаются, порядок строк сохраняется:
// при поиске оценки побеждает первый подходящий диапазон.
func ParseBands(definition string) []Band {
	var bands []Band
	for _, ln := range strings.Split(definition, "\n") {
		parts := strings.Split(ln, ";")
		if len(parts) != 3 {
			continue
		}
		label := strings.TrimSpace(parts[0])
		min, err1 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		max, err2 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		bands = append(bands, Band{Label: label, Min: min, Max: max})
	}
	return bands
}

func (s *GradeScale) Bands() []Band { return ParseBands(s.Definition) }

// GradeFor — первый диапазон, содержащий процент. ok=false, если ни один
// не подошёл (дыры и перекрытия шкалы — ответственность автора шкалы).
func GradeFor(bands []Band, pct float64) (string, bool) {
	for _, b := range bands {
		if b.Contains(pct) {
			return b.Label, true
		}
	}
	return "", false
}
