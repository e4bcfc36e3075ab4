package models

import "time"

// Статусы посещаемости. Опоздание хранится как present с late_minutes > 0.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// AttendanceRecord — посещаемость ученика на одном уроке.
type AttendanceRecord struct {
	ID            int64     `db:"id"`
	StudentID     int64     `db:"student_id"`
	Date          time.Time `db:"date"`
	Period        *int      `db:"period"`
	Status        string    `db:"status"`
	AbsentMinutes int       `db:"absent_minutes"`
	LateMinutes   int       `db:"late_minutes"`
}

// Типы оценок: за контрольные и спонтанные (устный ответ и т.п.).
const (
	GradePerformance = "performance"
	GradeSpontaneous = "spontaneous"
)

// GradeRecord — разовая оценка ученика на уроке.
type GradeRecord struct {
	ID        int64     `db:"id"`
	StudentID int64     `db:"student_id"`
	Date      time.Time `db:"date"`
	Period    *int      `db:"period"`
	Type      string    `db:"type"`
	Subject   *string   `db:"subject"`
	Grade     *float64  `db:"grade"`
	Comment   *string   `db:"comment"`
}
