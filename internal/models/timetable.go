package models

import "time"

type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
)

// SchoolDays — учебные дни в порядке недели (суббота/воскресенье не учебные).
func SchoolDays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// WeekdayOf — учебный день для календарной даты; ok=false для выходных.
func WeekdayOf(t time.Time) (Weekday, bool) {
	switch t.Weekday() {
	case time.Monday:
		return Monday, true
	case time.Tuesday:
		return Tuesday, true
	case time.Wednesday:
		return Wednesday, true
	case time.Thursday:
		return Thursday, true
	case time.Friday:
		return Friday, true
	default:
		return "", false
	}
}

// Статусы занятия. Status=nil означает обычное занятие.
const (
	LessonCancelled = "cancelled"
	LessonMoved     = "moved"
)

// TimetableSlot — одна строка расписания.
// Date == nil — шаблонная (еженедельная) строка; Date != nil — переопределение
// на конкретную дату. Шаблон никогда не удаляется жизненным циклом отмен.
type TimetableSlot struct {
	ID        int64      `db:"id"`
	Weekday   Weekday    `db:"day"`
	Period    int        `db:"period"`
	IsDouble  bool       `db:"is_double"`
	Date      *time.Time `db:"date"`
	SubjectID *int64     `db:"subject_id"`
	ClassID   *int64     `db:"class_id"`
	CourseID  *int64     `db:"course_id"`
	Room      *string    `db:"room"`
	Status    *string    `db:"status"`
}

func (s *TimetableSlot) IsTemplate() bool { return s.Date == nil }

func (s *TimetableSlot) IsCancelled() bool {
	return s.Status != nil && *s.Status == LessonCancelled
}

// Key — ключ поиска переопределения для даты date.
func (s *TimetableSlot) Key(date time.Time) SlotKey {
	return SlotKey{
		Date:      date,
		Period:    s.Period,
		SubjectID: s.SubjectID,
		ClassID:   s.ClassID,
		CourseID:  s.CourseID,
	}
}

// SlotKey — 4-компонентный ключ (дата, урок, предмет, класс-или-курс),
// по которому строка-переопределение сопоставляется с шаблоном.
// Сравнение NULL-aware: два NULL считаются равными.
type SlotKey struct {
	Date      time.Time
	Period    int
	SubjectID *int64
	ClassID   *int64
	CourseID  *int64
}

// Matches — true, если slot совпадает с ключом. Дата slot должна быть задана
// и равна k.Date (шаблон ключу никогда не соответствует).
func (k SlotKey) Matches(slot *TimetableSlot) bool {
	if slot.Date == nil || !sameDate(*slot.Date, k.Date) {
		return false
	}
	if slot.Period != k.Period {
		return false
	}
	return nullableEq(k.SubjectID, slot.SubjectID) &&
		nullableEq(k.ClassID, slot.ClassID) &&
		nullableEq(k.CourseID, slot.CourseID)
}

func nullableEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
