package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/schedule"
)

// dbtx — общий знаменатель *sql.DB и *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TimetableStore — строки расписания (шаблон + переопределения).
// Реализует schedule.SlotStore.
type TimetableStore struct {
	db *sql.DB // nil внутри транзакции
	q  dbtx
}

func NewTimetableStore(database *sql.DB) *TimetableStore {
	return &TimetableStore{db: database, q: database}
}

const slotColumns = `id, day, period, is_double, date, subject_id, class_id, course_id, room, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(r rowScanner) (*models.TimetableSlot, error) {
	var s models.TimetableSlot
	var day string
	var date sql.NullTime
	var subjectID, classID, courseID sql.NullInt64
	var room, status sql.NullString
	err := r.Scan(&s.ID, &day, &s.Period, &s.IsDouble, &date, &subjectID, &classID, &courseID, &room, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Weekday = models.Weekday(day)
	if date.Valid {
		d := date.Time
		s.Date = &d
	}
	if subjectID.Valid {
		s.SubjectID = &subjectID.Int64
	}
	if classID.Valid {
		s.ClassID = &classID.Int64
	}
	if courseID.Valid {
		s.CourseID = &courseID.Int64
	}
	if room.Valid {
		s.Room = &room.String
	}
	if status.Valid {
		s.Status = &status.String
	}
	return &s, nil
}

func (s *TimetableStore) SlotByDateAndPeriod(ctx context.Context, date time.Time, period int) (*models.TimetableSlot, error) {
	// Уникальность (date, period) не гарантируется; берём строку с наименьшим id.
	row := s.q.QueryRowContext(ctx, `
		SELECT `+slotColumns+` FROM timetable
		WHERE date = $1 AND period = $2
		ORDER BY id LIMIT 1`, date, period)
	return scanSlot(row)
}

func (s *TimetableStore) LatestPastOverride(ctx context.Context, before time.Time, day models.Weekday, period int) (*models.TimetableSlot, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+slotColumns+` FROM timetable
		WHERE date IS NOT NULL AND date < $1 AND day = $2 AND period = $3
		ORDER BY date DESC, id LIMIT 1`, before, string(day), period)
	return scanSlot(row)
}

func (s *TimetableStore) TemplateSlot(ctx context.Context, day models.Weekday, period int) (*models.TimetableSlot, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+slotColumns+` FROM timetable
		WHERE date IS NULL AND day = $1 AND period = $2
		ORDER BY id LIMIT 1`, string(day), period)
	return scanSlot(row)
}

func (s *TimetableStore) SlotByID(ctx context.Context, id int64) (*models.TimetableSlot, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM timetable WHERE id = $1`, id)
	return scanSlot(row)
}

// FindOverride — NULL-aware сравнение: IS NOT DISTINCT FROM считает два NULL равными.
func (s *TimetableStore) FindOverride(ctx context.Context, key models.SlotKey) (*models.TimetableSlot, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+slotColumns+` FROM timetable
		WHERE date = $1 AND period = $2
		  AND subject_id IS NOT DISTINCT FROM $3
		  AND class_id IS NOT DISTINCT FROM $4
		  AND course_id IS NOT DISTINCT FROM $5
		ORDER BY id LIMIT 1`,
		key.Date, key.Period, key.SubjectID, key.ClassID, key.CourseID)
	return scanSlot(row)
}

func (s *TimetableStore) InsertSlot(ctx context.Context, slot models.TimetableSlot) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO timetable (day, period, is_double, date, subject_id, class_id, course_id, room, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		string(slot.Weekday), slot.Period, slot.IsDouble, slot.Date,
		slot.SubjectID, slot.ClassID, slot.CourseID, slot.Room, slot.Status,
	).Scan(&id)
	return id, err
}

func (s *TimetableStore) UpdateSlotStatus(ctx context.Context, id int64, status string) error {
	res, err := s.q.ExecContext(ctx, `UPDATE timetable SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *TimetableStore) DeleteSlot(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM timetable WHERE id = $1`, id)
	return err
}

// TemplatesByDay — шаблонные строки дня недели (админский список).
func (s *TimetableStore) TemplatesByDay(ctx context.Context, day models.Weekday) ([]models.TimetableSlot, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+slotColumns+` FROM timetable
		WHERE date IS NULL AND day = $1
		ORDER BY period, id`, string(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TimetableSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *slot)
	}
	return out, rows.Err()
}

func (s *TimetableStore) InTx(ctx context.Context, fn func(schedule.SlotStore) error) error {
	if s.db == nil {
		// уже в транзакции
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&TimetableStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
