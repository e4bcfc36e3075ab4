package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/school-planner/internal/models"
)

// CaptureStore — фиксация урока: посещаемость и спонтанные оценки.
type CaptureStore struct {
	db *sql.DB
	q  dbtx
}

func NewCaptureStore(database *sql.DB) *CaptureStore {
	return &CaptureStore{db: database, q: database}
}

// StudentCapture — данные по одному ученику при фиксации урока.
type StudentCapture struct {
	StudentID   int64
	Present     bool
	LateMinutes int
	Grade       *float64
	Comment     string
}

// SaveLesson пишет посещаемость и оценки всех учеников урока одной транзакцией.
// lessonMinutes — длительность урока, засчитывается отсутствующим целиком.
func (s *CaptureStore) SaveLesson(ctx context.Context, date time.Time, period int, subject *string, items []StudentCapture, lessonMinutes int) error {
	return s.inTx(ctx, func(tx *CaptureStore) error {
		for _, it := range items {
			rec := models.AttendanceRecord{
				StudentID: it.StudentID,
				Date:      date,
				Period:    &period,
				Status:    models.AttendancePresent,
			}
			if !it.Present {
				rec.Status = models.AttendanceAbsent
				rec.AbsentMinutes = lessonMinutes
			} else {
				rec.LateMinutes = it.LateMinutes
			}
			if err := tx.upsertAttendance(ctx, rec); err != nil {
				return err
			}
			if err := tx.upsertSpontaneousGrade(ctx, it.StudentID, date, period, subject, it.Grade, it.Comment); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CaptureStore) upsertAttendance(ctx context.Context, rec models.AttendanceRecord) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO attendance_records (student_id, date, period, status, absent_minutes, late_minutes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, date, period) DO UPDATE SET
			status = EXCLUDED.status,
			absent_minutes = EXCLUDED.absent_minutes,
			late_minutes = EXCLUDED.late_minutes`,
		rec.StudentID, rec.Date, rec.Period, rec.Status, rec.AbsentMinutes, rec.LateMinutes)
	return err
}

// upsertSpontaneousGrade обновляет спонтанную оценку за урок.
// Пустая оценка без комментария удаляет запись.
func (s *CaptureStore) upsertSpontaneousGrade(ctx context.Context, studentID int64, date time.Time, period int, subject *string, grade *float64, comment string) error {
	if grade == nil && comment == "" {
		_, err := s.q.ExecContext(ctx, `
			DELETE FROM grade_records
			WHERE student_id = $1 AND date = $2 AND period = $3 AND type = $4`,
			studentID, date, period, models.GradeSpontaneous)
		return err
	}

	var id int64
	err := s.q.QueryRowContext(ctx, `
		SELECT id FROM grade_records
		WHERE student_id = $1 AND date = $2 AND period = $3 AND type = $4
		ORDER BY id LIMIT 1`,
		studentID, date, period, models.GradeSpontaneous).Scan(&id)
	var c *string
	if comment != "" {
		c = &comment
	}
	switch {
	case err == nil:
		_, err = s.q.ExecContext(ctx, `
			UPDATE grade_records SET subject = $1, grade = $2, comment = $3 WHERE id = $4`,
			subject, grade, c, id)
		return err
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.q.ExecContext(ctx, `
			INSERT INTO grade_records (student_id, date, period, type, subject, grade, comment)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			studentID, date, period, models.GradeSpontaneous, subject, grade, c)
		return err
	default:
		return err
	}
}

// StudentSummary — сводка успеваемости и посещаемости одного ученика.
type StudentSummary struct {
	Attendance       int     `json:"attendance"`
	Present          int     `json:"present"`
	Absent           int     `json:"absent"`
	AbsentMinutes    int     `json:"absent_minutes"`
	LateMinutes      int     `json:"late_minutes"`
	Grades           int     `json:"grades"`
	PerformanceCount int     `json:"performance_count"`
	PerformanceAvg   float64 `json:"performance_avg"`
	SpontaneousCount int     `json:"spontaneous_count"`
	SpontaneousAvg   float64 `json:"spontaneous_avg"`
}

// Summary агрегирует все записи ученика; средние считаются отдельно
// по оценкам за контрольные и по спонтанным.
func (s *CaptureStore) Summary(ctx context.Context, studentID int64) (*StudentSummary, error) {
	var sum StudentSummary
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = $2),
		       COUNT(*) FILTER (WHERE status = $3),
		       COALESCE(SUM(absent_minutes) FILTER (WHERE status = $3), 0),
		       COALESCE(SUM(late_minutes), 0)
		FROM attendance_records WHERE student_id = $1`,
		studentID, models.AttendancePresent, models.AttendanceAbsent).
		Scan(&sum.Attendance, &sum.Present, &sum.Absent, &sum.AbsentMinutes, &sum.LateMinutes)
	if err != nil {
		return nil, err
	}
	err = s.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE type = $2),
		       COALESCE(AVG(grade) FILTER (WHERE type = $2), 0),
		       COUNT(*) FILTER (WHERE type = $3),
		       COALESCE(AVG(grade) FILTER (WHERE type = $3), 0)
		FROM grade_records WHERE student_id = $1`,
		studentID, models.GradePerformance, models.GradeSpontaneous).
		Scan(&sum.Grades, &sum.PerformanceCount, &sum.PerformanceAvg, &sum.SpontaneousCount, &sum.SpontaneousAvg)
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// AttendanceForLesson — записи посещаемости на дату и урок.
func (s *CaptureStore) AttendanceForLesson(ctx context.Context, date time.Time, period int) ([]models.AttendanceRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, student_id, date, period, status, absent_minutes, late_minutes
		FROM attendance_records
		WHERE date = $1 AND period = $2
		ORDER BY student_id`, date, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		var period sql.NullInt64
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &period, &rec.Status, &rec.AbsentMinutes, &rec.LateMinutes); err != nil {
			return nil, err
		}
		if period.Valid {
			p := int(period.Int64)
			rec.Period = &p
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GradesForLesson — спонтанные оценки на дату и урок.
func (s *CaptureStore) GradesForLesson(ctx context.Context, date time.Time, period int) ([]models.GradeRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, student_id, date, period, type, subject, grade, comment
		FROM grade_records
		WHERE date = $1 AND period = $2 AND type = $3
		ORDER BY student_id`, date, period, models.GradeSpontaneous)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GradeRecord
	for rows.Next() {
		var rec models.GradeRecord
		var period sql.NullInt64
		var subject, comment sql.NullString
		var grade sql.NullFloat64
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.Date, &period, &rec.Type, &subject, &grade, &comment); err != nil {
			return nil, err
		}
		if period.Valid {
			p := int(period.Int64)
			rec.Period = &p
		}
		if subject.Valid {
			rec.Subject = &subject.String
		}
		if grade.Valid {
			rec.Grade = &grade.Float64
		}
		if comment.Valid {
			rec.Comment = &comment.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *CaptureStore) inTx(ctx context.Context, fn func(*CaptureStore) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&CaptureStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
