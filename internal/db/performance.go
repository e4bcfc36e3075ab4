package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/scoring"
)

// PerformanceStore — контрольные, задания, результаты и шкалы оценок.
// Реализует scoring.Store.
type PerformanceStore struct {
	db *sql.DB // nil внутри транзакции
	q  dbtx
}

func NewPerformanceStore(database *sql.DB) *PerformanceStore {
	return &PerformanceStore{db: database, q: database}
}

func (s *PerformanceStore) AssessmentByID(ctx context.Context, id int64) (*models.PerformanceQuery, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, type, description, date, subject_id, class_id, course_id, grade_scale_id, max_op_points
		FROM performance_queries WHERE id = $1`, id)

	var q models.PerformanceQuery
	var description sql.NullString
	var subjectID, classID, courseID, scaleID sql.NullInt64
	err := row.Scan(&q.ID, &q.Type, &description, &q.Date, &subjectID, &classID, &courseID, &scaleID, &q.MaxOpPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if description.Valid {
		q.Description = &description.String
	}
	if subjectID.Valid {
		q.SubjectID = &subjectID.Int64
	}
	if classID.Valid {
		q.ClassID = &classID.Int64
	}
	if courseID.Valid {
		q.CourseID = &courseID.Int64
	}
	if scaleID.Valid {
		q.GradeScaleID = &scaleID.Int64
	}
	return &q, nil
}

func (s *PerformanceStore) TasksByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceTask, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, performance_id, number, max_points
		FROM performance_tasks WHERE performance_id = $1 ORDER BY number`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PerformanceTask
	for rows.Next() {
		var t models.PerformanceTask
		if err := rows.Scan(&t.ID, &t.PerformanceID, &t.Number, &t.MaxPoints); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PerformanceStore) ResultByStudent(ctx context.Context, assessmentID, studentID int64) (*models.PerformanceResult, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, performance_id, student_id, op_points, zp_points, grade_override, comment, op_is_edited, zp_is_edited
		FROM performance_results WHERE performance_id = $1 AND student_id = $2`, assessmentID, studentID)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func scanResult(r rowScanner) (*models.PerformanceResult, error) {
	var res models.PerformanceResult
	var override sql.NullFloat64
	var comment sql.NullString
	err := r.Scan(&res.ID, &res.PerformanceID, &res.StudentID, &res.OpPoints, &res.ZpPoints,
		&override, &comment, &res.OpIsEdited, &res.ZpIsEdited)
	if err != nil {
		return nil, err
	}
	if override.Valid {
		res.GradeOverride = &override.Float64
	}
	if comment.Valid {
		res.Comment = &comment.String
	}
	return &res, nil
}

func (s *PerformanceStore) ResultsByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceResult, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, performance_id, student_id, op_points, zp_points, grade_override, comment, op_is_edited, zp_is_edited
		FROM performance_results WHERE performance_id = $1 ORDER BY student_id`, assessmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PerformanceResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PerformanceStore) TaskResultsByStudent(ctx context.Context, assessmentID, studentID int64) ([]models.PerformanceTaskResult, error) {
	return s.taskResults(ctx, `WHERE performance_id = $1 AND student_id = $2`, assessmentID, studentID)
}

func (s *PerformanceStore) TaskResultsByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceTaskResult, error) {
	return s.taskResults(ctx, `WHERE performance_id = $1`, assessmentID)
}

func (s *PerformanceStore) taskResults(ctx context.Context, where string, args ...any) ([]models.PerformanceTaskResult, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, performance_id, student_id, task_number, points, is_edited
		FROM performance_task_results `+where+` ORDER BY student_id, task_number`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PerformanceTaskResult
	for rows.Next() {
		var tr models.PerformanceTaskResult
		if err := rows.Scan(&tr.ID, &tr.PerformanceID, &tr.StudentID, &tr.TaskNumber, &tr.Points, &tr.IsEdited); err != nil {
			return nil, err
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// StudentsForAssessment — ученики группы контрольной (класс либо курс),
// отсортированные как в CSV-заготовке.
func (s *PerformanceStore) StudentsForAssessment(ctx context.Context, assessmentID int64) ([]models.Student, error) {
	q, err := s.AssessmentByID(ctx, assessmentID)
	if err != nil || q == nil {
		return nil, err
	}

	var rows *sql.Rows
	switch {
	case q.ClassID != nil:
		rows, err = s.q.QueryContext(ctx, `
			SELECT id, first_name, last_name, class_id, course_id FROM students
			WHERE class_id = $1 ORDER BY last_name, first_name`, *q.ClassID)
	case q.CourseID != nil:
		rows, err = s.q.QueryContext(ctx, `
			SELECT id, first_name, last_name, class_id, course_id FROM students
			WHERE course_id = $1 ORDER BY last_name, first_name`, *q.CourseID)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Student
	for rows.Next() {
		var st models.Student
		var courseID sql.NullInt64
		if err := rows.Scan(&st.ID, &st.FirstName, &st.LastName, &st.ClassID, &courseID); err != nil {
			return nil, err
		}
		if courseID.Valid {
			st.CourseID = &courseID.Int64
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *PerformanceStore) SetOpPoints(ctx context.Context, assessmentID, studentID int64, points float64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO performance_results (performance_id, student_id, op_points, op_is_edited)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (performance_id, student_id)
		DO UPDATE SET op_points = EXCLUDED.op_points, op_is_edited = TRUE`,
		assessmentID, studentID, points)
	return err
}

func (s *PerformanceStore) SetZpPoints(ctx context.Context, assessmentID, studentID int64, points float64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO performance_results (performance_id, student_id, zp_points, zp_is_edited)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (performance_id, student_id)
		DO UPDATE SET zp_points = EXCLUDED.zp_points, zp_is_edited = TRUE`,
		assessmentID, studentID, points)
	return err
}

func (s *PerformanceStore) UpsertTaskPoints(ctx context.Context, assessmentID, studentID int64, taskNumber int, points float64) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO performance_task_results (performance_id, student_id, task_number, points, is_edited)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (performance_id, student_id, task_number)
		DO UPDATE SET points = EXCLUDED.points, is_edited = TRUE`,
		assessmentID, studentID, taskNumber, points)
	return err
}

func (s *PerformanceStore) SetGradeOverride(ctx context.Context, assessmentID, studentID int64, override *float64, comment *string) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO performance_results (performance_id, student_id, grade_override, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (performance_id, student_id)
		DO UPDATE SET grade_override = EXCLUDED.grade_override, comment = EXCLUDED.comment`,
		assessmentID, studentID, override, comment)
	return err
}

// ReplaceResults — полный импорт: прежние строки результатов удаляются,
// новые вставляются одной транзакцией.
func (s *PerformanceStore) ReplaceResults(ctx context.Context, assessmentID int64, rows []scoring.ImportRow) error {
	return s.InTx(ctx, func(txStore scoring.Store) error {
		t := txStore.(*PerformanceStore)
		if _, err := t.q.ExecContext(ctx, `DELETE FROM performance_task_results WHERE performance_id = $1`, assessmentID); err != nil {
			return err
		}
		if _, err := t.q.ExecContext(ctx, `DELETE FROM performance_results WHERE performance_id = $1`, assessmentID); err != nil {
			return err
		}
		for _, r := range rows {
			if _, err := t.q.ExecContext(ctx, `
				INSERT INTO performance_results (performance_id, student_id, op_points, zp_points)
				VALUES ($1, $2, $3, $4)`,
				assessmentID, r.StudentID, r.OpPoints, r.ZpPoints); err != nil {
				return err
			}
			for i, pts := range r.TaskPoints {
				if _, err := t.q.ExecContext(ctx, `
					INSERT INTO performance_task_results (performance_id, student_id, task_number, points)
					VALUES ($1, $2, $3, $4)`,
					assessmentID, r.StudentID, i+1, pts); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// CreateAssessment — контрольная вместе с заданиями (каскадное владение).
func (s *PerformanceStore) CreateAssessment(ctx context.Context, q models.PerformanceQuery, taskMaxPoints []float64) (int64, error) {
	var id int64
	err := s.InTx(ctx, func(txStore scoring.Store) error {
		t := txStore.(*PerformanceStore)
		err := t.q.QueryRowContext(ctx, `
			INSERT INTO performance_queries (type, description, subject_id, class_id, course_id, date, grade_scale_id, max_op_points)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			q.Type, q.Description, q.SubjectID, q.ClassID, q.CourseID, q.Date, q.GradeScaleID, q.MaxOpPoints,
		).Scan(&id)
		if err != nil {
			return err
		}
		for i, maxp := range taskMaxPoints {
			if _, err := t.q.ExecContext(ctx, `
				INSERT INTO performance_tasks (performance_id, number, max_points)
				VALUES ($1, $2, $3)`, id, i+1, maxp); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (s *PerformanceStore) AssignScale(ctx context.Context, assessmentID int64, scaleID *int64) error {
	_, err := s.q.ExecContext(ctx, `UPDATE performance_queries SET grade_scale_id = $1 WHERE id = $2`, scaleID, assessmentID)
	return err
}

func (s *PerformanceStore) DeleteAssessment(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM performance_queries WHERE id = $1`, id)
	return err
}

// ListAssessments — контрольные, новые сверху.
func (s *PerformanceStore) ListAssessments(ctx context.Context) ([]models.PerformanceQuery, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, type, description, date, subject_id, class_id, course_id, grade_scale_id, max_op_points
		FROM performance_queries ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PerformanceQuery
	for rows.Next() {
		var q models.PerformanceQuery
		var description sql.NullString
		var subjectID, classID, courseID, scaleID sql.NullInt64
		var date time.Time
		if err := rows.Scan(&q.ID, &q.Type, &description, &date, &subjectID, &classID, &courseID, &scaleID, &q.MaxOpPoints); err != nil {
			return nil, err
		}
		q.Date = date
		if description.Valid {
			q.Description = &description.String
		}
		if subjectID.Valid {
			q.SubjectID = &subjectID.Int64
		}
		if classID.Valid {
			q.ClassID = &classID.Int64
		}
		if courseID.Valid {
			q.CourseID = &courseID.Int64
		}
		if scaleID.Valid {
			q.GradeScaleID = &scaleID.Int64
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PerformanceStore) InTx(ctx context.Context, fn func(scoring.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&PerformanceStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}
