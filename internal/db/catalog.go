package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Spok95/school-planner/internal/models"
)

// CatalogStore — справочники: классы, курсы, предметы, учителя, ученики.
type CatalogStore struct {
	q dbtx
}

func NewCatalogStore(database *sql.DB) *CatalogStore {
	return &CatalogStore{q: database}
}

// GetOrCreateClass — класс по нормализованному имени ("10f" -> "10F").
func (s *CatalogStore) GetOrCreateClass(ctx context.Context, name string) (int64, error) {
	norm := models.NormalizeGroupName(name)
	if norm == "" {
		return 0, errors.New("empty class name")
	}
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM classes WHERE LOWER(name) = LOWER($1)`, norm).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = s.q.QueryRowContext(ctx, `INSERT INTO classes (name) VALUES ($1) RETURNING id`, norm).Scan(&id)
	return id, err
}

func (s *CatalogStore) GetOrCreateCourse(ctx context.Context, name string) (int64, error) {
	norm := models.NormalizeGroupName(name)
	if norm == "" {
		return 0, errors.New("empty course name")
	}
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM courses WHERE LOWER(name) = LOWER($1)`, norm).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = s.q.QueryRowContext(ctx, `INSERT INTO courses (name) VALUES ($1) RETURNING id`, norm).Scan(&id)
	return id, err
}

func (s *CatalogStore) GetOrCreateSubject(ctx context.Context, name, short string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("empty subject name")
	}
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM subjects WHERE LOWER(name) = LOWER($1)`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	short = strings.ToUpper(strings.TrimSpace(short))
	if short == "" {
		short = strings.ToUpper(name)
		if len(short) > 8 {
			short = short[:8]
		}
	}
	err = s.q.QueryRowContext(ctx, `INSERT INTO subjects (name, short) VALUES ($1, $2) RETURNING id`, name, short).Scan(&id)
	return id, err
}

func (s *CatalogStore) CreateTeacher(ctx context.Context, short, name string) (int64, error) {
	short = strings.TrimSpace(short)
	name = strings.TrimSpace(name)
	if short == "" && name == "" {
		return 0, errors.New("empty teacher")
	}
	if short == "" {
		short = strings.ToUpper(strings.SplitN(name, " ", 2)[0])
		if len(short) > 4 {
			short = short[:4]
		}
	}
	if name == "" {
		name = short
	}
	var id int64
	err := s.q.QueryRowContext(ctx, `SELECT id FROM teachers WHERE short = $1`, short).Scan(&id)
	if err == nil {
		_, err = s.q.ExecContext(ctx, `UPDATE teachers SET name = COALESCE(NULLIF(name, ''), $1) WHERE id = $2`, name, id)
		return id, err
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	err = s.q.QueryRowContext(ctx, `INSERT INTO teachers (short, name) VALUES ($1, $2) RETURNING id`, short, name).Scan(&id)
	return id, err
}

func (s *CatalogStore) CreateStudent(ctx context.Context, st models.Student) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO students (first_name, last_name, class_id, course_id)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		st.FirstName, st.LastName, st.ClassID, st.CourseID).Scan(&id)
	return id, err
}

func (s *CatalogStore) StudentByID(ctx context.Context, id int64) (*models.Student, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, class_id, course_id FROM students WHERE id = $1`, id)
	var st models.Student
	var courseID sql.NullInt64
	err := row.Scan(&st.ID, &st.FirstName, &st.LastName, &st.ClassID, &courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if courseID.Valid {
		st.CourseID = &courseID.Int64
	}
	return &st, nil
}

func (s *CatalogStore) StudentsByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	return s.students(ctx, `WHERE class_id = $1`, classID)
}

func (s *CatalogStore) StudentsByCourse(ctx context.Context, courseID int64) ([]models.Student, error) {
	return s.students(ctx, `WHERE course_id = $1`, courseID)
}

func (s *CatalogStore) students(ctx context.Context, where string, args ...any) ([]models.Student, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, first_name, last_name, class_id, course_id FROM students `+where+`
		ORDER BY last_name, first_name`, args...)
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

func (s *CatalogStore) ListClasses(ctx context.Context) ([]models.Class, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, teacher_id FROM classes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Class
	for rows.Next() {
		var c models.Class
		var teacherID sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &teacherID); err != nil {
			return nil, err
		}
		if teacherID.Valid {
			c.TeacherID = &teacherID.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CatalogStore) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, short FROM subjects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Subject
	for rows.Next() {
		var sub models.Subject
		var short sql.NullString
		if err := rows.Scan(&sub.ID, &sub.Name, &short); err != nil {
			return nil, err
		}
		if short.Valid {
			sub.Short = &short.String
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *CatalogStore) SubjectByID(ctx context.Context, id int64) (*models.Subject, error) {
	var sub models.Subject
	var short sql.NullString
	err := s.q.QueryRowContext(ctx, `SELECT id, name, short FROM subjects WHERE id = $1`, id).
		Scan(&sub.ID, &sub.Name, &short)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if short.Valid {
		sub.Short = &short.String
	}
	return &sub, nil
}
