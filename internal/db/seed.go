package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Spok95/school-planner/internal/models"
)

// Seed наполняет пустые справочники стартовыми данными: предметы, дефолтная
// шкала оценок, шаблон расписания и демо-ученики. Непустые таблицы не трогает.
func Seed(ctx context.Context, database *sql.DB) error {
	if err := seedSubjects(ctx, database); err != nil {
		return fmt.Errorf("seed subjects: %w", err)
	}
	if err := seedGradeScale(ctx, database); err != nil {
		return fmt.Errorf("seed grade scale: %w", err)
	}
	if err := seedTimetable(ctx, database); err != nil {
		return fmt.Errorf("seed timetable: %w", err)
	}
	if err := seedStudents(ctx, database); err != nil {
		return fmt.Errorf("seed students: %w", err)
	}
	return nil
}

func tableEmpty(ctx context.Context, database *sql.DB, table string) (bool, error) {
	var count int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func seedSubjects(ctx context.Context, database *sql.DB) error {
	empty, err := tableEmpty(ctx, database, "subjects")
	if err != nil || !empty {
		return err
	}
	defaults := [][2]string{
		{"Deutsch", "DE"},
		{"Englisch", "EN"},
		{"Mathematik", "MA"},
		{"Physik", "PH"},
		{"Biologie", "BI"},
	}
	for _, s := range defaults {
		_, err := database.ExecContext(ctx, `
			INSERT INTO subjects (name, short) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, s[0], s[1])
		if err != nil {
			return err
		}
	}
	return nil
}

// Шкала 1.0..6.0 в шагах по 0.5, границы 86/72/58/44/20, правая граница
// исключается.
func seedGradeScale(ctx context.Context, database *sql.DB) error {
	empty, err := tableEmpty(ctx, database, "grade_scales")
	if err != nil || !empty {
		return err
	}
	definition := strings.Join([]string{
		"1.0;93.0;100.1",
		"1.5;86.0;93.0",
		"2.0;79.0;86.0",
		"2.5;72.0;79.0",
		"3.0;65.0;72.0",
		"3.5;58.0;65.0",
		"4.0;51.0;58.0",
		"4.5;44.0;51.0",
		"5.0;31.5;44.0",
		"5.5;19.0;31.5",
		"6.0;0.0;19.0",
	}, "\n")
	_, err = database.ExecContext(ctx, `
		INSERT INTO grade_scales (name, definition) VALUES ($1, $2)`,
		"Default (86/72/58/44/20, 0.5er)", definition)
	return err
}

type seedSlot struct {
	day      models.Weekday
	period   int
	group    string
	subject  string
	room     string
	isDouble bool
}

func seedTimetable(ctx context.Context, database *sql.DB) error {
	empty, err := tableEmpty(ctx, database, "timetable")
	if err != nil || !empty {
		return err
	}

	entries := []seedSlot{
		{models.Monday, 1, "5f", "PFAG", "212", true},
		{models.Monday, 3, "7sw", "PH", "136", false},
		{models.Monday, 4, "7ch", "PH", "136", false},
		{models.Monday, 5, "6b", "IF", "311", true},
		{models.Monday, 8, "8fs", "PH", "239", false},
		{models.Tuesday, 1, "10f", "AS", "con4", false},
		{models.Tuesday, 2, "9if", "PH", "136", false},
		{models.Tuesday, 3, "8if", "IF", "212", true},
		{models.Tuesday, 5, "10f", "M", "con4", true},
		{models.Wednesday, 1, "7bi", "PH", "239", false},
		{models.Wednesday, 2, "7if", "PH", "232", false},
		{models.Wednesday, 4, "8if", "IF", "212", false},
		{models.Thursday, 3, "10sw", "PH", "239", false},
		{models.Thursday, 4, "10f", "AS", "con4", false},
		{models.Thursday, 5, "10f", "M", "con4", true},
		{models.Thursday, 8, "6e", "IF", "212", true},
		{models.Friday, 1, "9tc", "PH", "239", false},
		{models.Friday, 3, "9if", "PH", "236", false},
		{models.Friday, 5, "7ch", "PH", "239", false},
		{models.Friday, 6, "7if", "PH", "232", false},
	}

	subjectNames := map[string]string{"PH": "Physik"}

	catalog := NewCatalogStore(database)
	for _, e := range entries {
		group := models.NormalizeGroupName(e.group)
		classID, err := catalog.GetOrCreateClass(ctx, group)
		if err != nil {
			return fmt.Errorf("class %s: %w", group, err)
		}
		var courseID *int64
		// Однобуквенный суффикс — класс, длиннее — курс по выбору.
		if m := groupNameSuffix(group); len(m) > 1 {
			id, err := catalog.GetOrCreateCourse(ctx, group)
			if err != nil {
				return fmt.Errorf("course %s: %w", group, err)
			}
			courseID = &id
		}

		subjName := e.subject
		if full, ok := subjectNames[e.subject]; ok {
			subjName = full
		}
		subjectID, err := catalog.GetOrCreateSubject(ctx, subjName, e.subject)
		if err != nil {
			return fmt.Errorf("subject %s: %w", subjName, err)
		}

		_, err = database.ExecContext(ctx, `
			INSERT INTO timetable (day, period, is_double, date, subject_id, class_id, course_id, room, status)
			VALUES ($1, $2, $3, NULL, $4, $5, $6, $7, NULL)`,
			e.day, e.period, e.isDouble, subjectID, classID, courseID, e.room)
		if err != nil {
			return fmt.Errorf("timetable %s/%d: %w", e.day, e.period, err)
		}
	}
	return nil
}

func groupNameSuffix(name string) string {
	i := 0
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	return name[i:]
}

func seedStudents(ctx context.Context, database *sql.DB) error {
	empty, err := tableEmpty(ctx, database, "students")
	if err != nil || !empty {
		return err
	}
	students := []struct {
		first, last, class string
	}{
		{"John", "Smith", "5f"},
		{"Jane", "Doe", "5f"},
		{"Peter", "Jones", "6b"},
	}
	catalog := NewCatalogStore(database)
	for _, st := range students {
		classID, err := catalog.GetOrCreateClass(ctx, st.class)
		if err != nil {
			return err
		}
		if _, err := catalog.CreateStudent(ctx, models.Student{
			FirstName: st.first,
			LastName:  st.last,
			ClassID:   classID,
		}); err != nil {
			return err
		}
	}
	return nil
}
