package models

import (
	"regexp"
	"strings"
	"unicode"
)

type Teacher struct {
	ID    int64  `db:"id"`
	Short string `db:"short"`
	Name  string `db:"name"`
}

type Class struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	TeacherID *int64 `db:"teacher_id"`
}

type Course struct {
	ID       int64  `db:"id"`
	Name     string `db:"name"`
	ClassID  *int64 `db:"class_id"`
	LeaderID *int64 `db:"leader_id"`
}

type Subject struct {
	ID    int64   `db:"id"`
	Name  string  `db:"name"`
	Short *string `db:"short"`
}

type Student struct {
	ID        int64  `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	ClassID   int64  `db:"class_id"`
	CourseID  *int64 `db:"course_id"`
}

var groupNameRe = regexp.MustCompile(`^(\d+)([A-Za-z]+)$`)

// NormalizeGroupName — каноническое имя класса/курса: буквенный суффикс
// в верхний регистр ("10f" -> "10F", "7sw" -> "7SW").
func NormalizeGroupName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}
	if m := groupNameRe.FindStringSubmatch(name); m != nil {
		return m[1] + strings.ToUpper(m[2])
	}
	var b strings.Builder
	for _, ch := range name {
		if unicode.IsLetter(ch) {
			b.WriteRune(unicode.ToUpper(ch))
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
