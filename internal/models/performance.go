package models

import "time"

// PerformanceQuery — контрольная работа / опрос по группе (классу или курсу).
type PerformanceQuery struct {
	ID           int64     `db:"id"`
	Type         string    `db:"type"`
	Description  *string   `db:"description"`
	Date         time.Time `db:"date"`
	SubjectID    *int64    `db:"subject_id"`
	ClassID      *int64    `db:"class_id"`
	CourseID     *int64    `db:"course_id"`
	GradeScaleID *int64    `db:"grade_scale_id"`
	MaxOpPoints  float64   `db:"max_op_points"`
}

// PerformanceTask — задание контрольной (номер и максимум баллов).
type PerformanceTask struct {
	ID            int64   `db:"id"`
	PerformanceID int64   `db:"performance_id"`
	Number        int     `db:"number"`
	MaxPoints     float64 `db:"max_points"`
}

// PerformanceResult — итоговая строка ученика по контрольной: OP/ZP-баллы,
// ручная оценка (имеет приоритет над вычисленной) и флаги ручной правки.
type PerformanceResult struct {
	ID            int64    `db:"id"`
	PerformanceID int64    `db:"performance_id"`
	StudentID     int64    `db:"student_id"`
	OpPoints      float64  `db:"op_points"`
	ZpPoints      float64  `db:"zp_points"`
	GradeOverride *float64 `db:"grade_override"`
	Comment       *string  `db:"comment"`
	OpIsEdited    bool     `db:"op_is_edited"`
	ZpIsEdited    bool     `db:"zp_is_edited"`
}

// PerformanceTaskResult — баллы ученика за одно задание.
type PerformanceTaskResult struct {
	ID            int64   `db:"id"`
	PerformanceID int64   `db:"performance_id"`
	StudentID     int64   `db:"student_id"`
	TaskNumber    int     `db:"task_number"`
	Points        float64 `db:"points"`
	IsEdited      bool    `db:"is_edited"`
}
