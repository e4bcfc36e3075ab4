// Package scoring — подсчёт результатов контрольных: сырые баллы за задания
// плюс OP/ZP-баллы превращаются в округлённую сумму, процент и оценку по
// настраиваемой шкале; ручная оценка перекрывает вычисленную.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/metrics"
	"github.com/Spok95/school-planner/internal/models"
)

// Store — контракт хранилища контрольных. Методы поиска одной записи
// возвращают (nil, nil), если её нет.
type Store interface {
	AssessmentByID(ctx context.Context, id int64) (*models.PerformanceQuery, error)
	TasksByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceTask, error)
	ScaleByID(ctx context.Context, id int64) (*models.GradeScale, error)

	ResultByStudent(ctx context.Context, assessmentID, studentID int64) (*models.PerformanceResult, error)
	TaskResultsByStudent(ctx context.Context, assessmentID, studentID int64) ([]models.PerformanceTaskResult, error)
	ResultsByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceResult, error)
	TaskResultsByAssessment(ctx context.Context, assessmentID int64) ([]models.PerformanceTaskResult, error)
	StudentsForAssessment(ctx context.Context, assessmentID int64) ([]models.Student, error)

	// Записи выставляют соответствующий флаг ручной правки (is_edited).
	SetOpPoints(ctx context.Context, assessmentID, studentID int64, points float64) error
	SetZpPoints(ctx context.Context, assessmentID, studentID int64, points float64) error
	UpsertTaskPoints(ctx context.Context, assessmentID, studentID int64, taskNumber int, points float64) error

	SetGradeOverride(ctx context.Context, assessmentID, studentID int64, override *float64, comment *string) error
	// ReplaceResults атомарно удаляет все result/task_result строки контрольной
	// и вставляет новые (семантика полного импорта, не merge).
	ReplaceResults(ctx context.Context, assessmentID int64, rows []ImportRow) error

	InTx(ctx context.Context, fn func(Store) error) error
}

// ScoreResult — вычисленный итог ученика по контрольной.
type ScoreResult struct {
	TotalPoints float64 `json:"total_points"`
	Percentage  float64 `json:"percentage"`
	Grade       string  `json:"grade"`
}

// ScoreUpdate — ручная правка баллов: nil-поля не трогаются.
type ScoreUpdate struct {
	OpPoints   *float64
	ZpPoints   *float64
	TaskPoints map[int]float64
}

type Engine struct {
	store Store
	rec   audit.Recorder
}

func NewEngine(store Store, rec audit.Recorder) *Engine {
	return &Engine{store: store, rec: rec}
}

// RoundHalf — округление к ближайшим 0.5, половинки от нуля
// (17.25 -> 17.5, -17.25 -> -17.5). Зафиксировано явно: режим округления
// двигает оценки на границах диапазонов.
func RoundHalf(x float64) float64 { return math.Round(x*2) / 2 }

// ScoreStudent — итог ученика. (nil, nil) — "ещё не оценивается": нет шкалы,
// нулевой максимум заданий, пустая шкала или неизвестная контрольная.
// Отсутствующие строки результатов дают 0 баллов.
func (e *Engine) ScoreStudent(ctx context.Context, assessmentID, studentID int64) (*ScoreResult, error) {
	return e.score(ctx, e.store, assessmentID, studentID)
}

func (e *Engine) score(ctx context.Context, s Store, assessmentID, studentID int64) (*ScoreResult, error) {
	metrics.ScoringRuns.Inc()

	q, err := s.AssessmentByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if q == nil || q.GradeScaleID == nil {
		return nil, nil
	}

	tasks, err := s.TasksByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	var totalMax float64
	for _, t := range tasks {
		totalMax += t.MaxPoints
	}
	if totalMax == 0 {
		return nil, nil
	}

	scale, err := s.ScaleByID(ctx, *q.GradeScaleID)
	if err != nil {
		return nil, err
	}
	if scale == nil {
		return nil, nil
	}
	bands := scale.Bands()
	if len(bands) == 0 {
		return nil, nil
	}

	res, err := s.ResultByStudent(ctx, assessmentID, studentID)
	if err != nil {
		return nil, err
	}
	taskResults, err := s.TaskResultsByStudent(ctx, assessmentID, studentID)
	if err != nil {
		return nil, err
	}

	var raw float64
	for _, tr := range taskResults {
		raw += tr.Points
	}
	var override *float64
	if res != nil {
		raw += res.OpPoints + res.ZpPoints
		override = res.GradeOverride
	}

	total := RoundHalf(raw)
	pct := total / totalMax * 100.0

	grade, _ := models.GradeFor(bands, pct)
	if override != nil {
		grade = formatGrade(*override)
	}

	return &ScoreResult{TotalPoints: total, Percentage: pct, Grade: grade}, nil
}

// UpdateStudentScores — ручная правка баллов ученика одной транзакцией,
// с флагами is_edited, и пересчёт итога. Баллы не проверяются против
// максимума задания: ввод сверх максимума сохраняется как есть.
func (e *Engine) UpdateStudentScores(ctx context.Context, assessmentID, studentID int64, upd ScoreUpdate) (*ScoreResult, error) {
	var result *ScoreResult
	var entries []audit.Entry

	err := e.store.InTx(ctx, func(s Store) error {
		old, err := s.ResultByStudent(ctx, assessmentID, studentID)
		if err != nil {
			return err
		}
		oldTasks := map[int]float64{}
		trs, err := s.TaskResultsByStudent(ctx, assessmentID, studentID)
		if err != nil {
			return err
		}
		for _, tr := range trs {
			oldTasks[tr.TaskNumber] = tr.Points
		}

		if upd.OpPoints != nil {
			if err := s.SetOpPoints(ctx, assessmentID, studentID, *upd.OpPoints); err != nil {
				return err
			}
			entries = append(entries, changeEntry("op_points", oldOp(old), *upd.OpPoints, assessmentID))
		}
		if upd.ZpPoints != nil {
			if err := s.SetZpPoints(ctx, assessmentID, studentID, *upd.ZpPoints); err != nil {
				return err
			}
			entries = append(entries, changeEntry("zp_points", oldZp(old), *upd.ZpPoints, assessmentID))
		}

		nums := make([]int, 0, len(upd.TaskPoints))
		for n := range upd.TaskPoints {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			pts := upd.TaskPoints[n]
			if err := s.UpsertTaskPoints(ctx, assessmentID, studentID, n, pts); err != nil {
				return err
			}
			entries = append(entries, changeEntry(fmt.Sprintf("task_%d", n), oldTasks[n], pts, assessmentID))
		}

		result, err = e.score(ctx, s, assessmentID, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, en := range entries {
		e.rec.Record(ctx, en)
	}
	return result, nil
}

// SetGradeOverride — ручная оценка и комментарий; журналируется только
// фактическое изменение.
func (e *Engine) SetGradeOverride(ctx context.Context, assessmentID, studentID int64, override *float64, comment string) error {
	old, err := e.store.ResultByStudent(ctx, assessmentID, studentID)
	if err != nil {
		return err
	}
	var cptr *string
	if comment != "" {
		cptr = &comment
	}
	if err := e.store.SetGradeOverride(ctx, assessmentID, studentID, override, cptr); err != nil {
		return err
	}

	oldVal, oldComment := "", ""
	if old != nil {
		if old.GradeOverride != nil {
			oldVal = formatGrade(*old.GradeOverride)
		}
		if old.Comment != nil {
			oldComment = *old.Comment
		}
	}
	newVal := ""
	if override != nil {
		newVal = formatGrade(*override)
	}
	if oldVal != newVal || oldComment != comment {
		e.rec.Record(ctx, audit.Entry{
			Action:    audit.ActionManual,
			TableName: "performance_results",
			FieldName: "grade_override",
			OldValue:  oldVal,
			NewValue:  newVal,
			Comment:   cptr,
		})
	}
	return nil
}

func changeEntry(field string, oldV, newV float64, assessmentID int64) audit.Entry {
	id := assessmentID
	return audit.Entry{
		Action:    audit.ActionManual,
		TableName: "performance_results",
		RecordID:  &id,
		FieldName: field,
		OldValue:  trimFloat(oldV),
		NewValue:  trimFloat(newV),
	}
}

func oldOp(r *models.PerformanceResult) float64 {
	if r == nil {
		return 0
	}
	return r.OpPoints
}

func oldZp(r *models.PerformanceResult) float64 {
	if r == nil {
		return 0
	}
	return r.ZpPoints
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatGrade — ручная оценка в виде метки шкалы: "1" -> "1.0".
func formatGrade(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
