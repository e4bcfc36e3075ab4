package scoring

import (
	"context"

	"github.com/Spok95/school-planner/internal/models"
)

// ReportRow — итог одного ученика в сводке контрольной.
type ReportRow struct {
	Student    models.Student
	TaskPoints map[int]float64
	OpPoints   float64
	ZpPoints   float64
	Total      float64
	Percentage float64
	Grade      string
}

// Report — сводка контрольной для выгрузки: построчные итоги плюс статистика.
type Report struct {
	Assessment  *models.PerformanceQuery
	Tasks       []models.PerformanceTask
	TotalMax    float64
	Rows        []ReportRow
	AvgPoints   float64
	BestPoints  float64
	WorstPoints float64
	// TaskAvg — средний балл по каждому заданию (по всем ученикам группы,
	// отсутствующие строки считаются нулём).
	TaskAvg map[int]float64
}

// BuildReport — сводка по всем ученикам группы контрольной. Оценка каждой
// строки считается теми же правилами, что ScoreStudent; без настроенной
// шкалы колонка оценки остаётся пустой.
func (e *Engine) BuildReport(ctx context.Context, assessmentID int64) (*Report, error) {
	q, err := e.store.AssessmentByID(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrAssessmentNotFound
	}
	tasks, err := e.store.TasksByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	students, err := e.store.StudentsForAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	results, err := e.store.ResultsByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	taskResults, err := e.store.TaskResultsByAssessment(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	var bands []models.Band
	if q.GradeScaleID != nil {
		scale, err := e.store.ScaleByID(ctx, *q.GradeScaleID)
		if err != nil {
			return nil, err
		}
		if scale != nil {
			bands = scale.Bands()
		}
	}

	rep := &Report{Assessment: q, Tasks: tasks}
	for _, t := range tasks {
		rep.TotalMax += t.MaxPoints
	}

	byStudent := map[int64]*models.PerformanceResult{}
	for i := range results {
		byStudent[results[i].StudentID] = &results[i]
	}
	taskByStudent := map[int64]map[int]float64{}
	for _, tr := range taskResults {
		m := taskByStudent[tr.StudentID]
		if m == nil {
			m = map[int]float64{}
			taskByStudent[tr.StudentID] = m
		}
		m[tr.TaskNumber] = tr.Points
	}

	var sum float64
	for i, s := range students {
		row := ReportRow{Student: s, TaskPoints: taskByStudent[s.ID]}
		if row.TaskPoints == nil {
			row.TaskPoints = map[int]float64{}
		}
		var raw float64
		for _, pts := range row.TaskPoints {
			raw += pts
		}
		var override *float64
		if r := byStudent[s.ID]; r != nil {
			row.OpPoints, row.ZpPoints = r.OpPoints, r.ZpPoints
			raw += r.OpPoints + r.ZpPoints
			override = r.GradeOverride
		}
		row.Total = RoundHalf(raw)
		if rep.TotalMax > 0 {
			row.Percentage = row.Total / rep.TotalMax * 100.0
			if len(bands) > 0 {
				row.Grade, _ = models.GradeFor(bands, row.Percentage)
			}
		}
		if override != nil {
			row.Grade = formatGrade(*override)
		}

		sum += row.Total
		if i == 0 || row.Total > rep.BestPoints {
			rep.BestPoints = row.Total
		}
		if i == 0 || row.Total < rep.WorstPoints {
			rep.WorstPoints = row.Total
		}
		rep.Rows = append(rep.Rows, row)
	}
	if len(rep.Rows) > 0 {
		rep.AvgPoints = sum / float64(len(rep.Rows))
		rep.TaskAvg = map[int]float64{}
		for _, t := range tasks {
			var taskSum float64
			for _, row := range rep.Rows {
				taskSum += row.TaskPoints[t.Number]
			}
			rep.TaskAvg[t.Number] = taskSum / float64(len(rep.Rows))
		}
	}
	return rep, nil
}
