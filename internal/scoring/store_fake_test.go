package scoring

import (
	"context"

	"github.com/Spok95/school-planner/internal/models"
)

// fakeStore — Store в памяти с семантикой апсертов и полного импорта,
// совпадающей с реализацией на БД.
type fakeStore struct {
	assessments map[int64]*models.PerformanceQuery
	tasks       map[int64][]models.PerformanceTask
	scales      map[int64]*models.GradeScale
	students    map[int64][]models.Student

	results     map[int64]map[int64]*models.PerformanceResult             // assessment -> student
	taskResults map[int64]map[int64]map[int]*models.PerformanceTaskResult // assessment -> student -> task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		assessments: map[int64]*models.PerformanceQuery{},
		tasks:       map[int64][]models.PerformanceTask{},
		scales:      map[int64]*models.GradeScale{},
		students:    map[int64][]models.Student{},
		results:     map[int64]map[int64]*models.PerformanceResult{},
		taskResults: map[int64]map[int64]map[int]*models.PerformanceTaskResult{},
	}
}

func (f *fakeStore) AssessmentByID(_ context.Context, id int64) (*models.PerformanceQuery, error) {
	return f.assessments[id], nil
}

func (f *fakeStore) TasksByAssessment(_ context.Context, id int64) ([]models.PerformanceTask, error) {
	return f.tasks[id], nil
}

func (f *fakeStore) ScaleByID(_ context.Context, id int64) (*models.GradeScale, error) {
	return f.scales[id], nil
}

func (f *fakeStore) StudentsForAssessment(_ context.Context, id int64) ([]models.Student, error) {
	return f.students[id], nil
}

func (f *fakeStore) ResultByStudent(_ context.Context, aID, sID int64) (*models.PerformanceResult, error) {
	if m := f.results[aID]; m != nil {
		if r := m[sID]; r != nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ResultsByAssessment(_ context.Context, aID int64) ([]models.PerformanceResult, error) {
	var out []models.PerformanceResult
	for _, r := range f.results[aID] {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) TaskResultsByStudent(_ context.Context, aID, sID int64) ([]models.PerformanceTaskResult, error) {
	var out []models.PerformanceTaskResult
	if m := f.taskResults[aID]; m != nil {
		for _, tr := range m[sID] {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (f *fakeStore) TaskResultsByAssessment(_ context.Context, aID int64) ([]models.PerformanceTaskResult, error) {
	var out []models.PerformanceTaskResult
	for _, byTask := range f.taskResults[aID] {
		for _, tr := range byTask {
			out = append(out, *tr)
		}
	}
	return out, nil
}

func (f *fakeStore) result(aID, sID int64) *models.PerformanceResult {
	m := f.results[aID]
	if m == nil {
		m = map[int64]*models.PerformanceResult{}
		f.results[aID] = m
	}
	r := m[sID]
	if r == nil {
		r = &models.PerformanceResult{PerformanceID: aID, StudentID: sID}
		m[sID] = r
	}
	return r
}

func (f *fakeStore) SetOpPoints(_ context.Context, aID, sID int64, points float64) error {
	r := f.result(aID, sID)
	r.OpPoints = points
	r.OpIsEdited = true
	return nil
}

func (f *fakeStore) SetZpPoints(_ context.Context, aID, sID int64, points float64) error {
	r := f.result(aID, sID)
	r.ZpPoints = points
	r.ZpIsEdited = true
	return nil
}

func (f *fakeStore) UpsertTaskPoints(_ context.Context, aID, sID int64, taskNumber int, points float64) error {
	byStudent := f.taskResults[aID]
	if byStudent == nil {
		byStudent = map[int64]map[int]*models.PerformanceTaskResult{}
		f.taskResults[aID] = byStudent
	}
	byTask := byStudent[sID]
	if byTask == nil {
		byTask = map[int]*models.PerformanceTaskResult{}
		byStudent[sID] = byTask
	}
	byTask[taskNumber] = &models.PerformanceTaskResult{
		PerformanceID: aID, StudentID: sID, TaskNumber: taskNumber, Points: points, IsEdited: true,
	}
	return nil
}

func (f *fakeStore) SetGradeOverride(_ context.Context, aID, sID int64, override *float64, comment *string) error {
	r := f.result(aID, sID)
	r.GradeOverride = override
	r.Comment = comment
	return nil
}

func (f *fakeStore) ReplaceResults(_ context.Context, aID int64, rows []ImportRow) error {
	f.results[aID] = map[int64]*models.PerformanceResult{}
	f.taskResults[aID] = map[int64]map[int]*models.PerformanceTaskResult{}
	for _, row := range rows {
		r := f.result(aID, row.StudentID)
		r.OpPoints = row.OpPoints
		r.ZpPoints = row.ZpPoints
		for i, pts := range row.TaskPoints {
			byTask := f.taskResults[aID][row.StudentID]
			if byTask == nil {
				byTask = map[int]*models.PerformanceTaskResult{}
				f.taskResults[aID][row.StudentID] = byTask
			}
			byTask[i+1] = &models.PerformanceTaskResult{
				PerformanceID: aID, StudentID: row.StudentID, TaskNumber: i + 1, Points: pts,
			}
		}
	}
	return nil
}

func (f *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(f)
}
