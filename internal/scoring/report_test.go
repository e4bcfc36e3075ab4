package scoring

import (
	"context"
	"errors"
	"testing"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/models"
)

func TestBuildReport(t *testing.T) {
	store := newFakeStore()
	seedAssessment(store, "1.0;93.0;100.1\n2.0;79.0;86.0\n6.0;0.0;19.0")
	store.students[1] = []models.Student{
		{ID: 10, FirstName: "John", LastName: "Smith"},
		{ID: 11, FirstName: "Jane", LastName: "Doe"},
	}
	ctx := context.Background()
	_ = store.UpsertTaskPoints(ctx, 1, 10, 1, 8)
	_ = store.UpsertTaskPoints(ctx, 1, 10, 2, 7)
	_ = store.SetOpPoints(ctx, 1, 10, 2)
	// у ученика 11 строк нет вовсе — ноль баллов

	e := NewEngine(store, audit.Discard{})
	rep, err := e.BuildReport(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rep.TotalMax != 20 || len(rep.Rows) != 2 {
		t.Fatalf("сводка: %+v", rep)
	}

	byID := map[int64]ReportRow{}
	for _, r := range rep.Rows {
		byID[r.Student.ID] = r
	}
	if r := byID[10]; r.Total != 17 || r.Percentage != 85 || r.Grade != "2.0" {
		t.Fatalf("ученик 10: %+v", r)
	}
	if r := byID[11]; r.Total != 0 || r.Grade != "6.0" {
		t.Fatalf("ученик 11: %+v", r)
	}

	if rep.BestPoints != 17 || rep.WorstPoints != 0 || rep.AvgPoints != 8.5 {
		t.Fatalf("статистика: best=%v worst=%v avg=%v", rep.BestPoints, rep.WorstPoints, rep.AvgPoints)
	}
	// средние по заданиям: 8/2=4 и 7/2=3.5
	if rep.TaskAvg[1] != 4 || rep.TaskAvg[2] != 3.5 {
		t.Fatalf("средние по заданиям: %+v", rep.TaskAvg)
	}
}

func TestBuildReport_OverrideInRow(t *testing.T) {
	store := newFakeStore()
	seedAssessment(store, "6.0;0.0;19.0")
	store.students[1] = []models.Student{{ID: 10, FirstName: "John", LastName: "Smith"}}
	ctx := context.Background()
	_ = store.SetGradeOverride(ctx, 1, 10, f64(2.5), nil)

	e := NewEngine(store, audit.Discard{})
	rep, err := e.BuildReport(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Rows[0].Grade != "2.5" {
		t.Fatalf("ручная оценка в сводке: %+v", rep.Rows[0])
	}
}

func TestBuildReport_UnknownAssessment(t *testing.T) {
	e := NewEngine(newFakeStore(), audit.Discard{})
	if _, err := e.BuildReport(context.Background(), 9); !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("ожидали ErrAssessmentNotFound, получили %v", err)
	}
}
