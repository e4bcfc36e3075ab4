//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/db"
	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/scoring"
	"github.com/Spok95/school-planner/internal/testutil/testdb"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

func TestPerformanceStore_ScoringRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	if err := db.Seed(ctx, h.DB); err != nil {
		t.Fatal(err)
	}

	catalog := db.NewCatalogStore(h.DB)
	classID, err := catalog.GetOrCreateClass(ctx, "5f")
	if err != nil {
		t.Fatal(err)
	}
	students, err := catalog.StudentsByClass(ctx, classID)
	if err != nil {
		t.Fatal(err)
	}
	if len(students) < 2 {
		t.Fatalf("в сиде два ученика 5F, нашли %d", len(students))
	}
	st := students[0]

	perf := db.NewPerformanceStore(h.DB)
	scales, err := perf.ListScales(ctx)
	if err != nil || len(scales) == 0 {
		t.Fatalf("дефолтная шкала из сида: %v %v", scales, err)
	}
	scaleID := scales[0].ID

	aID, err := perf.CreateAssessment(ctx, models.PerformanceQuery{
		Type:         "KA",
		Date:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		ClassID:      &classID,
		GradeScaleID: &scaleID,
	}, []float64{10, 10})
	if err != nil {
		t.Fatal(err)
	}

	engine := scoring.NewEngine(perf, audit.NewBestEffort(db.NewChangeLogStore(h.DB), testLogger(t)))

	op := 2.0
	res, err := engine.UpdateStudentScores(ctx, aID, st.ID, scoring.ScoreUpdate{
		OpPoints:   &op,
		TaskPoints: map[int]float64{1: 8, 2: 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	// 17/20 = 85% -> "2.0" по дефолтной шкале
	if res == nil || res.TotalPoints != 17 || res.Grade != "2.0" {
		t.Fatalf("итог: %+v", res)
	}

	// флаги правки в БД
	row, err := perf.ResultByStudent(ctx, aID, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if row == nil || !row.OpIsEdited || row.ZpIsEdited {
		t.Fatalf("флаги правки: %#v", row)
	}

	// апсерт: повторная правка того же задания не плодит строк
	if _, err := engine.UpdateStudentScores(ctx, aID, st.ID, scoring.ScoreUpdate{TaskPoints: map[int]float64{1: 9}}); err != nil {
		t.Fatal(err)
	}
	trs, err := perf.TaskResultsByStudent(ctx, aID, st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(trs) != 2 {
		t.Fatalf("два task-результата после апсерта: %#v", trs)
	}

	// полный импорт стирает прежние строки
	other := students[1]
	csv := "StudentID;LastName;FirstName;Task1;Task2;OP;ZP\n" +
		strconv.FormatInt(other.ID, 10) + ";X;Y;10;10;0;0"
	n, err := engine.Import(ctx, aID, csv)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("импорт одной строки: %d", n)
	}
	if gone, _ := perf.ResultByStudent(ctx, aID, st.ID); gone != nil {
		t.Fatalf("импорт не стер прежний результат: %#v", gone)
	}
	res, err = engine.ScoreStudent(ctx, aID, other.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil || res.TotalPoints != 20 || res.Grade != "1.0" {
		t.Fatalf("после импорта: %+v", res)
	}

	// журнал изменений накопил записи
	log := db.NewChangeLogStore(h.DB)
	entries, err := log.Recent(ctx, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Fatal("журнал пуст")
	}
	imports, err := log.Recent(ctx, 50, audit.ActionImport)
	if err != nil {
		t.Fatal(err)
	}
	if len(imports) != 1 {
		t.Fatalf("одна запись импорта: %#v", imports)
	}
}
