package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/models"
)

func TestParseImport(t *testing.T) {
	data := "StudentID;LastName;FirstName;Task1;Task2;OP;ZP\n" +
		"10;Smith;John;8;7;2;0\n" +
		"11;Doe;Jane;;;1;\n" + // пустые баллы = 0
		"abc;Broken;Row;1;2;3;4\n" + // нечисловой StudentID — пропуск
		"12;Short\n" + // меньше трёх полей — пропуск
		"13;Jones;Peter;x;5;;\n" // нечисловой балл = 0

	rows, err := ParseImport(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("три валидных строки, получили %d: %#v", len(rows), rows)
	}
	r := rows[0]
	if r.StudentID != 10 || r.TaskPoints[0] != 8 || r.TaskPoints[1] != 7 || r.OpPoints != 2 || r.ZpPoints != 0 {
		t.Fatalf("строка 10: %#v", r)
	}
	if rows[1].OpPoints != 1 || rows[1].TaskPoints[0] != 0 {
		t.Fatalf("строка 11: %#v", rows[1])
	}
	if rows[2].TaskPoints[0] != 0 || rows[2].TaskPoints[1] != 5 {
		t.Fatalf("строка 13: %#v", rows[2])
	}
}

func TestParseImport_Empty(t *testing.T) {
	if _, err := ParseImport("   \n  \n"); !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("ожидали ErrEmptyImport, получили %v", err)
	}
}

func TestImport_FullReplace(t *testing.T) {
	store := newFakeStore()
	seedAssessment(store, "6.0;0.0;19.0")
	ctx := context.Background()

	// старые данные, которые импорт должен вытеснить
	_ = store.UpsertTaskPoints(ctx, 1, 99, 1, 10)
	_ = store.SetOpPoints(ctx, 1, 99, 5)

	rec := &recordingAudit{}
	e := NewEngine(store, rec)

	n, err := e.Import(ctx, 1, "StudentID;LastName;FirstName;Task1;Task2;OP;ZP\n10;Smith;John;8;7;2;0")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("импортирована одна строка: %d", n)
	}

	// прежний ученик исчез
	if old, _ := store.ResultByStudent(ctx, 1, 99); old != nil {
		t.Fatalf("полный импорт стирает прежние строки: %#v", old)
	}
	// новый на месте
	res, _ := store.ResultByStudent(ctx, 1, 10)
	if res == nil || res.OpPoints != 2 {
		t.Fatalf("новая строка: %#v", res)
	}
	trs, _ := store.TaskResultsByStudent(ctx, 1, 10)
	if len(trs) != 2 {
		t.Fatalf("два task-результата: %#v", trs)
	}

	if len(rec.entries) != 1 || rec.entries[0].Action != audit.ActionImport {
		t.Fatalf("журнал импорта: %#v", rec.entries)
	}
}

func TestImport_EmptyPayloadFails(t *testing.T) {
	e := NewEngine(newFakeStore(), audit.Discard{})
	if _, err := e.Import(context.Background(), 1, ""); !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("ожидали ErrEmptyImport, получили %v", err)
	}
}

func TestTemplateCSV(t *testing.T) {
	store := newFakeStore()
	seedAssessment(store, "6.0;0.0;19.0")
	store.students[1] = []models.Student{
		{ID: 10, FirstName: "John", LastName: "Smith"},
		{ID: 11, FirstName: "Jane", LastName: "Doe"},
	}

	e := NewEngine(store, audit.Discard{})
	csv, err := e.TemplateCSV(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(csv, "\n")
	if len(lines) != 3 {
		t.Fatalf("заголовок + 2 ученика: %q", csv)
	}
	if lines[0] != "StudentID;LastName;FirstName;Task1;Task2;OP;ZP" {
		t.Fatalf("заголовок: %q", lines[0])
	}
	if lines[1] != "10;Smith;John;;;;" {
		t.Fatalf("строка ученика: %q", lines[1])
	}
}

func TestTemplateCSV_UnknownAssessment(t *testing.T) {
	e := NewEngine(newFakeStore(), audit.Discard{})
	if _, err := e.TemplateCSV(context.Background(), 5); !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("ожидали ErrAssessmentNotFound, получили %v", err)
	}
}
