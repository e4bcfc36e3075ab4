package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/school-planner/internal/audit"
)

// Формат обмена: CSV с разделителем ';' без кавычек.
// Заголовок: StudentID;LastName;FirstName;Task1..TaskN;OP;ZP.

// ErrEmptyImport — в импорте нет ни одной строки.
var ErrEmptyImport = errors.New("empty csv payload")

// ImportRow — разобранная строка импорта. TaskPoints[i] — баллы за задание i+1.
type ImportRow struct {
	StudentID  int64
	TaskPoints []float64
	OpPoints   float64
	ZpPoints   float64
}

// ParseImport — разбор CSV-текста. Количество заданий берётся из заголовка
// (колонки с префиксом "Task"). Кривые строки (меньше трёх полей, нечисловой
// StudentID) пропускаются, нечисловые баллы считаются нулём.
func ParseImport(data string) ([]ImportRow, error) {
	var lines []string
	for _, ln := range strings.Split(strings.TrimSpace(data), "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyImport
	}

	taskCount := 0
	for _, h := range strings.Split(lines[0], ";") {
		if strings.HasPrefix(strings.TrimSpace(h), "Task") {
			taskCount++
		}
	}

	var rows []ImportRow
	for _, ln := range lines[1:] {
		parts := strings.Split(ln, ";")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 3 {
			continue
		}
		sid, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		row := ImportRow{StudentID: sid, TaskPoints: make([]float64, taskCount)}
		for i := 0; i < taskCount; i++ {
			if 3+i < len(parts) {
				row.TaskPoints[i] = parseFloatOrZero(parts[3+i])
			}
		}
		if len(parts) >= 3+taskCount+1 {
			row.OpPoints = parseFloatOrZero(parts[3+taskCount])
		}
		if len(parts) >= 3+taskCount+2 {
			row.ZpPoints = parseFloatOrZero(parts[3+taskCount+1])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Import — полный импорт результатов контрольной: прежние result/task_result
// строки удаляются, вставляются строки из CSV (одной транзакцией).
func (e *Engine) Import(ctx context.Context, assessmentID int64, csvData string) (int, error) {
	rows, err := ParseImport(csvData)
	if err != nil {
		return 0, err
	}
	if err := e.store.ReplaceResults(ctx, assessmentID, rows); err != nil {
		return 0, err
	}

	n := int64(len(rows))
	e.rec.Record(ctx, audit.Entry{
		Action:    audit.ActionImport,
		TableName: "performance_results",
		RecordID:  &assessmentID,
		FieldName: "import",
		NewValue:  strconv.FormatInt(n, 10),
	})
	return len(rows), nil
}

// TemplateCSV — заготовка для заполнения: заголовок и по пустой строке
// на каждого ученика группы контрольной.
func (e *Engine) TemplateCSV(ctx context.Context, assessmentID int64) (string, error) {
	q, err := e.store.AssessmentByID(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	if q == nil {
		return "", ErrAssessmentNotFound
	}
	tasks, err := e.store.TasksByAssessment(ctx, assessmentID)
	if err != nil {
		return "", err
	}
	students, err := e.store.StudentsForAssessment(ctx, assessmentID)
	if err != nil {
		return "", err
	}

	header := []string{"StudentID", "LastName", "FirstName"}
	for i := 1; i <= len(tasks); i++ {
		header = append(header, fmt.Sprintf("Task%d", i))
	}
	header = append(header, "OP", "ZP")

	lines := []string{strings.Join(header, ";")}
	empty := strings.Repeat(";", len(tasks)+2)
	for _, s := range students {
		lines = append(lines, fmt.Sprintf("%d;%s;%s%s", s.ID, s.LastName, s.FirstName, empty))
	}
	return strings.Join(lines, "\n"), nil
}

// ErrAssessmentNotFound — контрольная с таким id отсутствует.
var ErrAssessmentNotFound = errors.New("assessment not found")

func parseFloatOrZero(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
