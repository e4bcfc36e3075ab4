package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/school-planner/internal/scoring"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

type ReportWorkbook struct {
	File *excelize.File
}

// NewReportWorkbook строит книгу из готовых листов: жирные заголовки,
// автофильтр в первой строке, эвристическая ширина колонок.
func NewReportWorkbook(sheets []SheetSpec) (*ReportWorkbook, error) {
	f := excelize.NewFile()

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return nil, fmt.Errorf("new sheet: %w", err)
			}
		}
		for col, h := range s.Header {
			cell := fmt.Sprintf("%s1", colName(col+1))
			if err := f.SetCellStr(name, cell, h); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)

		for r, row := range s.Rows {
			for c, val := range row {
				cell := fmt.Sprintf("%s%d", colName(c+1), r+2)
				if err := f.SetCellStr(name, cell, val); err != nil {
					return nil, fmt.Errorf("set cell %s: %w", cell, err)
				}
			}
		}
		// эвристическая ширина: по длине заголовка и первых строк
		for c := 1; c <= len(s.Header); c++ {
			maxim := len(s.Header[c-1])
			for r := 0; r < minim(50, len(s.Rows)); r++ {
				if c-1 < len(s.Rows[r]) {
					if l := len(s.Rows[r][c-1]); l > maxim {
						maxim = l
					}
				}
			}
			w := float64(maxim) * 0.9
			if w < 12 {
				w = 12
			}
			if w > 40 {
				w = 40
			}
			_ = f.SetColWidth(name, colName(c), colName(c), w)
		}
	}
	return &ReportWorkbook{File: f}, nil
}

// PerformanceWorkbook — книга со сводкой контрольной: лист результатов
// и лист статистики.
func PerformanceWorkbook(rep *scoring.Report) (*ReportWorkbook, error) {
	header := []string{"Фамилия", "Имя"}
	for _, t := range rep.Tasks {
		header = append(header, fmt.Sprintf("Задание %d (%s)", t.Number, num(t.MaxPoints)))
	}
	header = append(header, "OP", "ZP", "Сумма", "%", "Оценка")

	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		row := []string{r.Student.LastName, r.Student.FirstName}
		for _, t := range rep.Tasks {
			row = append(row, num(r.TaskPoints[t.Number]))
		}
		row = append(row,
			num(r.OpPoints),
			num(r.ZpPoints),
			num(r.Total),
			fmt.Sprintf("%.1f", r.Percentage),
			r.Grade,
		)
		rows = append(rows, row)
	}

	stats := SheetSpec{
		Title:  "Статистика",
		Header: []string{"Показатель", "Значение"},
		Rows: [][]string{
			{"Максимум баллов", num(rep.TotalMax)},
			{"Средний балл", fmt.Sprintf("%.2f", rep.AvgPoints)},
			{"Лучший результат", num(rep.BestPoints)},
			{"Худший результат", num(rep.WorstPoints)},
			{"Учеников", strconv.Itoa(len(rep.Rows))},
		},
	}
	for _, t := range rep.Tasks {
		stats.Rows = append(stats.Rows, []string{
			fmt.Sprintf("Среднее, задание %d", t.Number),
			fmt.Sprintf("%.2f", rep.TaskAvg[t.Number]),
		})
	}

	return NewReportWorkbook([]SheetSpec{
		{Title: "Результаты", Header: header, Rows: rows},
		stats,
	})
}

// PerformanceFilename — имя файла выгрузки по типу и дате контрольной.
func PerformanceFilename(rep *scoring.Report) string {
	base := fmt.Sprintf("%s_%s.xlsx", cleanToken(rep.Assessment.Type), rep.Assessment.Date.Format("2006-01-02"))
	return base
}

// helpers

func colName(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func minim(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "report"
	}
	return strings.Join(strings.Fields(s), "_")
}
