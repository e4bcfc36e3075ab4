package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/ctxutil"
	"github.com/Spok95/school-planner/internal/db"
	"github.com/Spok95/school-planner/internal/export"
	"github.com/Spok95/school-planner/internal/metrics"
	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/notify"
	"github.com/Spok95/school-planner/internal/observability"
	"github.com/Spok95/school-planner/internal/schedule"
	"github.com/Spok95/school-planner/internal/scoring"
)

// API — HTTP-ручки планировщика поверх движков расписания и оценивания.
type API struct {
	Resolver  *schedule.Resolver
	Lifecycle *schedule.Lifecycle
	Scoring   *scoring.Engine
	Slots     *db.TimetableStore
	Perf      *db.PerformanceStore
	Capture   *db.CaptureStore
	Catalog   *db.CatalogStore
	Audit     audit.Recorder
	Notifier  notify.Notifier
	Location  *time.Location

	LessonMinutes int

	Log *zap.SugaredLogger
}

func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/timetable/day", a.handleTimetableDay)
	mux.HandleFunc("GET /api/timetable/week", a.handleTimetableWeek)
	mux.HandleFunc("GET /api/timetable/templates", a.handleTemplates)
	mux.HandleFunc("POST /api/lessons/status", a.handleLessonStatus)
	mux.HandleFunc("POST /api/lessons/uncancel", a.handleLessonUncancel)

	mux.HandleFunc("GET /api/assessments", a.handleAssessmentList)
	mux.HandleFunc("POST /api/assessments", a.handleAssessmentCreate)
	mux.HandleFunc("DELETE /api/assessments/{id}", a.handleAssessmentDelete)
	mux.HandleFunc("GET /api/assessments/{id}/score", a.handleScore)
	mux.HandleFunc("POST /api/assessments/{id}/scores", a.handleScoreUpdate)
	mux.HandleFunc("POST /api/assessments/{id}/override", a.handleOverride)
	mux.HandleFunc("POST /api/assessments/{id}/scale", a.handleAssignScale)
	mux.HandleFunc("POST /api/assessments/{id}/import", a.handleImport)
	mux.HandleFunc("GET /api/assessments/{id}/csv", a.handleTemplateCSV)
	mux.HandleFunc("GET /api/assessments/{id}/export", a.handleExport)

	mux.HandleFunc("GET /api/scales", a.handleScaleList)
	mux.HandleFunc("POST /api/scales", a.handleScaleCreate)
	mux.HandleFunc("POST /api/teachers", a.handleTeacherCreate)
	mux.HandleFunc("GET /api/classes", a.handleClassList)
	mux.HandleFunc("GET /api/classes/{id}/students", a.handleClassStudents)
	mux.HandleFunc("GET /api/courses/{id}/students", a.handleCourseStudents)
	mux.HandleFunc("GET /api/subjects", a.handleSubjectList)
	mux.HandleFunc("GET /api/subjects/{id}", a.handleSubject)
	mux.HandleFunc("GET /api/students/{id}/summary", a.handleStudentSummary)

	mux.HandleFunc("POST /api/capture", a.handleCapture)
	mux.HandleFunc("GET /api/capture", a.handleCaptureRead)
}

// ----- расписание -----

type slotView struct {
	ID        int64   `json:"id"`
	Period    int     `json:"period"`
	IsDouble  bool    `json:"is_double"`
	SubjectID *int64  `json:"subject_id,omitempty"`
	ClassID   *int64  `json:"class_id,omitempty"`
	CourseID  *int64  `json:"course_id,omitempty"`
	Room      *string `json:"room,omitempty"`
	Status    *string `json:"status,omitempty"`
	Template  bool    `json:"template"`
}

func viewOf(s *models.TimetableSlot) slotView {
	return slotView{
		ID: s.ID, Period: s.Period, IsDouble: s.IsDouble,
		SubjectID: s.SubjectID, ClassID: s.ClassID, CourseID: s.CourseID,
		Room: s.Room, Status: s.Status, Template: s.IsTemplate(),
	}
}

func (a *API) handleTimetableDay(w http.ResponseWriter, r *http.Request) {
	date, ok := a.dateParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "timetable_day")
	slots, err := a.Resolver.ResolveDay(ctx, date)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	out := map[string]slotView{}
	for period, s := range slots {
		out[strconv.Itoa(period)] = viewOf(s)
	}
	a.json(w, http.StatusOK, map[string]any{"date": date.Format("2006-01-02"), "periods": out})
}

func (a *API) handleTimetableWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := a.dateParam(w, r)
	if !ok {
		return
	}
	// понедельник недели, в которую попадает дата
	monday := date
	for monday.Weekday() != time.Monday {
		monday = monday.AddDate(0, 0, -1)
	}

	ctx := ctxutil.WithOp(r.Context(), "timetable_week")
	days := map[string]any{}
	for i := 0; i < 5; i++ {
		d := monday.AddDate(0, 0, i)
		slots, err := a.Resolver.ResolveDay(ctx, d)
		if err != nil {
			a.fail(ctx, w, err)
			return
		}
		periods := map[string]slotView{}
		for period, s := range slots {
			periods[strconv.Itoa(period)] = viewOf(s)
		}
		days[d.Format("2006-01-02")] = periods
	}
	a.json(w, http.StatusOK, map[string]any{"monday": monday.Format("2006-01-02"), "days": days})
}

func (a *API) handleTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := ctxutil.WithOp(r.Context(), "timetable_templates")
	days := models.SchoolDays()
	if raw := r.URL.Query().Get("day"); raw != "" {
		days = nil
		for _, d := range models.SchoolDays() {
			if string(d) == raw {
				days = []models.Weekday{d}
				break
			}
		}
		if days == nil {
			a.badRequest(w, "bad day")
			return
		}
	}
	out := map[string][]slotView{}
	for _, d := range days {
		slots, err := a.Slots.TemplatesByDay(ctx, d)
		if err != nil {
			a.fail(ctx, w, err)
			return
		}
		views := make([]slotView, 0, len(slots))
		for i := range slots {
			views = append(views, viewOf(&slots[i]))
		}
		out[string(d)] = views
	}
	a.json(w, http.StatusOK, out)
}

func (a *API) handleLessonStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SlotID int64  `json:"slot_id"`
		Date   string `json:"date"`
		Status string `json:"status"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, a.Location)
	if err != nil {
		a.badRequest(w, "bad date")
		return
	}
	if req.Status != models.LessonCancelled && req.Status != models.LessonMoved {
		a.badRequest(w, "status must be cancelled or moved")
		return
	}

	ctx := ctxutil.WithOp(r.Context(), "lesson_status")
	slot, err := a.Lifecycle.SetStatus(ctx, req.SlotID, date, req.Status)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.Notifier.LessonStatusChanged(ctx, slot, date, req.Status)
	a.json(w, http.StatusOK, viewOf(slot))
}

func (a *API) handleLessonUncancel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OverrideID int64 `json:"override_id"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "lesson_uncancel")

	// строку читаем до удаления, чтобы было что показать в уведомлении
	slot, err := a.Slots.SlotByID(ctx, req.OverrideID)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if err := a.Lifecycle.ClearOverride(ctx, req.OverrideID); err != nil {
		a.fail(ctx, w, err)
		return
	}
	if slot != nil && slot.Date != nil {
		a.Notifier.LessonRestored(ctx, slot, *slot.Date)
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}

// ----- оценивание -----

func (a *API) handleAssessmentList(w http.ResponseWriter, r *http.Request) {
	ctx := ctxutil.WithOp(r.Context(), "assessment_list")
	list, err := a.Perf.ListAssessments(ctx)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, list)
}

func (a *API) handleAssessmentCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type         string    `json:"type"`
		Description  *string   `json:"description"`
		Date         string    `json:"date"`
		SubjectID    *int64    `json:"subject_id"`
		ClassID      *int64    `json:"class_id"`
		CourseID     *int64    `json:"course_id"`
		GradeScaleID *int64    `json:"grade_scale_id"`
		MaxOpPoints  float64   `json:"max_op_points"`
		Tasks        []float64 `json:"tasks"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, a.Location)
	if err != nil {
		a.badRequest(w, "bad date")
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_create")
	id, err := a.Perf.CreateAssessment(ctx, models.PerformanceQuery{
		Type:         req.Type,
		Description:  req.Description,
		Date:         date,
		SubjectID:    req.SubjectID,
		ClassID:      req.ClassID,
		CourseID:     req.CourseID,
		GradeScaleID: req.GradeScaleID,
		MaxOpPoints:  req.MaxOpPoints,
	}, req.Tasks)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleScore(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	studentID, err := strconv.ParseInt(r.URL.Query().Get("student_id"), 10, 64)
	if err != nil {
		a.badRequest(w, "bad student_id")
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_score")
	res, err := a.Scoring.ScoreStudent(ctx, assessmentID, studentID)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if res == nil {
		// не настроено (нет шкалы/заданий) — оценки нет, это не ошибка
		a.json(w, http.StatusOK, map[string]any{"score": nil})
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *API) handleScoreUpdate(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		StudentID int64              `json:"student_id"`
		OpPoints  *float64           `json:"op_points"`
		ZpPoints  *float64           `json:"zp_points"`
		Tasks     map[string]float64 `json:"tasks"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	upd := scoring.ScoreUpdate{OpPoints: req.OpPoints, ZpPoints: req.ZpPoints}
	if len(req.Tasks) > 0 {
		upd.TaskPoints = make(map[int]float64, len(req.Tasks))
		for k, v := range req.Tasks {
			n, err := strconv.Atoi(k)
			if err != nil || n < 1 {
				a.badRequest(w, "bad task number "+k)
				return
			}
			upd.TaskPoints[n] = v
		}
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_scores")
	res, err := a.Scoring.UpdateStudentScores(ctx, assessmentID, req.StudentID, upd)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if res == nil {
		a.json(w, http.StatusOK, map[string]any{"score": nil})
		return
	}
	a.json(w, http.StatusOK, res)
}

func (a *API) handleOverride(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		StudentID int64    `json:"student_id"`
		Grade     *float64 `json:"grade"`
		Comment   string   `json:"comment"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_override")
	if err := a.Scoring.SetGradeOverride(ctx, assessmentID, req.StudentID, req.Grade, req.Comment); err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleAssessmentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_delete")
	q, err := a.Perf.AssessmentByID(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if q == nil {
		a.fail(ctx, w, scoring.ErrAssessmentNotFound)
		return
	}
	if err := a.Perf.DeleteAssessment(ctx, id); err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.Audit.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "performance_queries",
		RecordID:  &id,
		FieldName: "delete",
		OldValue:  q.Type,
	})
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleAssignScale(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		GradeScaleID *int64 `json:"grade_scale_id"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_scale")
	q, err := a.Perf.AssessmentByID(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if q == nil {
		a.fail(ctx, w, scoring.ErrAssessmentNotFound)
		return
	}
	if req.GradeScaleID != nil {
		sc, err := a.Perf.ScaleByID(ctx, *req.GradeScaleID)
		if err != nil {
			a.fail(ctx, w, err)
			return
		}
		if sc == nil {
			a.badRequest(w, "unknown grade scale")
			return
		}
	}
	if err := a.Perf.AssignScale(ctx, id, req.GradeScaleID); err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.Audit.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "performance_queries",
		RecordID:  &id,
		FieldName: "grade_scale_id",
		OldValue:  idValue(q.GradeScaleID),
		NewValue:  idValue(req.GradeScaleID),
	})
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}

// ----- справочники -----

func (a *API) handleScaleList(w http.ResponseWriter, r *http.Request) {
	ctx := ctxutil.WithOp(r.Context(), "scale_list")
	list, err := a.Perf.ListScales(ctx)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, list)
}

func (a *API) handleScaleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Definition string `json:"definition"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Definition = strings.TrimSpace(req.Definition)
	if req.Name == "" || req.Definition == "" {
		a.badRequest(w, "name and definition required")
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "scale_create")
	id, err := a.Perf.CreateScale(ctx, req.Name, req.Definition)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.Audit.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "grade_scales",
		RecordID:  &id,
		FieldName: "create",
		NewValue:  req.Name,
	})
	a.json(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleTeacherCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Short string `json:"short"`
		Name  string `json:"name"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Short) == "" && strings.TrimSpace(req.Name) == "" {
		a.badRequest(w, "short or name required")
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "teacher_create")
	id, err := a.Catalog.CreateTeacher(ctx, req.Short, req.Name)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.Audit.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "teachers",
		RecordID:  &id,
		FieldName: "create",
		NewValue:  strings.TrimSpace(req.Short + " " + req.Name),
	})
	a.json(w, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleClassList(w http.ResponseWriter, r *http.Request) {
	ctx := ctxutil.WithOp(r.Context(), "class_list")
	list, err := a.Catalog.ListClasses(ctx)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, list)
}

func (a *API) handleClassStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "class_students")
	students, err := a.Catalog.StudentsByClass(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, students)
}

func (a *API) handleCourseStudents(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "course_students")
	students, err := a.Catalog.StudentsByCourse(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, students)
}

func (a *API) handleSubjectList(w http.ResponseWriter, r *http.Request) {
	ctx := ctxutil.WithOp(r.Context(), "subject_list")
	list, err := a.Catalog.ListSubjects(ctx)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, list)
}

func (a *API) handleSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "subject_get")
	sub, err := a.Catalog.SubjectByID(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if sub == nil {
		metrics.HandlerErrors.Inc()
		http.Error(w, "subject not found", http.StatusNotFound)
		return
	}
	a.json(w, http.StatusOK, sub)
}

func (a *API) handleStudentSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "student_summary")
	st, err := a.Catalog.StudentByID(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	if st == nil {
		metrics.HandlerErrors.Inc()
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	sum, err := a.Capture.Summary(ctx, id)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	var missed float64
	if a.LessonMinutes > 0 {
		missed = float64(sum.AbsentMinutes) / float64(a.LessonMinutes)
	}
	a.json(w, http.StatusOK, map[string]any{
		"student":        st,
		"summary":        sum,
		"missed_lessons": missed,
	})
}

func (a *API) handleImport(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_import")
	body, err := io.ReadAll(io.LimitReader(r.Body, 4<<20))
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	n, err := a.Scoring.Import(ctx, assessmentID, string(body))
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]int{"imported": n})
}

func (a *API) handleTemplateCSV(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_csv")
	csv, err := a.Scoring.TemplateCSV(ctx, assessmentID)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="import_template.csv"`)
	_, _ = w.Write([]byte(csv))
}

func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	assessmentID, ok := a.idParam(w, r)
	if !ok {
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "assessment_export")
	rep, err := a.Scoring.BuildReport(ctx, assessmentID)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	wb, err := export.PerformanceWorkbook(rep)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.PerformanceFilename(rep)+`"`)
	if err := wb.File.Write(w); err != nil {
		a.Log.Warnw("xlsx write failed", "err", err)
	}
}

// ----- фиксация урока -----

func (a *API) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string  `json:"date"`
		Period   int     `json:"period"`
		Subject  *string `json:"subject"`
		Students []struct {
			StudentID   int64    `json:"student_id"`
			Present     bool     `json:"present"`
			LateMinutes int      `json:"late_minutes"`
			Grade       *float64 `json:"grade"`
			Comment     string   `json:"comment"`
		} `json:"students"`
	}
	if !a.decode(w, r, &req) {
		return
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, a.Location)
	if err != nil {
		a.badRequest(w, "bad date")
		return
	}
	items := make([]db.StudentCapture, 0, len(req.Students))
	for _, s := range req.Students {
		items = append(items, db.StudentCapture{
			StudentID:   s.StudentID,
			Present:     s.Present,
			LateMinutes: s.LateMinutes,
			Grade:       s.Grade,
			Comment:     s.Comment,
		})
	}
	ctx := ctxutil.WithOp(r.Context(), "capture")
	if err := a.Capture.SaveLesson(ctx, date, req.Period, req.Subject, items, a.LessonMinutes); err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "saved": len(items)})
}

func (a *API) handleCaptureRead(w http.ResponseWriter, r *http.Request) {
	date, ok := a.dateParam(w, r)
	if !ok {
		return
	}
	period, err := strconv.Atoi(r.URL.Query().Get("period"))
	if err != nil || period < 1 {
		a.badRequest(w, "bad period")
		return
	}
	ctx := ctxutil.WithOp(r.Context(), "capture_read")
	attendance, err := a.Capture.AttendanceForLesson(ctx, date, period)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	grades, err := a.Capture.GradesForLesson(ctx, date, period)
	if err != nil {
		a.fail(ctx, w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"date":       date.Format("2006-01-02"),
		"period":     period,
		"attendance": attendance,
		"grades":     grades,
	})
}

// ----- helpers -----

func idValue(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func (a *API) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		a.badRequest(w, "bad json: "+err.Error())
		return false
	}
	return true
}

func (a *API) badRequest(w http.ResponseWriter, msg string) {
	metrics.HandlerErrors.Inc()
	http.Error(w, msg, http.StatusBadRequest)
}

func (a *API) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		a.badRequest(w, "bad id")
		return 0, false
	}
	return id, true
}

func (a *API) dateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().In(a.Location), true
	}
	d, err := time.ParseInLocation("2006-01-02", raw, a.Location)
	if err != nil {
		a.badRequest(w, "bad date")
		return time.Time{}, false
	}
	return d, true
}

func (a *API) fail(ctx context.Context, w http.ResponseWriter, err error) {
	metrics.HandlerErrors.Inc()
	switch {
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, scoring.ErrAssessmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, schedule.ErrTemplateProtected):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, scoring.ErrEmptyImport):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		observability.CaptureErr(err)
		op, _ := ctxutil.Op(ctx)
		a.Log.Errorw("handler error", "op", op, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
