package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Spok95/school-planner/internal/ctxutil"
	"github.com/Spok95/school-planner/internal/schedule"
	"github.com/Spok95/school-planner/internal/scoring"
)

func observedAPI() (*API, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return &API{Log: zap.New(core).Sugar()}, logs
}

func TestFail_StatusMapping(t *testing.T) {
	a, _ := observedAPI()
	cases := []struct {
		err  error
		code int
	}{
		{schedule.ErrNotFound, 404},
		{scoring.ErrAssessmentNotFound, 404},
		{schedule.ErrTemplateProtected, 409},
		{scoring.ErrEmptyImport, 400},
		{errors.New("boom"), 500},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		a.fail(context.Background(), rec, c.err)
		if rec.Code != c.code {
			t.Fatalf("%v: ожидали %d, получили %d", c.err, c.code, rec.Code)
		}
	}
}

func TestFail_LogsOperationName(t *testing.T) {
	a, logs := observedAPI()
	ctx := ctxutil.WithOp(context.Background(), "assessment_export")

	rec := httptest.NewRecorder()
	a.fail(ctx, rec, errors.New("boom"))

	entries := logs.FilterMessage("handler error").All()
	if len(entries) != 1 {
		t.Fatalf("ожидали одну запись, получили %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["op"] != "assessment_export" {
		t.Fatalf("имя операции в логе: %v", fields["op"])
	}
}

func TestIDValue(t *testing.T) {
	if idValue(nil) != "" {
		t.Fatal("nil — пустая строка")
	}
	v := int64(42)
	if idValue(&v) != "42" {
		t.Fatalf("получили %q", idValue(&v))
	}
}
