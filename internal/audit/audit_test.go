package audit

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

type failingWriter struct{ calls int }

func (w *failingWriter) WriteChange(context.Context, Entry) error {
	w.calls++
	return errors.New("disk on fire")
}

// Ошибка журнала не должна всплывать: запись best-effort.
func TestBestEffort_SwallowsWriterError(t *testing.T) {
	w := &failingWriter{}
	rec := NewBestEffort(w, zaptest.NewLogger(t).Sugar())

	rec.Record(context.Background(), Entry{Action: ActionManual, TableName: "timetable"})
	if w.calls != 1 {
		t.Fatalf("writer вызывается ровно один раз: %d", w.calls)
	}
}
