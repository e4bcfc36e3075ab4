// Package audit — журнал изменений (change_log). Запись в журнал никогда
// не считается частью основной операции: ошибка записи логируется и глотается.
package audit

import (
	"context"

	"go.uber.org/zap"
)

// Действия журнала.
const (
	ActionManual = "manual"
	ActionImport = "import"
)

// Entry — одна запись журнала изменений.
type Entry struct {
	Action    string
	TableName string
	RecordID  *int64
	FieldName string
	OldValue  string
	NewValue  string
	Comment   *string
}

// Recorder — то, что движки зовут после каждой мутации.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

// Writer — хранилище журнала (реализуется в internal/db).
type Writer interface {
	WriteChange(ctx context.Context, e Entry) error
}

// BestEffort оборачивает Writer в Recorder: ошибки уходят в лог и Sentry-слой
// вызывающего, но не наружу.
type BestEffort struct {
	w   Writer
	log *zap.SugaredLogger
}

func NewBestEffort(w Writer, log *zap.SugaredLogger) *BestEffort {
	return &BestEffort{w: w, log: log}
}

func (b *BestEffort) Record(ctx context.Context, e Entry) {
	if err := b.w.WriteChange(ctx, e); err != nil {
		b.log.Warnw("change_log write failed", "table", e.TableName, "action", e.Action, "err", err)
	}
}

// Discard — пустой Recorder для тестов и необязательных путей.
type Discard struct{}

func (Discard) Record(context.Context, Entry) {}
