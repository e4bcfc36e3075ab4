package schedule

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/models"
)

var (
	// ErrNotFound — строка расписания с таким id отсутствует.
	ErrNotFound = errors.New("timetable entry not found")
	// ErrTemplateProtected — попытка удалить шаблонную строку через
	// восстановление занятия. Отказ явный, чтобы вызывающий отличал
	// "нечего откатывать" от порчи шаблона.
	ErrTemplateProtected = errors.New("template entry is protected")
)

// Lifecycle — отмена/восстановление занятия на конкретную дату.
// Шаблон недели никогда не мутирует: статус на дату живёт в отдельной
// строке-переопределении (copy-on-write).
type Lifecycle struct {
	store SlotStore
	rec   audit.Recorder

	// Сериализует find-or-create, чтобы конкурентные отмены одного слота
	// не наплодили дублей переопределения.
	mu sync.Mutex
}

func NewLifecycle(store SlotStore, rec audit.Recorder) *Lifecycle {
	return &Lifecycle{store: store, rec: rec}
}

// SetStatus — выставить статус занятия на дату date. slotID обычно указывает
// на шаблонную строку; переопределение ищется по 4-компонентному ключу и
// обновляется на месте, иначе вставляется полная копия шаблона с датой и
// статусом. Повторный вызов с той же датой идемпотентен (та же строка).
func (l *Lifecycle) SetStatus(ctx context.Context, slotID int64, date time.Time, status string) (*models.TimetableSlot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var effective *models.TimetableSlot
	var oldStatus string

	err := l.store.InTx(ctx, func(s SlotStore) error {
		tmpl, err := s.SlotByID(ctx, slotID)
		if err != nil {
			return err
		}
		if tmpl == nil {
			return ErrNotFound
		}

		existing, err := s.FindOverride(ctx, tmpl.Key(date))
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Status != nil {
				oldStatus = *existing.Status
			}
			if err := s.UpdateSlotStatus(ctx, existing.ID, status); err != nil {
				return err
			}
			existing.Status = &status
			effective = existing
			return nil
		}

		override := *tmpl
		override.ID = 0
		d := date
		override.Date = &d
		override.Status = &status
		id, err := s.InsertSlot(ctx, override)
		if err != nil {
			return err
		}
		override.ID = id
		effective = &override
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.rec.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "timetable",
		RecordID:  &effective.ID,
		FieldName: "status",
		OldValue:  oldStatus,
		NewValue:  status,
		Comment:   strPtr(fmt.Sprintf("date=%s period=%d", date.Format("2006-01-02"), effective.Period)),
	})
	return effective, nil
}

// ClearOverride — удалить переопределение (восстановить занятие по шаблону).
// Для шаблонной строки (date IS NULL) — ErrTemplateProtected.
func (l *Lifecycle) ClearOverride(ctx context.Context, overrideID int64) error {
	var removed models.TimetableSlot

	err := l.store.InTx(ctx, func(s SlotStore) error {
		slot, err := s.SlotByID(ctx, overrideID)
		if err != nil {
			return err
		}
		if slot == nil {
			return ErrNotFound
		}
		if slot.IsTemplate() {
			return ErrTemplateProtected
		}
		removed = *slot
		return s.DeleteSlot(ctx, overrideID)
	})
	if err != nil {
		return err
	}

	old := ""
	if removed.Status != nil {
		old = *removed.Status
	}
	l.rec.Record(ctx, audit.Entry{
		Action:    audit.ActionManual,
		TableName: "timetable",
		RecordID:  &overrideID,
		FieldName: "status",
		OldValue:  old,
		NewValue:  "",
		Comment:   strPtr("override removed; date=" + removed.Date.Format("2006-01-02") + " period=" + strconv.Itoa(removed.Period)),
	})
	return nil
}

func strPtr(s string) *string { return &s }
