package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/models"
)

// recordingAudit копит записи журнала для проверок.
type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func TestSetStatus_CreatesOverrideCopy(t *testing.T) {
	store := newFakeStore()
	room := "212"
	tmpl := store.add(models.TimetableSlot{
		Weekday: models.Monday, Period: 3, IsDouble: true,
		SubjectID: i64(1), ClassID: i64(2), Room: &room,
	})

	rec := &recordingAudit{}
	lc := NewLifecycle(store, rec)

	got, err := lc.SetStatus(context.Background(), tmpl.ID, monday, models.LessonCancelled)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID == tmpl.ID {
		t.Fatal("шаблон не должен мутировать: ожидали новую строку")
	}
	if got.Date == nil || !got.IsCancelled() {
		t.Fatalf("переопределение с датой и статусом: %#v", got)
	}
	// копия полная: предмет, класс, кабинет, сдвоенность
	if got.SubjectID == nil || *got.SubjectID != 1 || got.Room == nil || *got.Room != "212" || !got.IsDouble {
		t.Fatalf("неполная копия шаблона: %#v", got)
	}
	// шаблон остался без статуса
	orig, _ := store.SlotByID(context.Background(), tmpl.ID)
	if orig.Status != nil || orig.Date != nil {
		t.Fatalf("шаблон изменился: %#v", orig)
	}
	if len(rec.entries) != 1 || rec.entries[0].NewValue != models.LessonCancelled {
		t.Fatalf("журнал: %#v", rec.entries)
	}
}

func TestSetStatus_ReusesExistingOverride(t *testing.T) {
	store := newFakeStore()
	tmpl := store.add(models.TimetableSlot{Weekday: models.Monday, Period: 3, SubjectID: i64(1)})

	lc := NewLifecycle(store, audit.Discard{})

	first, err := lc.SetStatus(context.Background(), tmpl.ID, monday, models.LessonCancelled)
	if err != nil {
		t.Fatal(err)
	}
	second, err := lc.SetStatus(context.Background(), tmpl.ID, monday, models.LessonMoved)
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Fatalf("повторный вызов на ту же дату обновляет ту же строку: %d != %d", second.ID, first.ID)
	}
	if second.Status == nil || *second.Status != models.LessonMoved {
		t.Fatalf("статус не обновился: %#v", second)
	}
	if len(store.slots) != 2 {
		t.Fatalf("лишние строки: %d", len(store.slots))
	}
}

func TestSetStatus_UnknownSlot(t *testing.T) {
	lc := NewLifecycle(newFakeStore(), audit.Discard{})
	_, err := lc.SetStatus(context.Background(), 42, monday, models.LessonCancelled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
}

func TestClearOverride(t *testing.T) {
	store := newFakeStore()
	tmpl := store.add(models.TimetableSlot{Weekday: models.Monday, Period: 3, SubjectID: i64(1)})

	rec := &recordingAudit{}
	lc := NewLifecycle(store, rec)

	ovr, err := lc.SetStatus(context.Background(), tmpl.ID, monday, models.LessonCancelled)
	if err != nil {
		t.Fatal(err)
	}
	if err := lc.ClearOverride(context.Background(), ovr.ID); err != nil {
		t.Fatal(err)
	}
	// строка удалена, шаблон жив
	gone, _ := store.SlotByID(context.Background(), ovr.ID)
	if gone != nil {
		t.Fatal("переопределение не удалилось")
	}
	alive, _ := store.SlotByID(context.Background(), tmpl.ID)
	if alive == nil {
		t.Fatal("шаблон пропал")
	}
	if len(rec.entries) != 2 {
		t.Fatalf("две записи журнала (отмена и восстановление): %#v", rec.entries)
	}
}

func TestClearOverride_TemplateProtected(t *testing.T) {
	store := newFakeStore()
	tmpl := store.add(models.TimetableSlot{Weekday: models.Monday, Period: 3})

	lc := NewLifecycle(store, audit.Discard{})
	err := lc.ClearOverride(context.Background(), tmpl.ID)
	if !errors.Is(err, ErrTemplateProtected) {
		t.Fatalf("ожидали ErrTemplateProtected, получили %v", err)
	}
	if alive, _ := store.SlotByID(context.Background(), tmpl.ID); alive == nil {
		t.Fatal("шаблон удалён")
	}
}

func TestClearOverride_NotFound(t *testing.T) {
	lc := NewLifecycle(newFakeStore(), audit.Discard{})
	if err := lc.ClearOverride(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ожидали ErrNotFound, получили %v", err)
	}
}
