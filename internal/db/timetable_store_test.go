//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/Spok95/school-planner/internal/audit"
	"github.com/Spok95/school-planner/internal/db"
	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/schedule"
	"github.com/Spok95/school-planner/internal/testutil/testdb"
)

func TestTimetableStore_ResolveAndLifecycle(t *testing.T) {
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

	slots := db.NewTimetableStore(h.DB)
	resolver := schedule.NewResolver(slots, schedule.DefaultPattern())

	// 2026-03-02 — понедельник; в сиде на слот 1 понедельника шаблон 5F/PFAG
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slot, err := resolver.Resolve(ctx, monday, 1)
	if err != nil {
		t.Fatal(err)
	}
	if slot == nil || !slot.IsTemplate() {
		t.Fatalf("слот 1 понедельника занят шаблоном: %#v", slot)
	}

	// сдвоенный урок наследуется на следующий слот сетки
	inherited, err := resolver.Resolve(ctx, monday, 2)
	if err != nil {
		t.Fatal(err)
	}
	if inherited == nil || inherited.ID != slot.ID {
		t.Fatalf("слот 2 наследует сдвоенный %d: %#v", slot.ID, inherited)
	}

	// отмена на дату: появляется строка-переопределение
	lc := schedule.NewLifecycle(slots, audit.NewBestEffort(db.NewChangeLogStore(h.DB), testLogger(t)))
	ovr, err := lc.SetStatus(ctx, slot.ID, monday, models.LessonCancelled)
	if err != nil {
		t.Fatal(err)
	}
	if ovr.ID == slot.ID || ovr.Date == nil || !ovr.IsCancelled() {
		t.Fatalf("переопределение: %#v", ovr)
	}

	// точная дата перекрывает шаблон
	got, err := resolver.Resolve(ctx, monday, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != ovr.ID {
		t.Fatalf("точная дата побеждает: %#v", got)
	}

	// повторная отмена использует ту же строку
	again, err := lc.SetStatus(ctx, slot.ID, monday, models.LessonMoved)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != ovr.ID {
		t.Fatalf("дубль переопределения: %d != %d", again.ID, ovr.ID)
	}

	// переопределение прошлой даты тянется на следующую неделю
	next := monday.AddDate(0, 0, 7)
	carried, err := resolver.Resolve(ctx, next, 1)
	if err != nil {
		t.Fatal(err)
	}
	if carried == nil || carried.ID != ovr.ID {
		t.Fatalf("прошлое переопределение тянется: %#v", carried)
	}

	// восстановление: строка удалена, шаблон снова в силе
	if err := lc.ClearOverride(ctx, ovr.ID); err != nil {
		t.Fatal(err)
	}
	restored, err := resolver.Resolve(ctx, monday, 1)
	if err != nil {
		t.Fatal(err)
	}
	if restored == nil || restored.ID != slot.ID {
		t.Fatalf("после восстановления действует шаблон: %#v", restored)
	}

	// шаблон через восстановление не удалить
	if err := lc.ClearOverride(ctx, slot.ID); err != schedule.ErrTemplateProtected {
		t.Fatalf("ожидали ErrTemplateProtected, получили %v", err)
	}
}
