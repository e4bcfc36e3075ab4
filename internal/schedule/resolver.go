// Package schedule — разрешение расписания: какой урок занимает слот
// (дата, номер урока) с учётом шаблона, дат-переопределений и сдвоенных
// уроков, плюс жизненный цикл отмены/восстановления занятия.
package schedule

import (
	"context"
	"time"

	"github.com/Spok95/school-planner/internal/metrics"
	"github.com/Spok95/school-planner/internal/models"
)

// SlotStore — контракт хранилища строк расписания. Методы поиска возвращают
// (nil, nil), если строки нет; ошибка означает отказ хранилища и
// пробрасывается наверх без частичного результата.
type SlotStore interface {
	// SlotByDateAndPeriod — строка с точным совпадением даты и урока.
	// При нескольких кандидатах возвращается строка с наименьшим id.
	SlotByDateAndPeriod(ctx context.Context, date time.Time, period int) (*models.TimetableSlot, error)
	// LatestPastOverride — ближайшее прошлое переопределение: date < before,
	// совпадают день недели и урок, сортировка по дате по убыванию.
	LatestPastOverride(ctx context.Context, before time.Time, day models.Weekday, period int) (*models.TimetableSlot, error)
	// TemplateSlot — шаблонная строка (date IS NULL) для дня недели и урока.
	TemplateSlot(ctx context.Context, day models.Weekday, period int) (*models.TimetableSlot, error)

	SlotByID(ctx context.Context, id int64) (*models.TimetableSlot, error)
	// FindOverride — строка-переопределение по NULL-aware 4-компонентному ключу.
	FindOverride(ctx context.Context, key models.SlotKey) (*models.TimetableSlot, error)
	InsertSlot(ctx context.Context, slot models.TimetableSlot) (int64, error)
	UpdateSlotStatus(ctx context.Context, id int64, status string) error
	DeleteSlot(ctx context.Context, id int64) error

	// InTx выполняет fn в одной транзакции хранилища; любая ошибка внутри
	// откатывает все записи fn.
	InTx(ctx context.Context, fn func(SlotStore) error) error
}

// Resolver определяет действующее занятие для слота расписания.
type Resolver struct {
	store   SlotStore
	pattern models.SchedulePattern
}

func NewResolver(store SlotStore, pattern models.SchedulePattern) *Resolver {
	return &Resolver{store: store, pattern: pattern}
}

// Resolve — действующее занятие для даты и урока; nil без ошибки — пустой слот.
//
// Правила в строгом порядке приоритета, побеждает первое совпадение:
//  1. строка с точной датой;
//  2. ближайшее прошлое переопределение того же дня недели и урока —
//     переопределение (отмена, смена кабинета) сделанное на прошедшую дату
//     сознательно "тянется" на все будущие даты без собственной строки;
//  3. шаблонная строка;
//  4. наследование сдвоенного урока: предыдущий по сетке слот того же дня
//     разрешился в строку с is_double — она занимает и этот слот.
func (r *Resolver) Resolve(ctx context.Context, date time.Time, period int) (*models.TimetableSlot, error) {
	day, ok := models.WeekdayOf(date)
	if !ok {
		return nil, nil
	}
	if !r.pattern.HasPeriod(period) {
		return r.lookup(ctx, date, day, period)
	}
	// Правило 4 требует результата предыдущего слота того же прохода,
	// поэтому идём по сетке с начала дня.
	var prev *models.TimetableSlot
	for _, p := range r.pattern.Periods() {
		slot, err := r.lookup(ctx, date, day, p)
		if err != nil {
			return nil, err
		}
		if slot == nil && prev != nil && prev.IsDouble && prev.Weekday == day {
			metrics.ResolverHits.WithLabelValues("double").Inc()
			slot = prev
		}
		if p == period {
			return slot, nil
		}
		prev = slot
	}
	return nil, nil
}

// ResolveDay — все занятые слоты даты одним проходом: урок -> строка.
func (r *Resolver) ResolveDay(ctx context.Context, date time.Time) (map[int]*models.TimetableSlot, error) {
	out := make(map[int]*models.TimetableSlot)
	day, ok := models.WeekdayOf(date)
	if !ok {
		return out, nil
	}
	var prev *models.TimetableSlot
	for _, p := range r.pattern.Periods() {
		slot, err := r.lookup(ctx, date, day, p)
		if err != nil {
			return nil, err
		}
		if slot == nil && prev != nil && prev.IsDouble && prev.Weekday == day {
			metrics.ResolverHits.WithLabelValues("double").Inc()
			slot = prev
		}
		if slot != nil {
			out[p] = slot
		}
		prev = slot
	}
	return out, nil
}

// lookup — правила 1-3 без наследования сдвоенных уроков.
func (r *Resolver) lookup(ctx context.Context, date time.Time, day models.Weekday, period int) (*models.TimetableSlot, error) {
	metrics.ResolverLookups.Inc()

	slot, err := r.store.SlotByDateAndPeriod(ctx, date, period)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		metrics.ResolverHits.WithLabelValues("exact").Inc()
		return slot, nil
	}

	slot, err = r.store.LatestPastOverride(ctx, date, day, period)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		metrics.ResolverHits.WithLabelValues("past").Inc()
		return slot, nil
	}

	slot, err = r.store.TemplateSlot(ctx, day, period)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		metrics.ResolverHits.WithLabelValues("template").Inc()
	}
	return slot, nil
}
