package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/Spok95/school-planner/internal/models"
)

// fakeStore — SlotStore в памяти с той же семантикой выборок, что у БД.
type fakeStore struct {
	slots  []*models.TimetableSlot
	nextID int64
}

func newFakeStore() *fakeStore { return &fakeStore{nextID: 1} }

func (f *fakeStore) add(s models.TimetableSlot) *models.TimetableSlot {
	s.ID = f.nextID
	f.nextID++
	cp := s
	f.slots = append(f.slots, &cp)
	return &cp
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *fakeStore) SlotByDateAndPeriod(_ context.Context, date time.Time, period int) (*models.TimetableSlot, error) {
	var best *models.TimetableSlot
	for _, s := range f.slots {
		if s.Date == nil || !dateOnly(*s.Date).Equal(dateOnly(date)) || s.Period != period {
			continue
		}
		if best == nil || s.ID < best.ID {
			best = s
		}
	}
	return best, nil
}

func (f *fakeStore) LatestPastOverride(_ context.Context, before time.Time, day models.Weekday, period int) (*models.TimetableSlot, error) {
	var best *models.TimetableSlot
	for _, s := range f.slots {
		if s.Date == nil || s.Weekday != day || s.Period != period {
			continue
		}
		if !dateOnly(*s.Date).Before(dateOnly(before)) {
			continue
		}
		if best == nil || dateOnly(*s.Date).After(dateOnly(*best.Date)) {
			best = s
		}
	}
	return best, nil
}

func (f *fakeStore) TemplateSlot(_ context.Context, day models.Weekday, period int) (*models.TimetableSlot, error) {
	var best *models.TimetableSlot
	for _, s := range f.slots {
		if s.Date != nil || s.Weekday != day || s.Period != period {
			continue
		}
		if best == nil || s.ID < best.ID {
			best = s
		}
	}
	return best, nil
}

func (f *fakeStore) SlotByID(_ context.Context, id int64) (*models.TimetableSlot, error) {
	for _, s := range f.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindOverride(_ context.Context, key models.SlotKey) (*models.TimetableSlot, error) {
	for _, s := range f.slots {
		if key.Matches(s) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertSlot(_ context.Context, slot models.TimetableSlot) (int64, error) {
	return f.add(slot).ID, nil
}

func (f *fakeStore) UpdateSlotStatus(_ context.Context, id int64, status string) error {
	for _, s := range f.slots {
		if s.ID == id {
			st := status
			s.Status = &st
			return nil
		}
	}
	return errors.New("no such slot")
}

func (f *fakeStore) DeleteSlot(_ context.Context, id int64) error {
	for i, s := range f.slots {
		if s.ID == id {
			f.slots = append(f.slots[:i], f.slots[i+1:]...)
			return nil
		}
	}
	return errors.New("no such slot")
}

func (f *fakeStore) InTx(_ context.Context, fn func(SlotStore) error) error {
	return fn(f)
}
