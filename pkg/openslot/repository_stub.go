package openslot

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	data map[time.Time]OpenSlot
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[time.Time]OpenSlot{}}
}

func (s *StubRepository) Open(ctx context.Context, slot OpenSlot) error {
	key := slot.SlotStart.UTC()
	if _, ok := s.data[key]; !ok {
		s.data[key] = slot
	}
	return nil
}

func (s *StubRepository) Close(ctx context.Context, slotStart time.Time) (bool, error) {
	key := slotStart.UTC()
	if _, ok := s.data[key]; !ok {
		return false, nil
	}
	delete(s.data, key)
	return true, nil
}

func (s *StubRepository) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]OpenSlot, error) {
	var result []OpenSlot
	for key, slot := range s.data {
		if !key.Before(from.UTC()) && key.Before(to.UTC()) {
			result = append(result, slot)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SlotStart.Before(result[j].SlotStart) })
	return result, nil
}

func (s *StubRepository) Reset() {
	s.data = map[time.Time]OpenSlot{}
}
