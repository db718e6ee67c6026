package reservation

import (
	"context"
	"time"
)

type StubRepository struct {
	data map[string]Reservation
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Reservation{}}
}

func (s *StubRepository) Store(ctx context.Context, r Reservation) (Reservation, error) {
	s.data[r.ID] = r
	return r, nil
}

func (s *StubRepository) StoreChecked(ctx context.Context, r Reservation) (Reservation, error) {
	all, _ := s.FindAll(ctx)
	if conflicts(r, all) {
		return Reservation{}, ErrConflict
	}
	return s.Store(ctx, r)
}

func (s *StubRepository) FindAll(ctx context.Context) ([]Reservation, error) {
	result := make([]Reservation, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, r)
	}
	return result, nil
}

func (s *StubRepository) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]Reservation, error) {
	var result []Reservation
	window := Reservation{StartTime: from, Minutes: int(to.Sub(from).Minutes())}.Interval()
	for _, r := range s.data {
		if r.Interval().Overlaps(window) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (s *StubRepository) FindByID(ctx context.Context, id string) (*Reservation, error) {
	if r, ok := s.data[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *StubRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepository) Reset() {
	s.data = map[string]Reservation{}
}
