package customer

import (
	"context"
	"sort"
	"time"
)

type StubRepository struct {
	data map[string]Customer
}

func NewStubRepository() *StubRepository {
	return &StubRepository{data: map[string]Customer{}}
}

func (s *StubRepository) UpsertOnBooking(ctx context.Context, uid string, name string, reservedAt time.Time) error {
	existing, ok := s.data[uid]
	if !ok {
		s.data[uid] = Customer{UID: uid, Name: name, LastReservedAt: reservedAt}
		return nil
	}
	existing.Name = name
	existing.LastReservedAt = reservedAt
	s.data[uid] = existing
	return nil
}

func (s *StubRepository) AdjustTickets(ctx context.Context, uid string, delta int) (bool, error) {
	existing, ok := s.data[uid]
	if !ok {
		return false, nil
	}
	existing.Tickets += delta
	s.data[uid] = existing
	return true, nil
}

func (s *StubRepository) FindAll(ctx context.Context) ([]Customer, error) {
	result := make([]Customer, 0, len(s.data))
	for _, c := range s.data {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *StubRepository) FindByUID(ctx context.Context, uid string) (*Customer, error) {
	if c, ok := s.data[uid]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s *StubRepository) Reset() {
	s.data = map[string]Customer{}
}
