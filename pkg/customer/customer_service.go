package customer

import (
	"context"
	"errors"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound  = errors.New("customer not found")
	ErrForbidden = errors.New("admin authorization required")
)

type Service interface {
	RecordBooking(ctx context.Context, uid string, name string, reservedAt time.Time) error
	// ListLedger returns the full customer ledger; admin only.
	ListLedger(ctx context.Context) ([]Customer, error)
	// AdjustTickets changes the prepaid ticket balance by delta; admin only.
	AdjustTickets(ctx context.Context, uid string, delta int) error
}

type ServiceImpl struct {
	repo Repository
	bus  *bus.Bus
}

func NewService(repo Repository, b *bus.Bus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: b}
}

func (s *ServiceImpl) RecordBooking(ctx context.Context, uid string, name string, reservedAt time.Time) error {
	if err := s.repo.UpsertOnBooking(ctx, uid, name, reservedAt); err != nil {
		return err
	}
	s.publishChange(ctx, uid)
	return nil
}

func (s *ServiceImpl) ListLedger(ctx context.Context) ([]Customer, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrForbidden
	}
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) AdjustTickets(ctx context.Context, uid string, delta int) error {
	if !auth.IsAdmin(ctx) {
		return ErrForbidden
	}
	found, err := s.repo.AdjustTickets(ctx, uid, delta)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	s.publishChange(ctx, uid)
	return nil
}

func (s *ServiceImpl) publishChange(ctx context.Context, uid string) {
	if err := s.bus.Publish(bus.NewEvent(ctx, bus.TopicCustomers, bus.CustomersChanged{CustomerUID: uid})); err != nil {
		log.Errorf("failed to publish customer change: %v", err)
	}
}
