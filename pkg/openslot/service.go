package openslot

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/internal/utils"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var ErrForbidden = errors.New("admin authorization required")

type Service interface {
	// Open marks the (day, row) cell bookable; admin only.
	Open(ctx context.Context, day time.Time, row string) (OpenSlot, error)
	// Close removes the open mark from the (day, row) cell; admin only.
	Close(ctx context.Context, day time.Time, row string) error
	FindBetween(ctx context.Context, from time.Time, to time.Time) ([]OpenSlot, error)
	// ParseDay resolves a client-sent YYYY-MM-DD string to the studio-local
	// calendar day.
	ParseDay(value string) (time.Time, error)
}

type ServiceImpl struct {
	repo    Repository
	catalog *schedule.Catalog
	clock   utils.Clock
	bus     *bus.Bus
}

func NewService(repo Repository, catalog *schedule.Catalog, b *bus.Bus) *ServiceImpl {
	return &ServiceImpl{repo: repo, catalog: catalog, clock: utils.SystemClock{}, bus: b}
}

func (s *ServiceImpl) ParseDay(value string) (time.Time, error) {
	return s.catalog.ParseDay(value)
}

func (s *ServiceImpl) Open(ctx context.Context, day time.Time, row string) (OpenSlot, error) {
	if !auth.IsAdmin(ctx) {
		return OpenSlot{}, ErrForbidden
	}
	start, err := s.catalog.At(day, row)
	if err != nil {
		return OpenSlot{}, err
	}
	slot := OpenSlot{
		ID:        uuid.NewString(),
		SlotStart: start,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Open(ctx, slot); err != nil {
		return OpenSlot{}, err
	}
	s.publish(ctx, start, false)
	return slot, nil
}

func (s *ServiceImpl) Close(ctx context.Context, day time.Time, row string) error {
	if !auth.IsAdmin(ctx) {
		return ErrForbidden
	}
	start, err := s.catalog.At(day, row)
	if err != nil {
		return err
	}
	if _, err := s.repo.Close(ctx, start); err != nil {
		return err
	}
	s.publish(ctx, start, true)
	return nil
}

func (s *ServiceImpl) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]OpenSlot, error) {
	return s.repo.FindBetween(ctx, from, to)
}

func (s *ServiceImpl) publish(ctx context.Context, start time.Time, closed bool) {
	if err := s.bus.Publish(bus.NewEvent(ctx, bus.TopicOpenSlots, bus.OpenSlotsChanged{SlotStart: start, Closed: closed})); err != nil {
		log.Errorf("failed to publish open slot change: %v", err)
	}
}
