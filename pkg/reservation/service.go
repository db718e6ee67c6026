package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNotFound  = errors.New("reservation not found")
	ErrForbidden = errors.New("not allowed to cancel this reservation")
)

type Service interface {
	FindAll(ctx context.Context) ([]Reservation, error)
	FindBetween(ctx context.Context, from time.Time, to time.Time) ([]Reservation, error)
	// Cancel removes a reservation. Admin sessions may remove anything;
	// a customer session only its own reservations.
	Cancel(ctx context.Context, id string) (*Reservation, error)
}

type ServiceImpl struct {
	repo Repository
	bus  *bus.Bus
}

func NewService(repo Repository, b *bus.Bus) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: b}
}

func (s *ServiceImpl) FindAll(ctx context.Context) ([]Reservation, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) FindBetween(ctx context.Context, from time.Time, to time.Time) ([]Reservation, error) {
	return s.repo.FindBetween(ctx, from, to)
}

func (s *ServiceImpl) Cancel(ctx context.Context, id string) (*Reservation, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if !auth.IsAdmin(ctx) {
		session, err := auth.CurrentSession(ctx)
		if err != nil {
			return nil, fmt.Errorf("cancellation requires an identity: %w", err)
		}
		if target.CustomerUID == "" || target.CustomerUID != session.UID {
			log.Debugf("session %s may not cancel reservation %s", session.UID, id)
			return nil, ErrForbidden
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrNotFound
	}

	if err := s.bus.Publish(bus.NewEvent(ctx, bus.TopicReservations, bus.ReservationsChanged{
		ReservationID: target.ID,
		CustomerName:  target.CustomerName,
		Category:      string(target.Category),
		StartTime:     target.StartTime,
		Minutes:       target.Minutes,
		Deleted:       true,
	})); err != nil {
		log.Errorf("failed to publish reservation deletion: %v", err)
	}
	return target, nil
}
