package app

import (
	"database/sql"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/internal/bus"
	"github.com/lessonbook/lessonbook/internal/config"
	"github.com/lessonbook/lessonbook/pkg/availability"
	"github.com/lessonbook/lessonbook/pkg/booking"
	"github.com/lessonbook/lessonbook/pkg/customer"
	"github.com/lessonbook/lessonbook/pkg/feed"
	"github.com/lessonbook/lessonbook/pkg/gcal"
	"github.com/lessonbook/lessonbook/pkg/openslot"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	AdminAuth *auth.AdminAuth
	Bus       *bus.Bus
	Catalog   *schedule.Catalog

	ReservationRepo    reservation.Repository
	ReservationService reservation.Service
	ReservationHandler *reservation.Handler

	CustomerRepo    customer.Repository
	CustomerService customer.Service
	CustomerHandler *customer.Handler

	OpenSlotRepo    openslot.Repository
	OpenSlotService openslot.Service
	OpenSlotHandler *openslot.Handler

	AvailabilityEngine  *availability.Engine
	AvailabilityService availability.Service
	AvailabilityHandler *availability.Handler

	BookingService booking.Service
	BookingHandler *booking.Handler

	FeedHandler *feed.Handler

	GoogleAuth   *gcal.Auth
	GoogleMirror *gcal.Mirror
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	catalog, err := schedule.NewCatalog(cfg.Studio)
	if err != nil {
		return nil, err
	}
	deps.Catalog = catalog

	deps.AdminAuth = auth.NewAdminAuth(cfg.Admin.Password)
	deps.Bus = bus.New()

	deps.ReservationRepo = reservation.NewRepository(db)
	deps.ReservationService = reservation.NewService(deps.ReservationRepo, deps.Bus)
	deps.ReservationHandler = reservation.NewHandler(deps.ReservationService)

	deps.CustomerRepo = customer.NewRepository(db)
	deps.CustomerService = customer.NewService(deps.CustomerRepo, deps.Bus)
	deps.CustomerHandler = customer.NewHandler(deps.CustomerService)

	deps.OpenSlotRepo = openslot.NewRepository(db)
	deps.OpenSlotService = openslot.NewService(deps.OpenSlotRepo, catalog, deps.Bus)
	deps.OpenSlotHandler = openslot.NewHandler(deps.OpenSlotService)

	policy, err := availability.PolicyFromName(cfg.Studio.Policy)
	if err != nil {
		return nil, err
	}
	deps.AvailabilityEngine = availability.NewEngine(catalog, policy)
	deps.AvailabilityService = availability.NewService(deps.AvailabilityEngine, catalog, deps.ReservationRepo, deps.OpenSlotRepo)
	deps.AvailabilityHandler = availability.NewHandler(deps.AvailabilityService)

	deps.BookingService = booking.NewService(catalog, deps.AvailabilityService, deps.ReservationRepo, deps.CustomerService, deps.Bus)
	deps.BookingHandler = booking.NewHandler(deps.BookingService)

	deps.FeedHandler = feed.NewHandler(deps.ReservationService, deps.CustomerService, deps.Bus)

	deps.GoogleAuth = gcal.NewAuth(db, cfg)
	deps.GoogleMirror = gcal.NewMirror(deps.GoogleAuth, db, cfg, catalog.Location())
	deps.GoogleMirror.Start(deps.Bus)

	return deps, nil
}
