package app

import (
	"github.com/gorilla/mux"
	"github.com/lessonbook/lessonbook/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Availability grid
	r.HandleFunc("/api/availability/week", deps.AvailabilityHandler.GetWeek).Methods("GET")

	// Booking
	r.HandleFunc("/api/booking", deps.BookingHandler.Submit).Methods("POST")
	r.HandleFunc("/api/booking/block", deps.BookingHandler.Block).Methods("POST")

	// Reservations
	r.HandleFunc("/api/reservation", deps.ReservationHandler.GetAll).Methods("GET")
	r.HandleFunc("/api/reservation/{id}", deps.ReservationHandler.Cancel).Methods("DELETE")

	// Customer ledger
	r.HandleFunc("/api/customer", deps.CustomerHandler.GetLedger).Methods("GET")
	r.HandleFunc("/api/customer/{uid}/tickets", deps.CustomerHandler.AdjustTickets).Methods("PUT")

	// Open slots (default-closed policy management)
	r.HandleFunc("/api/openslot", deps.OpenSlotHandler.Open).Methods("POST")
	r.HandleFunc("/api/openslot", deps.OpenSlotHandler.Close).Methods("DELETE")

	// Admin session
	r.HandleFunc("/api/admin/login", deps.AdminAuth.Login).Methods("POST")
	r.HandleFunc("/api/admin/logout", deps.AdminAuth.Logout).Methods("POST")

	// Live feed
	r.HandleFunc("/api/feed", deps.FeedHandler.HandleWebSocket)

	// Google Calendar integration
	r.HandleFunc("/api/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	r.HandleFunc("/api/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")
}
