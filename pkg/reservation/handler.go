package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type ReservationDTO struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	LessonType   string    `json:"lessonType"`
	MenuDetail   string    `json:"menuDetail,omitempty"`
	Duration     int       `json:"duration"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
	IsExternal   bool      `json:"isExternal"`
}

func toDTO(r Reservation) ReservationDTO {
	return ReservationDTO{
		ID:           r.ID,
		CustomerName: r.CustomerName,
		LessonType:   string(r.Category),
		MenuDetail:   r.MenuDetail,
		Duration:     r.Minutes,
		Date:         r.StartTime,
		CreatedAt:    r.CreatedAt,
		IsExternal:   r.External,
	}
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetAll lists reservations, optionally limited to a [from, to) window.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var (
		reservations []Reservation
		err          error
	)
	fromParam := r.URL.Query().Get("from")
	toParam := r.URL.Query().Get("to")
	if fromParam != "" && toParam != "" {
		from, fromErr := time.Parse(time.RFC3339, fromParam)
		to, toErr := time.Parse(time.RFC3339, toParam)
		if fromErr != nil || toErr != nil {
			http.Error(w, "from and to must be RFC3339 timestamps", http.StatusBadRequest)
			return
		}
		reservations, err = h.service.FindBetween(r.Context(), from, to)
	} else {
		reservations, err = h.service.FindAll(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]ReservationDTO, 0, len(reservations))
	for _, res := range reservations {
		dtos = append(dtos, toDTO(res))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Cancel deletes a reservation by id, subject to the service's authorization.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	log.Debugf("Cancelling reservation %s", id)
	_, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, "reservation not found", http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			http.Error(w, "not allowed", http.StatusForbidden)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
