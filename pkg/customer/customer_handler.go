package customer

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type CustomerDTO struct {
	UID            string     `json:"uid"`
	Name           string     `json:"name"`
	LastReservedAt *time.Time `json:"lastReservedAt,omitempty"`
	Tickets        int        `json:"tickets"`
}

type adjustTicketsDTO struct {
	Delta int `json:"delta"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetLedger returns all customers with their ticket balances (admin only).
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	customers, err := h.service.ListLedger(r.Context())
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		dto := CustomerDTO{UID: c.UID, Name: c.Name, Tickets: c.Tickets}
		if !c.LastReservedAt.IsZero() {
			t := c.LastReservedAt
			dto.LastReservedAt = &t
		}
		dtos = append(dtos, dto)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AdjustTickets applies a signed delta to a customer's ticket balance (admin only).
func (h *Handler) AdjustTickets(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	uid := vars["uid"]

	var dto adjustTicketsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Debugf("Adjusting tickets for customer %s by %d", uid, dto.Delta)
	if err := h.service.AdjustTickets(r.Context(), uid, dto.Delta); err != nil {
		switch {
		case errors.Is(err, ErrForbidden):
			http.Error(w, "admin only", http.StatusForbidden)
		case errors.Is(err, ErrNotFound):
			http.Error(w, "customer not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
