package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type submitDTO struct {
	CustomerName string `json:"customerName"`
	Category     string `json:"category"`
	Menu         string `json:"menu,omitempty"`
	Date         string `json:"date"`
	Time         string `json:"time"`
}

type blockDTO struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type confirmationDTO struct {
	ID         string    `json:"id"`
	MenuDetail string    `json:"menuDetail"`
	Date       time.Time `json:"date"`
	Duration   int       `json:"duration"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Submit places a customer booking.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto submitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := h.service.ParseDay(dto.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	log.Debugf("Booking submission: %s %s %s", dto.Category, dto.Date, dto.Time)
	res, err := h.service.Submit(r.Context(), SubmitRequest{
		CustomerName: dto.CustomerName,
		Category:     schedule.Category(dto.Category),
		MenuID:       dto.Menu,
		Day:          day,
		Row:          dto.Time,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNameRequired), errors.Is(err, ErrUnknownMenu):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, auth.ErrNoSession):
			http.Error(w, "session required", http.StatusUnauthorized)
		case errors.Is(err, ErrUnavailable):
			http.Error(w, "the requested slot is not available", http.StatusConflict)
		default:
			log.Errorf("booking submission failed: %v", err)
			http.Error(w, "booking failed", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(confirmationDTO{
		ID:         res.ID,
		MenuDetail: res.MenuDetail,
		Date:       res.StartTime,
		Duration:   res.Minutes,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Block inserts an admin rest block for one grid row.
func (h *Handler) Block(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto blockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := h.service.ParseDay(dto.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	log.Debugf("Admin block: %s %s", dto.Date, dto.Time)
	res, err := h.service.Block(r.Context(), day, dto.Time)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		log.Errorf("admin block failed: %v", err)
		http.Error(w, "block failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(confirmationDTO{
		ID:       res.ID,
		Date:     res.StartTime,
		Duration: res.Minutes,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
