package openslot

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

type slotRequestDTO struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type OpenSlotDTO struct {
	ID        string    `json:"id"`
	SlotStart time.Time `json:"slotStart"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) decodeCell(w http.ResponseWriter, r *http.Request) (time.Time, string, bool) {
	var dto slotRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return time.Time{}, "", false
	}
	day, err := h.service.ParseDay(dto.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return time.Time{}, "", false
	}
	return day, dto.Time, true
}

// Open marks a calendar cell bookable (admin only).
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	day, row, ok := h.decodeCell(w, r)
	if !ok {
		return
	}

	log.Debugf("Opening slot %s %s", day.Format("2006-01-02"), row)
	slot, err := h.service.Open(r.Context(), day, row)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(OpenSlotDTO{ID: slot.ID, SlotStart: slot.SlotStart}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Close removes the open mark from a calendar cell (admin only).
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	day, row, ok := h.decodeCell(w, r)
	if !ok {
		return
	}

	log.Debugf("Closing slot %s %s", day.Format("2006-01-02"), row)
	if err := h.service.Close(r.Context(), day, row); err != nil {
		if errors.Is(err, ErrForbidden) {
			http.Error(w, "admin only", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
