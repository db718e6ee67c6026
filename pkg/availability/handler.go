package availability

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/lessonbook/lessonbook/internal/auth"
	"github.com/lessonbook/lessonbook/pkg/reservation"
	"github.com/lessonbook/lessonbook/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type CellDTO struct {
	Mark       string       `json:"mark"`
	Selectable bool         `json:"selectable"`
	ClassStart string       `json:"classStart,omitempty"`
	ClassName  string       `json:"className,omitempty"`
	Bookings   []BookingDTO `json:"bookings,omitempty"`
}

// BookingDTO is the per-row occupancy detail shown in the admin ledger.
type BookingDTO struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	LessonType   string `json:"lessonType"`
	IsExternal   bool   `json:"isExternal"`
}

type WeekDTO struct {
	Start string      `json:"start"`
	Days  []string    `json:"days"`
	Rows  []string    `json:"rows"`
	Cells [][]CellDTO `json:"cells"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetWeek returns the weekly availability grid for the caller's booking
// intent. Booking details inside cells are included for admin sessions only.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	start := time.Now()
	if param := r.URL.Query().Get("start"); param != "" {
		parsed, err := h.service.ParseDay(param)
		if err != nil {
			http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		start = parsed
	}

	category := schedule.Category(r.URL.Query().Get("category"))
	if category == "" {
		category = schedule.Private
	}
	if category != schedule.Private && category != schedule.Group {
		http.Error(w, "category must be private or group", http.StatusBadRequest)
		return
	}
	menuID := r.URL.Query().Get("menu")

	viewerUID := ""
	if session, err := auth.CurrentSession(r.Context()); err == nil {
		viewerUID = session.UID
	}

	week, err := h.service.Week(r.Context(), start, category, menuID, viewerUID)
	if err != nil {
		log.Errorf("failed to compute weekly availability: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	isAdmin := auth.IsAdmin(r.Context())
	dto := WeekDTO{
		Start: week.Start.Format("2006-01-02"),
		Rows:  week.Rows,
	}
	for _, day := range week.Days {
		dto.Days = append(dto.Days, day.Format("2006-01-02"))
	}
	for _, rowCells := range week.Cells {
		row := make([]CellDTO, 0, len(rowCells))
		for _, cell := range rowCells {
			c := CellDTO{
				Mark:       string(cell.Mark),
				Selectable: cell.Selectable,
				ClassStart: cell.ClassStart,
				ClassName:  cell.ClassName,
			}
			if isAdmin {
				c.Bookings = toBookingDTOs(cell.Bookings)
			}
			row = append(row, c)
		}
		dto.Cells = append(dto.Cells, row)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toBookingDTOs(bookings []reservation.Reservation) []BookingDTO {
	dtos := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		dtos = append(dtos, BookingDTO{
			ID:           b.ID,
			CustomerName: b.CustomerName,
			LessonType:   string(b.Category),
			IsExternal:   b.External,
		})
	}
	return dtos
}
