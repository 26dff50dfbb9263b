package http

import (
	"net/http"
	"strconv"
	"time"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/utils"
)

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	start, err := utils.ParseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}
	end, err := utils.ParseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}

	result, err := s.availability.Check(r.Context(), productID, start, end, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (s *Server) handleMonthlyCalendar(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		respondError(w, domain.ValidationError("invalid year %q", r.URL.Query().Get("year")))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(w, domain.ValidationError("invalid month %q", r.URL.Query().Get("month")))
		return
	}

	days, err := s.availability.MonthlyCalendar(r.Context(), productID, year, time.Month(month))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"days": days})
}
