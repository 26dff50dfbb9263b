package http

import (
	"net/http"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/service"
)

func (s *Server) handleListProductMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	page, pageSize := pagination(r)
	items, total, err := s.movements.ListByProduct(r.Context(), id, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}

func (s *Server) handleListReservationMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	items, err := s.movements.ListByReservation(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"movements": items})
}

type recordMovementRequest struct {
	ProductID int32                  `json:"product_id"`
	Type      string                 `json:"type"`
	Condition string                 `json:"condition"`
	Notes     string                 `json:"notes"`
	Photos    []domain.MovementPhoto `json:"photos"`
}

// handleRecordMovement records an out-of-band movement, one not tied to a
// reservation, such as sending a product to repair and receiving it back.
func (s *Server) handleRecordMovement(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req recordMovementRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	movement, err := s.movements.Record(r.Context(), service.CreateMovementParams{
		ProductID:   req.ProductID,
		Type:        domain.MovementType(req.Type),
		Condition:   domain.ProductCondition(req.Condition),
		Notes:       req.Notes,
		Photos:      req.Photos,
		PerformedBy: claims.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, movement)
}
