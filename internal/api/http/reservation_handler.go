package http

import (
	"net/http"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/security"
	"gearbook-backend/internal/service"
	"gearbook-backend/internal/utils"
)

type createReservationRequest struct {
	ProductID int32  `json:"product_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes"`
	// UserID lets desk staff book on behalf of a member; ignored for
	// everyone else.
	UserID int32 `json:"user_id,omitempty"`
}

func (s *Server) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req createReservationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}

	userID := claims.UserID
	if req.UserID != 0 && req.UserID != claims.UserID {
		ok, err := s.perms.HasPermission(r.Context(), claims.UserID, security.PermReservationManage, nil)
		if err != nil {
			respondError(w, err)
			return
		}
		if !ok {
			respondError(w, domain.ForbiddenError("cannot create reservations for other users"))
			return
		}
		userID = req.UserID
	}

	reservation, err := s.reservations.Create(r.Context(), service.CreateReservationParams{
		UserID:      userID,
		ProductID:   req.ProductID,
		StartDate:   start,
		EndDate:     end,
		Notes:       req.Notes,
		PerformedBy: claims.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, reservation)
}

func (s *Server) handleListMyReservations(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	page, pageSize := pagination(r)
	items, total, err := s.reservations.ListForUser(r.Context(), claims.UserID,
		r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}

func (s *Server) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	// Staff see any reservation, members only their own.
	ok, err := s.perms.HasPermission(r.Context(), claims.UserID, security.PermReservationManage, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	var reservation *domain.Reservation
	if ok {
		reservation, err = s.reservations.Get(r.Context(), id)
	} else {
		reservation, err = s.reservations.GetForUser(r.Context(), id, claims.UserID)
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req cancelRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}

	ok, err := s.perms.HasPermission(r.Context(), claims.UserID, security.PermReservationManage, nil)
	if err != nil {
		respondError(w, err)
		return
	}
	if !ok {
		if _, err := s.reservations.GetForUser(r.Context(), id, claims.UserID); err != nil {
			respondError(w, err)
			return
		}
	}

	reservation, err := s.reservations.Cancel(r.Context(), id, claims.UserID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

func (s *Server) handleCheckExtension(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	newEnd, err := utils.ParseDate(r.URL.Query().Get("new_end_date"))
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}
	if _, err := s.reservations.GetForUser(r.Context(), id, claims.UserID); err != nil {
		respondError(w, err)
		return
	}
	check, err := s.reservations.CheckExtension(r.Context(), id, newEnd)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, check)
}

type extendRequest struct {
	NewEndDate string `json:"new_end_date"`
}

func (s *Server) handleExtendReservation(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req extendRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	newEnd, err := utils.ParseDate(req.NewEndDate)
	if err != nil {
		respondError(w, domain.ValidationError("%v", err))
		return
	}
	reservation, err := s.reservations.Extend(r.Context(), id, claims.UserID, newEnd)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

func (s *Server) handleReservationQRCode(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if _, err := s.reservations.GetForUser(r.Context(), id, claims.UserID); err != nil {
		respondError(w, err)
		return
	}
	payload, err := s.reservations.QRCodePayload(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"payload": payload})
}

type checkoutRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req checkoutRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}
	reservation, err := s.reservations.Checkout(r.Context(), id, claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type returnRequest struct {
	Condition string                 `json:"condition"`
	Notes     string                 `json:"notes"`
	Photos    []domain.MovementPhoto `json:"photos"`
}

func (s *Server) handleReturn(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req returnRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, err)
			return
		}
	}
	reservation, err := s.reservations.Return(r.Context(), service.ReturnParams{
		ReservationID: id,
		AdminID:       claims.UserID,
		Condition:     domain.ProductCondition(req.Condition),
		Notes:         req.Notes,
		Photos:        req.Photos,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type adminNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleSetAdminNotes(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req adminNotesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	reservation, err := s.reservations.SetAdminNotes(r.Context(), id, claims.UserID, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type refundRequest struct {
	Amount int32  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req refundRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	reservation, err := s.reservations.Refund(r.Context(), service.RefundParams{
		ReservationID: id,
		Amount:        req.Amount,
		Reason:        req.Reason,
		PerformedBy:   claims.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type penaltyRequest struct {
	Amount int32  `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) handlePenalty(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req penaltyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	reservation, err := s.reservations.Penalty(r.Context(), service.PenaltyParams{
		ReservationID: id,
		Amount:        req.Amount,
		Reason:        req.Reason,
		PerformedBy:   claims.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

type resolveQRRequest struct {
	Payload string `json:"payload"`
}

func (s *Server) handleResolveQRCode(w http.ResponseWriter, r *http.Request) {
	var req resolveQRRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	reservation, err := s.reservations.ResolveQRCode(r.Context(), req.Payload)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, reservation)
}

func (s *Server) handleListProductReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	page, pageSize := pagination(r)
	items, total, err := s.reservations.ListForProduct(r.Context(), id,
		r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}
