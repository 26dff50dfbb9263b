package http

import (
	"net/http"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/service"
)

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	balance, err := s.ledger.GetBalance(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int32{"balance": balance})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	page, pageSize := pagination(r)
	items, total, err := s.ledger.GetTransactions(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}

func (s *Server) handleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	summary, err := s.ledger.GetSummary(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

type adjustCreditsRequest struct {
	Amount int32  `json:"amount"` // signed, positive grants
	Reason string `json:"reason"`
}

func (s *Server) handleAdjustCredits(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req adjustCreditsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.Amount == 0 {
		respondError(w, domain.ValidationError("adjustment amount cannot be zero"))
		return
	}
	if req.Reason == "" {
		respondError(w, domain.ValidationError("adjustment reason is required"))
		return
	}

	tx, err := s.ledger.Adjust(r.Context(), userID, req.Amount, service.AdjustParams{
		Type:        domain.TransactionTypeAdjustment,
		Reason:      req.Reason,
		PerformedBy: claims.UserID,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, tx)
}
