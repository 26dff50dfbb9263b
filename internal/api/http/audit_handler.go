package http

import (
	"net/http"
	"strconv"

	"gearbook-backend/internal/domain"
)

// handleListAuditEntries serves the admin audit trail for one target, e.g.
// ?target_type=reservation&target_id=42.
func (s *Server) handleListAuditEntries(w http.ResponseWriter, r *http.Request) {
	targetType := r.URL.Query().Get("target_type")
	targetID, err := strconv.ParseInt(r.URL.Query().Get("target_id"), 10, 32)
	if err != nil || targetID <= 0 {
		respondError(w, domain.ValidationError("invalid target_id %q", r.URL.Query().Get("target_id")))
		return
	}

	page, pageSize := pagination(r)
	entries, total, err := s.audit.ListByTarget(r.Context(), targetType, int32(targetID), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: entries, Total: total, Page: page})
}
