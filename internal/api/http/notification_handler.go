package http

import (
	"net/http"
)

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	page, pageSize := pagination(r)
	items, total, err := s.notifications.GetNotifications(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.notifications.MarkAsRead(r.Context(), claims.UserID, id); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
