package http

import (
	"net/http"

	"gearbook-backend/internal/domain"
	"gearbook-backend/internal/utils"
)

func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.sections.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"sections": sections})
}

func (s *Server) handleGetSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	section, err := s.sections.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, section)
}

func (s *Server) handleListSectionProducts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	page, pageSize := pagination(r)
	items, total, err := s.products.ListBySection(r.Context(), id, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, pagedResponse{Items: items, Total: total, Page: page})
}

type sectionRequest struct {
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	ParentID            *int32  `json:"parent_id"`
	AllowedDaysOut      []int32 `json:"allowed_days_out"`
	AllowedDaysIn       []int32 `json:"allowed_days_in"`
	RefundDeadlineHours int32   `json:"refund_deadline_hours"`
}

func (s *Server) handleCreateSection(w http.ResponseWriter, r *http.Request) {
	var req sectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	section := &domain.Section{
		Name:                req.Name,
		Description:         req.Description,
		ParentID:            req.ParentID,
		AllowedDaysOut:      req.AllowedDaysOut,
		AllowedDaysIn:       req.AllowedDaysIn,
		RefundDeadlineHours: req.RefundDeadlineHours,
	}
	if err := s.sections.Create(r.Context(), section); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, section)
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req sectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	section := &domain.Section{
		ID:                  id,
		Name:                req.Name,
		Description:         req.Description,
		ParentID:            req.ParentID,
		AllowedDaysOut:      req.AllowedDaysOut,
		AllowedDaysIn:       req.AllowedDaysIn,
		RefundDeadlineHours: req.RefundDeadlineHours,
	}
	if err := s.sections.Update(r.Context(), claims.UserID, section); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, section)
}

func (s *Server) handleDeleteSection(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.sections.Delete(r.Context(), claims.UserID, id); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}

type closureRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

func (s *Server) handleAddClosure(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	sectionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req closureRequest
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
	closure := &domain.SectionClosure{
		SectionID: sectionID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	}
	if err := s.sections.AddClosure(r.Context(), claims.UserID, closure); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, closure)
}

func (s *Server) handleRemoveClosure(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	sectionID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	closureID, err := pathID(r, "closureID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.sections.RemoveClosure(r.Context(), claims.UserID, sectionID, closureID); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
