package http

import (
	"net/http"

	"gearbook-backend/internal/domain"
)

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	product, err := s.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, product)
}

type productRequest struct {
	Name           string `json:"name"`
	Reference      string `json:"reference"`
	Description    string `json:"description"`
	SectionID      int32  `json:"section_id"`
	SubsectionID   *int32 `json:"subsection_id"`
	PricePerPeriod int32  `json:"price_per_period"`
	CreditPeriod   string `json:"credit_period"`
	MinDuration    int32  `json:"min_duration"`
	MaxDuration    int32  `json:"max_duration"`
	Status         string `json:"status"`
}

func (r *productRequest) toDomain(id int32) *domain.Product {
	return &domain.Product{
		ID:             id,
		Name:           r.Name,
		Reference:      r.Reference,
		Description:    r.Description,
		SectionID:      r.SectionID,
		SubsectionID:   r.SubsectionID,
		PricePerPeriod: r.PricePerPeriod,
		CreditPeriod:   domain.CreditPeriod(r.CreditPeriod),
		MinDuration:    r.MinDuration,
		MaxDuration:    r.MaxDuration,
		Status:         domain.ProductStatus(r.Status),
	}
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	product := req.toDomain(0)
	if err := s.products.Create(r.Context(), claims.UserID, product); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, product)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	product := req.toDomain(id)
	if err := s.products.Update(r.Context(), claims.UserID, product); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, product)
}

type productStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleSetProductStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}
	var req productStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := s.products.SetStatus(r.Context(), claims.UserID, id, domain.ProductStatus(req.Status)); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}
