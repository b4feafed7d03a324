package main

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quoting"
)

func (s *server) handleCategoriesList(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]categoryPayload, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryPayload(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleCategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateCategory(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), req.category())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryPayload(created))
}

func (s *server) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryPayload
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateCategory(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	req.ID = id
	if err := s.store.UpdateCategory(r.Context(), req.category()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func validateCategory(c categoryPayload) string {
	if strings.TrimSpace(c.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(c.Type) == "" {
		return "type is required"
	}
	if c.MinimumMarkupPercent.Valid && c.MinimumMarkupPercent.Decimal.IsNegative() {
		return "minimum_markup_percent must be zero or greater"
	}
	return ""
}

func (s *server) handleAgentsList(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.ListAgents(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user := currentUser(r)
	out := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		if !user.Privileged() && a.ID != user.AgentID {
			continue
		}
		out = append(out, agentResponse{ID: a.ID, Name: a.Name, MaxCommissionRate: a.MaxCommissionRate})
	}
	writeJSON(w, http.StatusOK, out)
}

type previewRequest struct {
	Source         sourcePayload       `json:"source"`
	AgentID        int64               `json:"agent_id"`
	CommissionRate decimal.Decimal     `json:"commission_rate"`
	Quantity       int                 `json:"quantity"`
	ChargeType     string              `json:"charge_type"`
	UnitSellPrice  decimal.NullDecimal `json:"unit_sell_price"`
}

func (s *server) handlePricingPreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := currentUser(r)
	agentID := req.AgentID
	if !user.Privileged() {
		agentID = user.AgentID
	}

	preview, err := s.quotes.Preview(r.Context(), callerFor(user), quoting.PreviewInput{
		Source:         req.Source.source(),
		AgentID:        agentID,
		CommissionRate: req.CommissionRate,
		Quantity:       req.Quantity,
		ChargeType:     pricing.ParseChargeType(req.ChargeType),
		UnitSellPrice:  req.UnitSellPrice,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(preview))
}
