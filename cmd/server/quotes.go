package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quoting"
	"github.com/Simplici0/quotedesk/internal/store"
)

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.store.ListQuotes(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user := currentUser(r)
	out := make([]quoteResponse, 0, len(quotes))
	for _, q := range quotes {
		if !canSee(user, q) {
			continue
		}
		out = append(out, toQuoteResponse(q))
	}
	writeJSON(w, http.StatusOK, out)
}

type createQuoteRequest struct {
	Title          string              `json:"title"`
	Notes          string              `json:"notes"`
	CustomerName   string              `json:"customer_name"`
	Term           string              `json:"term"`
	AgentID        int64               `json:"agent_id"`
	CommissionRate decimal.NullDecimal `json:"commission_rate"`
}

func (s *server) handleQuoteCreate(w http.ResponseWriter, r *http.Request) {
	var req createQuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	user := currentUser(r)
	agentID := req.AgentID
	if !user.Privileged() {
		agentID = user.AgentID
	}
	agent := pricing.Agent{MaxCommissionRate: decimal.Zero}
	if agentID != 0 {
		var err error
		if agent, err = s.store.Agent(r.Context(), agentID); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	// The configured default is capped at the agent's maximum; an explicit rate must fit.
	rate := decimal.Min(s.defaultCommission, agent.MaxCommissionRate)
	if req.CommissionRate.Valid {
		rate = req.CommissionRate.Decimal
		if err := quoting.CheckCommission(rate, agent); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}

	quote, err := s.store.CreateQuote(r.Context(), store.Quote{
		Title:          req.Title,
		Notes:          req.Notes,
		CustomerName:   req.CustomerName,
		TermLabel:      req.Term,
		AgentID:        agentID,
		CommissionRate: rate,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toQuoteResponse(quote))
}

func (s *server) handleQuoteDetail(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	d, err := s.quotes.Detail(r.Context(), quote.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := quoteDetailResponse{
		Quote:         toQuoteResponse(d.Quote),
		Items:         make([]lineItemResponse, 0, len(d.Lines)),
		Totals:        toTotalsResponse(d.Totals),
		TermMonths:    d.TermMonths,
		ContractValue: d.ContractValue,
	}
	for _, l := range d.Lines {
		out.Items = append(out.Items, toLineItemResponse(l.Item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	text, err := s.quotes.Summary(r.Context(), quote.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

type createItemRequest struct {
	Description    string              `json:"description"`
	ChargeType     string              `json:"charge_type"`
	Quantity       int                 `json:"quantity"`
	Source         sourcePayload       `json:"source"`
	UnitSellPrice  decimal.NullDecimal `json:"unit_sell_price"`
	CommissionRate decimal.NullDecimal `json:"commission_rate"`
}

func (s *server) handleItemCreate(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}

	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	priced, err := s.quotes.AddItem(r.Context(), callerFor(currentUser(r)), quote.ID, quoting.ItemInput{
		Description:    req.Description,
		ChargeType:     pricing.ChargeType(req.ChargeType),
		Quantity:       req.Quantity,
		Source:         req.Source.source(),
		UnitSellPrice:  req.UnitSellPrice,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPricedItemResponse(priced))
}

type updateItemRequest struct {
	Description   *string             `json:"description"`
	Quantity      *int                `json:"quantity"`
	UnitSellPrice decimal.NullDecimal `json:"unit_sell_price"`
}

func (s *server) handleItemUpdate(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(r, "itemID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	priced, err := s.quotes.UpdateItem(r.Context(), callerFor(currentUser(r)), quote.ID, itemID, quoting.ItemUpdate{
		Description:   req.Description,
		Quantity:      req.Quantity,
		UnitSellPrice: req.UnitSellPrice,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPricedItemResponse(priced))
}

func (s *server) handleItemDelete(w http.ResponseWriter, r *http.Request) {
	quote, ok := s.loadQuote(w, r)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(r, "itemID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	totals, err := s.quotes.DeleteItem(r.Context(), quote.ID, itemID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTotalsResponse(totals))
}

type customerLineResponse struct {
	Description   string          `json:"description"`
	ChargeType    string          `json:"charge_type"`
	Quantity      int             `json:"quantity"`
	UnitSellPrice decimal.Decimal `json:"unit_sell_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

type customerQuoteResponse struct {
	Ref          string                 `json:"ref"`
	Title        string                 `json:"title"`
	CustomerName string                 `json:"customer_name"`
	Term         string                 `json:"term"`
	TermMonths   int                    `json:"term_months"`
	Items        []customerLineResponse `json:"items"`
	MRCTotal     decimal.Decimal        `json:"mrc_total"`
	NRCTotal     decimal.Decimal        `json:"nrc_total"`
}

// handleCustomerQuote serves the acceptance view. It never exposes cost or margin.
func (s *server) handleCustomerQuote(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "ref"))
	if ref == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	view, err := s.quotes.CustomerView(r.Context(), ref)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := customerQuoteResponse{
		Ref:          view.Ref,
		Title:        view.Title,
		CustomerName: view.CustomerName,
		Term:         view.TermLabel,
		TermMonths:   view.TermMonths,
		Items:        make([]customerLineResponse, 0, len(view.Lines)),
		MRCTotal:     view.MRCTotal,
		NRCTotal:     view.NRCTotal,
	}
	for _, l := range view.Lines {
		out.Items = append(out.Items, customerLineResponse{
			Description:   l.Description,
			ChargeType:    string(l.ChargeType),
			Quantity:      l.Quantity,
			UnitSellPrice: l.UnitSellPrice,
			TotalPrice:    l.TotalPrice,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) loadQuote(w http.ResponseWriter, r *http.Request) (store.Quote, bool) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid quote id")
		return store.Quote{}, false
	}

	quote, err := s.store.Quote(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return store.Quote{}, false
	}
	if !canSee(currentUser(r), quote) {
		writeError(w, http.StatusNotFound, "not found")
		return store.Quote{}, false
	}
	return quote, true
}

// canSee limits agents to their own quotes.
func canSee(user store.User, q store.Quote) bool {
	return user.Privileged() || (user.AgentID != 0 && q.AgentID == user.AgentID)
}

func toPricedItemResponse(p quoting.PricedItem) pricedItemResponse {
	return pricedItemResponse{
		Item:    toLineItemResponse(p.Item),
		Pricing: toPreviewResponse(p.Preview),
		Totals:  toTotalsResponse(p.Totals),
	}
}
