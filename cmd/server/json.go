package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/quoting"
	"github.com/Simplici0/quotedesk/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps store and quoting errors onto HTTP statuses.
func (s *server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *quoting.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, verr.Message)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, quoting.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type userResponse struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	AgentID    int64  `json:"agent_id,omitempty"`
	Privileged bool   `json:"privileged"`
}

func toUserResponse(u store.User) userResponse {
	return userResponse{Email: u.Email, Role: string(u.Role), AgentID: u.AgentID, Privileged: u.Privileged()}
}

type categoryPayload struct {
	ID                   int64               `json:"id"`
	Name                 string              `json:"name"`
	Type                 string              `json:"type"`
	MinimumMarkupPercent decimal.NullDecimal `json:"minimum_markup_percent"`
}

func toCategoryPayload(c pricing.Category) categoryPayload {
	return categoryPayload{ID: c.ID, Name: c.Name, Type: c.Type, MinimumMarkupPercent: c.MinimumMarkupPercent}
}

func (p categoryPayload) category() pricing.Category {
	return pricing.Category{ID: p.ID, Name: p.Name, Type: p.Type, MinimumMarkupPercent: p.MinimumMarkupPercent}
}

type agentResponse struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	MaxCommissionRate decimal.Decimal `json:"max_commission_rate"`
}

type sourcePayload struct {
	BasePrice           decimal.Decimal `json:"base_price"`
	Term                string          `json:"term"`
	InstallFee          decimal.Decimal `json:"install_fee"`
	InstallFeeEnabled   bool            `json:"install_fee_enabled"`
	StaticIPFee         decimal.Decimal `json:"static_ip_fee"`
	StaticIPFeeEnabled  bool            `json:"static_ip_fee_enabled"`
	StaticIP5Fee        decimal.Decimal `json:"static_ip5_fee"`
	StaticIP5FeeEnabled bool            `json:"static_ip5_fee_enabled"`
	OtherCosts          decimal.Decimal `json:"other_costs"`
	ServiceType         string          `json:"service_type"`
	CategoryID          int64           `json:"category_id,omitempty"`
}

func (p sourcePayload) source() pricing.LineItemSource {
	return pricing.LineItemSource{
		BasePrice:           p.BasePrice,
		TermLabel:           p.Term,
		InstallFee:          p.InstallFee,
		InstallFeeEnabled:   p.InstallFeeEnabled,
		StaticIPFee:         p.StaticIPFee,
		StaticIPFeeEnabled:  p.StaticIPFeeEnabled,
		StaticIP5Fee:        p.StaticIP5Fee,
		StaticIP5FeeEnabled: p.StaticIP5FeeEnabled,
		OtherCosts:          p.OtherCosts,
		ServiceType:         p.ServiceType,
		CategoryID:          p.CategoryID,
	}
}

func toSourcePayload(src pricing.LineItemSource) sourcePayload {
	return sourcePayload{
		BasePrice:           src.BasePrice,
		Term:                src.TermLabel,
		InstallFee:          src.InstallFee,
		InstallFeeEnabled:   src.InstallFeeEnabled,
		StaticIPFee:         src.StaticIPFee,
		StaticIPFeeEnabled:  src.StaticIPFeeEnabled,
		StaticIP5Fee:        src.StaticIP5Fee,
		StaticIP5FeeEnabled: src.StaticIP5FeeEnabled,
		OtherCosts:          src.OtherCosts,
		ServiceType:         src.ServiceType,
		CategoryID:          src.CategoryID,
	}
}

type breakdownResponse struct {
	Base             decimal.Decimal `json:"base"`
	StaticIP         decimal.Decimal `json:"static_ip"`
	StaticIP5        decimal.Decimal `json:"static_ip5"`
	AmortizedInstall decimal.Decimal `json:"amortized_install"`
	Other            decimal.Decimal `json:"other"`
	TermMonths       int             `json:"term_months"`
}

type previewResponse struct {
	Category                      *categoryPayload  `json:"category"`
	Breakdown                     breakdownResponse `json:"breakdown"`
	CostBasis                     decimal.Decimal   `json:"cost_basis"`
	SellPrice                     decimal.Decimal   `json:"sell_price"`
	CommissionRate                decimal.Decimal   `json:"commission_rate"`
	EffectiveMinimumMarkupPercent decimal.Decimal   `json:"effective_minimum_markup_percent"`
	CurrentMarkupPercent          decimal.Decimal   `json:"current_markup_percent"`
	ProfitMarginPercent           decimal.Decimal   `json:"profit_margin_percent"`
	Enforced                      bool              `json:"enforced"`
	UnitSellPrice                 decimal.Decimal   `json:"unit_sell_price"`
	TotalPrice                    decimal.Decimal   `json:"total_price"`
	Band                          string            `json:"band"`
	Validation                    string            `json:"validation,omitempty"`
}

func toPreviewResponse(p quoting.Preview) previewResponse {
	res := p.Result
	out := previewResponse{
		Breakdown: breakdownResponse{
			Base:             res.Breakdown.Base,
			StaticIP:         res.Breakdown.StaticIP,
			StaticIP5:        res.Breakdown.StaticIP5,
			AmortizedInstall: res.Breakdown.AmortizedInstall,
			Other:            res.Breakdown.Other,
			TermMonths:       res.Breakdown.TermMonths,
		},
		CostBasis:                     res.CostBasis,
		SellPrice:                     res.SellPrice,
		CommissionRate:                res.CommissionRate,
		EffectiveMinimumMarkupPercent: res.EffectiveMinimumMarkupPercent,
		CurrentMarkupPercent:          res.CurrentMarkupPercent,
		ProfitMarginPercent:           res.ProfitMarginPercent,
		Enforced:                      res.Enforced,
		UnitSellPrice:                 p.UnitSellPrice,
		TotalPrice:                    p.TotalPrice,
		Band:                          string(p.Band),
		Validation:                    p.Validation,
	}
	if p.Category != nil {
		c := toCategoryPayload(*p.Category)
		out.Category = &c
	}
	return out
}

type totalsResponse struct {
	MRCTotal decimal.Decimal `json:"mrc_total"`
	NRCTotal decimal.Decimal `json:"nrc_total"`
	MRCCost  decimal.Decimal `json:"mrc_cost"`
	NRCCost  decimal.Decimal `json:"nrc_cost"`
	Items    int             `json:"items"`
}

func toTotalsResponse(t pricing.QuoteTotals) totalsResponse {
	return totalsResponse{MRCTotal: t.MRCTotal, NRCTotal: t.NRCTotal, MRCCost: t.MRCCost, NRCCost: t.NRCCost, Items: t.Items}
}

type quoteResponse struct {
	ID             int64           `json:"id"`
	PublicRef      string          `json:"public_ref"`
	Title          string          `json:"title"`
	Notes          string          `json:"notes"`
	CustomerName   string          `json:"customer_name"`
	Term           string          `json:"term"`
	AgentID        int64           `json:"agent_id,omitempty"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	MRCTotal       decimal.Decimal `json:"mrc_total"`
	NRCTotal       decimal.Decimal `json:"nrc_total"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

func toQuoteResponse(q store.Quote) quoteResponse {
	return quoteResponse{
		ID:             q.ID,
		PublicRef:      q.PublicRef,
		Title:          q.Title,
		Notes:          q.Notes,
		CustomerName:   q.CustomerName,
		Term:           q.TermLabel,
		AgentID:        q.AgentID,
		CommissionRate: q.CommissionRate,
		MRCTotal:       q.MRCTotal,
		NRCTotal:       q.NRCTotal,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
}

type lineItemResponse struct {
	ID             int64           `json:"id"`
	Position       int             `json:"position"`
	Description    string          `json:"description"`
	ChargeType     string          `json:"charge_type"`
	Quantity       int             `json:"quantity"`
	Source         sourcePayload   `json:"source"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	UnitSellPrice  decimal.Decimal `json:"unit_sell_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	Band           string          `json:"band"`
}

func toLineItemResponse(li store.LineItem) lineItemResponse {
	priced := li.Priced()
	margin := priced.ProfitMarginPercent()
	return lineItemResponse{
		ID:             li.ID,
		Position:       li.Position,
		Description:    li.Description,
		ChargeType:     string(li.ChargeType),
		Quantity:       li.Quantity,
		Source:         toSourcePayload(li.Source),
		CommissionRate: li.CommissionRate,
		UnitCost:       li.UnitCost,
		UnitSellPrice:  li.UnitSellPrice,
		TotalPrice:     priced.TotalPrice(),
		MarginPercent:  margin,
		Band:           string(pricing.BandFor(margin)),
	}
}

type quoteDetailResponse struct {
	Quote         quoteResponse      `json:"quote"`
	Items         []lineItemResponse `json:"items"`
	Totals        totalsResponse     `json:"totals"`
	TermMonths    int                `json:"term_months"`
	ContractValue decimal.Decimal    `json:"contract_value"`
}

type pricedItemResponse struct {
	Item    lineItemResponse `json:"item"`
	Pricing previewResponse  `json:"pricing"`
	Totals  totalsResponse   `json:"totals"`
}
