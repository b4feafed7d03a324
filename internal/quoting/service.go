// Package quoting prices quote line items against stored categories and agents and keeps
// quote totals in step with their line items.
package quoting

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/pricing"
	"github.com/Simplici0/quotedesk/internal/store"
)

var (
	// ErrInvalidInput signals request data that cannot be priced or saved.
	ErrInvalidInput = errors.New("quoting: invalid input")
	// ErrBelowFloor is wrapped by ValidationError.
	ErrBelowFloor = errors.New("quoting: unit price below minimum")
)

// ValidationError carries the user-facing message for a unit price under the category floor.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrBelowFloor }

// Repository is the persistence the service needs.
type Repository interface {
	ListCategories(ctx context.Context) ([]pricing.Category, error)
	Agent(ctx context.Context, id int64) (pricing.Agent, error)
	Quote(ctx context.Context, id int64) (store.Quote, error)
	QuoteByRef(ctx context.Context, ref string) (store.Quote, error)
	AddLineItem(ctx context.Context, li store.LineItem) (store.LineItem, error)
	UpdateLineItem(ctx context.Context, li store.LineItem) error
	DeleteLineItem(ctx context.Context, quoteID, itemID int64) error
	LineItem(ctx context.Context, quoteID, itemID int64) (store.LineItem, error)
	LineItems(ctx context.Context, quoteID int64) ([]store.LineItem, error)
	SetQuoteTotals(ctx context.Context, id int64, mrc, nrc decimal.Decimal) error
	InTx(ctx context.Context, fn func(tx *store.Store) error) error
}

// Caller describes who is asking. Privileged callers price at raw cost.
type Caller struct {
	Privileged bool
	AgentID    int64
}

func (c Caller) mode() pricing.Mode {
	if c.Privileged {
		return pricing.Unconstrained
	}
	return pricing.Governed
}

// Service prices and persists quote line items.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService returns a Service. A nil logger discards logs.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// PreviewInput is one line item being edited before it is saved.
type PreviewInput struct {
	Source         pricing.LineItemSource
	AgentID        int64
	CommissionRate decimal.Decimal
	Quantity       int
	ChargeType     pricing.ChargeType
	// UnitSellPrice is the price the user typed, if any.
	UnitSellPrice decimal.NullDecimal
}

// Preview is the priced view of a PreviewInput.
type Preview struct {
	Category      *pricing.Category
	Result        pricing.PricingResult
	UnitSellPrice decimal.Decimal
	TotalPrice    decimal.Decimal
	Band          pricing.MarginBand
	Validation    string
}

// Preview prices in without saving anything. It is called on every edit in the quote UI.
func (s *Service) Preview(ctx context.Context, caller Caller, in PreviewInput) (Preview, error) {
	agentID := in.AgentID
	if agentID == 0 {
		agentID = caller.AgentID
	}

	categories, agent, err := s.pricingData(ctx, agentID)
	if err != nil {
		return Preview{}, err
	}

	return s.preview(caller, in, categories, agent), nil
}

func (s *Service) preview(caller Caller, in PreviewInput, categories []pricing.Category, agent pricing.Agent) Preview {
	category := pricing.ResolveForSource(in.Source, categories)
	res := pricing.Price(pricing.PricingRequest{
		Source:         in.Source,
		Category:       category,
		Agent:          agent,
		CommissionRate: in.CommissionRate,
		Mode:           caller.mode(),
	})

	unit := res.SellPrice
	if in.UnitSellPrice.Valid {
		unit = in.UnitSellPrice.Decimal
		res = res.WithActualPrice(unit)
	}

	line := pricing.QuoteLineItem{Quantity: in.Quantity, UnitCost: res.CostBasis, UnitSellPrice: unit, ChargeType: in.ChargeType}

	s.logger.Debug("priced line item",
		zap.String("service_type", in.Source.ServiceType),
		zap.Stringer("mode", caller.mode()),
		zap.String("cost_basis", res.CostBasis.String()),
		zap.String("sell_price", res.SellPrice.String()),
		zap.String("effective_minimum_markup", res.EffectiveMinimumMarkupPercent.String()),
	)

	return Preview{
		Category:      category,
		Result:        res,
		UnitSellPrice: unit,
		TotalPrice:    line.TotalPrice(),
		Band:          pricing.BandFor(res.ProfitMarginPercent),
		Validation:    pricing.ValidateUnitPrice(unit, res, category),
	}
}

func (s *Service) pricingData(ctx context.Context, agentID int64) ([]pricing.Category, pricing.Agent, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pricing.Agent{}, fmt.Errorf("load categories: %w", err)
	}

	agent := pricing.Agent{MaxCommissionRate: decimal.Zero}
	if agentID != 0 {
		if agent, err = s.repo.Agent(ctx, agentID); err != nil {
			return nil, pricing.Agent{}, fmt.Errorf("load agent: %w", err)
		}
	}
	return categories, agent, nil
}

// CheckCommission rejects a commission rate outside 0 and the agent's maximum.
// A quote without an agent has a maximum of zero.
func CheckCommission(rate decimal.Decimal, agent pricing.Agent) error {
	if rate.IsNegative() {
		return fmt.Errorf("%w: commission rate cannot be negative", ErrInvalidInput)
	}
	if rate.GreaterThan(agent.MaxCommissionRate) {
		return fmt.Errorf("%w: commission rate %s%% exceeds the maximum of %s%%",
			ErrInvalidInput, rate.String(), agent.MaxCommissionRate.String())
	}
	return nil
}
