package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/pricing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "store-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database, nil))
	return New(database)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUsersAndAgents(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	agent, err := s.CreateAgent(ctx, "Dana <b>Reyes</b>", "Dana@Example.com", dec("15"))
	require.NoError(t, err)
	require.Equal(t, "Dana Reyes", agent.Name)

	_, err = s.CreateUser(ctx, User{Email: " Dana@Example.com ", PasswordHash: "hash", AgentID: agent.ID})
	require.NoError(t, err)

	u, err := s.UserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.Equal(t, RoleAgent, u.Role)
	require.Equal(t, agent.ID, u.AgentID)
	require.False(t, u.Privileged())

	loaded, err := s.Agent(ctx, agent.ID)
	require.NoError(t, err)
	require.True(t, loaded.MaxCommissionRate.Equal(dec("15")))

	agents, err := s.ListAgents(ctx)
	require.NoError(t, err)
	require.Len(t, agents, 1)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Agent(ctx, 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoriesKeepInsertionOrderAndNullMarkup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	dia, err := s.CreateCategory(ctx, pricing.Category{Name: "Dedicated Internet", Type: "DIA", MinimumMarkupPercent: decimal.NewNullDecimal(dec("20"))})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, pricing.Category{Name: "Voice", Type: "voice"})
	require.NoError(t, err)

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Dedicated Internet", categories[0].Name)
	require.True(t, categories[0].MinimumMarkupPercent.Valid)
	require.True(t, categories[0].MinimumMarkupPercent.Decimal.Equal(dec("20")))
	require.False(t, categories[1].MinimumMarkupPercent.Valid)

	dia.MinimumMarkupPercent = decimal.NewNullDecimal(dec("12.5"))
	require.NoError(t, s.UpdateCategory(ctx, dia))

	categories, err = s.ListCategories(ctx)
	require.NoError(t, err)
	require.True(t, categories[0].MinimumMarkupPercent.Decimal.Equal(dec("12.5")))

	require.ErrorIs(t, s.UpdateCategory(ctx, pricing.Category{ID: 404, Name: "x"}), ErrNotFound)
}

func TestQuotesAndLineItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	q, err := s.CreateQuote(ctx, Quote{Title: "<script>x</script>Acme HQ", Notes: "AT&T handoff", TermLabel: "36 Months", CommissionRate: dec("10")})
	require.NoError(t, err)
	require.NotEmpty(t, q.PublicRef)
	require.Equal(t, "Acme HQ", q.Title)
	require.Equal(t, "AT&T handoff", q.Notes)
	require.True(t, q.MRCTotal.IsZero())

	byRef, err := s.QuoteByRef(ctx, q.PublicRef)
	require.NoError(t, err)
	require.Equal(t, q.ID, byRef.ID)

	first, err := s.AddLineItem(ctx, LineItem{
		QuoteID:     q.ID,
		Description: "DIA 100M",
		ChargeType:  pricing.MRC,
		Quantity:    1,
		Source: pricing.LineItemSource{
			BasePrice:         dec("200"),
			TermLabel:         "36 Months",
			InstallFee:        dec("600"),
			InstallFeeEnabled: true,
			ServiceType:       "DIA",
		},
		CommissionRate: dec("12.5"),
		UnitCost:       dec("216.67"),
		UnitSellPrice:  dec("238.34"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, first.Position)

	second, err := s.AddLineItem(ctx, LineItem{QuoteID: q.ID, Description: "Install", ChargeType: pricing.NRC, Quantity: 1, UnitSellPrice: dec("500")})
	require.NoError(t, err)
	require.Equal(t, 2, second.Position)

	items, err := s.LineItems(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.True(t, items[0].Source.InstallFeeEnabled)
	require.True(t, items[0].Source.InstallFee.Equal(dec("600")))
	require.Equal(t, pricing.NRC, items[1].ChargeType)
	require.True(t, items[0].CommissionRate.Equal(dec("12.5")))
	require.True(t, items[1].CommissionRate.IsZero())

	second.Quantity = 3
	second.UnitSellPrice = dec("450")
	require.NoError(t, s.UpdateLineItem(ctx, second))
	reloaded, err := s.LineItem(ctx, q.ID, second.ID)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.Quantity)
	require.True(t, reloaded.Priced().TotalPrice().Equal(dec("1350")))

	require.NoError(t, s.SetQuoteTotals(ctx, q.ID, dec("238.34"), dec("1350")))
	q, err = s.Quote(ctx, q.ID)
	require.NoError(t, err)
	require.True(t, q.NRCTotal.Equal(dec("1350")))

	require.NoError(t, s.DeleteLineItem(ctx, q.ID, first.ID))
	require.ErrorIs(t, s.DeleteLineItem(ctx, q.ID, first.ID), ErrNotFound)
	_, err = s.LineItem(ctx, q.ID, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListQuotesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, title := range []string{"Primera", "Segunda", "Tercera"} {
		_, err := s.CreateQuote(ctx, Quote{Title: title, Notes: "nota " + title})
		require.NoError(t, err)
	}

	all, err := s.ListQuotes(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Same-second timestamps fall back to id DESC.
	require.Equal(t, "Tercera", all[0].Title)

	filtered, err := s.ListQuotes(ctx, "Segu")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "Segunda", filtered[0].Title)
}

func TestInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	q, err := s.CreateQuote(ctx, Quote{Title: "Acme HQ", CommissionRate: dec("10")})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx *Store) error {
		if _, err := tx.AddLineItem(ctx, LineItem{QuoteID: q.ID, Description: "DIA", ChargeType: pricing.MRC, Quantity: 1, UnitSellPrice: dec("100")}); err != nil {
			return err
		}
		if err := tx.SetQuoteTotals(ctx, q.ID, dec("100"), decimal.Zero); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := s.LineItems(ctx, q.ID)
	require.NoError(t, err)
	require.Empty(t, items)
	q, err = s.Quote(ctx, q.ID)
	require.NoError(t, err)
	require.True(t, q.MRCTotal.IsZero())

	require.NoError(t, s.InTx(ctx, func(tx *Store) error {
		return tx.InTx(ctx, func(inner *Store) error {
			_, err := inner.AddLineItem(ctx, LineItem{QuoteID: q.ID, Description: "DIA", ChargeType: pricing.MRC, Quantity: 1, UnitSellPrice: dec("100")})
			return err
		})
	}))
	items, err = s.LineItems(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Position)
}
