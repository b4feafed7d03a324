package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/store"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPriceJSON(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantCost  string
		wantSell  string
		wantTotal string
		wantBand  string
	}{
		{
			name:      "category floor",
			args:      []string{"--base", "200", "--install", "600", "--term", "36 months", "--markup", "10"},
			wantCost:  "216.67",
			wantSell:  "238.34",
			wantTotal: "238.34",
			wantBand:  "acceptable",
		},
		{
			name:      "commission given back",
			args:      []string{"--base", "100", "--markup", "15", "--commission", "10", "--max-commission", "15", "--quantity", "3"},
			wantCost:  "100",
			wantSell:  "110",
			wantTotal: "330",
			wantBand:  "acceptable",
		},
		{
			name:      "privileged prices at cost",
			args:      []string{"--base", "200", "--install", "600", "--markup", "10", "--privileged"},
			wantCost:  "216.67",
			wantSell:  "216.67",
			wantTotal: "216.67",
			wantBand:  "breakeven",
		},
		{
			name:      "disabled fees are ignored",
			args:      []string{"--base", "$1,250.00", "--other", "50"},
			wantCost:  "1300",
			wantSell:  "1300",
			wantTotal: "1300",
			wantBand:  "breakeven",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := run(t, append([]string{"price", "--json"}, tc.args...)...)
			require.NoError(t, err)

			var got priceOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got), out)
			require.Truef(t, decimal.RequireFromString(tc.wantCost).Equal(got.CostBasis), "cost %s", got.CostBasis)
			require.Truef(t, decimal.RequireFromString(tc.wantSell).Equal(got.SellPrice), "sell %s", got.SellPrice)
			require.Truef(t, decimal.RequireFromString(tc.wantTotal).Equal(got.TotalPrice), "total %s", got.TotalPrice)
			require.Equal(t, tc.wantBand, got.Band)
		})
	}
}

func TestPriceWarnsBelowFloor(t *testing.T) {
	out, err := run(t, "price", "--base", "100", "--markup", "20", "--service-type", "DIA", "--unit-price", "110")
	require.NoError(t, err)
	require.Contains(t, out, "Recommended price:   120.00")
	require.Contains(t, out, "WARNING: Unit price $110.00 is below the minimum of $120.00 for DIA")
}

func TestDatabaseCommands(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "migrate", "--db", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, "database at version 2")

	out, err = run(t, "seed", "--db", dbPath, "--admin-email", "admin@quotedesk.com", "--admin-password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "seed complete: 7 inserted")

	out, err = run(t, "seed", "--db", dbPath, "--admin-email", "admin@quotedesk.com", "--admin-password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "seed complete: 0 inserted")

	out, err = run(t, "price", "--db", dbPath, "--catalog", "--service-type", "dia", "--base", "100", "--json")
	require.NoError(t, err)
	var priced priceOutput
	require.NoError(t, json.Unmarshal([]byte(out), &priced), out)
	require.Equal(t, "Dedicated Internet Access", priced.Category)
	require.True(t, decimal.NewFromInt(120).Equal(priced.SellPrice), priced.SellPrice.String())

	ctx := context.Background()
	database, err := db.Open(ctx, dbPath)
	require.NoError(t, err)
	quote, err := store.New(database).CreateQuote(ctx, store.Quote{Title: "Acme HQ", TermLabel: "24 months"})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	out, err = run(t, "quote", "show", "1", "--db", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, "Quote: Acme HQ")
	require.Contains(t, out, "Reference: "+quote.PublicRef)
	require.Contains(t, out, "Term: 24 months")

	_, err = run(t, "quote", "show", "99", "--db", dbPath)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = run(t, "quote", "show", "abc", "--db", dbPath)
	require.Error(t, err)
}
