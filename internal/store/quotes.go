package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quote is a customer quote header. Totals are a cache of the aggregated line items.
type Quote struct {
	ID             int64
	PublicRef      string
	Title          string
	Notes          string
	CustomerName   string
	TermLabel      string
	AgentID        int64
	CommissionRate decimal.Decimal
	MRCTotal       decimal.Decimal
	NRCTotal       decimal.Decimal
	CreatedAt      string
	UpdatedAt      string
}

// CreateQuote inserts q with a fresh public reference.
func (s *Store) CreateQuote(ctx context.Context, q Quote) (Quote, error) {
	q.PublicRef = uuid.NewString()
	q.Title = cleanText(q.Title)
	q.Notes = cleanText(q.Notes)
	q.CustomerName = cleanText(q.CustomerName)
	q.TermLabel = cleanText(q.TermLabel)
	q.MRCTotal = decimal.Zero
	q.NRCTotal = decimal.Zero

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO quotes (public_ref, title, notes, customer_name, term_label, agent_id, commission_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, q.PublicRef, q.Title, q.Notes, q.CustomerName, q.TermLabel, nullableID(q.AgentID), q.CommissionRate.String())
	if err != nil {
		return Quote{}, fmt.Errorf("insert quote: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Quote{}, fmt.Errorf("read quote id: %w", err)
	}
	return s.Quote(ctx, id)
}

const quoteColumns = `
	id, public_ref, title, notes, customer_name, term_label, agent_id,
	commission_rate, mrc_total, nrc_total, created_at, updated_at
`

// Quote loads a quote by id.
func (s *Store) Quote(ctx context.Context, id int64) (Quote, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = ?`, id)
	q, err := scanQuote(row)
	if err != nil {
		return Quote{}, fmt.Errorf("query quote: %w", notFound(err))
	}
	return q, nil
}

// QuoteByRef loads a quote by its public reference.
func (s *Store) QuoteByRef(ctx context.Context, ref string) (Quote, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE public_ref = ?`, strings.TrimSpace(ref))
	q, err := scanQuote(row)
	if err != nil {
		return Quote{}, fmt.Errorf("query quote by ref: %w", notFound(err))
	}
	return q, nil
}

// ListQuotes returns quotes newest first, filtered by title, notes or customer when query is set.
func (s *Store) ListQuotes(ctx context.Context, query string) ([]Quote, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes
		WHERE (? = '' OR title LIKE ? OR notes LIKE ? OR customer_name LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return quotes, nil
}

// SetQuoteTotals stores the aggregated MRC and NRC totals of a quote.
func (s *Store) SetQuoteTotals(ctx context.Context, id int64, mrc, nrc decimal.Decimal) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE quotes
		SET mrc_total = ?, nrc_total = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, mrc.String(), nrc.String(), id)
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quote totals: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (Quote, error) {
	var (
		q       Quote
		agentID sql.NullInt64
	)
	err := row.Scan(
		&q.ID,
		&q.PublicRef,
		&q.Title,
		&q.Notes,
		&q.CustomerName,
		&q.TermLabel,
		&agentID,
		&q.CommissionRate,
		&q.MRCTotal,
		&q.NRCTotal,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		return Quote{}, err
	}
	q.AgentID = agentID.Int64
	return q, nil
}
