package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
)

// ListCategories returns active categories in creation order, which is the order
// service-type matching walks them in.
func (s *Store) ListCategories(ctx context.Context) ([]pricing.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, type, minimum_markup_percent
		FROM categories
		WHERE active = TRUE
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]pricing.Category, 0)
	for rows.Next() {
		var c pricing.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.MinimumMarkupPercent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// CreateCategory inserts c and returns it with its id.
func (s *Store) CreateCategory(ctx context.Context, c pricing.Category) (pricing.Category, error) {
	c.Name = cleanText(c.Name)
	c.Type = strings.TrimSpace(c.Type)

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO categories (name, type, minimum_markup_percent, active)
		VALUES (?, ?, ?, TRUE)
	`, c.Name, c.Type, markupValue(c.MinimumMarkupPercent))
	if err != nil {
		return pricing.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return pricing.Category{}, fmt.Errorf("read category id: %w", err)
	}
	return c, nil
}

// UpdateCategory overwrites the name, type and minimum markup of c.
func (s *Store) UpdateCategory(ctx context.Context, c pricing.Category) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE categories
		SET
			name = ?,
			type = ?,
			minimum_markup_percent = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, cleanText(c.Name), strings.TrimSpace(c.Type), markupValue(c.MinimumMarkupPercent), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func markupValue(pct decimal.NullDecimal) any {
	if !pct.Valid {
		return nil
	}
	return pct.Decimal.String()
}
