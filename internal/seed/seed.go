package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Simplici0/quotedesk/internal/auth"
)

type defaultCategory struct {
	name          string
	kind          string
	minimumMarkup any
}

var defaultCategories = []defaultCategory{
	{name: "Dedicated Internet Access", kind: "DIA", minimumMarkup: "20"},
	{name: "Business Broadband", kind: "broadband", minimumMarkup: "10"},
	{name: "Ethernet Private Line", kind: "ethernet", minimumMarkup: "15"},
	{name: "SIP Trunking", kind: "voice", minimumMarkup: "15"},
	{name: "Hardware", kind: "hardware", minimumMarkup: nil},
}

const (
	houseAgentName  = "House Account"
	houseAgentEmail = "house@quotedesk.local"
	houseAgentMax   = "15"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(ctx, tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureCategories(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureHouseAgent(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(ctx context.Context, tx *sql.Tx, email, password string, stats *Stats) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (email, password_hash, role) VALUES (?, ?, 'admin')`, email, hash); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureCategories(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	for _, c := range defaultCategories {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE type = ? LIMIT 1)`, c.kind).Scan(&exists); err != nil {
			return fmt.Errorf("check category %s existence: %w", c.kind, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, type, minimum_markup_percent, active)
			VALUES (?, ?, ?, TRUE)
		`, c.name, c.kind, c.minimumMarkup); err != nil {
			return fmt.Errorf("insert category %s: %w", c.kind, err)
		}
		stats.Inserts++
	}
	return nil
}

func ensureHouseAgent(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM agents WHERE email = ? LIMIT 1)`, houseAgentEmail).Scan(&exists); err != nil {
		return fmt.Errorf("check house agent existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO agents (name, email, max_commission_rate)
		VALUES (?, ?, ?)
	`, houseAgentName, houseAgentEmail, houseAgentMax); err != nil {
		return fmt.Errorf("insert house agent: %w", err)
	}
	stats.Inserts++
	return nil
}
