package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/quotedesk/internal/pricing"
)

// Role is a user's access level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// User is a person who can sign in.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	AgentID      int64
}

// Privileged reports whether the user prices at raw cost.
func (u User) Privileged() bool {
	return u.Role == RoleAdmin
}

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleAgent
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, role, agent_id)
		VALUES (?, ?, ?, ?)
	`, u.Email, u.PasswordHash, string(u.Role), nullableID(u.AgentID))
	if err != nil {
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return User{}, fmt.Errorf("read user id: %w", err)
	}
	return u, nil
}

// UserByEmail loads a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	var (
		u       User
		role    string
		agentID sql.NullInt64
	)
	err := s.q.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, agent_id
		FROM users
		WHERE email = ?
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &agentID)
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", notFound(err))
	}
	u.Role = Role(role)
	u.AgentID = agentID.Int64
	return u, nil
}

// CreateAgent inserts a sales agent.
func (s *Store) CreateAgent(ctx context.Context, name, email string, maxCommissionRate decimal.Decimal) (pricing.Agent, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO agents (name, email, max_commission_rate)
		VALUES (?, ?, ?)
	`, cleanText(name), strings.ToLower(strings.TrimSpace(email)), maxCommissionRate.String())
	if err != nil {
		return pricing.Agent{}, fmt.Errorf("insert agent: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return pricing.Agent{}, fmt.Errorf("read agent id: %w", err)
	}
	return pricing.Agent{ID: id, Name: cleanText(name), MaxCommissionRate: maxCommissionRate}, nil
}

// Agent loads an agent by id.
func (s *Store) Agent(ctx context.Context, id int64) (pricing.Agent, error) {
	var a pricing.Agent
	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, max_commission_rate
		FROM agents
		WHERE id = ?
	`, id).Scan(&a.ID, &a.Name, &a.MaxCommissionRate)
	if err != nil {
		return pricing.Agent{}, fmt.Errorf("query agent: %w", notFound(err))
	}
	return a, nil
}

// ListAgents returns all agents ordered by name.
func (s *Store) ListAgents(ctx context.Context) ([]pricing.Agent, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, max_commission_rate
		FROM agents
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	agents := make([]pricing.Agent, 0)
	for rows.Next() {
		var a pricing.Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.MaxCommissionRate); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}

	return agents, nil
}
