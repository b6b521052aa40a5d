package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finplan/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectRuleColumns = `id, raw_pattern, preferred_description, category_id, created_at`

func scanRule(s scanner) (*matching.Rule, error) {
	var (
		r           matching.Rule
		description sql.NullString
		categoryID  uuid.NullUUID
	)

	if err := s.Scan(&r.ID, &r.Pattern, &description, &categoryID, &r.CreatedAt); err != nil {
		return nil, err
	}

	r.Description = description.String

	if categoryID.Valid {
		r.CategoryID = &categoryID.UUID
	}

	return &r, nil
}

func (s *Store) FindMatch(ctx context.Context, rawDescription string) (*matching.Rule, error) {
	query := `
		SELECT ` + selectRuleColumns + `
		FROM description_rules
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	rule, err := scanRule(s.db.QueryRowContext(ctx, query, rawDescription))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("finding match: %w", err)
	}

	return rule, nil
}

func (s *Store) CreateRule(ctx context.Context, r *matching.Rule) error {
	query := `
		INSERT INTO description_rules (raw_pattern, preferred_description, category_id)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query, r.Pattern, r.Description, r.CategoryID).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating rule: %w", err)
	}

	return nil
}

func (s *Store) ListRules(ctx context.Context) ([]*matching.Rule, error) {
	query := `SELECT ` + selectRuleColumns + ` FROM description_rules ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []*matching.Rule

	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}
