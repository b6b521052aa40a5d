// Package matching learns how raw bank statement descriptions should be
// labelled and categorised.
package matching

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/MrJamesThe3rd/finplan/internal/errors"
)

// Rule rewrites any description containing Pattern, case-insensitively.
// Either field of the rewrite may be empty.
type Rule struct {
	ID          uuid.UUID
	Pattern     string
	Description string
	CategoryID  *uuid.UUID
	CreatedAt   time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindMatch returns the longest matching rule, newest first on ties, or
	// nil when no rule matches.
	FindMatch(ctx context.Context, rawDescription string) (*Rule, error)
	CreateRule(ctx context.Context, r *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the rule for rawDescription, or nil when none matches.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (*Rule, error) {
	if strings.TrimSpace(rawDescription) == "" {
		return nil, nil
	}

	return s.repo.FindMatch(ctx, rawDescription)
}

type LearnParams struct {
	Pattern     string
	Description string
	CategoryID  *uuid.UUID
}

// Learn remembers a new rule.
func (s *Service) Learn(ctx context.Context, params LearnParams) (*Rule, error) {
	rule := &Rule{
		Pattern:     strings.TrimSpace(params.Pattern),
		Description: strings.TrimSpace(params.Description),
		CategoryID:  params.CategoryID,
	}

	if rule.Pattern == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "pattern is required")
	}

	if rule.Description == "" && rule.CategoryID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "a rule needs a description or a category")
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}
