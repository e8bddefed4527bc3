package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kollektivet/internal/models"
	"kollektivet/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQuoteNotFound = errors.New("quote not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidAuthor = errors.New("author user does not exist")
)

// Notifier announces new quotes to the house group chat. Implementations must
// tolerate a nil receiver so a disabled notifier can be passed through.
type Notifier interface {
	QuoteSubmitted(quote *models.Quote)
}

type CreateQuoteInput struct {
	Text     string
	Author   string
	Context  *string
	AuthorID *string
}

type QuoteService interface {
	List(ctx context.Context) ([]*models.Quote, error)
	Create(ctx context.Context, input CreateQuoteInput, submitterID string) (*models.Quote, error)
	Update(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error)
	Delete(ctx context.Context, id string, callerID, role string) error
}

type quoteService struct {
	quotes   repository.QuoteRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewQuoteService(quotes repository.QuoteRepository, notifier Notifier, logger *zap.Logger) QuoteService {
	return &quoteService{quotes: quotes, notifier: notifier, logger: logger}
}

func (s *quoteService) List(ctx context.Context) ([]*models.Quote, error) {
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

func (s *quoteService) Create(ctx context.Context, input CreateQuoteInput, submitterID string) (*models.Quote, error) {
	quote := &models.Quote{
		ID:          uuid.NewString(),
		Text:        input.Text,
		Author:      input.Author,
		Context:     input.Context,
		AuthorID:    input.AuthorID,
		SubmittedBy: submitterID,
	}

	created, err := s.quotes.Create(ctx, quote)
	if err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, ErrInvalidAuthor
		}
		s.logger.Error("Failed to create quote", zap.Error(err))
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	if s.notifier != nil {
		s.notifier.QuoteSubmitted(created)
	}
	return created, nil
}

func (s *quoteService) Update(ctx context.Context, id string, patch models.QuotePatch, callerID, role string) (*models.Quote, error) {
	// An empty patch is an idempotent no-op, but it still goes through the
	// same existence and ownership gates as a real update.
	if patch.Empty() {
		quote, err := s.quotes.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrQuoteNotFound
			}
			s.logger.Error("Failed to get quote", zap.Error(err))
			return nil, fmt.Errorf("failed to get quote: %w", err)
		}
		if !CanModify(callerID, role, quote.SubmittedBy) {
			return nil, ErrForbidden
		}
		return quote, nil
	}

	matched, err := s.quotes.Update(ctx, id, patch, callerID, role == models.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to update quote", zap.Error(err))
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}
	if !matched {
		return nil, s.rejectUnmatched(ctx, id)
	}

	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to reload quote after update", zap.Error(err))
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}
	return quote, nil
}

func (s *quoteService) Delete(ctx context.Context, id string, callerID, role string) error {
	matched, err := s.quotes.Delete(ctx, id, callerID, role == models.RoleAdmin)
	if err != nil {
		s.logger.Error("Failed to delete quote", zap.Error(err))
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if !matched {
		return s.rejectUnmatched(ctx, id)
	}
	return nil
}

// rejectUnmatched picks the right error when a conditional write touched no
// rows: not-found when the quote truly does not exist, forbidden otherwise.
func (s *quoteService) rejectUnmatched(ctx context.Context, id string) error {
	exists, err := s.quotes.Exists(ctx, id)
	if err != nil {
		s.logger.Error("Failed to check quote existence", zap.Error(err))
		return fmt.Errorf("failed to check quote existence: %w", err)
	}
	if !exists {
		return ErrQuoteNotFound
	}
	return ErrForbidden
}
