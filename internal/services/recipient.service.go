package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/repository"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
	ErrDuplicateEmail    = errors.New("recipient email already exists")
)

type RecipientRepository interface {
	Create(ctx context.Context, r *model.Recipient) (*model.Recipient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Recipient, error)
	GetByEmail(ctx context.Context, email string) (*model.Recipient, error)
	List(ctx context.Context) ([]*model.Recipient, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type RecipientService struct {
	recipientRepo RecipientRepository
}

func NewRecipientService(recipientRepo RecipientRepository) *RecipientService {
	return &RecipientService{
		recipientRepo: recipientRepo,
	}
}

func (s *RecipientService) Create(ctx context.Context, p model.RecipientCreateRequest) (*model.Recipient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(strings.ToLower(p.Email))

	if _, err := s.recipientRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrRecipientNotFound) {
		return nil, err
	}

	return s.recipientRepo.Create(ctx, &model.Recipient{
		Email:      email,
		Name:       p.Name,
		Department: p.Department,
	})
}

func (s *RecipientService) Get(ctx context.Context, id uuid.UUID) (*model.Recipient, error) {
	r, err := s.recipientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecipientNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RecipientService) List(ctx context.Context) ([]*model.Recipient, error) {
	return s.recipientRepo.List(ctx)
}

func (s *RecipientService) Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error) {
	r, err := s.recipientRepo.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrRecipientNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return r, nil
}

func (s *RecipientService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.recipientRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrRecipientNotFound) {
		return ErrRecipientNotFound
	}
	return err
}

// Import adds a whole list at once. Rows whose email is already known are
// counted as skipped, invalid rows are collected per row, and neither
// aborts the rest of the batch.
func (s *RecipientService) Import(ctx context.Context, rows []model.RecipientCreateRequest) (*model.RecipientImportResult, error) {
	result := &model.RecipientImportResult{
		Total:  len(rows),
		Errors: []model.ImportError{},
	}

	for _, row := range rows {
		_, err := s.Create(ctx, row)
		switch {
		case err == nil:
			result.Added++
		case errors.Is(err, ErrDuplicateEmail):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, model.ImportError{
				Email: row.Email,
				Error: err.Error(),
			})
		}
	}

	return result, nil
}
