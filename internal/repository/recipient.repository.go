package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrRecipientNotFound = errors.New("recipient not found")
)

type RecipientRepository struct {
	*pg.DB
}

func NewRecipientRepository(db *pg.DB) *RecipientRepository {
	return &RecipientRepository{
		db,
	}
}

func (r *RecipientRepository) Create(ctx context.Context, rec *model.Recipient) (*model.Recipient, error) {
	entity := toRecipientEntity(rec)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toRecipientModel(entity), nil
}

func (r *RecipientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipient, error) {
	var entity RecipientEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return toRecipientModel(&entity), nil
}

func (r *RecipientRepository) GetByEmail(ctx context.Context, email string) (*model.Recipient, error) {
	var entity RecipientEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("email = ?", email).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, err
	}
	return toRecipientModel(&entity), nil
}

// List returns every recipient, newest first.
func (r *RecipientRepository) List(ctx context.Context) ([]*model.Recipient, error) {
	var entities []*RecipientEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("created_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toRecipientModels(entities), nil
}

func (r *RecipientRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&RecipientEntity{}).
		Count(&total).
		Error
	return total, err
}

func (r *RecipientRepository) Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error) {
	updates := map[string]interface{}{}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Department != nil {
		updates["department"] = *p.Department
	}

	if len(updates) > 0 {
		result := r.Write(ctx).WithContext(ctx).
			Model(&RecipientEntity{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrRecipientNotFound
		}
	}

	return r.GetByID(ctx, id)
}

func (r *RecipientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&RecipientEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipientNotFound
	}
	return nil
}
