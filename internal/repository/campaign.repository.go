package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
)

type CampaignRepository struct {
	*pg.DB
}

func NewCampaignRepository(db *pg.DB) *CampaignRepository {
	return &CampaignRepository{
		db,
	}
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	entity := toCampaignEntity(c)
	if entity.Status == "" {
		entity.Status = string(model.CampaignStatusDraft)
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCampaignModel(entity), nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	var entity CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return toCampaignModel(&entity), nil
}

// List returns every campaign, newest first.
func (r *CampaignRepository) List(ctx context.Context) ([]*model.Campaign, error) {
	var entities []*CampaignEntity
	err := r.Read(ctx).WithContext(ctx).
		Order("created_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toCampaignModels(entities), nil
}

func (r *CampaignRepository) Update(ctx context.Context, id uuid.UUID, p model.CampaignUpdateRequest) (*model.Campaign, error) {
	updates := map[string]interface{}{}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Subject != nil {
		updates["subject"] = *p.Subject
	}
	if p.Body != nil {
		updates["body"] = *p.Body
	}

	if len(updates) > 0 {
		result := r.Write(ctx).WithContext(ctx).
			Model(&CampaignEntity{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrCampaignNotFound
		}
	}

	return r.GetByID(ctx, id)
}

// MarkSent sets the status to sent and stamps sent_at. The transition is
// monotonic: a later send refreshes the timestamp but never reverts status.
func (r *CampaignRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (*model.Campaign, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CampaignEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  string(model.CampaignStatusSent),
			"sent_at": at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCampaignNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&CampaignEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
