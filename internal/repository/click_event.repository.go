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
	ErrClickEventNotFound = errors.New("click event not found")
)

type ClickEventRepository struct {
	*pg.DB
}

func NewClickEventRepository(db *pg.DB) *ClickEventRepository {
	return &ClickEventRepository{
		db,
	}
}

// Create pre-registers an issued (unclicked) event for a freshly generated
// token. The unique constraint on tracking_token rejects the negligible
// collision case instead of silently remapping a token.
func (r *ClickEventRepository) Create(ctx context.Context, e *model.ClickEvent) (*model.ClickEvent, error) {
	entity := toClickEventEntity(e)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toClickEventModel(entity), nil
}

func (r *ClickEventRepository) GetByToken(ctx context.Context, token string) (*model.ClickEvent, error) {
	var entity ClickEventEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tracking_token = ?", token).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClickEventNotFound
		}
		return nil, err
	}
	return toClickEventModel(&entity), nil
}

// RecordClick performs the issued -> clicked transition. The conditional
// update only matches while clicked_at is still null, so under concurrent
// duplicate requests exactly one caller observes won=true; the rest see the
// already-clicked row untouched.
func (r *ClickEventRepository) RecordClick(ctx context.Context, token, ip, userAgent string, at time.Time) (bool, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ClickEventEntity{}).
		Where("tracking_token = ? AND clicked_at IS NULL", token).
		Updates(map[string]interface{}{
			"ip_address": ip,
			"user_agent": userAgent,
			"clicked_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListByCampaign returns the campaign's events joined with their recipients,
// most recent click first.
func (r *ClickEventRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.ClickEvent, error) {
	var entities []*ClickEventEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Recipient").
		Where("campaign_id = ?", campaignID).
		Order("clicked_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toClickEventModels(entities), nil
}

// ListAll returns every event joined with recipient and campaign.
func (r *ClickEventRepository) ListAll(ctx context.Context) ([]*model.ClickEvent, error) {
	var entities []*ClickEventEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Recipient").
		Preload("Campaign").
		Order("clicked_at DESC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toClickEventModels(entities), nil
}

// CountClicked counts events for the campaign that have left the issued
// state; pre-registered rows that were never clicked are excluded.
func (r *ClickEventRepository) CountClicked(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&ClickEventEntity{}).
		Where("campaign_id = ? AND clicked_at IS NOT NULL", campaignID).
		Count(&total).
		Error
	return total, err
}

// CountDistinctClickers counts distinct recipients among clicked events.
func (r *ClickEventRepository) CountDistinctClickers(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&ClickEventEntity{}).
		Where("campaign_id = ? AND clicked_at IS NOT NULL", campaignID).
		Distinct("recipient_id").
		Count(&total).
		Error
	return total, err
}
