package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/pg"
)

// ClickEventEntity rows are created in the issued state at send time. The
// unique index on tracking_token is the serialization point that makes the
// first-click write race free.
type ClickEventEntity struct {
	pg.Model
	RecipientID   uuid.UUID  `db:"recipient_id"   gorm:"column:recipient_id;type:uuid;not null;index"`
	CampaignID    uuid.UUID  `db:"campaign_id"    gorm:"column:campaign_id;type:uuid;not null;index"`
	TrackingToken string     `db:"tracking_token" gorm:"column:tracking_token;not null;unique"`
	IPAddress     *string    `db:"ip_address"     gorm:"column:ip_address"`
	UserAgent     *string    `db:"user_agent"     gorm:"column:user_agent"`
	ClickedAt     *time.Time `db:"clicked_at"     gorm:"column:clicked_at"`

	Recipient *RecipientEntity `gorm:"foreignKey:RecipientID;references:ID;constraint:OnDelete:CASCADE"`
	Campaign  *CampaignEntity  `gorm:"foreignKey:CampaignID;references:ID;constraint:OnDelete:CASCADE"`
}

func (ClickEventEntity) TableName() string {
	return "click_events"
}

func toClickEventEntity(m *model.ClickEvent) *ClickEventEntity {
	if m == nil {
		return nil
	}
	e := &ClickEventEntity{
		RecipientID:   m.RecipientID,
		CampaignID:    m.CampaignID,
		TrackingToken: m.TrackingToken,
		IPAddress:     m.IPAddress,
		UserAgent:     m.UserAgent,
		ClickedAt:     m.ClickedAt,
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return e
}

func toClickEventModel(e *ClickEventEntity) *model.ClickEvent {
	if e == nil {
		return nil
	}
	return &model.ClickEvent{
		ID:            e.ID,
		RecipientID:   e.RecipientID,
		CampaignID:    e.CampaignID,
		TrackingToken: e.TrackingToken,
		IPAddress:     e.IPAddress,
		UserAgent:     e.UserAgent,
		ClickedAt:     e.ClickedAt,
		CreatedAt:     e.CreatedAt,
		Recipient:     toRecipientModel(e.Recipient),
		Campaign:      toCampaignModel(e.Campaign),
	}
}

func toClickEventModels(entities []*ClickEventEntity) []*model.ClickEvent {
	if entities == nil {
		return nil
	}
	models := make([]*model.ClickEvent, len(entities))
	for i, e := range entities {
		models[i] = toClickEventModel(e)
	}
	return models
}
