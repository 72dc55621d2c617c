package repository

import (
	"time"

	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/pg"
)

type CampaignEntity struct {
	pg.Model
	Name    string     `db:"name"    gorm:"column:name;not null"`
	Subject string     `db:"subject" gorm:"column:subject;not null"`
	Body    string     `db:"body"    gorm:"column:body;not null"`
	Status  string     `db:"status"  gorm:"column:status;not null;default:draft"`
	SentAt  *time.Time `db:"sent_at" gorm:"column:sent_at"`
}

func (CampaignEntity) TableName() string {
	return "campaigns"
}

func toCampaignEntity(m *model.Campaign) *CampaignEntity {
	if m == nil {
		return nil
	}
	e := &CampaignEntity{
		Name:    m.Name,
		Subject: m.Subject,
		Body:    m.Body,
		Status:  string(m.Status),
		SentAt:  m.SentAt,
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return e
}

func toCampaignModel(e *CampaignEntity) *model.Campaign {
	if e == nil {
		return nil
	}
	return &model.Campaign{
		ID:        e.ID,
		Name:      e.Name,
		Subject:   e.Subject,
		Body:      e.Body,
		Status:    model.CampaignStatus(e.Status),
		CreatedAt: e.CreatedAt,
		SentAt:    e.SentAt,
	}
}

func toCampaignModels(entities []*CampaignEntity) []*model.Campaign {
	if entities == nil {
		return nil
	}
	models := make([]*model.Campaign, len(entities))
	for i, e := range entities {
		models[i] = toCampaignModel(e)
	}
	return models
}
