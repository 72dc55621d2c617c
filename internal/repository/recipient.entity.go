package repository

import (
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/pkg/pg"
)

type RecipientEntity struct {
	pg.Model
	Email      string  `db:"email"      gorm:"column:email;not null;unique"`
	Name       *string `db:"name"       gorm:"column:name"`
	Department *string `db:"department" gorm:"column:department"`
}

func (RecipientEntity) TableName() string {
	return "recipients"
}

func toRecipientEntity(m *model.Recipient) *RecipientEntity {
	if m == nil {
		return nil
	}
	e := &RecipientEntity{
		Email:      m.Email,
		Name:       m.Name,
		Department: m.Department,
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	e.UpdatedAt = m.UpdatedAt
	return e
}

func toRecipientModel(e *RecipientEntity) *model.Recipient {
	if e == nil {
		return nil
	}
	return &model.Recipient{
		ID:         e.ID,
		Email:      e.Email,
		Name:       e.Name,
		Department: e.Department,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toRecipientModels(entities []*RecipientEntity) []*model.Recipient {
	if entities == nil {
		return nil
	}
	models := make([]*model.Recipient, len(entities))
	for i, e := range entities {
		models[i] = toRecipientModel(e)
	}
	return models
}
