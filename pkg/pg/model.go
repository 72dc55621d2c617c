package pg

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is the shared entity base. IDs are generated application-side so the
// sqlite test driver and postgres behave identically.
type Model struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
