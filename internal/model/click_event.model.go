package model

import (
	"time"

	"github.com/google/uuid"
)

// ClickEvent is a tracking record pre-registered at send time in the issued
// (unclicked) state and completed at most once by the tracking endpoint.
// IP, user agent and clicked timestamp stay null until the first click and
// are never overwritten afterwards.
type ClickEvent struct {
	ID            uuid.UUID  `json:"id"`
	RecipientID   uuid.UUID  `json:"recipient_id"`
	CampaignID    uuid.UUID  `json:"campaign_id"`
	TrackingToken string     `json:"tracking_token"`
	IPAddress     *string    `json:"ip_address"`
	UserAgent     *string    `json:"user_agent"`
	ClickedAt     *time.Time `json:"clicked_at"`
	CreatedAt     time.Time  `json:"created_at"`

	Recipient *Recipient `json:"recipient,omitempty"`
	Campaign  *Campaign  `json:"campaign,omitempty"`
}

// Clicked reports whether the event has left the issued state.
func (e *ClickEvent) Clicked() bool {
	return e.ClickedAt != nil
}
