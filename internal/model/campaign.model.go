package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CampaignStatus is the lifecycle state of a campaign. The only transition
// is draft -> sent, set by the send operation; re-sending an already sent
// campaign issues fresh tokens and leaves the status at sent.
type CampaignStatus string

const (
	CampaignStatusDraft CampaignStatus = "draft"
	CampaignStatusSent  CampaignStatus = "sent"
)

type Campaign struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	Body      string         `json:"body"`
	Status    CampaignStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	SentAt    *time.Time     `json:"sent_at"`
}

type CampaignCreateRequest struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (p CampaignCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.Subject == "" {
		return errors.New("subject is required")
	}
	if p.Body == "" {
		return errors.New("body is required")
	}
	return nil
}

// CampaignUpdateRequest carries partial updates; nil fields are untouched.
type CampaignUpdateRequest struct {
	Name    *string `json:"name"`
	Subject *string `json:"subject"`
	Body    *string `json:"body"`
}

// SendResult is the per-batch accounting of one send invocation. Dispatch
// failures are captured per recipient, they never abort the batch.
type SendResult struct {
	Total  int         `json:"total"`
	Sent   int         `json:"sent"`
	Failed int         `json:"failed"`
	Errors []SendError `json:"errors"`
}

type SendError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

// CampaignStats aggregates click events for one campaign. TotalRecipients
// counts every stored recipient, not the campaign's send list; ClickRate is
// formatted with two decimals ("40.00").
type CampaignStats struct {
	TotalRecipients int    `json:"totalRecipients"`
	TotalClicks     int    `json:"totalClicks"`
	UniqueClickers  int    `json:"uniqueClickers"`
	ClickRate       string `json:"clickRate"`
}
