package fixtures

import (
	"fmt"

	"github.com/phishsim/gateway/internal/model"
)

func strPtr(s string) *string { return &s }

func NewTestRecipient(email, name, department string) *model.Recipient {
	r := &model.Recipient{Email: email}
	if name != "" {
		r.Name = strPtr(name)
	}
	if department != "" {
		r.Department = strPtr(department)
	}
	return r
}

func RecipientCreateRequest(email, name, department string) model.RecipientCreateRequest {
	p := model.RecipientCreateRequest{Email: email}
	if name != "" {
		p.Name = strPtr(name)
	}
	if department != "" {
		p.Department = strPtr(department)
	}
	return p
}

// TestTeam is a small realistic recipient set used by the flow tests.
var TestTeam = []model.RecipientCreateRequest{
	RecipientCreateRequest("alice@example.com", "Alice Park", "Engineering"),
	RecipientCreateRequest("bob@example.com", "Bob Reyes", "Finance"),
	RecipientCreateRequest("carol@example.com", "", ""),
}

const CampaignBodyWithPlaceholders = `<p>Hi {{name}},</p>
<p>Your account {{email}} needs attention.</p>
<p><a href="{{tracking_url}}">Review now</a></p>`

func CampaignCreateRequest(name string) model.CampaignCreateRequest {
	return model.CampaignCreateRequest{
		Name:    name,
		Subject: fmt.Sprintf("[%s] Action required", name),
		Body:    CampaignBodyWithPlaceholders,
	}
}
