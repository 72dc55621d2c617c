package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/audit"
	"github.com/phishsim/gateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) Create(ctx context.Context, r *model.Recipient) (*model.Recipient, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) GetByEmail(ctx context.Context, email string) (*model.Recipient, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) List(ctx context.Context) ([]*model.Recipient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipientRepository) Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(ctx context.Context, c *model.Campaign) (*model.Campaign, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) List(ctx context.Context) ([]*model.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Update(ctx context.Context, id uuid.UUID, p model.CampaignUpdateRequest) (*model.Campaign, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) (*model.Campaign, error) {
	args := m.Called(ctx, id, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockClickEventRepository struct {
	mock.Mock
}

func (m *MockClickEventRepository) Create(ctx context.Context, e *model.ClickEvent) (*model.ClickEvent, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClickEvent), args.Error(1)
}

func (m *MockClickEventRepository) GetByToken(ctx context.Context, t string) (*model.ClickEvent, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClickEvent), args.Error(1)
}

func (m *MockClickEventRepository) RecordClick(ctx context.Context, t, ip, userAgent string, at time.Time) (bool, error) {
	args := m.Called(ctx, t, ip, userAgent, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockClickEventRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID) ([]*model.ClickEvent, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ClickEvent), args.Error(1)
}

func (m *MockClickEventRepository) ListAll(ctx context.Context) ([]*model.ClickEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ClickEvent), args.Error(1)
}

func (m *MockClickEventRepository) CountClicked(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClickEventRepository) CountDistinctClickers(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	args := m.Called(ctx, campaignID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Send(to, subject, html string) error {
	args := m.Called(to, subject, html)
	return args.Error(0)
}

func (m *MockTransport) Verify() error {
	args := m.Called()
	return args.Error(0)
}

type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(rec audit.ClickRecord) {
	m.Called(rec)
}
