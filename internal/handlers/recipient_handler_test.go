package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/phishsim/gateway/internal/model"
	"github.com/phishsim/gateway/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecipientService struct {
	mock.Mock
}

func (m *MockRecipientService) Create(ctx context.Context, p model.RecipientCreateRequest) (*model.Recipient, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientService) Get(ctx context.Context, id uuid.UUID) (*model.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientService) List(ctx context.Context) ([]*model.Recipient, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Recipient), args.Error(1)
}

func (m *MockRecipientService) Update(ctx context.Context, id uuid.UUID, p model.RecipientUpdateRequest) (*model.Recipient, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipientService) Import(ctx context.Context, rows []model.RecipientCreateRequest) (*model.RecipientImportResult, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecipientImportResult), args.Error(1)
}

func TestRecipientHandler_CreateRecipient(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockRecipientService)
		h := NewRecipientHandler(svc)

		body, _ := json.Marshal(model.RecipientCreateRequest{Email: "a@example.com"})
		svc.On("Create", mock.Anything, mock.Anything).
			Return(&model.Recipient{ID: uuid.New(), Email: "a@example.com"}, nil)

		ctx := setupTestContext("POST", "/api/recipients", body)
		h.CreateRecipient(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
	})

	t.Run("duplicate maps to 409", func(t *testing.T) {
		svc := new(MockRecipientService)
		h := NewRecipientHandler(svc)

		body, _ := json.Marshal(model.RecipientCreateRequest{Email: "a@example.com"})
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateEmail)

		ctx := setupTestContext("POST", "/api/recipients", body)
		h.CreateRecipient(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})
}

func TestRecipientHandler_ImportRecipients(t *testing.T) {
	svc := new(MockRecipientService)
	h := NewRecipientHandler(svc)

	rows := []model.RecipientCreateRequest{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}
	body, _ := json.Marshal(rows)

	svc.On("Import", mock.Anything, rows).Return(&model.RecipientImportResult{
		Total: 2, Added: 1, Skipped: 1, Errors: []model.ImportError{},
	}, nil)

	ctx := setupTestContext("POST", "/api/recipients/import", body)
	h.ImportRecipients(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var resp model.RecipientImportResult
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
	assert.Equal(t, 1, resp.Added)
	assert.Equal(t, 1, resp.Skipped)
}

func TestRecipientHandler_DeleteRecipient(t *testing.T) {
	svc := new(MockRecipientService)
	h := NewRecipientHandler(svc)
	id := uuid.New()

	svc.On("Delete", mock.Anything, id).Return(services.ErrRecipientNotFound)

	ctx := setupTestContext("DELETE", "/api/recipients/"+id.String(), nil)
	ctx.SetUserValue("id", id.String())
	h.DeleteRecipient(ctx)

	assert.Equal(t, 404, ctx.Response.StatusCode())
}
