package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Recipient struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       *string   `json:"name"`
	Department *string   `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DisplayName is what campaign templates see as {{name}}: the stored name
// when present, the email address otherwise.
func (r *Recipient) DisplayName() string {
	if r.Name != nil && *r.Name != "" {
		return *r.Name
	}
	return r.Email
}

type RecipientCreateRequest struct {
	Email      string  `json:"email"`
	Name       *string `json:"name"`
	Department *string `json:"department"`
}

func (p RecipientCreateRequest) Validate() error {
	if p.Email == "" {
		return errors.New("email is required")
	}
	return nil
}

// RecipientUpdateRequest carries partial updates; nil fields are untouched.
type RecipientUpdateRequest struct {
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	Department *string `json:"department"`
}

// RecipientImportResult is returned by the bulk import operation.
type RecipientImportResult struct {
	Total   int           `json:"total"`
	Added   int           `json:"added"`
	Skipped int           `json:"skipped"`
	Errors  []ImportError `json:"errors"`
}

type ImportError struct {
	Email string `json:"email"`
	Error string `json:"error"`
}
