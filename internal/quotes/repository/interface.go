package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"atelier_erp_backend/internal/quotes/domain"
)

// Engagement represents an engagement row. Prestation lines, overrides
// and send history live in JSONB columns.
type Engagement struct {
	ID                uuid.UUID  `db:"id"`
	ClientID          uuid.UUID  `db:"client_id"`
	CompanyID         *uuid.UUID `db:"company_id"`
	Kind              string     `db:"kind"`
	Status            string     `db:"status"`
	QuoteStatus       *string    `db:"quote_status"`
	QuoteNumber       *string    `db:"quote_number"`
	QuoteName         *string    `db:"quote_name"`
	InvoiceNumber     *string    `db:"invoice_number"`
	InvoiceVATEnabled *bool      `db:"invoice_vat_enabled"`
	ScheduledAt       *time.Time `db:"scheduled_at"`
	Services          []domain.ServiceLine
	SupportType       string  `db:"support_type"`
	SupportDetail     string  `db:"support_detail"`
	AdditionalCharge  float64 `db:"additional_charge"`
	ContactIDs        []uuid.UUID
	AssignedUserIDs   []uuid.UUID
	SendHistory       []domain.SendRecord
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`
}

// CreateEngagementParams contains data for creating an engagement.
type CreateEngagementParams struct {
	ClientID          uuid.UUID
	CompanyID         *uuid.UUID
	Kind              string
	Status            string
	QuoteStatus       *string
	QuoteNumber       *string
	QuoteName         *string
	InvoiceNumber     *string
	InvoiceVATEnabled *bool
	ScheduledAt       *time.Time
	Services          []domain.ServiceLine
	SupportType       string
	SupportDetail     string
	AdditionalCharge  float64
	ContactIDs        []uuid.UUID
	AssignedUserIDs   []uuid.UUID
}

// UpdateEngagementParams contains data for updating an engagement's
// editable fields. Lifecycle fields move through SaveState instead.
type UpdateEngagementParams struct {
	ID                uuid.UUID
	CompanyID         *uuid.UUID
	QuoteName         *string
	InvoiceVATEnabled *bool
	ScheduledAt       *time.Time
	Services          []domain.ServiceLine
	ReplaceServices   bool
	SupportType       *string
	SupportDetail     *string
	AdditionalCharge  *float64
	ContactIDs        []uuid.UUID
	AssignedUserIDs   []uuid.UUID
}

// SaveStateParams persists the outcome of a domain lifecycle operation.
type SaveStateParams struct {
	ID            uuid.UUID
	Kind          string
	Status        string
	QuoteStatus   *string
	InvoiceNumber *string
	ScheduledAt   *time.Time
	SendHistory   []domain.SendRecord
	ContactIDs    []uuid.UUID
}

// ListEngagementsParams defines filters for listing engagements.
type ListEngagementsParams struct {
	ClientID  *uuid.UUID
	Kind      string
	Status    string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// Repository defines engagement storage operations.
type Repository interface {
	CreateEngagement(ctx context.Context, params CreateEngagementParams) (Engagement, error)
	UpdateEngagement(ctx context.Context, params UpdateEngagementParams) (Engagement, error)
	SaveState(ctx context.Context, params SaveStateParams) (Engagement, error)
	DeleteEngagement(ctx context.Context, id uuid.UUID) error
	GetEngagementByID(ctx context.Context, id uuid.UUID) (Engagement, error)
	ListEngagements(ctx context.Context, params ListEngagementsParams) ([]Engagement, int, error)
	ListAllEngagements(ctx context.Context) ([]Engagement, error)
}
