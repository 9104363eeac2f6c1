package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Lead represents a lead row with its activity log, newest first.
type Lead struct {
	ID             uuid.UUID  `db:"id"`
	Company        string     `db:"company"`
	Contact        string     `db:"contact"`
	Phone          string     `db:"phone"`
	Email          string     `db:"email"`
	Source         string     `db:"source"`
	Segment        string     `db:"segment"`
	Status         string     `db:"status"`
	NextStepDate   *time.Time `db:"next_step_date"`
	NextStepNote   string     `db:"next_step_note"`
	LastContact    *time.Time `db:"last_contact"`
	EstimatedValue *float64   `db:"estimated_value"`
	Owner          string     `db:"owner"`
	Tags           []string
	Address        string     `db:"address"`
	CompanyID      *uuid.UUID `db:"company_id"`
	SupportType    string     `db:"support_type"`
	SupportDetail  string     `db:"support_detail"`
	SIRET          *string    `db:"siret"`
	ClientType     *string    `db:"client_type"`
	CreatedAt      string     `db:"created_at"`
	UpdatedAt      string     `db:"updated_at"`
	Activities     []Activity
}

// Activity is one entry of a lead's activity log.
type Activity struct {
	ID        uuid.UUID `db:"id"`
	LeadID    uuid.UUID `db:"lead_id"`
	Type      string    `db:"type"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

// CreateLeadParams contains data for creating a lead.
type CreateLeadParams struct {
	Company        string
	Contact        string
	Phone          string
	Email          string
	Source         string
	Segment        string
	Status         string
	NextStepDate   *time.Time
	NextStepNote   string
	EstimatedValue *float64
	Owner          string
	Tags           []string
	Address        string
	CompanyID      *uuid.UUID
	SupportType    string
	SupportDetail  string
	SIRET          *string
	ClientType     *string
}

// UpdateLeadParams contains data for updating a lead. Nil fields are
// left unchanged; ClearNextStep drops the planned follow-up.
type UpdateLeadParams struct {
	ID             uuid.UUID
	Company        *string
	Contact        *string
	Phone          *string
	Email          *string
	Source         *string
	Segment        *string
	Status         *string
	NextStepDate   *time.Time
	ClearNextStep  bool
	NextStepNote   *string
	EstimatedValue *float64
	Owner          *string
	Tags           []string
	Address        *string
	CompanyID      *uuid.UUID
	SupportType    *string
	SupportDetail  *string
	SIRET          *string
	ClientType     *string
}

// AddActivityParams contains data for recording a lead activity.
type AddActivityParams struct {
	LeadID           uuid.UUID
	Type             string
	Content          string
	StampLastContact bool
}

// ListLeadsParams defines filters for listing leads.
type ListLeadsParams struct {
	Search    string
	Status    string
	Owner     string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// Repository defines lead storage operations.
type Repository interface {
	CreateLead(ctx context.Context, params CreateLeadParams) (Lead, error)
	UpdateLead(ctx context.Context, params UpdateLeadParams) (Lead, error)
	DeleteLead(ctx context.Context, id uuid.UUID) error
	GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ListLeads(ctx context.Context, params ListLeadsParams) ([]Lead, int, error)
	ListDueFollowUps(ctx context.Context, before time.Time) ([]Lead, error)
	AddActivity(ctx context.Context, params AddActivityParams) (Activity, error)
	RemoveActivity(ctx context.Context, leadID, activityID uuid.UUID) error
}
