package repository

import (
	"context"

	"github.com/google/uuid"
)

// Client represents a client row with its contacts loaded.
type Client struct {
	ID          uuid.UUID `db:"id"`
	Type        string    `db:"type"`
	Name        string    `db:"name"`
	CompanyName *string   `db:"company_name"`
	FirstName   *string   `db:"first_name"`
	LastName    *string   `db:"last_name"`
	SIRET       string    `db:"siret"`
	Email       string    `db:"email"`
	Phone       string    `db:"phone"`
	Address     string    `db:"address"`
	City        string    `db:"city"`
	Status      string    `db:"status"`
	Tags        []string  `db:"tags"`
	Contacts    []Contact
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

// Contact represents a client contact row. Contacts are soft-deleted via
// the active flag, never removed.
type Contact struct {
	ID               uuid.UUID `db:"id"`
	ClientID         uuid.UUID `db:"client_id"`
	FirstName        string    `db:"first_name"`
	LastName         string    `db:"last_name"`
	Email            string    `db:"email"`
	Mobile           string    `db:"mobile"`
	Roles            []string  `db:"roles"`
	IsBillingDefault bool      `db:"is_billing_default"`
	Active           bool      `db:"active"`
	CreatedAt        string    `db:"created_at"`
	UpdatedAt        string    `db:"updated_at"`
}

// CreateClientParams contains data for creating a client.
type CreateClientParams struct {
	Type        string
	Name        string
	CompanyName *string
	FirstName   *string
	LastName    *string
	SIRET       string
	Email       string
	Phone       string
	Address     string
	City        string
	Status      string
	Tags        []string
}

// UpdateClientParams contains data for updating a client.
type UpdateClientParams struct {
	ID          uuid.UUID
	Name        *string
	CompanyName *string
	SIRET       *string
	Email       *string
	Phone       *string
	Address     *string
	City        *string
	Status      *string
	Tags        []string
}

// ListClientsParams defines filters for listing clients.
type ListClientsParams struct {
	Search    string
	Status    string
	Type      string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// CreateContactParams contains data for creating a contact.
type CreateContactParams struct {
	ClientID         uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Mobile           string
	Roles            []string
	IsBillingDefault bool
}

// UpdateContactParams contains data for updating a contact.
type UpdateContactParams struct {
	ID        uuid.UUID
	ClientID  uuid.UUID
	FirstName *string
	LastName  *string
	Email     *string
	Mobile    *string
	Roles     []string
}

// Repository defines client storage operations.
type Repository interface {
	CreateClient(ctx context.Context, params CreateClientParams) (Client, error)
	UpdateClient(ctx context.Context, params UpdateClientParams) (Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (Client, error)
	ListClients(ctx context.Context, params ListClientsParams) ([]Client, int, error)
	ListAllWithContacts(ctx context.Context) ([]Client, error)

	CreateContact(ctx context.Context, params CreateContactParams) (Contact, error)
	UpdateContact(ctx context.Context, params UpdateContactParams) (Contact, error)
	DeactivateContact(ctx context.Context, clientID, contactID uuid.UUID) error
	RestoreContact(ctx context.Context, clientID, contactID uuid.UUID) error
	SetBillingDefault(ctx context.Context, clientID, contactID uuid.UUID) error
}
