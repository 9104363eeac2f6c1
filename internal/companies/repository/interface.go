package repository

import (
	"context"

	"github.com/google/uuid"
)

// Company represents an operator legal entity row. Engagements may be
// issued under any company; its VATEnabled flag overrides the global
// default when set.
type Company struct {
	ID         uuid.UUID `db:"id"`
	Name       string    `db:"name"`
	LegalName  string    `db:"legal_name"`
	SIRET      *string   `db:"siret"`
	VATNumber  *string   `db:"vat_number"`
	Address    string    `db:"address"`
	City       string    `db:"city"`
	Email      string    `db:"email"`
	Phone      string    `db:"phone"`
	VATEnabled *bool     `db:"vat_enabled"`
	CreatedAt  string    `db:"created_at"`
	UpdatedAt  string    `db:"updated_at"`
}

// CreateCompanyParams contains data for creating a company.
type CreateCompanyParams struct {
	Name       string
	LegalName  string
	SIRET      *string
	VATNumber  *string
	Address    string
	City       string
	Email      string
	Phone      string
	VATEnabled *bool
}

// UpdateCompanyParams contains data for updating a company. Nil fields
// are left unchanged; ClearVATOverride drops the VAT override back to
// the global default.
type UpdateCompanyParams struct {
	ID               uuid.UUID
	Name             *string
	LegalName        *string
	SIRET            *string
	VATNumber        *string
	Address          *string
	City             *string
	Email            *string
	Phone            *string
	VATEnabled       *bool
	ClearVATOverride bool
}

// Repository defines company storage operations.
type Repository interface {
	CreateCompany(ctx context.Context, params CreateCompanyParams) (Company, error)
	UpdateCompany(ctx context.Context, params UpdateCompanyParams) (Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	GetCompanyByID(ctx context.Context, id uuid.UUID) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}
