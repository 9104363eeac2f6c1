package transport

import "github.com/google/uuid"

type CreateCompanyRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=200"`
	LegalName  string  `json:"legalName" validate:"omitempty,max=200"`
	SIRET      *string `json:"siret,omitempty" validate:"omitempty,max=20"`
	VATNumber  *string `json:"vatNumber,omitempty" validate:"omitempty,max=20"`
	Address    string  `json:"address" validate:"omitempty,max=300"`
	City       string  `json:"city" validate:"omitempty,max=100"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Phone      string  `json:"phone" validate:"omitempty,max=30"`
	VATEnabled *bool   `json:"vatEnabled,omitempty"`
}

type UpdateCompanyRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	LegalName        *string `json:"legalName,omitempty" validate:"omitempty,max=200"`
	SIRET            *string `json:"siret,omitempty" validate:"omitempty,max=20"`
	VATNumber        *string `json:"vatNumber,omitempty" validate:"omitempty,max=20"`
	Address          *string `json:"address,omitempty" validate:"omitempty,max=300"`
	City             *string `json:"city,omitempty" validate:"omitempty,max=100"`
	Email            *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone            *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	VATEnabled       *bool   `json:"vatEnabled,omitempty"`
	ClearVATOverride bool    `json:"clearVatOverride,omitempty"`
}

type CompanyResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	LegalName  string    `json:"legalName"`
	SIRET      *string   `json:"siret,omitempty"`
	VATNumber  *string   `json:"vatNumber,omitempty"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	VATEnabled *bool     `json:"vatEnabled,omitempty"`
	CreatedAt  string    `json:"createdAt"`
	UpdatedAt  string    `json:"updatedAt"`
}

type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Total int               `json:"total"`
}
