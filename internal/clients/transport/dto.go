package transport

import "github.com/google/uuid"

// Clients

type CreateClientRequest struct {
	Type        string   `json:"type" validate:"required,oneof=company individual"`
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	CompanyName *string  `json:"companyName,omitempty" validate:"omitempty,max=200"`
	FirstName   *string  `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName    *string  `json:"lastName,omitempty" validate:"omitempty,max=100"`
	SIRET       string   `json:"siret" validate:"omitempty,max=50"`
	Email       string   `json:"email" validate:"omitempty,email,max=255"`
	Phone       string   `json:"phone" validate:"omitempty,max=30"`
	Address     string   `json:"address" validate:"omitempty,max=300"`
	City        string   `json:"city" validate:"omitempty,max=100"`
	Status      string   `json:"status" validate:"omitempty,oneof=Actif Prospect"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type UpdateClientRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	CompanyName *string  `json:"companyName,omitempty" validate:"omitempty,max=200"`
	SIRET       *string  `json:"siret,omitempty" validate:"omitempty,max=50"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=Actif Prospect"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type ListClientsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Status    string `form:"status" validate:"omitempty,oneof=Actif Prospect"`
	Type      string `form:"type" validate:"omitempty,oneof=company individual"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name status createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type ContactResponse struct {
	ID               uuid.UUID `json:"id"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`
	Mobile           string    `json:"mobile"`
	Roles            []string  `json:"roles"`
	IsBillingDefault bool      `json:"isBillingDefault"`
	Active           bool      `json:"active"`
	CreatedAt        string    `json:"createdAt"`
	UpdatedAt        string    `json:"updatedAt"`
}

type ClientResponse struct {
	ID          uuid.UUID         `json:"id"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	CompanyName *string           `json:"companyName,omitempty"`
	FirstName   *string           `json:"firstName,omitempty"`
	LastName    *string           `json:"lastName,omitempty"`
	SIRET       string            `json:"siret"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Address     string            `json:"address"`
	City        string            `json:"city"`
	Status      string            `json:"status"`
	Tags        []string          `json:"tags"`
	Contacts    []ContactResponse `json:"contacts"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

type ClientListResponse struct {
	Items      []ClientResponse `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// Contacts

type CreateContactRequest struct {
	FirstName        string   `json:"firstName" validate:"required,min=1,max=100"`
	LastName         string   `json:"lastName" validate:"omitempty,max=100"`
	Email            string   `json:"email" validate:"omitempty,email,max=255"`
	Mobile           string   `json:"mobile" validate:"omitempty,max=30"`
	Roles            []string `json:"roles" validate:"required,min=1,dive,oneof=achat facturation technique"`
	IsBillingDefault bool     `json:"isBillingDefault"`
}

type UpdateContactRequest struct {
	FirstName *string  `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName  *string  `json:"lastName,omitempty" validate:"omitempty,max=100"`
	Email     *string  `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Mobile    *string  `json:"mobile,omitempty" validate:"omitempty,max=30"`
	Roles     []string `json:"roles,omitempty" validate:"omitempty,min=1,dive,oneof=achat facturation technique"`
}

// Resolution

type ResolveLeadRequest struct {
	Contact    string   `json:"contact" validate:"omitempty,max=200"`
	Company    string   `json:"company" validate:"omitempty,max=200"`
	Email      string   `json:"email" validate:"omitempty,max=255"`
	Phone      string   `json:"phone" validate:"omitempty,max=30"`
	Address    string   `json:"address" validate:"omitempty,max=300"`
	City       string   `json:"city" validate:"omitempty,max=100"`
	SIRET      string   `json:"siret" validate:"omitempty,max=50"`
	ClientType string   `json:"clientType" validate:"omitempty,oneof=company individual"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,max=50"`
}

type ResolveLeadResponse struct {
	Client    ClientResponse `json:"client"`
	Matched   bool           `json:"matched"`
	MatchedBy string         `json:"matchedBy,omitempty"`
}
