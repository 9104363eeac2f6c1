package transport

import "github.com/google/uuid"

// Prestations

type OptionPayload struct {
	Label         string     `json:"label" validate:"required,min=1,max=200"`
	PriceHT       float64    `json:"priceHT" validate:"min=0"`
	DurationMin   int        `json:"durationMin" validate:"min=0"`
	SubCategoryID *uuid.UUID `json:"subCategoryId,omitempty"`
}

type CreatePrestationRequest struct {
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePriceHT     *float64        `json:"basePriceHT,omitempty" validate:"omitempty,min=0"`
	BaseDurationMin *int            `json:"baseDurationMin,omitempty" validate:"omitempty,min=0"`
	Options         []OptionPayload `json:"options" validate:"dive"`
}

type UpdatePrestationRequest struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	BasePriceHT     *float64         `json:"basePriceHT,omitempty" validate:"omitempty,min=0"`
	BaseDurationMin *int             `json:"baseDurationMin,omitempty" validate:"omitempty,min=0"`
	ClearBasePrice  bool             `json:"clearBasePrice,omitempty"`
	ClearBaseDur    bool             `json:"clearBaseDuration,omitempty"`
	Options         *[]OptionPayload `json:"options,omitempty" validate:"omitempty,dive"`
}

type ListPrestationsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=name createdAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type OptionResponse struct {
	ID            uuid.UUID  `json:"id"`
	Label         string     `json:"label"`
	PriceHT       float64    `json:"priceHT"`
	DurationMin   int        `json:"durationMin"`
	SubCategoryID *uuid.UUID `json:"subCategoryId,omitempty"`
}

type PrestationResponse struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Description     *string          `json:"description,omitempty"`
	BasePriceHT     *float64         `json:"basePriceHT,omitempty"`
	BaseDurationMin *int             `json:"baseDurationMin,omitempty"`
	Options         []OptionResponse `json:"options"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

type PrestationListResponse struct {
	Items      []PrestationResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

// Categories

type CreateCategoryRequest struct {
	Name               string     `json:"name" validate:"required,min=1,max=200"`
	ParentID           *uuid.UUID `json:"parentId,omitempty"`
	PriceHT            float64    `json:"priceHT" validate:"min=0"`
	DefaultDurationMin int        `json:"defaultDurationMin" validate:"min=0"`
}

type UpdateCategoryRequest struct {
	Name               *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	PriceHT            *float64 `json:"priceHT,omitempty" validate:"omitempty,min=0"`
	DefaultDurationMin *int     `json:"defaultDurationMin,omitempty" validate:"omitempty,min=0"`
}

type CategoryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	ParentID           *uuid.UUID `json:"parentId,omitempty"`
	PriceHT            float64    `json:"priceHT"`
	DefaultDurationMin int        `json:"defaultDurationMin"`
	CreatedAt          string     `json:"createdAt"`
	UpdatedAt          string     `json:"updatedAt"`
}

type CategoryListResponse struct {
	Items []CategoryResponse `json:"items"`
}
