package repository

import (
	"context"

	"github.com/google/uuid"
)

// Prestation represents a catalog service row.
type Prestation struct {
	ID              uuid.UUID `db:"id"`
	Name            string    `db:"name"`
	Description     *string   `db:"description"`
	BasePriceHT     *float64  `db:"base_price_ht"`
	BaseDurationMin *int      `db:"base_duration_min"`
	Options         []Option
	CreatedAt       string `db:"created_at"`
	UpdatedAt       string `db:"updated_at"`
}

// Option represents a prestation option row, ordered by position.
type Option struct {
	ID            uuid.UUID  `db:"id"`
	PrestationID  uuid.UUID  `db:"prestation_id"`
	Label         string     `db:"label"`
	PriceHT       float64    `db:"price_ht"`
	DurationMin   int        `db:"duration_min"`
	SubCategoryID *uuid.UUID `db:"sub_category_id"`
	Position      int        `db:"position"`
}

// Category represents a category tree node.
type Category struct {
	ID                 uuid.UUID  `db:"id"`
	Name               string     `db:"name"`
	ParentID           *uuid.UUID `db:"parent_id"`
	PriceHT            float64    `db:"price_ht"`
	DefaultDurationMin int        `db:"default_duration_min"`
	CreatedAt          string     `db:"created_at"`
	UpdatedAt          string     `db:"updated_at"`
}

// OptionParams describes one option in a create/update payload.
type OptionParams struct {
	Label         string
	PriceHT       float64
	DurationMin   int
	SubCategoryID *uuid.UUID
}

// CreatePrestationParams contains data for creating a prestation.
type CreatePrestationParams struct {
	Name            string
	Description     *string
	BasePriceHT     *float64
	BaseDurationMin *int
	Options         []OptionParams
}

// UpdatePrestationParams contains data for updating a prestation.
// A non-nil Options slice replaces the option list wholesale.
type UpdatePrestationParams struct {
	ID              uuid.UUID
	Name            *string
	Description     *string
	BasePriceHT     *float64
	BaseDurationMin *int
	ClearBasePrice  bool
	ClearBaseDur    bool
	Options         []OptionParams
	ReplaceOptions  bool
}

// ListPrestationsParams defines filters for listing prestations.
type ListPrestationsParams struct {
	Search    string
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string
}

// CreateCategoryParams contains data for creating a category node.
type CreateCategoryParams struct {
	Name               string
	ParentID           *uuid.UUID
	PriceHT            float64
	DefaultDurationMin int
}

// UpdateCategoryParams contains data for updating a category node.
type UpdateCategoryParams struct {
	ID                 uuid.UUID
	Name               *string
	PriceHT            *float64
	DefaultDurationMin *int
}

// Repository defines catalog storage operations.
type Repository interface {
	CreatePrestation(ctx context.Context, params CreatePrestationParams) (Prestation, error)
	UpdatePrestation(ctx context.Context, params UpdatePrestationParams) (Prestation, error)
	DeletePrestation(ctx context.Context, id uuid.UUID) error
	GetPrestationByID(ctx context.Context, id uuid.UUID) (Prestation, error)
	ListPrestations(ctx context.Context, params ListPrestationsParams) ([]Prestation, int, error)
	ListAllPrestations(ctx context.Context) ([]Prestation, error)

	CreateCategory(ctx context.Context, params CreateCategoryParams) (Category, error)
	UpdateCategory(ctx context.Context, params UpdateCategoryParams) (Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	GetCategoryByID(ctx context.Context, id uuid.UUID) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	HasSubCategories(ctx context.Context, id uuid.UUID) (bool, error)
}
