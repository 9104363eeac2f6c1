// Package domain holds the catalog's pure lookup model. A Lookup is an
// immutable snapshot of prestations, options and categories used by the
// pricing engine; it never touches storage.
package domain

import "github.com/google/uuid"

// Prestation is a sellable detailing service from the catalog.
// BasePriceHT and BaseDurationMin, when set, take precedence over any
// per-option arithmetic during pricing.
type Prestation struct {
	ID              uuid.UUID
	Name            string
	Description     *string
	BasePriceHT     *float64
	BaseDurationMin *int
	Options         []Option
}

// Option is a configurable variant of a prestation, in catalog order.
type Option struct {
	ID            uuid.UUID
	Label         string
	PriceHT       float64
	DurationMin   int
	SubCategoryID *uuid.UUID
}

// Category is a node in the two-level category tree. A nil ParentID marks
// a family; sub-families reference their family through ParentID and carry
// a per-unit price and duration added during pricing.
type Category struct {
	ID                 uuid.UUID
	Name               string
	ParentID           *uuid.UUID
	PriceHT            float64
	DefaultDurationMin int
}

// Lookup is a read-only index over one catalog snapshot.
type Lookup struct {
	services   map[uuid.UUID]Prestation
	options    map[uuid.UUID]map[uuid.UUID]Option
	categories map[uuid.UUID]Category
}

// NewLookup indexes the given snapshot. The slices are not retained.
func NewLookup(services []Prestation, categories []Category) *Lookup {
	l := &Lookup{
		services:   make(map[uuid.UUID]Prestation, len(services)),
		options:    make(map[uuid.UUID]map[uuid.UUID]Option, len(services)),
		categories: make(map[uuid.UUID]Category, len(categories)),
	}
	for _, svc := range services {
		l.services[svc.ID] = svc
		opts := make(map[uuid.UUID]Option, len(svc.Options))
		for _, opt := range svc.Options {
			opts[opt.ID] = opt
		}
		l.options[svc.ID] = opts
	}
	for _, cat := range categories {
		l.categories[cat.ID] = cat
	}
	return l
}

// ServiceByID returns the prestation, or false when the id is unknown.
func (l *Lookup) ServiceByID(id uuid.UUID) (Prestation, bool) {
	svc, ok := l.services[id]
	return svc, ok
}

// OptionByID returns an option scoped to its prestation. Options are never
// resolved across prestations.
func (l *Lookup) OptionByID(serviceID, optionID uuid.UUID) (Option, bool) {
	opts, ok := l.options[serviceID]
	if !ok {
		return Option{}, false
	}
	opt, ok := opts[optionID]
	return opt, ok
}

// CategoryByID returns the category, or false when the id is unknown.
func (l *Lookup) CategoryByID(id uuid.UUID) (Category, bool) {
	cat, ok := l.categories[id]
	return cat, ok
}
