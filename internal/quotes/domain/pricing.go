// Package domain holds the pure engagement model: pricing, document
// numbering and the devis lifecycle. Nothing here touches storage; all
// functions are deterministic over their inputs.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"

	catalog "atelier_erp_backend/internal/catalog/domain"
)

// Engagement kinds.
const (
	KindDevis   = "devis"
	KindService = "service"
)

// Engagement statuses.
const (
	StatusBrouillon = "brouillon"
	StatusEnvoye    = "envoyé"
	StatusPlanifie  = "planifié"
	StatusRealise   = "réalisé"
	StatusAnnule    = "annulé"
)

// Devis statuses.
const (
	QuoteBrouillon = "brouillon"
	QuoteEnvoye    = "envoyé"
	QuoteAccepte   = "accepté"
	QuoteRefuse    = "refusé"
)

// OptionOverride is a per-line adjustment of one selected option. Nil
// fields fall back to the catalog values.
type OptionOverride struct {
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPriceHT *float64 `json:"unitPriceHT,omitempty"`
	DurationMin *int     `json:"durationMin,omitempty"`
}

// ResolvedOption is an option with every override applied, ready for
// arithmetic. Quantity is always at least 1.
type ResolvedOption struct {
	Quantity    int
	UnitPriceHT float64
	DurationMin int
}

// ServiceLine is one prestation row of an engagement. A nil ServiceID
// marks a placeholder row (a sub-category label) that prices to zero.
type ServiceLine struct {
	ServiceID       *uuid.UUID                    `json:"serviceId,omitempty"`
	OptionIDs       []uuid.UUID                   `json:"optionIds"`
	OptionOverrides map[uuid.UUID]OptionOverride  `json:"optionOverrides,omitempty"`
	MainCategoryID  *uuid.UUID                    `json:"mainCategoryId,omitempty"`
	SubCategoryID   *uuid.UUID                    `json:"subCategoryId,omitempty"`
	Quantity        int                           `json:"quantity"`
}

// SendRecord is one entry of a devis send history, newest first.
type SendRecord struct {
	SentAt     time.Time   `json:"sentAt"`
	ContactIDs []uuid.UUID `json:"contactIds"`
	Subject    string      `json:"subject,omitempty"`
}

// Engagement is a devis or a service with its prestation lines.
type Engagement struct {
	ID                uuid.UUID
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
	Services          []ServiceLine
	SupportType       string
	SupportDetail     string
	AdditionalCharge  float64
	ContactIDs        []uuid.UUID
	AssignedUserIDs   []uuid.UUID
	SendHistory       []SendRecord
}

// ServiceTotals is the per-line pricing result, in euros HT and minutes.
type ServiceTotals struct {
	PriceHT     float64
	DurationMin int
}

// EngagementTotals is the engagement-level pricing result. Surcharge is
// carried separately so VAT application can see both parts.
type EngagementTotals struct {
	PriceHT     float64
	DurationMin int
	Surcharge   float64
}

// ResolveOptionOverride merges an override into its catalog option. An
// absent or non-positive quantity resolves to 1; negative price or
// duration overrides are ignored in favor of the catalog values.
func ResolveOptionOverride(option catalog.Option, override *OptionOverride) ResolvedOption {
	resolved := ResolvedOption{
		Quantity:    1,
		UnitPriceHT: option.PriceHT,
		DurationMin: option.DurationMin,
	}
	if override == nil {
		return resolved
	}
	if override.Quantity != nil && *override.Quantity > 0 {
		resolved.Quantity = *override.Quantity
	}
	if override.UnitPriceHT != nil && *override.UnitPriceHT >= 0 && !math.IsNaN(*override.UnitPriceHT) && !math.IsInf(*override.UnitPriceHT, 0) {
		resolved.UnitPriceHT = *override.UnitPriceHT
	}
	if override.DurationMin != nil && *override.DurationMin >= 0 {
		resolved.DurationMin = *override.DurationMin
	}
	return resolved
}

// ComputeServiceTotals prices one line against a catalog lookup. Stale
// references never fail: an unknown prestation, option or sub-category
// contributes zero. A prestation's base price and base duration, when
// set, win over the option arithmetic. The sub-category contribution is
// added once per unit, then the line quantity multiplies the total.
func ComputeServiceTotals(line ServiceLine, lookup *catalog.Lookup) ServiceTotals {
	if line.ServiceID == nil {
		return ServiceTotals{}
	}
	service, ok := lookup.ServiceByID(*line.ServiceID)
	if !ok {
		return ServiceTotals{}
	}

	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}

	var unitPrice float64
	if service.BasePriceHT != nil {
		unitPrice = *service.BasePriceHT
	} else {
		for _, optionID := range line.OptionIDs {
			option, ok := lookup.OptionByID(service.ID, optionID)
			if !ok {
				continue
			}
			resolved := ResolveOptionOverride(option, overrideFor(line, optionID))
			unitPrice += resolved.UnitPriceHT * float64(resolved.Quantity)
		}
	}

	var unitDuration int
	if service.BaseDurationMin != nil {
		unitDuration = *service.BaseDurationMin
	} else {
		for _, optionID := range line.OptionIDs {
			option, ok := lookup.OptionByID(service.ID, optionID)
			if !ok {
				continue
			}
			resolved := ResolveOptionOverride(option, overrideFor(line, optionID))
			unitDuration += resolved.DurationMin * resolved.Quantity
		}
	}

	if line.SubCategoryID != nil {
		if subCategory, ok := lookup.CategoryByID(*line.SubCategoryID); ok {
			unitPrice += subCategory.PriceHT
			unitDuration += subCategory.DefaultDurationMin
		}
	}

	return ServiceTotals{
		PriceHT:     unitPrice * float64(quantity),
		DurationMin: unitDuration * quantity,
	}
}

func overrideFor(line ServiceLine, optionID uuid.UUID) *OptionOverride {
	if line.OptionOverrides == nil {
		return nil
	}
	override, ok := line.OptionOverrides[optionID]
	if !ok {
		return nil
	}
	return &override
}

// ComputeEngagementTotals sums all lines of an engagement. The additional
// charge is reported as surcharge and never multiplied by line quantities.
func ComputeEngagementTotals(e Engagement, lookup *catalog.Lookup) EngagementTotals {
	totals := EngagementTotals{Surcharge: e.AdditionalCharge}
	for _, line := range e.Services {
		lineTotals := ComputeServiceTotals(line, lookup)
		totals.PriceHT += lineTotals.PriceHT
		totals.DurationMin += lineTotals.DurationMin
	}
	return totals
}

// SanitizeVATRate clamps a percentage to [0, 100]; non-finite input
// collapses to 0.
func SanitizeVATRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// VATMultiplier converts a percentage rate to a multiplier.
func VATMultiplier(rate float64) float64 {
	return SanitizeVATRate(rate) / 100
}

// TotalTTC applies VAT over the whole priced amount, surcharge included.
func TotalTTC(priceHT, surcharge, multiplier float64, vatEnabled bool) float64 {
	base := priceHT + surcharge
	if !vatEnabled {
		return base
	}
	return base * (1 + multiplier)
}

// RoundMoney rounds to 2 decimals for presentation. Accumulation always
// runs on unrounded values.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
