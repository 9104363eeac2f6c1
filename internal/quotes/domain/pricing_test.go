package domain

import (
	"math"
	"testing"

	"github.com/google/uuid"

	catalog "atelier_erp_backend/internal/catalog/domain"
)

func ptr[T any](v T) *T { return &v }

func buildLookup() (*catalog.Lookup, map[string]uuid.UUID) {
	ids := map[string]uuid.UUID{
		"lavage":     uuid.New(),
		"forfait":    uuid.New(),
		"optInt":     uuid.New(),
		"optExt":     uuid.New(),
		"subCat":     uuid.New(),
		"familyCat":  uuid.New(),
	}

	services := []catalog.Prestation{
		{
			ID:   ids["lavage"],
			Name: "Lavage complet",
			Options: []catalog.Option{
				{ID: ids["optInt"], Label: "Intérieur", PriceHT: 100, DurationMin: 60},
				{ID: ids["optExt"], Label: "Extérieur", PriceHT: 50, DurationMin: 30},
			},
		},
		{
			ID:              ids["forfait"],
			Name:            "Forfait rénovation",
			BasePriceHT:     ptr(50.0),
			BaseDurationMin: ptr(30),
			Options: []catalog.Option{
				{ID: uuid.New(), Label: "ignorée", PriceHT: 999, DurationMin: 999},
			},
		},
	}
	categories := []catalog.Category{
		{ID: ids["familyCat"], Name: "Citadine"},
		{ID: ids["subCat"], Name: "Citadine premium", ParentID: ptr(ids["familyCat"]), PriceHT: 15, DefaultDurationMin: 20},
	}
	return catalog.NewLookup(services, categories), ids
}

func TestResolveOptionOverride(t *testing.T) {
	option := catalog.Option{ID: uuid.New(), Label: "Intérieur", PriceHT: 100, DurationMin: 60}

	tests := []struct {
		name     string
		override *OptionOverride
		want     ResolvedOption
	}{
		{"nil override keeps catalog values", nil, ResolvedOption{1, 100, 60}},
		{"empty override keeps catalog values", &OptionOverride{}, ResolvedOption{1, 100, 60}},
		{"full override", &OptionOverride{Quantity: ptr(3), UnitPriceHT: ptr(80.0), DurationMin: ptr(45)}, ResolvedOption{3, 80, 45}},
		{"zero quantity resolves to 1", &OptionOverride{Quantity: ptr(0)}, ResolvedOption{1, 100, 60}},
		{"negative price ignored", &OptionOverride{UnitPriceHT: ptr(-5.0)}, ResolvedOption{1, 100, 60}},
		{"zero price honored", &OptionOverride{UnitPriceHT: ptr(0.0)}, ResolvedOption{1, 0, 60}},
		{"zero duration honored", &OptionOverride{DurationMin: ptr(0)}, ResolvedOption{1, 100, 0}},
		{"negative duration ignored", &OptionOverride{DurationMin: ptr(-10)}, ResolvedOption{1, 100, 60}},
		{"NaN price ignored", &OptionOverride{UnitPriceHT: ptr(math.NaN())}, ResolvedOption{1, 100, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOptionOverride(option, tt.override)
			if got != tt.want {
				t.Errorf("ResolveOptionOverride() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeServiceTotalsFromOptions(t *testing.T) {
	lookup, ids := buildLookup()

	line := ServiceLine{
		ServiceID: ptr(ids["lavage"]),
		OptionIDs: []uuid.UUID{ids["optInt"], ids["optExt"]},
		Quantity:  1,
	}

	got := ComputeServiceTotals(line, lookup)
	if got.PriceHT != 150 || got.DurationMin != 90 {
		t.Errorf("totals = %+v, want {150, 90}", got)
	}
}

func TestComputeServiceTotalsOverridesApply(t *testing.T) {
	lookup, ids := buildLookup()

	line := ServiceLine{
		ServiceID: ptr(ids["lavage"]),
		OptionIDs: []uuid.UUID{ids["optInt"], ids["optExt"]},
		OptionOverrides: map[uuid.UUID]OptionOverride{
			ids["optInt"]: {Quantity: ptr(2), UnitPriceHT: ptr(90.0)},
		},
		Quantity: 1,
	}

	got := ComputeServiceTotals(line, lookup)
	// 90*2 + 50 and 60*2 + 30
	if got.PriceHT != 230 || got.DurationMin != 150 {
		t.Errorf("totals = %+v, want {230, 150}", got)
	}
}

func TestComputeServiceTotalsBaseValuesWin(t *testing.T) {
	lookup, ids := buildLookup()

	// Selected options must be ignored when base values are set.
	forfait, _ := lookup.ServiceByID(ids["forfait"])
	line := ServiceLine{
		ServiceID: ptr(ids["forfait"]),
		OptionIDs: []uuid.UUID{forfait.Options[0].ID},
		Quantity:  3,
	}

	got := ComputeServiceTotals(line, lookup)
	if got.PriceHT != 150 || got.DurationMin != 90 {
		t.Errorf("totals = %+v, want {150, 90} (base 50/30 x3)", got)
	}
}

func TestComputeServiceTotalsSubCategoryPerUnit(t *testing.T) {
	lookup, ids := buildLookup()

	line := ServiceLine{
		ServiceID:     ptr(ids["lavage"]),
		OptionIDs:     []uuid.UUID{ids["optExt"]},
		SubCategoryID: ptr(ids["subCat"]),
		Quantity:      2,
	}

	got := ComputeServiceTotals(line, lookup)
	// (50 + 15) * 2 and (30 + 20) * 2
	if got.PriceHT != 130 || got.DurationMin != 100 {
		t.Errorf("totals = %+v, want {130, 100}", got)
	}
}

func TestComputeServiceTotalsStaleReferencesDegradeToZero(t *testing.T) {
	lookup, ids := buildLookup()

	tests := []struct {
		name string
		line ServiceLine
	}{
		{"placeholder row", ServiceLine{SubCategoryID: ptr(ids["subCat"]), Quantity: 1}},
		{"unknown service", ServiceLine{ServiceID: ptr(uuid.New()), OptionIDs: []uuid.UUID{ids["optInt"]}, Quantity: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeServiceTotals(tt.line, lookup); got != (ServiceTotals{}) {
				t.Errorf("totals = %+v, want zero", got)
			}
		})
	}

	// Unknown option ids and sub-category ids contribute nothing but the
	// rest of the line still prices.
	line := ServiceLine{
		ServiceID:     ptr(ids["lavage"]),
		OptionIDs:     []uuid.UUID{ids["optExt"], uuid.New()},
		SubCategoryID: ptr(uuid.New()),
		Quantity:      1,
	}
	got := ComputeServiceTotals(line, lookup)
	if got.PriceHT != 50 || got.DurationMin != 30 {
		t.Errorf("totals = %+v, want {50, 30}", got)
	}
}

func TestComputeEngagementTotals(t *testing.T) {
	lookup, ids := buildLookup()

	e := Engagement{
		Kind: KindDevis,
		Services: []ServiceLine{
			{ServiceID: ptr(ids["lavage"]), OptionIDs: []uuid.UUID{ids["optInt"], ids["optExt"]}, Quantity: 1},
			{ServiceID: ptr(ids["forfait"]), Quantity: 1},
			{SubCategoryID: ptr(ids["subCat"])}, // label row
		},
		AdditionalCharge: 10,
	}

	got := ComputeEngagementTotals(e, lookup)
	if got.PriceHT != 200 || got.DurationMin != 120 || got.Surcharge != 10 {
		t.Errorf("totals = %+v, want {200, 120, 10}", got)
	}

	// Determinism: same inputs, same result.
	if again := ComputeEngagementTotals(e, lookup); again != got {
		t.Errorf("recompute = %+v, want %+v", again, got)
	}
}

// Removing an option from a line never increases the line total.
func TestComputeServiceTotalsOptionRemovalMonotonic(t *testing.T) {
	lookup, ids := buildLookup()

	full := ServiceLine{
		ServiceID: ptr(ids["lavage"]),
		OptionIDs: []uuid.UUID{ids["optInt"], ids["optExt"]},
		Quantity:  2,
	}
	reduced := full
	reduced.OptionIDs = []uuid.UUID{ids["optExt"]}

	fullTotals := ComputeServiceTotals(full, lookup)
	reducedTotals := ComputeServiceTotals(reduced, lookup)
	if reducedTotals.PriceHT > fullTotals.PriceHT {
		t.Errorf("price grew after option removal: %v > %v", reducedTotals.PriceHT, fullTotals.PriceHT)
	}
	if reducedTotals.DurationMin > fullTotals.DurationMin {
		t.Errorf("duration grew after option removal: %v > %v", reducedTotals.DurationMin, fullTotals.DurationMin)
	}
}

func TestSanitizeVATRate(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{20, 20},
		{0, 0},
		{-5, 0},
		{150, 100},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
		{5.5, 5.5},
	}
	for _, tt := range tests {
		if got := SanitizeVATRate(tt.in); got != tt.want {
			t.Errorf("SanitizeVATRate(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTotalTTC(t *testing.T) {
	// 100 + 50 HT with charge 10 at 20% VAT.
	got := TotalTTC(150, 10, VATMultiplier(20), true)
	if got != 192.0 {
		t.Errorf("TotalTTC = %v, want 192.0", got)
	}

	// VAT disabled keeps the HT amount.
	if got := TotalTTC(150, 10, VATMultiplier(20), false); got != 160 {
		t.Errorf("TotalTTC without VAT = %v, want 160", got)
	}
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{10.006, 10.01},
		{10.004, 10.0},
		{192.0, 192.0},
		{0.1 + 0.2, 0.3},
	}
	for _, tt := range tests {
		if got := RoundMoney(tt.in); got != tt.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
