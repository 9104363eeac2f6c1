package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestLookupServiceByID(t *testing.T) {
	svcID := uuid.New()
	lookup := NewLookup([]Prestation{{ID: svcID, Name: "Polissage carrosserie"}}, nil)

	svc, ok := lookup.ServiceByID(svcID)
	if !ok {
		t.Fatalf("ServiceByID(%s) not found", svcID)
	}
	if svc.Name != "Polissage carrosserie" {
		t.Errorf("Name = %q, want %q", svc.Name, "Polissage carrosserie")
	}

	if _, ok := lookup.ServiceByID(uuid.New()); ok {
		t.Error("ServiceByID should miss for unknown id")
	}
}

func TestLookupOptionScopedToService(t *testing.T) {
	svcA := uuid.New()
	svcB := uuid.New()
	optID := uuid.New()

	lookup := NewLookup([]Prestation{
		{ID: svcA, Name: "Lavage", Options: []Option{{ID: optID, Label: "Intérieur", PriceHT: 30, DurationMin: 45}}},
		{ID: svcB, Name: "Lustrage"},
	}, nil)

	opt, ok := lookup.OptionByID(svcA, optID)
	if !ok {
		t.Fatal("option not found within its own service")
	}
	if opt.PriceHT != 30 || opt.DurationMin != 45 {
		t.Errorf("option = {%v, %v}, want {30, 45}", opt.PriceHT, opt.DurationMin)
	}

	if _, ok := lookup.OptionByID(svcB, optID); ok {
		t.Error("option must not resolve through a different service")
	}
	if _, ok := lookup.OptionByID(uuid.New(), optID); ok {
		t.Error("option must not resolve through an unknown service")
	}
}

func TestLookupCategoryByID(t *testing.T) {
	familyID := uuid.New()
	subID := uuid.New()

	lookup := NewLookup(nil, []Category{
		{ID: familyID, Name: "Citadine"},
		{ID: subID, Name: "Citadine premium", ParentID: &familyID, PriceHT: 15, DefaultDurationMin: 20},
	})

	sub, ok := lookup.CategoryByID(subID)
	if !ok {
		t.Fatal("sub-category not found")
	}
	if sub.ParentID == nil || *sub.ParentID != familyID {
		t.Errorf("ParentID = %v, want %s", sub.ParentID, familyID)
	}
	if sub.PriceHT != 15 || sub.DefaultDurationMin != 20 {
		t.Errorf("sub-category pricing = {%v, %v}, want {15, 20}", sub.PriceHT, sub.DefaultDurationMin)
	}
}
