package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"atelier_erp_backend/platform/apperr"
)

func draftDevis() Engagement {
	status := QuoteBrouillon
	number := "DEV-202503-0001"
	return Engagement{
		ID:          uuid.New(),
		ClientID:    uuid.New(),
		Kind:        KindDevis,
		Status:      StatusBrouillon,
		QuoteStatus: &status,
		QuoteNumber: &number,
	}
}

func TestCanTransitionQuote(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{QuoteBrouillon, QuoteEnvoye, true},
		{QuoteEnvoye, QuoteAccepte, true},
		{QuoteEnvoye, QuoteRefuse, true},
		{QuoteBrouillon, QuoteAccepte, false},
		{QuoteAccepte, QuoteEnvoye, false},
		{QuoteRefuse, QuoteEnvoye, false},
		{QuoteAccepte, QuoteRefuse, false},
	}
	for _, tt := range tests {
		if got := CanTransitionQuote(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransitionQuote(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestMarkQuoteSent(t *testing.T) {
	e := draftDevis()
	record := SendRecord{SentAt: time.Now(), ContactIDs: []uuid.UUID{uuid.New()}, Subject: "Votre devis"}

	sent, err := MarkQuoteSent(e, record)
	if err != nil {
		t.Fatalf("MarkQuoteSent: %v", err)
	}
	if sent.QuoteStatus == nil || *sent.QuoteStatus != QuoteEnvoye {
		t.Errorf("QuoteStatus = %v, want envoyé", sent.QuoteStatus)
	}
	if len(sent.SendHistory) != 1 || sent.SendHistory[0].Subject != "Votre devis" {
		t.Errorf("SendHistory = %+v, want the new record first", sent.SendHistory)
	}

	// A second send prepends and keeps envoyé.
	again, err := MarkQuoteSent(sent, SendRecord{SentAt: time.Now(), Subject: "Relance"})
	if err != nil {
		t.Fatalf("MarkQuoteSent again: %v", err)
	}
	if len(again.SendHistory) != 2 || again.SendHistory[0].Subject != "Relance" {
		t.Errorf("SendHistory = %+v, want newest first", again.SendHistory)
	}
}

func TestMarkQuoteSentKeepsTerminalStatus(t *testing.T) {
	e := draftDevis()
	accepted := QuoteAccepte
	e.QuoteStatus = &accepted

	sent, err := MarkQuoteSent(e, SendRecord{SentAt: time.Now()})
	if err != nil {
		t.Fatalf("MarkQuoteSent: %v", err)
	}
	if *sent.QuoteStatus != QuoteAccepte {
		t.Errorf("QuoteStatus = %q, re-send must not revert a terminal status", *sent.QuoteStatus)
	}
	if len(sent.SendHistory) != 1 {
		t.Error("re-send must still be recorded")
	}
}

func TestMarkQuoteSentRejectsServices(t *testing.T) {
	e := draftDevis()
	e.Kind = KindService
	if _, err := MarkQuoteSent(e, SendRecord{SentAt: time.Now()}); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestAcceptQuoteRequiresSent(t *testing.T) {
	e := draftDevis()

	if _, err := AcceptQuote(e); apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("accepting a draft: err = %v, want conflict", err)
	}

	sent, err := MarkQuoteSent(e, SendRecord{SentAt: time.Now()})
	if err != nil {
		t.Fatalf("MarkQuoteSent: %v", err)
	}
	accepted, err := AcceptQuote(sent)
	if err != nil {
		t.Fatalf("AcceptQuote: %v", err)
	}
	if *accepted.QuoteStatus != QuoteAccepte {
		t.Errorf("QuoteStatus = %q, want accepté", *accepted.QuoteStatus)
	}

	// Accepting twice is a no-op, refusing afterwards is a conflict.
	if _, err := AcceptQuote(accepted); err != nil {
		t.Errorf("re-accept must be idempotent, got %v", err)
	}
	if _, err := RefuseQuote(accepted); apperr.GetKind(err) != apperr.KindConflict {
		t.Errorf("refusing an accepted devis: err = %v, want conflict", err)
	}
}

func TestConvertQuoteToService(t *testing.T) {
	e := draftDevis()
	name := "Rénovation complète"
	e.QuoteName = &name
	realization := time.Date(2025, time.April, 2, 14, 0, 0, 0, time.UTC)

	converted, err := ConvertQuoteToService(e, realization)
	if err != nil {
		t.Fatalf("ConvertQuoteToService: %v", err)
	}
	if converted.Kind != KindService {
		t.Errorf("Kind = %q, want service", converted.Kind)
	}
	if converted.Status != StatusRealise {
		t.Errorf("Status = %q, want réalisé", converted.Status)
	}
	if converted.ScheduledAt == nil || !converted.ScheduledAt.Equal(realization) {
		t.Errorf("ScheduledAt = %v, want %v", converted.ScheduledAt, realization)
	}
	if converted.QuoteStatus != nil {
		t.Errorf("QuoteStatus = %v, want cleared", converted.QuoteStatus)
	}
	if converted.QuoteNumber == nil || *converted.QuoteNumber != "DEV-202503-0001" {
		t.Error("quote number must survive the conversion")
	}
	if converted.QuoteName == nil || *converted.QuoteName != name {
		t.Error("quote name must survive the conversion")
	}
}

func TestConvertQuoteToServiceValidation(t *testing.T) {
	e := draftDevis()

	if _, err := ConvertQuoteToService(e, time.Time{}); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("zero realization date: err = %v, want validation error", err)
	}

	service := e
	service.Kind = KindService
	if _, err := ConvertQuoteToService(service, time.Now()); apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("converting a service: err = %v, want validation error", err)
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{StatusBrouillon, StatusEnvoye, StatusPlanifie, StatusRealise, StatusAnnule} {
		if !ValidStatus(status) {
			t.Errorf("ValidStatus(%q) = false", status)
		}
	}
	if ValidStatus("archivé") {
		t.Error(`ValidStatus("archivé") = true`)
	}
}
