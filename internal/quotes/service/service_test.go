package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	catalogdomain "atelier_erp_backend/internal/catalog/domain"
	"atelier_erp_backend/internal/quotes/domain"
	"atelier_erp_backend/internal/quotes/repository"
	"atelier_erp_backend/internal/quotes/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/events"
	"atelier_erp_backend/platform/logger"
)

type fakeRepo struct {
	engagements   map[uuid.UUID]repository.Engagement
	conflictsLeft int
	created       []repository.CreateEngagementParams
	savedStates   []repository.SaveStateParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{engagements: make(map[uuid.UUID]repository.Engagement)}
}

func (f *fakeRepo) CreateEngagement(_ context.Context, params repository.CreateEngagementParams) (repository.Engagement, error) {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return repository.Engagement{}, apperr.Conflict("document number already allocated")
	}
	f.created = append(f.created, params)
	e := repository.Engagement{
		ID:                uuid.New(),
		ClientID:          params.ClientID,
		CompanyID:         params.CompanyID,
		Kind:              params.Kind,
		Status:            params.Status,
		QuoteStatus:       params.QuoteStatus,
		QuoteNumber:       params.QuoteNumber,
		QuoteName:         params.QuoteName,
		InvoiceVATEnabled: params.InvoiceVATEnabled,
		ScheduledAt:       params.ScheduledAt,
		Services:          params.Services,
		SupportType:       params.SupportType,
		SupportDetail:     params.SupportDetail,
		AdditionalCharge:  params.AdditionalCharge,
		ContactIDs:        params.ContactIDs,
		AssignedUserIDs:   params.AssignedUserIDs,
		SendHistory:       []domain.SendRecord{},
	}
	f.engagements[e.ID] = e
	return e, nil
}

func (f *fakeRepo) UpdateEngagement(_ context.Context, params repository.UpdateEngagementParams) (repository.Engagement, error) {
	e, ok := f.engagements[params.ID]
	if !ok {
		return repository.Engagement{}, apperr.NotFound("engagement not found")
	}
	if params.ReplaceServices {
		e.Services = params.Services
	}
	f.engagements[e.ID] = e
	return e, nil
}

func (f *fakeRepo) SaveState(_ context.Context, params repository.SaveStateParams) (repository.Engagement, error) {
	if f.conflictsLeft > 0 {
		f.conflictsLeft--
		return repository.Engagement{}, apperr.Conflict("document number already allocated")
	}
	e, ok := f.engagements[params.ID]
	if !ok {
		return repository.Engagement{}, apperr.NotFound("engagement not found")
	}
	e.Kind = params.Kind
	e.Status = params.Status
	e.QuoteStatus = params.QuoteStatus
	if params.InvoiceNumber != nil {
		e.InvoiceNumber = params.InvoiceNumber
	}
	if params.ScheduledAt != nil {
		e.ScheduledAt = params.ScheduledAt
	}
	e.SendHistory = params.SendHistory
	e.ContactIDs = params.ContactIDs
	f.engagements[e.ID] = e
	f.savedStates = append(f.savedStates, params)
	return e, nil
}

func (f *fakeRepo) DeleteEngagement(_ context.Context, id uuid.UUID) error {
	if _, ok := f.engagements[id]; !ok {
		return apperr.NotFound("engagement not found")
	}
	delete(f.engagements, id)
	return nil
}

func (f *fakeRepo) GetEngagementByID(_ context.Context, id uuid.UUID) (repository.Engagement, error) {
	e, ok := f.engagements[id]
	if !ok {
		return repository.Engagement{}, apperr.NotFound("engagement not found")
	}
	return e, nil
}

func (f *fakeRepo) ListEngagements(_ context.Context, _ repository.ListEngagementsParams) ([]repository.Engagement, int, error) {
	all, _ := f.ListAllEngagements(context.Background())
	return all, len(all), nil
}

func (f *fakeRepo) ListAllEngagements(_ context.Context) ([]repository.Engagement, error) {
	all := make([]repository.Engagement, 0, len(f.engagements))
	for _, e := range f.engagements {
		all = append(all, e)
	}
	return all, nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type fakeCatalog struct {
	lookup *catalogdomain.Lookup
}

func (f *fakeCatalog) Lookup(context.Context) (*catalogdomain.Lookup, error) {
	return f.lookup, nil
}

type fakeCompanies struct {
	overrides map[uuid.UUID]*bool
}

func (f *fakeCompanies) CompanyVATEnabled(_ context.Context, id uuid.UUID) (*bool, error) {
	return f.overrides[id], nil
}

type fakeVAT struct {
	enabled bool
	rate    float64
}

func (f fakeVAT) GetVATEnabled() bool        { return f.enabled }
func (f fakeVAT) GetVATRatePercent() float64 { return f.rate }

func ptr[T any](v T) *T { return &v }

func newTestService(repo *fakeRepo, lookup *catalogdomain.Lookup, companies *fakeCompanies, vat fakeVAT) *Service {
	log := logger.New("development")
	if companies == nil {
		companies = &fakeCompanies{}
	}
	svc := New(repo, &fakeCatalog{lookup: lookup}, companies, vat, events.NewInMemoryBus(log), log)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

func emptyLookup() *catalogdomain.Lookup {
	return catalogdomain.NewLookup(nil, nil)
}

func pricedLookup(serviceID, optionID uuid.UUID) *catalogdomain.Lookup {
	return catalogdomain.NewLookup([]catalogdomain.Prestation{
		{
			ID:   serviceID,
			Name: "Lavage complet",
			Options: []catalogdomain.Option{
				{ID: optionID, Label: "Intérieur", PriceHT: 100, DurationMin: 60},
			},
		},
	}, nil)
}

func devisRequest(clientID uuid.UUID, line transport.ServiceLinePayload) transport.CreateEngagementRequest {
	return transport.CreateEngagementRequest{
		ClientID: clientID,
		Kind:     domain.KindDevis,
		Services: []transport.ServiceLinePayload{line},
	}
}

func TestCreateDevisAllocatesQuoteNumber(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	resp, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	if resp.QuoteNumber == nil || *resp.QuoteNumber != "DEV-202503-0001" {
		t.Fatalf("quote number = %v, want DEV-202503-0001", resp.QuoteNumber)
	}
	if resp.QuoteStatus == nil || *resp.QuoteStatus != domain.QuoteBrouillon {
		t.Errorf("quote status = %v, want brouillon", resp.QuoteStatus)
	}
	if resp.Status != domain.StatusBrouillon {
		t.Errorf("status = %q, want brouillon", resp.Status)
	}

	second, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if err != nil {
		t.Fatalf("second CreateEngagement() error = %v", err)
	}
	if *second.QuoteNumber != "DEV-202503-0002" {
		t.Errorf("second quote number = %q, want DEV-202503-0002", *second.QuoteNumber)
	}
}

func TestCreateDevisRetriesOnAllocationConflict(t *testing.T) {
	repo := newFakeRepo()
	repo.conflictsLeft = 2
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	resp, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v, want retry to succeed", err)
	}
	if resp.QuoteNumber == nil {
		t.Fatal("expected a quote number after retries")
	}
}

func TestCreateDevisGivesUpAfterRepeatedConflicts(t *testing.T) {
	repo := newFakeRepo()
	repo.conflictsLeft = numberAllocationAttempts
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	_, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("error kind = %v, want conflict", apperr.GetKind(err))
	}
}

func TestServiceCreationSkipsQuoteNumber(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	scheduled := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	resp, err := svc.CreateEngagement(context.Background(), transport.CreateEngagementRequest{
		ClientID:    uuid.New(),
		Kind:        domain.KindService,
		ScheduledAt: &scheduled,
		Services:    []transport.ServiceLinePayload{{Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	if resp.QuoteNumber != nil {
		t.Errorf("quote number = %v, want nil for a service", resp.QuoteNumber)
	}
	if resp.Status != domain.StatusPlanifie {
		t.Errorf("status = %q, want planifié for a scheduled service", resp.Status)
	}
}

func TestTotalsUseGlobalVATByDefault(t *testing.T) {
	serviceID, optionID := uuid.New(), uuid.New()
	repo := newFakeRepo()
	svc := newTestService(repo, pricedLookup(serviceID, optionID), nil, fakeVAT{enabled: true, rate: 20})

	resp, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{
		ServiceID: &serviceID,
		OptionIDs: []uuid.UUID{optionID},
		Quantity:  1,
	}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	if resp.Totals.PriceHT != 100 {
		t.Errorf("PriceHT = %v, want 100", resp.Totals.PriceHT)
	}
	if !resp.Totals.VATEnabled || resp.Totals.VATRatePercent != 20 {
		t.Errorf("VAT = (%v, %v), want (true, 20)", resp.Totals.VATEnabled, resp.Totals.VATRatePercent)
	}
	if resp.Totals.TotalTTC != 120 {
		t.Errorf("TotalTTC = %v, want 120", resp.Totals.TotalTTC)
	}
}

func TestTotalsTTCIsRoundedForPresentation(t *testing.T) {
	serviceID, optionID := uuid.New(), uuid.New()
	lookup := catalogdomain.NewLookup([]catalogdomain.Prestation{
		{
			ID:   serviceID,
			Name: "Rénovation optiques",
			Options: []catalogdomain.Option{
				{ID: optionID, Label: "Paire", PriceHT: 19.99, DurationMin: 45},
			},
		},
	}, nil)
	repo := newFakeRepo()
	svc := newTestService(repo, lookup, nil, fakeVAT{enabled: true, rate: 20})

	resp, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{
		ServiceID: &serviceID,
		OptionIDs: []uuid.UUID{optionID},
		Quantity:  1,
	}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	// 19.99 * 1.2 accumulates to 23.987999999999996; the response must
	// carry the presentation value.
	if resp.Totals.TotalTTC != 23.99 {
		t.Errorf("TotalTTC = %v, want 23.99", resp.Totals.TotalTTC)
	}
}

func TestTotalsCompanyOverrideBeatsGlobal(t *testing.T) {
	serviceID, optionID := uuid.New(), uuid.New()
	companyID := uuid.New()
	repo := newFakeRepo()
	companies := &fakeCompanies{overrides: map[uuid.UUID]*bool{companyID: ptr(false)}}
	svc := newTestService(repo, pricedLookup(serviceID, optionID), companies, fakeVAT{enabled: true, rate: 20})

	req := devisRequest(uuid.New(), transport.ServiceLinePayload{
		ServiceID: &serviceID,
		OptionIDs: []uuid.UUID{optionID},
		Quantity:  1,
	})
	req.CompanyID = &companyID

	resp, err := svc.CreateEngagement(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	if resp.Totals.VATEnabled {
		t.Error("company override disables VAT, got enabled")
	}
	if resp.Totals.TotalTTC != 100 {
		t.Errorf("TotalTTC = %v, want 100 without VAT", resp.Totals.TotalTTC)
	}
}

func TestTotalsEngagementOverrideBeatsCompany(t *testing.T) {
	serviceID, optionID := uuid.New(), uuid.New()
	companyID := uuid.New()
	repo := newFakeRepo()
	companies := &fakeCompanies{overrides: map[uuid.UUID]*bool{companyID: ptr(false)}}
	svc := newTestService(repo, pricedLookup(serviceID, optionID), companies, fakeVAT{enabled: false, rate: 20})

	req := devisRequest(uuid.New(), transport.ServiceLinePayload{
		ServiceID: &serviceID,
		OptionIDs: []uuid.UUID{optionID},
		Quantity:  1,
	})
	req.CompanyID = &companyID
	req.InvoiceVATEnabled = ptr(true)

	resp, err := svc.CreateEngagement(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}
	if !resp.Totals.VATEnabled {
		t.Error("engagement override enables VAT, got disabled")
	}
	if resp.Totals.TotalTTC != 120 {
		t.Errorf("TotalTTC = %v, want 120", resp.Totals.TotalTTC)
	}
}

func TestSendQuoteRecordsHistoryAndMergesContacts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	existing := uuid.New()
	req := devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1})
	req.ContactIDs = []uuid.UUID{existing}
	created, err := svc.CreateEngagement(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}

	added := uuid.New()
	sent, err := svc.SendQuote(context.Background(), created.ID, transport.SendQuoteRequest{
		ContactIDs: []uuid.UUID{existing, added},
		Subject:    "Votre devis",
	})
	if err != nil {
		t.Fatalf("SendQuote() error = %v", err)
	}
	if sent.QuoteStatus == nil || *sent.QuoteStatus != domain.QuoteEnvoye {
		t.Errorf("quote status = %v, want envoyé", sent.QuoteStatus)
	}
	if sent.Status != domain.StatusEnvoye {
		t.Errorf("status = %q, want envoyé", sent.Status)
	}
	if len(sent.SendHistory) != 1 {
		t.Fatalf("send history length = %d, want 1", len(sent.SendHistory))
	}
	if sent.SendHistory[0].Subject != "Votre devis" {
		t.Errorf("subject = %q, want Votre devis", sent.SendHistory[0].Subject)
	}
	if len(sent.ContactIDs) != 2 {
		t.Errorf("contact ids = %v, want the merged pair without duplicates", sent.ContactIDs)
	}

	again, err := svc.SendQuote(context.Background(), created.ID, transport.SendQuoteRequest{
		ContactIDs: []uuid.UUID{added},
	})
	if err != nil {
		t.Fatalf("second SendQuote() error = %v", err)
	}
	if len(again.SendHistory) != 2 {
		t.Errorf("send history length = %d after re-send, want 2", len(again.SendHistory))
	}
}

func TestAcceptThenConvertToService(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	created, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}

	if _, err := svc.SendQuote(context.Background(), created.ID, transport.SendQuoteRequest{ContactIDs: []uuid.UUID{uuid.New()}}); err != nil {
		t.Fatalf("SendQuote() error = %v", err)
	}
	accepted, err := svc.AcceptQuote(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("AcceptQuote() error = %v", err)
	}
	if accepted.QuoteStatus == nil || *accepted.QuoteStatus != domain.QuoteAccepte {
		t.Fatalf("quote status = %v, want accepté", accepted.QuoteStatus)
	}

	realized := time.Date(2025, 3, 20, 14, 0, 0, 0, time.UTC)
	converted, err := svc.ConvertQuoteToService(context.Background(), created.ID, transport.ConvertQuoteRequest{RealizationDate: realized})
	if err != nil {
		t.Fatalf("ConvertQuoteToService() error = %v", err)
	}
	if converted.Kind != domain.KindService {
		t.Errorf("kind = %q, want service", converted.Kind)
	}
	if converted.Status != domain.StatusRealise {
		t.Errorf("status = %q, want réalisé", converted.Status)
	}
	if converted.QuoteStatus != nil {
		t.Errorf("quote status = %v, want cleared", converted.QuoteStatus)
	}
	if converted.QuoteNumber == nil || *converted.QuoteNumber != *created.QuoteNumber {
		t.Errorf("quote number = %v, want preserved %v", converted.QuoteNumber, created.QuoteNumber)
	}
	if converted.ScheduledAt == nil || !converted.ScheduledAt.Equal(realized) {
		t.Errorf("scheduled at = %v, want %v", converted.ScheduledAt, realized)
	}
}

func TestAcceptDraftQuoteIsConflict(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	created, err := svc.CreateEngagement(context.Background(), devisRequest(uuid.New(), transport.ServiceLinePayload{Quantity: 1}))
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}

	_, err = svc.AcceptQuote(context.Background(), created.ID)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("error kind = %v, want conflict for accepting a draft", apperr.GetKind(err))
	}
}

func TestRealizingServiceAllocatesInvoiceNumber(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, emptyLookup(), nil, fakeVAT{enabled: true, rate: 20})

	created, err := svc.CreateEngagement(context.Background(), transport.CreateEngagementRequest{
		ClientID: uuid.New(),
		Kind:     domain.KindService,
		Services: []transport.ServiceLinePayload{{Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateEngagement() error = %v", err)
	}

	resp, err := svc.UpdateStatus(context.Background(), created.ID, transport.UpdateStatusRequest{Status: domain.StatusRealise})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if resp.InvoiceNumber == nil || *resp.InvoiceNumber != "FAC-202503-0001" {
		t.Fatalf("invoice number = %v, want FAC-202503-0001", resp.InvoiceNumber)
	}

	// moving back and forth must not mint a second invoice number
	if _, err := svc.UpdateStatus(context.Background(), created.ID, transport.UpdateStatusRequest{Status: domain.StatusAnnule}); err != nil {
		t.Fatalf("UpdateStatus(annulé) error = %v", err)
	}
	again, err := svc.UpdateStatus(context.Background(), created.ID, transport.UpdateStatusRequest{Status: domain.StatusRealise})
	if err != nil {
		t.Fatalf("UpdateStatus(réalisé) again error = %v", err)
	}
	if again.InvoiceNumber == nil || *again.InvoiceNumber != "FAC-202503-0001" {
		t.Errorf("invoice number = %v after re-realization, want unchanged FAC-202503-0001", again.InvoiceNumber)
	}
}
