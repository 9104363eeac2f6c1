package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	clientsdomain "atelier_erp_backend/internal/clients/domain"
	clientstransport "atelier_erp_backend/internal/clients/transport"
	"atelier_erp_backend/internal/leads/domain"
	"atelier_erp_backend/internal/leads/repository"
	"atelier_erp_backend/internal/leads/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/events"
	"atelier_erp_backend/platform/logger"
)

type fakeRepo struct {
	leads      map[uuid.UUID]repository.Lead
	activities map[uuid.UUID][]repository.Activity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:      make(map[uuid.UUID]repository.Lead),
		activities: make(map[uuid.UUID][]repository.Activity),
	}
}

func (f *fakeRepo) CreateLead(_ context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	l := repository.Lead{
		ID:             uuid.New(),
		Company:        params.Company,
		Contact:        params.Contact,
		Phone:          params.Phone,
		Email:          params.Email,
		Source:         params.Source,
		Segment:        params.Segment,
		Status:         params.Status,
		NextStepDate:   params.NextStepDate,
		NextStepNote:   params.NextStepNote,
		EstimatedValue: params.EstimatedValue,
		Owner:          params.Owner,
		Tags:           params.Tags,
		Address:        params.Address,
		CompanyID:      params.CompanyID,
		SupportType:    params.SupportType,
		SupportDetail:  params.SupportDetail,
		SIRET:          params.SIRET,
		ClientType:     params.ClientType,
		Activities:     []repository.Activity{},
	}
	f.leads[l.ID] = l
	return l, nil
}

func (f *fakeRepo) UpdateLead(_ context.Context, params repository.UpdateLeadParams) (repository.Lead, error) {
	l, ok := f.leads[params.ID]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	if params.Status != nil {
		l.Status = *params.Status
	}
	if params.NextStepDate != nil {
		l.NextStepDate = params.NextStepDate
	}
	if params.ClearNextStep {
		l.NextStepDate = nil
	}
	f.leads[l.ID] = l
	l.Activities = f.activities[l.ID]
	return l, nil
}

func (f *fakeRepo) DeleteLead(_ context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return apperr.NotFound("lead not found")
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) GetLeadByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return repository.Lead{}, apperr.NotFound("lead not found")
	}
	l.Activities = f.activities[id]
	return l, nil
}

func (f *fakeRepo) ListLeads(_ context.Context, _ repository.ListLeadsParams) ([]repository.Lead, int, error) {
	all := make([]repository.Lead, 0, len(f.leads))
	for _, l := range f.leads {
		all = append(all, l)
	}
	return all, len(all), nil
}

func (f *fakeRepo) ListDueFollowUps(_ context.Context, before time.Time) ([]repository.Lead, error) {
	var due []repository.Lead
	for _, l := range f.leads {
		if l.NextStepDate != nil && !l.NextStepDate.After(before) && !domain.Terminal(l.Status) {
			due = append(due, l)
		}
	}
	return due, nil
}

func (f *fakeRepo) AddActivity(_ context.Context, params repository.AddActivityParams) (repository.Activity, error) {
	l, ok := f.leads[params.LeadID]
	if !ok {
		return repository.Activity{}, apperr.NotFound("lead not found")
	}
	a := repository.Activity{
		ID:        uuid.New(),
		LeadID:    params.LeadID,
		Type:      params.Type,
		Content:   params.Content,
		CreatedAt: time.Now(),
	}
	f.activities[params.LeadID] = append([]repository.Activity{a}, f.activities[params.LeadID]...)
	if params.StampLastContact {
		l.LastContact = &a.CreatedAt
		f.leads[params.LeadID] = l
	}
	return a, nil
}

func (f *fakeRepo) RemoveActivity(_ context.Context, leadID, activityID uuid.UUID) error {
	kept := f.activities[leadID][:0]
	removed := false
	for _, a := range f.activities[leadID] {
		if a.ID == activityID {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return apperr.NotFound("activity not found")
	}
	f.activities[leadID] = kept
	return nil
}

var _ repository.Repository = (*fakeRepo)(nil)

type fakeResolver struct {
	resp  clientstransport.ResolveLeadResponse
	calls []clientsdomain.LeadIdentity
}

func (f *fakeResolver) EnsureClientFromLead(_ context.Context, lead clientsdomain.LeadIdentity) (clientstransport.ResolveLeadResponse, error) {
	f.calls = append(f.calls, lead)
	return f.resp, nil
}

type fakeScheduler struct {
	scheduled []time.Time
}

func (f *fakeScheduler) ScheduleFollowUp(_ context.Context, _ uuid.UUID, _ string, due time.Time) error {
	f.scheduled = append(f.scheduled, due)
	return nil
}

func newTestService(repo *fakeRepo, resolver *fakeResolver, sched FollowUpScheduler) *Service {
	log := logger.New("development")
	if resolver == nil {
		resolver = &fakeResolver{}
	}
	return New(repo, resolver, sched, events.NewInMemoryBus(log), log)
}

func TestCreateLeadDefaultsToNouveauAndSchedulesFollowUp(t *testing.T) {
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := newTestService(repo, nil, sched)

	due := time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC)
	resp, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		Contact:      "Jeanne Martin",
		Phone:        "06 12 34 56 78",
		Email:        " Jeanne@Exemple.FR ",
		NextStepDate: &due,
	})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	if resp.Status != domain.StatusNouveau {
		t.Errorf("status = %q, want Nouveau", resp.Status)
	}
	if resp.Phone != "+33612345678" {
		t.Errorf("phone = %q, want +33612345678", resp.Phone)
	}
	if resp.Email != "jeanne@exemple.fr" {
		t.Errorf("email = %q, want jeanne@exemple.fr", resp.Email)
	}
	if len(sched.scheduled) != 1 || !sched.scheduled[0].Equal(due) {
		t.Errorf("scheduled = %v, want one reminder at %v", sched.scheduled, due)
	}
}

func TestCreateLeadWithoutNextStepSkipsScheduling(t *testing.T) {
	repo := newFakeRepo()
	sched := &fakeScheduler{}
	svc := newTestService(repo, nil, sched)

	if _, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{Contact: "Paul"}); err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	if len(sched.scheduled) != 0 {
		t.Errorf("scheduled = %v, want none", sched.scheduled)
	}
}

func TestAdvanceLeadStopsAtTerminal(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	created, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{Contact: "Paul"})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}

	advanced, err := svc.AdvanceLead(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("AdvanceLead() error = %v", err)
	}
	if advanced.Status != domain.StatusAContacter {
		t.Errorf("status = %q, want À contacter", advanced.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), created.ID, transport.UpdateLeadStatusRequest{Status: domain.StatusPerdu}); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	still, err := svc.AdvanceLead(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("AdvanceLead() on terminal error = %v", err)
	}
	if still.Status != domain.StatusPerdu {
		t.Errorf("status = %q, want Perdu to stay", still.Status)
	}
}

func TestRecordActivityRejectsUnknownType(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	created, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{Contact: "Paul"})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}

	_, err = svc.RecordActivity(context.Background(), created.ID, transport.RecordActivityRequest{Type: "email", Content: "x"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("error kind = %v, want validation", apperr.GetKind(err))
	}
}

func TestConvertLeadMarksWonOnlyWhenAsked(t *testing.T) {
	repo := newFakeRepo()
	clientID := uuid.New()
	resolver := &fakeResolver{resp: clientstransport.ResolveLeadResponse{
		Client:    clientstransport.ClientResponse{ID: clientID},
		Matched:   true,
		MatchedBy: "email",
	}}
	svc := newTestService(repo, resolver, nil)

	siret := "73282932000074"
	created, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		Contact: "Jeanne Martin",
		Company: "Flotte & Co",
		Email:   "jeanne@exemple.fr",
		SIRET:   &siret,
	})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}

	resp, err := svc.ConvertLeadToClient(context.Background(), created.ID, transport.ConvertLeadRequest{})
	if err != nil {
		t.Fatalf("ConvertLeadToClient() error = %v", err)
	}
	if resp.ClientID != clientID {
		t.Errorf("client id = %v, want %v", resp.ClientID, clientID)
	}
	if resp.Lead.Status != domain.StatusNouveau {
		t.Errorf("lead status = %q, want unchanged without markWon", resp.Lead.Status)
	}
	if len(resolver.calls) != 1 || resolver.calls[0].SIRET != siret {
		t.Fatalf("resolver calls = %+v, want one with lead SIRET", resolver.calls)
	}

	override := "12345678900011"
	resp, err = svc.ConvertLeadToClient(context.Background(), created.ID, transport.ConvertLeadRequest{
		SIRET:   &override,
		MarkWon: true,
	})
	if err != nil {
		t.Fatalf("second ConvertLeadToClient() error = %v", err)
	}
	if resp.Lead.Status != domain.StatusGagne {
		t.Errorf("lead status = %q, want Gagné with markWon", resp.Lead.Status)
	}
	if resolver.calls[1].SIRET != override {
		t.Errorf("resolver SIRET = %q, want request override %q", resolver.calls[1].SIRET, override)
	}
}

func TestDispatchDueFollowUpsCountsOpenLeads(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil, nil)

	past := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	open, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{Contact: "Paul", NextStepDate: &past})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	closed, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{Contact: "Anne", NextStepDate: &past})
	if err != nil {
		t.Fatalf("CreateLead() error = %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), closed.ID, transport.UpdateLeadStatusRequest{Status: domain.StatusGagne}); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	count, err := svc.DispatchDueFollowUps(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DispatchDueFollowUps() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (only %s is open)", count, open.Contact)
	}
}
