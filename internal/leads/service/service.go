// Package service implements lead pipeline business logic: CRUD, the
// activity log, follow-up scheduling and conversion into clients.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	clientsdomain "atelier_erp_backend/internal/clients/domain"
	clientstransport "atelier_erp_backend/internal/clients/transport"
	"atelier_erp_backend/internal/events"
	"atelier_erp_backend/internal/leads/domain"
	"atelier_erp_backend/internal/leads/repository"
	"atelier_erp_backend/internal/leads/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/phone"
	"atelier_erp_backend/platform/sanitize"
)

// ClientResolver resolves a lead identity into the client base.
// Implemented by the clients service.
type ClientResolver interface {
	EnsureClientFromLead(ctx context.Context, lead clientsdomain.LeadIdentity) (clientstransport.ResolveLeadResponse, error)
}

// FollowUpScheduler enqueues a reminder for a lead's planned next step.
// Implemented by the scheduler client; scheduling failures never block
// the lead operation itself.
type FollowUpScheduler interface {
	ScheduleFollowUp(ctx context.Context, leadID uuid.UUID, name string, due time.Time) error
}

// Service handles lead operations.
type Service struct {
	repo      repository.Repository
	clients   ClientResolver
	scheduler FollowUpScheduler
	bus       events.Bus
	log       *logger.Logger
}

// New creates a new leads service. The scheduler may be nil when no
// reminder backend is configured.
func New(repo repository.Repository, clients ClientResolver, scheduler FollowUpScheduler, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		clients:   clients,
		scheduler: scheduler,
		bus:       bus,
		log:       log,
	}
}

// CreateLead creates a lead, Nouveau by default, and schedules a
// follow-up reminder when a next step date is planned.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	status := req.Status
	if status == "" {
		status = domain.StatusNouveau
	}

	lead, err := s.repo.CreateLead(ctx, repository.CreateLeadParams{
		Company:        req.Company,
		Contact:        req.Contact,
		Phone:          phone.Normalize(req.Phone),
		Email:          sanitize.Email(req.Email),
		Source:         req.Source,
		Segment:        req.Segment,
		Status:         status,
		NextStepDate:   req.NextStepDate,
		NextStepNote:   req.NextStepNote,
		EstimatedValue: req.EstimatedValue,
		Owner:          req.Owner,
		Tags:           req.Tags,
		Address:        req.Address,
		CompanyID:      req.CompanyID,
		SupportType:    req.SupportType,
		SupportDetail:  req.SupportDetail,
		SIRET:          req.SIRET,
		ClientType:     req.ClientType,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Contact,
		Phone:     lead.Phone,
		Email:     lead.Email,
		Source:    lead.Source,
	})
	s.scheduleFollowUp(ctx, lead)

	s.log.Info("lead created", "id", lead.ID, "contact", lead.Contact, "status", lead.Status)
	return toLeadResponse(lead), nil
}

// UpdateLead updates a lead's fields. A changed next step date
// reschedules the follow-up reminder.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		ID:             id,
		Company:        req.Company,
		Contact:        req.Contact,
		Source:         req.Source,
		Segment:        req.Segment,
		NextStepDate:   req.NextStepDate,
		ClearNextStep:  req.ClearNextStep,
		NextStepNote:   req.NextStepNote,
		EstimatedValue: req.EstimatedValue,
		Owner:          req.Owner,
		Tags:           req.Tags,
		Address:        req.Address,
		CompanyID:      req.CompanyID,
		SupportType:    req.SupportType,
		SupportDetail:  req.SupportDetail,
		SIRET:          req.SIRET,
		ClientType:     req.ClientType,
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		params.Phone = &normalized
	}
	if req.Email != nil {
		email := sanitize.Email(*req.Email)
		params.Email = &email
	}

	lead, err := s.repo.UpdateLead(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if req.NextStepDate != nil {
		s.scheduleFollowUp(ctx, lead)
	}
	return toLeadResponse(lead), nil
}

// UpdateStatus moves a lead to another pipeline status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	if !domain.ValidStatus(req.Status) {
		return transport.LeadResponse{}, apperr.Validation("unknown lead status")
	}
	return s.setStatus(ctx, id, req.Status)
}

// AdvanceLead moves a lead one step along the pipeline. Terminal leads
// stay where they are.
func (s *Service) AdvanceLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLeadByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	next := domain.Advance(lead.Status)
	if next == lead.Status {
		return toLeadResponse(lead), nil
	}
	return s.setStatus(ctx, id, next)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status string) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLeadByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if lead.Status == status {
		return toLeadResponse(lead), nil
	}
	oldStatus := lead.Status

	updated, err := s.repo.UpdateLead(ctx, repository.UpdateLeadParams{ID: id, Status: &status})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		OldStatus: oldStatus,
		NewStatus: status,
	})
	s.log.Info("lead status changed", "id", id, "from", oldStatus, "to", status)
	return toLeadResponse(updated), nil
}

// DeleteLead removes a lead and its activity log.
func (s *Service) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteLead(ctx, id); err != nil {
		return err
	}
	s.log.Info("lead deleted", "id", id)
	return nil
}

// GetLeadByID retrieves a lead.
func (s *Service) GetLeadByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetLeadByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return toLeadResponse(lead), nil
}

// ListLeads returns a filtered, paginated lead list.
func (s *Service) ListLeads(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	leads, total, err := s.repo.ListLeads(ctx, repository.ListLeadsParams{
		Search:    req.Search,
		Status:    req.Status,
		Owner:     req.Owner,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// RecordActivity appends an activity to a lead's log; a call also
// stamps lastContact.
func (s *Service) RecordActivity(ctx context.Context, leadID uuid.UUID, req transport.RecordActivityRequest) (transport.ActivityResponse, error) {
	if !domain.ValidActivityType(req.Type) {
		return transport.ActivityResponse{}, apperr.Validation("unknown activity type")
	}

	activity, err := s.repo.AddActivity(ctx, repository.AddActivityParams{
		LeadID:           leadID,
		Type:             req.Type,
		Content:          req.Content,
		StampLastContact: domain.StampsLastContact(req.Type),
	})
	if err != nil {
		return transport.ActivityResponse{}, err
	}
	return toActivityResponse(activity), nil
}

// RemoveActivity deletes one activity log entry.
func (s *Service) RemoveActivity(ctx context.Context, leadID, activityID uuid.UUID) error {
	return s.repo.RemoveActivity(ctx, leadID, activityID)
}

// ConvertLeadToClient resolves the lead into the client base, creating
// or matching a client. The lead only moves to Gagné on explicit
// request; its activity log stays on the lead.
func (s *Service) ConvertLeadToClient(ctx context.Context, id uuid.UUID, req transport.ConvertLeadRequest) (transport.ConvertLeadResponse, error) {
	lead, err := s.repo.GetLeadByID(ctx, id)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	identity := clientsdomain.LeadIdentity{
		Contact: lead.Contact,
		Company: lead.Company,
		Email:   lead.Email,
		Phone:   lead.Phone,
		Address: lead.Address,
		Tags:    lead.Tags,
	}
	if lead.SIRET != nil {
		identity.SIRET = *lead.SIRET
	}
	if req.SIRET != nil {
		identity.SIRET = *req.SIRET
	}
	if lead.ClientType != nil {
		identity.ClientType = *lead.ClientType
	}

	resolved, err := s.clients.EnsureClientFromLead(ctx, identity)
	if err != nil {
		return transport.ConvertLeadResponse{}, err
	}

	if req.MarkWon && lead.Status != domain.StatusGagne {
		won := domain.MarkWon(lead.Status)
		lead, err = s.repo.UpdateLead(ctx, repository.UpdateLeadParams{ID: id, Status: &won})
		if err != nil {
			return transport.ConvertLeadResponse{}, err
		}
	}

	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		ClientID:  resolved.Client.ID,
		ContactID: billingContactID(resolved.Client),
		Matched:   resolved.Matched,
		MarkedWon: req.MarkWon,
	})
	s.log.Info("lead converted",
		"id", id, "client_id", resolved.Client.ID,
		"matched", resolved.Matched, "matched_by", resolved.MatchedBy,
	)

	return transport.ConvertLeadResponse{
		ClientID:  resolved.Client.ID,
		Matched:   resolved.Matched,
		MatchedBy: resolved.MatchedBy,
		Lead:      toLeadResponse(lead),
	}, nil
}

// DispatchDueFollowUps publishes a reminder event for every open lead
// whose next step date has passed. Called from the scheduler worker.
func (s *Service) DispatchDueFollowUps(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.repo.ListDueFollowUps(ctx, asOf)
	if err != nil {
		return 0, err
	}

	for _, lead := range due {
		s.bus.Publish(ctx, events.LeadFollowUpDue{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       lead.ID,
			Name:         lead.Contact,
			NextStepDate: *lead.NextStepDate,
		})
	}
	return len(due), nil
}

func (s *Service) scheduleFollowUp(ctx context.Context, lead repository.Lead) {
	if s.scheduler == nil || lead.NextStepDate == nil {
		return
	}
	if err := s.scheduler.ScheduleFollowUp(ctx, lead.ID, lead.Contact, *lead.NextStepDate); err != nil {
		s.log.Error("follow-up scheduling failed", "lead_id", lead.ID, "error", err)
	}
}

func billingContactID(client clientstransport.ClientResponse) uuid.UUID {
	for _, contact := range client.Contacts {
		if contact.Active && contact.IsBillingDefault {
			return contact.ID
		}
	}
	for _, contact := range client.Contacts {
		if contact.Active {
			return contact.ID
		}
	}
	return uuid.Nil
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	activities := make([]transport.ActivityResponse, 0, len(l.Activities))
	for _, a := range l.Activities {
		activities = append(activities, toActivityResponse(a))
	}
	return transport.LeadResponse{
		ID:             l.ID,
		Company:        l.Company,
		Contact:        l.Contact,
		Phone:          l.Phone,
		Email:          l.Email,
		Source:         l.Source,
		Segment:        l.Segment,
		Status:         l.Status,
		NextStepDate:   l.NextStepDate,
		NextStepNote:   l.NextStepNote,
		LastContact:    l.LastContact,
		EstimatedValue: l.EstimatedValue,
		Owner:          l.Owner,
		Tags:           l.Tags,
		Address:        l.Address,
		CompanyID:      l.CompanyID,
		SupportType:    l.SupportType,
		SupportDetail:  l.SupportDetail,
		SIRET:          l.SIRET,
		ClientType:     l.ClientType,
		Activities:     activities,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func toActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:        a.ID,
		Type:      a.Type,
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
}
