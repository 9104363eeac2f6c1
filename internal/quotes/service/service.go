// Package service implements engagement business logic: devis and
// service CRUD, pricing, document numbering and the devis lifecycle.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	catalogdomain "atelier_erp_backend/internal/catalog/domain"
	"atelier_erp_backend/internal/events"
	"atelier_erp_backend/internal/quotes/domain"
	"atelier_erp_backend/internal/quotes/repository"
	"atelier_erp_backend/internal/quotes/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/config"
	"atelier_erp_backend/platform/logger"
)

// numberAllocationAttempts bounds the retry loop when two requests race
// for the same document number and one hits the unique index.
const numberAllocationAttempts = 3

// CatalogLookup provides the pricing snapshot engagements are priced
// against. Implemented by the catalog service.
type CatalogLookup interface {
	Lookup(ctx context.Context) (*catalogdomain.Lookup, error)
}

// CompanyVAT exposes the per-company VAT override. A nil result means
// the company carries no override. Implemented by the companies service.
type CompanyVAT interface {
	CompanyVATEnabled(ctx context.Context, companyID uuid.UUID) (*bool, error)
}

// Service handles engagement operations.
type Service struct {
	repo      repository.Repository
	catalog   CatalogLookup
	companies CompanyVAT
	vat       config.VATConfig
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new engagement service.
func New(repo repository.Repository, catalog CatalogLookup, companies CompanyVAT, vat config.VATConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:      repo,
		catalog:   catalog,
		companies: companies,
		vat:       vat,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}
}

// CreateEngagement creates a devis or a service. A devis is born
// brouillon with a freshly allocated DEV number; allocation retries on
// a unique-index race.
func (s *Service) CreateEngagement(ctx context.Context, req transport.CreateEngagementRequest) (transport.EngagementResponse, error) {
	params := repository.CreateEngagementParams{
		ClientID:          req.ClientID,
		CompanyID:         req.CompanyID,
		Kind:              req.Kind,
		Status:            req.Status,
		QuoteName:         req.QuoteName,
		InvoiceVATEnabled: req.InvoiceVATEnabled,
		ScheduledAt:       req.ScheduledAt,
		Services:          toDomainLines(req.Services),
		SupportType:       req.SupportType,
		SupportDetail:     req.SupportDetail,
		AdditionalCharge:  req.AdditionalCharge,
		ContactIDs:        req.ContactIDs,
		AssignedUserIDs:   req.AssignedUserIDs,
	}
	if params.Status == "" {
		params.Status = domain.StatusBrouillon
		if req.Kind == domain.KindService && req.ScheduledAt != nil {
			params.Status = domain.StatusPlanifie
		}
	}

	var (
		row repository.Engagement
		err error
	)
	if req.Kind == domain.KindDevis {
		quoteStatus := domain.QuoteBrouillon
		params.QuoteStatus = &quoteStatus
		row, err = s.createWithQuoteNumber(ctx, params)
	} else {
		row, err = s.repo.CreateEngagement(ctx, params)
	}
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	s.log.Info("engagement created", "id", row.ID, "kind", row.Kind, "client_id", row.ClientID)
	return s.toResponse(ctx, row)
}

// createWithQuoteNumber allocates the next DEV number from the current
// engagement snapshot and inserts. A concurrent insert of the same
// number surfaces as a conflict; the allocation is then recomputed.
func (s *Service) createWithQuoteNumber(ctx context.Context, params repository.CreateEngagementParams) (repository.Engagement, error) {
	var lastErr error
	for attempt := 0; attempt < numberAllocationAttempts; attempt++ {
		existing, err := s.listAllDomain(ctx)
		if err != nil {
			return repository.Engagement{}, err
		}
		number := domain.NextQuoteNumber(existing, s.now())
		params.QuoteNumber = &number

		row, err := s.repo.CreateEngagement(ctx, params)
		if err == nil {
			return row, nil
		}
		if apperr.GetKind(err) != apperr.KindConflict {
			return repository.Engagement{}, err
		}
		lastErr = err
	}
	return repository.Engagement{}, lastErr
}

// UpdateEngagement updates an engagement's editable fields. Lifecycle
// fields (kind, statuses, numbers) only move through their operations.
func (s *Service) UpdateEngagement(ctx context.Context, id uuid.UUID, req transport.UpdateEngagementRequest) (transport.EngagementResponse, error) {
	params := repository.UpdateEngagementParams{
		ID:                id,
		CompanyID:         req.CompanyID,
		QuoteName:         req.QuoteName,
		InvoiceVATEnabled: req.InvoiceVATEnabled,
		ScheduledAt:       req.ScheduledAt,
		SupportType:       req.SupportType,
		SupportDetail:     req.SupportDetail,
		AdditionalCharge:  req.AdditionalCharge,
		ContactIDs:        req.ContactIDs,
		AssignedUserIDs:   req.AssignedUserIDs,
	}
	if req.Services != nil {
		params.Services = toDomainLines(*req.Services)
		params.ReplaceServices = true
	}

	row, err := s.repo.UpdateEngagement(ctx, params)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	return s.toResponse(ctx, row)
}

// DeleteEngagement removes an engagement.
func (s *Service) DeleteEngagement(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteEngagement(ctx, id); err != nil {
		return err
	}
	s.log.Info("engagement deleted", "id", id)
	return nil
}

// GetEngagementByID retrieves one engagement with computed totals.
func (s *Service) GetEngagementByID(ctx context.Context, id uuid.UUID) (transport.EngagementResponse, error) {
	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	return s.toResponse(ctx, row)
}

// ListEngagements returns a filtered, paginated engagement list. Every
// item carries totals computed against one shared catalog snapshot.
func (s *Service) ListEngagements(ctx context.Context, req transport.ListEngagementsRequest) (transport.EngagementListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	params := repository.ListEngagementsParams{
		Kind:      req.Kind,
		Status:    req.Status,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return transport.EngagementListResponse{}, apperr.Validation("invalid client id")
		}
		params.ClientID = &clientID
	}

	rows, total, err := s.repo.ListEngagements(ctx, params)
	if err != nil {
		return transport.EngagementListResponse{}, err
	}

	lookup, err := s.catalog.Lookup(ctx)
	if err != nil {
		return transport.EngagementListResponse{}, err
	}

	items := make([]transport.EngagementResponse, 0, len(rows))
	for _, row := range rows {
		resp, err := s.buildResponse(ctx, row, lookup)
		if err != nil {
			return transport.EngagementListResponse{}, err
		}
		items = append(items, resp)
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.EngagementListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// SendQuote records a devis send: the send history gains an entry, the
// devis moves to envoyé unless already decided, and the recipients are
// merged into the engagement's contact list.
func (s *Service) SendQuote(ctx context.Context, id uuid.UUID, req transport.SendQuoteRequest) (transport.EngagementResponse, error) {
	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	e := toDomainEngagement(row)
	record := domain.SendRecord{
		SentAt:     s.now(),
		ContactIDs: req.ContactIDs,
		Subject:    req.Subject,
	}
	e, err = domain.MarkQuoteSent(e, record)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	if e.Status == domain.StatusBrouillon {
		e.Status = domain.StatusEnvoye
	}
	e.ContactIDs = mergeContactIDs(e.ContactIDs, req.ContactIDs)

	saved, err := s.saveState(ctx, e)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	resp, err := s.toResponse(ctx, saved)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	s.bus.Publish(ctx, events.QuoteSent{
		BaseEvent:    events.NewBaseEvent(),
		EngagementID: saved.ID,
		ClientID:     saved.ClientID,
		QuoteNumber:  derefString(saved.QuoteNumber),
		Channel:      "email",
		TotalHT:      resp.Totals.PriceHT,
	})
	s.log.Info("devis sent", "id", saved.ID, "contacts", len(req.ContactIDs))
	return resp, nil
}

// AcceptQuote moves a sent devis to accepté.
func (s *Service) AcceptQuote(ctx context.Context, id uuid.UUID) (transport.EngagementResponse, error) {
	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	e, err := domain.AcceptQuote(toDomainEngagement(row))
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	saved, err := s.saveState(ctx, e)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	resp, err := s.toResponse(ctx, saved)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	s.bus.Publish(ctx, events.QuoteAccepted{
		BaseEvent:    events.NewBaseEvent(),
		EngagementID: saved.ID,
		ClientID:     saved.ClientID,
		QuoteNumber:  derefString(saved.QuoteNumber),
		TotalHT:      resp.Totals.PriceHT,
	})
	s.log.Info("devis accepted", "id", saved.ID)
	return resp, nil
}

// RefuseQuote moves a sent devis to refusé.
func (s *Service) RefuseQuote(ctx context.Context, id uuid.UUID, req transport.RefuseQuoteRequest) (transport.EngagementResponse, error) {
	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	e, err := domain.RefuseQuote(toDomainEngagement(row))
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	saved, err := s.saveState(ctx, e)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	s.bus.Publish(ctx, events.QuoteRefused{
		BaseEvent:    events.NewBaseEvent(),
		EngagementID: saved.ID,
		ClientID:     saved.ClientID,
		QuoteNumber:  derefString(saved.QuoteNumber),
		Reason:       req.Reason,
	})
	s.log.Info("devis refused", "id", saved.ID)
	return s.toResponse(ctx, saved)
}

// ConvertQuoteToService turns a devis into a realized service on its
// realization date. The devis number and name stay on the record.
func (s *Service) ConvertQuoteToService(ctx context.Context, id uuid.UUID, req transport.ConvertQuoteRequest) (transport.EngagementResponse, error) {
	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	e, err := domain.ConvertQuoteToService(toDomainEngagement(row), req.RealizationDate)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	saved, err := s.saveState(ctx, e)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	s.bus.Publish(ctx, events.QuoteConverted{
		BaseEvent:    events.NewBaseEvent(),
		EngagementID: saved.ID,
		ClientID:     saved.ClientID,
		QuoteNumber:  derefString(saved.QuoteNumber),
		PlannedDate:  req.RealizationDate,
	})
	s.log.Info("devis converted to service", "id", saved.ID, "realized_at", req.RealizationDate)
	return s.toResponse(ctx, saved)
}

// UpdateStatus moves an engagement to another status. A service
// reaching réalisé gets its FAC number allocated on first realization.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.EngagementResponse, error) {
	if !domain.ValidStatus(req.Status) {
		return transport.EngagementResponse{}, apperr.Validation("unknown engagement status")
	}

	row, err := s.repo.GetEngagementByID(ctx, id)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	e := toDomainEngagement(row)
	e.Status = req.Status

	realized := req.Status == domain.StatusRealise && e.Kind == domain.KindService && e.InvoiceNumber == nil
	var saved repository.Engagement
	if realized {
		saved, err = s.saveRealized(ctx, e)
	} else {
		saved, err = s.saveState(ctx, e)
	}
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	resp, err := s.toResponse(ctx, saved)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	if realized {
		s.bus.Publish(ctx, events.ServiceRealized{
			BaseEvent:     events.NewBaseEvent(),
			EngagementID:  saved.ID,
			ClientID:      saved.ClientID,
			InvoiceNumber: derefString(saved.InvoiceNumber),
			TotalTTC:      resp.Totals.TotalTTC,
		})
		s.log.Info("service realized", "id", saved.ID, "invoice_number", derefString(saved.InvoiceNumber))
	}
	return resp, nil
}

// saveRealized persists a réalisé transition together with a freshly
// allocated FAC number, retrying on an allocation race.
func (s *Service) saveRealized(ctx context.Context, e domain.Engagement) (repository.Engagement, error) {
	var lastErr error
	for attempt := 0; attempt < numberAllocationAttempts; attempt++ {
		existing, err := s.listAllDomain(ctx)
		if err != nil {
			return repository.Engagement{}, err
		}
		number := domain.NextInvoiceNumber(existing, s.now())
		e.InvoiceNumber = &number

		saved, err := s.saveState(ctx, e)
		if err == nil {
			return saved, nil
		}
		if apperr.GetKind(err) != apperr.KindConflict {
			return repository.Engagement{}, err
		}
		lastErr = err
	}
	return repository.Engagement{}, lastErr
}

func (s *Service) saveState(ctx context.Context, e domain.Engagement) (repository.Engagement, error) {
	return s.repo.SaveState(ctx, repository.SaveStateParams{
		ID:            e.ID,
		Kind:          e.Kind,
		Status:        e.Status,
		QuoteStatus:   e.QuoteStatus,
		InvoiceNumber: e.InvoiceNumber,
		ScheduledAt:   e.ScheduledAt,
		SendHistory:   e.SendHistory,
		ContactIDs:    e.ContactIDs,
	})
}

func (s *Service) listAllDomain(ctx context.Context) ([]domain.Engagement, error) {
	rows, err := s.repo.ListAllEngagements(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]domain.Engagement, 0, len(rows))
	for _, row := range rows {
		all = append(all, toDomainEngagement(row))
	}
	return all, nil
}

// resolveVAT applies the override chain: the engagement's own flag wins,
// then the company's, then the global default. The rate is global.
func (s *Service) resolveVAT(ctx context.Context, row repository.Engagement) (bool, float64, error) {
	rate := domain.SanitizeVATRate(s.vat.GetVATRatePercent())

	if row.InvoiceVATEnabled != nil {
		return *row.InvoiceVATEnabled, rate, nil
	}
	if row.CompanyID != nil {
		override, err := s.companies.CompanyVATEnabled(ctx, *row.CompanyID)
		if err != nil {
			return false, 0, err
		}
		if override != nil {
			return *override, rate, nil
		}
	}
	return s.vat.GetVATEnabled(), rate, nil
}

func (s *Service) toResponse(ctx context.Context, row repository.Engagement) (transport.EngagementResponse, error) {
	lookup, err := s.catalog.Lookup(ctx)
	if err != nil {
		return transport.EngagementResponse{}, err
	}
	return s.buildResponse(ctx, row, lookup)
}

func (s *Service) buildResponse(ctx context.Context, row repository.Engagement, lookup *catalogdomain.Lookup) (transport.EngagementResponse, error) {
	vatEnabled, vatRate, err := s.resolveVAT(ctx, row)
	if err != nil {
		return transport.EngagementResponse{}, err
	}

	totals := domain.ComputeEngagementTotals(toDomainEngagement(row), lookup)
	multiplier := domain.VATMultiplier(vatRate)

	return transport.EngagementResponse{
		ID:                row.ID,
		ClientID:          row.ClientID,
		CompanyID:         row.CompanyID,
		Kind:              row.Kind,
		Status:            row.Status,
		QuoteStatus:       row.QuoteStatus,
		QuoteNumber:       row.QuoteNumber,
		QuoteName:         row.QuoteName,
		InvoiceNumber:     row.InvoiceNumber,
		InvoiceVATEnabled: row.InvoiceVATEnabled,
		ScheduledAt:       row.ScheduledAt,
		Services:          toLinePayloads(row.Services),
		SupportType:       row.SupportType,
		SupportDetail:     row.SupportDetail,
		AdditionalCharge:  row.AdditionalCharge,
		ContactIDs:        row.ContactIDs,
		AssignedUserIDs:   row.AssignedUserIDs,
		SendHistory:       toSendRecordResponses(row.SendHistory),
		Totals: transport.TotalsResponse{
			PriceHT:        domain.RoundMoney(totals.PriceHT),
			DurationMin:    totals.DurationMin,
			Surcharge:      domain.RoundMoney(totals.Surcharge),
			VATEnabled:     vatEnabled,
			VATRatePercent: vatRate,
			TotalTTC:       domain.RoundMoney(domain.TotalTTC(totals.PriceHT, totals.Surcharge, multiplier, vatEnabled)),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// Mappers

func toDomainEngagement(row repository.Engagement) domain.Engagement {
	return domain.Engagement{
		ID:                row.ID,
		ClientID:          row.ClientID,
		CompanyID:         row.CompanyID,
		Kind:              row.Kind,
		Status:            row.Status,
		QuoteStatus:       row.QuoteStatus,
		QuoteNumber:       row.QuoteNumber,
		QuoteName:         row.QuoteName,
		InvoiceNumber:     row.InvoiceNumber,
		InvoiceVATEnabled: row.InvoiceVATEnabled,
		ScheduledAt:       row.ScheduledAt,
		Services:          row.Services,
		SupportType:       row.SupportType,
		SupportDetail:     row.SupportDetail,
		AdditionalCharge:  row.AdditionalCharge,
		ContactIDs:        row.ContactIDs,
		AssignedUserIDs:   row.AssignedUserIDs,
		SendHistory:       row.SendHistory,
	}
}

func toDomainLines(payloads []transport.ServiceLinePayload) []domain.ServiceLine {
	lines := make([]domain.ServiceLine, 0, len(payloads))
	for _, p := range payloads {
		line := domain.ServiceLine{
			ServiceID:      p.ServiceID,
			OptionIDs:      p.OptionIDs,
			MainCategoryID: p.MainCategoryID,
			SubCategoryID:  p.SubCategoryID,
			Quantity:       p.Quantity,
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if len(p.OptionOverrides) > 0 {
			line.OptionOverrides = make(map[uuid.UUID]domain.OptionOverride, len(p.OptionOverrides))
			for id, o := range p.OptionOverrides {
				line.OptionOverrides[id] = domain.OptionOverride{
					Quantity:    o.Quantity,
					UnitPriceHT: o.UnitPriceHT,
					DurationMin: o.DurationMin,
				}
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func toLinePayloads(lines []domain.ServiceLine) []transport.ServiceLinePayload {
	payloads := make([]transport.ServiceLinePayload, 0, len(lines))
	for _, line := range lines {
		p := transport.ServiceLinePayload{
			ServiceID:      line.ServiceID,
			OptionIDs:      line.OptionIDs,
			MainCategoryID: line.MainCategoryID,
			SubCategoryID:  line.SubCategoryID,
			Quantity:       line.Quantity,
		}
		if len(line.OptionOverrides) > 0 {
			p.OptionOverrides = make(map[uuid.UUID]transport.OptionOverridePayload, len(line.OptionOverrides))
			for id, o := range line.OptionOverrides {
				p.OptionOverrides[id] = transport.OptionOverridePayload{
					Quantity:    o.Quantity,
					UnitPriceHT: o.UnitPriceHT,
					DurationMin: o.DurationMin,
				}
			}
		}
		payloads = append(payloads, p)
	}
	return payloads
}

func toSendRecordResponses(records []domain.SendRecord) []transport.SendRecordResponse {
	out := make([]transport.SendRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, transport.SendRecordResponse{
			SentAt:     r.SentAt,
			ContactIDs: r.ContactIDs,
			Subject:    r.Subject,
		})
	}
	return out
}

func mergeContactIDs(existing, added []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(existing)+len(added))
	merged := make([]uuid.UUID, 0, len(existing)+len(added))
	for _, id := range append(append([]uuid.UUID{}, existing...), added...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
