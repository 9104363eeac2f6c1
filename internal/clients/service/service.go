package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"atelier_erp_backend/internal/clients/domain"
	"atelier_erp_backend/internal/clients/repository"
	"atelier_erp_backend/internal/clients/transport"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/phone"
	"atelier_erp_backend/platform/sanitize"
)

// Service provides business logic for clients and contacts.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new clients service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// EnsureClientFromLead resolves a lead against the current client base and
// applies the resolver's decision: it restores a soft-deleted contact,
// appends a billing contact, or creates a fresh client. The returned client
// is always re-read from storage so the caller sees the applied state.
func (s *Service) EnsureClientFromLead(ctx context.Context, lead domain.LeadIdentity) (transport.ResolveLeadResponse, error) {
	snapshot, err := s.repo.ListAllWithContacts(ctx)
	if err != nil {
		return transport.ResolveLeadResponse{}, err
	}

	res := domain.ResolveOrCreate(lead, toDomainClients(snapshot), s.now())

	if res.Matched {
		if res.RestoreContactID != nil {
			if err := s.repo.RestoreContact(ctx, res.ClientID, *res.RestoreContactID); err != nil {
				return transport.ResolveLeadResponse{}, err
			}
			s.log.Info("client contact restored", "clientId", res.ClientID, "contactId", *res.RestoreContactID)
		}
		if res.NewContact != nil {
			contact, err := s.repo.CreateContact(ctx, contactParams(res.ClientID, *res.NewContact))
			if err != nil {
				return transport.ResolveLeadResponse{}, err
			}
			s.log.Info("billing contact appended from lead", "clientId", res.ClientID, "contactId", contact.ID, "billingDefault", contact.IsBillingDefault)
		}

		client, err := s.repo.GetClientByID(ctx, res.ClientID)
		if err != nil {
			return transport.ResolveLeadResponse{}, err
		}
		s.log.Info("lead resolved to existing client", "clientId", client.ID, "matchedBy", string(res.MatchedBy))
		return transport.ResolveLeadResponse{
			Client:    toClientResponse(client),
			Matched:   true,
			MatchedBy: string(res.MatchedBy),
		}, nil
	}

	draft := res.NewClient
	created, err := s.repo.CreateClient(ctx, repository.CreateClientParams{
		Type:        draft.Type,
		Name:        draft.Name,
		CompanyName: draft.CompanyName,
		FirstName:   draft.FirstName,
		LastName:    draft.LastName,
		SIRET:       draft.SIRET,
		Email:       sanitize.Email(draft.Email),
		Phone:       draft.Phone,
		Address:     draft.Address,
		City:        draft.City,
		Status:      draft.Status,
		Tags:        draft.Tags,
	})
	if err != nil {
		return transport.ResolveLeadResponse{}, err
	}

	if draft.FirstContact != nil {
		if _, err := s.repo.CreateContact(ctx, contactParams(created.ID, *draft.FirstContact)); err != nil {
			return transport.ResolveLeadResponse{}, err
		}
	}

	client, err := s.repo.GetClientByID(ctx, created.ID)
	if err != nil {
		return transport.ResolveLeadResponse{}, err
	}

	s.log.Info("client created from lead", "clientId", client.ID, "type", client.Type, "siret", client.SIRET)
	return transport.ResolveLeadResponse{Client: toClientResponse(client)}, nil
}

func contactParams(clientID uuid.UUID, draft domain.ContactDraft) repository.CreateContactParams {
	return repository.CreateContactParams{
		ClientID:         clientID,
		FirstName:        draft.FirstName,
		LastName:         draft.LastName,
		Email:            sanitize.Email(draft.Email),
		Mobile:           draft.Mobile,
		Roles:            draft.Roles,
		IsBillingDefault: draft.IsBillingDefault,
	}
}

func toDomainClients(snapshot []repository.Client) []domain.Client {
	clients := make([]domain.Client, 0, len(snapshot))
	for _, c := range snapshot {
		contacts := make([]domain.Contact, 0, len(c.Contacts))
		for _, contact := range c.Contacts {
			contacts = append(contacts, domain.Contact{
				ID:               contact.ID,
				FirstName:        contact.FirstName,
				LastName:         contact.LastName,
				Email:            contact.Email,
				Mobile:           contact.Mobile,
				Roles:            contact.Roles,
				IsBillingDefault: contact.IsBillingDefault,
				Active:           contact.Active,
			})
		}
		clients = append(clients, domain.Client{
			ID:          c.ID,
			Type:        c.Type,
			Name:        c.Name,
			CompanyName: c.CompanyName,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			SIRET:       c.SIRET,
			Email:       c.Email,
			Phone:       c.Phone,
			Address:     c.Address,
			City:        c.City,
			Status:      c.Status,
			Tags:        c.Tags,
			Contacts:    contacts,
		})
	}
	return clients
}

// ActivateClient promotes a Prospect to Actif. Already active clients are
// left untouched; a missing client is not an error for the caller.
func (s *Service) ActivateClient(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return err
	}
	if client.Status == domain.StatusActif {
		return nil
	}

	status := domain.StatusActif
	if _, err := s.repo.UpdateClient(ctx, repository.UpdateClientParams{ID: id, Status: &status}); err != nil {
		return err
	}
	s.log.Info("client activated", "id", id, "previousStatus", client.Status)
	return nil
}

// CreateClient creates a client directly, outside of lead resolution.
func (s *Service) CreateClient(ctx context.Context, req transport.CreateClientRequest) (transport.ClientResponse, error) {
	status := req.Status
	if status == "" {
		status = domain.StatusActif
	}

	client, err := s.repo.CreateClient(ctx, repository.CreateClientParams{
		Type:        req.Type,
		Name:        strings.TrimSpace(req.Name),
		CompanyName: req.CompanyName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		SIRET:       strings.TrimSpace(req.SIRET),
		Email:       sanitize.Email(req.Email),
		Phone:       phone.Normalize(req.Phone),
		Address:     req.Address,
		City:        req.City,
		Status:      status,
		Tags:        req.Tags,
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}

	s.log.Info("client created", "id", client.ID, "name", client.Name)
	return toClientResponse(client), nil
}

// UpdateClient updates a client.
func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, req transport.UpdateClientRequest) (transport.ClientResponse, error) {
	params := repository.UpdateClientParams{
		ID:          id,
		CompanyName: req.CompanyName,
		SIRET:       req.SIRET,
		Address:     req.Address,
		City:        req.City,
		Status:      req.Status,
		Tags:        req.Tags,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = &trimmed
	}
	if req.Email != nil {
		cleaned := sanitize.Email(*req.Email)
		params.Email = &cleaned
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		params.Phone = &normalized
	}

	client, err := s.repo.UpdateClient(ctx, params)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	s.log.Info("client updated", "id", client.ID)
	return toClientResponse(client), nil
}

// GetClientByID retrieves a client with its contacts.
func (s *Service) GetClientByID(ctx context.Context, id uuid.UUID) (transport.ClientResponse, error) {
	client, err := s.repo.GetClientByID(ctx, id)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return toClientResponse(client), nil
}

// ListClientsWithFilters retrieves clients with search and pagination.
func (s *Service) ListClientsWithFilters(ctx context.Context, req transport.ListClientsRequest) (transport.ClientListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.ListClients(ctx, repository.ListClientsParams{
		Search:    strings.TrimSpace(req.Search),
		Status:    req.Status,
		Type:      req.Type,
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.ClientListResponse{}, err
	}

	responses := make([]transport.ClientResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, toClientResponse(c))
	}
	totalPages := (total + pageSize - 1) / pageSize
	return transport.ClientListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// AddContact creates a contact on a client.
func (s *Service) AddContact(ctx context.Context, clientID uuid.UUID, req transport.CreateContactRequest) (transport.ContactResponse, error) {
	contact, err := s.repo.CreateContact(ctx, repository.CreateContactParams{
		ClientID:         clientID,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            sanitize.Email(req.Email),
		Mobile:           phone.Normalize(req.Mobile),
		Roles:            req.Roles,
		IsBillingDefault: req.IsBillingDefault,
	})
	if err != nil {
		return transport.ContactResponse{}, err
	}

	s.log.Info("contact created", "clientId", clientID, "contactId", contact.ID)
	return toContactResponse(contact), nil
}

// UpdateContact updates a contact.
func (s *Service) UpdateContact(ctx context.Context, clientID, contactID uuid.UUID, req transport.UpdateContactRequest) (transport.ContactResponse, error) {
	params := repository.UpdateContactParams{
		ID:        contactID,
		ClientID:  clientID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	}
	if req.Email != nil {
		cleaned := sanitize.Email(*req.Email)
		params.Email = &cleaned
	}
	if req.Mobile != nil {
		normalized := phone.Normalize(*req.Mobile)
		params.Mobile = &normalized
	}

	contact, err := s.repo.UpdateContact(ctx, params)
	if err != nil {
		return transport.ContactResponse{}, err
	}

	s.log.Info("contact updated", "clientId", clientID, "contactId", contact.ID)
	return toContactResponse(contact), nil
}

// RemoveContact soft-deletes a contact. The row stays around so a later
// lead carrying the same email can restore it.
func (s *Service) RemoveContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	if err := s.repo.DeactivateContact(ctx, clientID, contactID); err != nil {
		return err
	}
	s.log.Info("contact deactivated", "clientId", clientID, "contactId", contactID)
	return nil
}

// RestoreContact reactivates a soft-deleted contact.
func (s *Service) RestoreContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	if err := s.repo.RestoreContact(ctx, clientID, contactID); err != nil {
		return err
	}
	s.log.Info("contact restored", "clientId", clientID, "contactId", contactID)
	return nil
}

// SetBillingContact promotes a contact to billing default.
func (s *Service) SetBillingContact(ctx context.Context, clientID, contactID uuid.UUID) error {
	if err := s.repo.SetBillingDefault(ctx, clientID, contactID); err != nil {
		return err
	}
	s.log.Info("billing contact changed", "clientId", clientID, "contactId", contactID)
	return nil
}

func toContactResponse(contact repository.Contact) transport.ContactResponse {
	return transport.ContactResponse{
		ID:               contact.ID,
		FirstName:        contact.FirstName,
		LastName:         contact.LastName,
		Email:            contact.Email,
		Mobile:           contact.Mobile,
		Roles:            contact.Roles,
		IsBillingDefault: contact.IsBillingDefault,
		Active:           contact.Active,
		CreatedAt:        contact.CreatedAt,
		UpdatedAt:        contact.UpdatedAt,
	}
}

func toClientResponse(client repository.Client) transport.ClientResponse {
	contacts := make([]transport.ContactResponse, 0, len(client.Contacts))
	for _, contact := range client.Contacts {
		contacts = append(contacts, toContactResponse(contact))
	}
	tags := client.Tags
	if tags == nil {
		tags = []string{}
	}
	return transport.ClientResponse{
		ID:          client.ID,
		Type:        client.Type,
		Name:        client.Name,
		CompanyName: client.CompanyName,
		FirstName:   client.FirstName,
		LastName:    client.LastName,
		SIRET:       client.SIRET,
		Email:       client.Email,
		Phone:       client.Phone,
		Address:     client.Address,
		City:        client.City,
		Status:      client.Status,
		Tags:        tags,
		Contacts:    contacts,
		CreatedAt:   client.CreatedAt,
		UpdatedAt:   client.UpdatedAt,
	}
}
