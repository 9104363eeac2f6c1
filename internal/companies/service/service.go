// Package service implements company business logic: the operator legal
// entities engagements are issued under.
package service

import (
	"context"

	"github.com/google/uuid"

	"atelier_erp_backend/internal/companies/repository"
	"atelier_erp_backend/internal/companies/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/phone"
	"atelier_erp_backend/platform/sanitize"
)

// Service handles company operations.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new companies service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CompanyVATEnabled returns the company's VAT override, or nil when the
// company carries none. A missing company also resolves to nil so a
// stale reference degrades to the global default instead of failing.
func (s *Service) CompanyVATEnabled(ctx context.Context, id uuid.UUID) (*bool, error) {
	company, err := s.repo.GetCompanyByID(ctx, id)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return company.VATEnabled, nil
}

// CreateCompany creates a company.
func (s *Service) CreateCompany(ctx context.Context, req transport.CreateCompanyRequest) (transport.CompanyResponse, error) {
	company, err := s.repo.CreateCompany(ctx, repository.CreateCompanyParams{
		Name:       req.Name,
		LegalName:  req.LegalName,
		SIRET:      req.SIRET,
		VATNumber:  req.VATNumber,
		Address:    req.Address,
		City:       req.City,
		Email:      sanitize.Email(req.Email),
		Phone:      phone.Normalize(req.Phone),
		VATEnabled: req.VATEnabled,
	})
	if err != nil {
		return transport.CompanyResponse{}, err
	}

	s.log.Info("company created", "id", company.ID, "name", company.Name)
	return toCompanyResponse(company), nil
}

// UpdateCompany updates a company.
func (s *Service) UpdateCompany(ctx context.Context, id uuid.UUID, req transport.UpdateCompanyRequest) (transport.CompanyResponse, error) {
	params := repository.UpdateCompanyParams{
		ID:               id,
		Name:             req.Name,
		LegalName:        req.LegalName,
		SIRET:            req.SIRET,
		VATNumber:        req.VATNumber,
		Address:          req.Address,
		City:             req.City,
		VATEnabled:       req.VATEnabled,
		ClearVATOverride: req.ClearVATOverride,
	}
	if req.Email != nil {
		email := sanitize.Email(*req.Email)
		params.Email = &email
	}
	if req.Phone != nil {
		normalized := phone.Normalize(*req.Phone)
		params.Phone = &normalized
	}

	company, err := s.repo.UpdateCompany(ctx, params)
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

// DeleteCompany removes a company.
func (s *Service) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.log.Info("company deleted", "id", id)
	return nil
}

// GetCompanyByID retrieves a company by ID.
func (s *Service) GetCompanyByID(ctx context.Context, id uuid.UUID) (transport.CompanyResponse, error) {
	company, err := s.repo.GetCompanyByID(ctx, id)
	if err != nil {
		return transport.CompanyResponse{}, err
	}
	return toCompanyResponse(company), nil
}

// ListCompanies returns all companies.
func (s *Service) ListCompanies(ctx context.Context) (transport.CompanyListResponse, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return transport.CompanyListResponse{}, err
	}

	items := make([]transport.CompanyResponse, 0, len(companies))
	for _, company := range companies {
		items = append(items, toCompanyResponse(company))
	}
	return transport.CompanyListResponse{Items: items, Total: len(items)}, nil
}

func toCompanyResponse(c repository.Company) transport.CompanyResponse {
	return transport.CompanyResponse{
		ID:         c.ID,
		Name:       c.Name,
		LegalName:  c.LegalName,
		SIRET:      c.SIRET,
		VATNumber:  c.VATNumber,
		Address:    c.Address,
		City:       c.City,
		Email:      c.Email,
		Phone:      c.Phone,
		VATEnabled: c.VATEnabled,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
