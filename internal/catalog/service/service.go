package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"atelier_erp_backend/internal/catalog/domain"
	"atelier_erp_backend/internal/catalog/repository"
	"atelier_erp_backend/internal/catalog/transport"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/logger"
)

// Service provides business logic for the catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Lookup builds a pricing lookup from the current catalog snapshot.
func (s *Service) Lookup(ctx context.Context) (*domain.Lookup, error) {
	prestations, err := s.repo.ListAllPrestations(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	domainServices := make([]domain.Prestation, 0, len(prestations))
	for _, p := range prestations {
		domainServices = append(domainServices, toDomainPrestation(p))
	}
	domainCategories := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		domainCategories = append(domainCategories, domain.Category{
			ID:                 c.ID,
			Name:               c.Name,
			ParentID:           c.ParentID,
			PriceHT:            c.PriceHT,
			DefaultDurationMin: c.DefaultDurationMin,
		})
	}
	return domain.NewLookup(domainServices, domainCategories), nil
}

// CreatePrestation creates a prestation with its ordered options.
func (s *Service) CreatePrestation(ctx context.Context, req transport.CreatePrestationRequest) (transport.PrestationResponse, error) {
	if err := s.checkOptionCategories(ctx, req.Options); err != nil {
		return transport.PrestationResponse{}, err
	}

	p, err := s.repo.CreatePrestation(ctx, repository.CreatePrestationParams{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		BasePriceHT:     req.BasePriceHT,
		BaseDurationMin: req.BaseDurationMin,
		Options:         toOptionParams(req.Options),
	})
	if err != nil {
		return transport.PrestationResponse{}, err
	}

	s.log.Info("prestation created", "id", p.ID, "name", p.Name, "options", len(p.Options))
	return toPrestationResponse(p), nil
}

// UpdatePrestation updates a prestation; a present options array replaces
// the option list.
func (s *Service) UpdatePrestation(ctx context.Context, id uuid.UUID, req transport.UpdatePrestationRequest) (transport.PrestationResponse, error) {
	params := repository.UpdatePrestationParams{
		ID:              id,
		Description:     req.Description,
		BasePriceHT:     req.BasePriceHT,
		BaseDurationMin: req.BaseDurationMin,
		ClearBasePrice:  req.ClearBasePrice,
		ClearBaseDur:    req.ClearBaseDur,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = &trimmed
	}
	if req.Options != nil {
		if err := s.checkOptionCategories(ctx, *req.Options); err != nil {
			return transport.PrestationResponse{}, err
		}
		params.ReplaceOptions = true
		params.Options = toOptionParams(*req.Options)
	}

	p, err := s.repo.UpdatePrestation(ctx, params)
	if err != nil {
		return transport.PrestationResponse{}, err
	}

	s.log.Info("prestation updated", "id", p.ID, "name", p.Name)
	return toPrestationResponse(p), nil
}

// checkOptionCategories verifies that referenced sub-categories exist.
func (s *Service) checkOptionCategories(ctx context.Context, options []transport.OptionPayload) error {
	for _, opt := range options {
		if opt.SubCategoryID == nil {
			continue
		}
		if _, err := s.repo.GetCategoryByID(ctx, *opt.SubCategoryID); err != nil {
			if apperr.GetKind(err) == apperr.KindNotFound {
				return apperr.Validation("option references an unknown sub-category")
			}
			return err
		}
	}
	return nil
}

// DeletePrestation removes a prestation and its options.
func (s *Service) DeletePrestation(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePrestation(ctx, id); err != nil {
		return err
	}
	s.log.Info("prestation deleted", "id", id)
	return nil
}

// GetPrestationByID retrieves a prestation by ID.
func (s *Service) GetPrestationByID(ctx context.Context, id uuid.UUID) (transport.PrestationResponse, error) {
	p, err := s.repo.GetPrestationByID(ctx, id)
	if err != nil {
		return transport.PrestationResponse{}, err
	}
	return toPrestationResponse(p), nil
}

// ListPrestationsWithFilters retrieves prestations with search and pagination.
func (s *Service) ListPrestationsWithFilters(ctx context.Context, req transport.ListPrestationsRequest) (transport.PrestationListResponse, error) {
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

	items, total, err := s.repo.ListPrestations(ctx, repository.ListPrestationsParams{
		Search:    strings.TrimSpace(req.Search),
		Offset:    (page - 1) * pageSize,
		Limit:     pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		return transport.PrestationListResponse{}, err
	}
	return toPrestationListResponse(items, total, page, pageSize), nil
}

// CreateCategory creates a family or sub-family node.
func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (transport.CategoryResponse, error) {
	if req.ParentID != nil {
		parent, err := s.repo.GetCategoryByID(ctx, *req.ParentID)
		if err != nil {
			if apperr.GetKind(err) == apperr.KindNotFound {
				return transport.CategoryResponse{}, apperr.Validation("parent category not found")
			}
			return transport.CategoryResponse{}, err
		}
		// Two levels only: a sub-family cannot itself have children.
		if parent.ParentID != nil {
			return transport.CategoryResponse{}, apperr.Validation("categories nest at most one level deep")
		}
	}

	cat, err := s.repo.CreateCategory(ctx, repository.CreateCategoryParams{
		Name:               strings.TrimSpace(req.Name),
		ParentID:           req.ParentID,
		PriceHT:            req.PriceHT,
		DefaultDurationMin: req.DefaultDurationMin,
	})
	if err != nil {
		return transport.CategoryResponse{}, err
	}

	s.log.Info("category created", "id", cat.ID, "name", cat.Name)
	return toCategoryResponse(cat), nil
}

// UpdateCategory updates a category node.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req transport.UpdateCategoryRequest) (transport.CategoryResponse, error) {
	params := repository.UpdateCategoryParams{
		ID:                 id,
		PriceHT:            req.PriceHT,
		DefaultDurationMin: req.DefaultDurationMin,
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = &trimmed
	}

	cat, err := s.repo.UpdateCategory(ctx, params)
	if err != nil {
		return transport.CategoryResponse{}, err
	}

	s.log.Info("category updated", "id", cat.ID, "name", cat.Name)
	return toCategoryResponse(cat), nil
}

// DeleteCategory deletes a category if it has no sub-families left.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	hasChildren, err := s.repo.HasSubCategories(ctx, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return apperr.Conflict("category still has sub-categories")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}

	s.log.Info("category deleted", "id", id)
	return nil
}

// GetCategoryByID retrieves a category by ID.
func (s *Service) GetCategoryByID(ctx context.Context, id uuid.UUID) (transport.CategoryResponse, error) {
	cat, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return transport.CategoryResponse{}, err
	}
	return toCategoryResponse(cat), nil
}

// ListCategories returns all category nodes.
func (s *Service) ListCategories(ctx context.Context) (transport.CategoryListResponse, error) {
	items, err := s.repo.ListCategories(ctx)
	if err != nil {
		return transport.CategoryListResponse{}, err
	}

	responses := make([]transport.CategoryResponse, 0, len(items))
	for _, cat := range items {
		responses = append(responses, toCategoryResponse(cat))
	}
	return transport.CategoryListResponse{Items: responses}, nil
}

func toOptionParams(options []transport.OptionPayload) []repository.OptionParams {
	params := make([]repository.OptionParams, 0, len(options))
	for _, opt := range options {
		params = append(params, repository.OptionParams{
			Label:         strings.TrimSpace(opt.Label),
			PriceHT:       opt.PriceHT,
			DurationMin:   opt.DurationMin,
			SubCategoryID: opt.SubCategoryID,
		})
	}
	return params
}

func toDomainPrestation(p repository.Prestation) domain.Prestation {
	options := make([]domain.Option, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, domain.Option{
			ID:            opt.ID,
			Label:         opt.Label,
			PriceHT:       opt.PriceHT,
			DurationMin:   opt.DurationMin,
			SubCategoryID: opt.SubCategoryID,
		})
	}
	return domain.Prestation{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		BasePriceHT:     p.BasePriceHT,
		BaseDurationMin: p.BaseDurationMin,
		Options:         options,
	}
}

func toPrestationResponse(p repository.Prestation) transport.PrestationResponse {
	options := make([]transport.OptionResponse, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, transport.OptionResponse{
			ID:            opt.ID,
			Label:         opt.Label,
			PriceHT:       opt.PriceHT,
			DurationMin:   opt.DurationMin,
			SubCategoryID: opt.SubCategoryID,
		})
	}
	return transport.PrestationResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		BasePriceHT:     p.BasePriceHT,
		BaseDurationMin: p.BaseDurationMin,
		Options:         options,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toPrestationListResponse(items []repository.Prestation, total, page, pageSize int) transport.PrestationListResponse {
	responses := make([]transport.PrestationResponse, 0, len(items))
	for _, p := range items {
		responses = append(responses, toPrestationResponse(p))
	}
	totalPages := (total + pageSize - 1) / pageSize
	return transport.PrestationListResponse{
		Items:      responses,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

func toCategoryResponse(cat repository.Category) transport.CategoryResponse {
	return transport.CategoryResponse{
		ID:                 cat.ID,
		Name:               cat.Name,
		ParentID:           cat.ParentID,
		PriceHT:            cat.PriceHT,
		DefaultDurationMin: cat.DefaultDurationMin,
		CreatedAt:          cat.CreatedAt,
		UpdatedAt:          cat.UpdatedAt,
	}
}
