// Package catalog provides the catalog bounded context module.
package catalog

import (
	"atelier_erp_backend/internal/catalog/handler"
	"atelier_erp_backend/internal/catalog/repository"
	"atelier_erp_backend/internal/catalog/service"
	apphttp "atelier_erp_backend/internal/http"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/catalog")
	group.GET("/prestations", m.handler.ListPrestations)
	group.GET("/prestations/:id", m.handler.GetPrestationByID)
	group.POST("/prestations", m.handler.CreatePrestation)
	group.PUT("/prestations/:id", m.handler.UpdatePrestation)
	group.DELETE("/prestations/:id", m.handler.DeletePrestation)

	group.GET("/categories", m.handler.ListCategories)
	group.GET("/categories/:id", m.handler.GetCategoryByID)
	group.POST("/categories", m.handler.CreateCategory)
	group.PUT("/categories/:id", m.handler.UpdateCategory)
	group.DELETE("/categories/:id", m.handler.DeleteCategory)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
