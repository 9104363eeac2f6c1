// Package companies provides the companies bounded context module: the
// operator legal entities engagements are issued under.
package companies

import (
	"atelier_erp_backend/internal/companies/handler"
	"atelier_erp_backend/internal/companies/repository"
	"atelier_erp_backend/internal/companies/service"
	apphttp "atelier_erp_backend/internal/http"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the companies bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the companies module.
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
	return "companies"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts company routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/companies")
	group.GET("", m.handler.ListCompanies)
	group.GET("/:id", m.handler.GetCompanyByID)
	group.POST("", m.handler.CreateCompany)
	group.PUT("/:id", m.handler.UpdateCompany)
	group.DELETE("/:id", m.handler.DeleteCompany)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
