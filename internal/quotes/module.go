// Package quotes provides the engagements bounded context module: devis
// and services, their pricing, numbering and lifecycle.
package quotes

import (
	"atelier_erp_backend/internal/events"
	apphttp "atelier_erp_backend/internal/http"
	"atelier_erp_backend/internal/quotes/handler"
	"atelier_erp_backend/internal/quotes/repository"
	"atelier_erp_backend/internal/quotes/service"
	"atelier_erp_backend/platform/config"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the engagements bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the engagements module. The catalog
// and companies services are cross-module dependencies wired by the
// composition root.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, catalog service.CatalogLookup, companies service.CompanyVAT, vat config.VATConfig, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, companies, vat, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "engagements"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts engagement routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/engagements")
	group.GET("", m.handler.ListEngagements)
	group.GET("/:id", m.handler.GetEngagementByID)
	group.POST("", m.handler.CreateEngagement)
	group.PUT("/:id", m.handler.UpdateEngagement)
	group.DELETE("/:id", m.handler.DeleteEngagement)

	group.POST("/:id/send", m.handler.SendQuote)
	group.POST("/:id/accept", m.handler.AcceptQuote)
	group.POST("/:id/refuse", m.handler.RefuseQuote)
	group.POST("/:id/convert", m.handler.ConvertQuote)
	group.PUT("/:id/status", m.handler.UpdateStatus)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
