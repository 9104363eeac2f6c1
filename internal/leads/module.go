// Package leads provides the leads bounded context module: the sales
// pipeline, its activity log and conversion into the client base.
package leads

import (
	"atelier_erp_backend/internal/events"
	apphttp "atelier_erp_backend/internal/http"
	"atelier_erp_backend/internal/leads/handler"
	"atelier_erp_backend/internal/leads/repository"
	"atelier_erp_backend/internal/leads/service"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the leads module. The clients
// resolver and the follow-up scheduler are wired by the composition
// root; the scheduler may be nil.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger, clients service.ClientResolver, scheduler service.FollowUpScheduler, bus events.Bus) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, clients, scheduler, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/leads")
	group.GET("", m.handler.ListLeads)
	group.GET("/:id", m.handler.GetLeadByID)
	group.POST("", m.handler.CreateLead)
	group.PUT("/:id", m.handler.UpdateLead)
	group.DELETE("/:id", m.handler.DeleteLead)

	group.PUT("/:id/status", m.handler.UpdateStatus)
	group.POST("/:id/advance", m.handler.AdvanceLead)
	group.POST("/:id/activities", m.handler.RecordActivity)
	group.DELETE("/:id/activities/:activityId", m.handler.RemoveActivity)
	group.POST("/:id/convert", m.handler.ConvertLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
