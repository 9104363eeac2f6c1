// Package clients provides the clients bounded context module: the client
// base, its contacts and lead identity resolution.
package clients

import (
	"context"

	"atelier_erp_backend/internal/clients/handler"
	"atelier_erp_backend/internal/clients/repository"
	"atelier_erp_backend/internal/clients/service"
	"atelier_erp_backend/internal/events"
	apphttp "atelier_erp_backend/internal/http"
	"atelier_erp_backend/platform/apperr"
	"atelier_erp_backend/platform/logger"
	"atelier_erp_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the clients module.
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
	return "clients"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts client routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/clients")
	group.POST("/resolve", m.handler.ResolveLead)
	group.GET("", m.handler.ListClients)
	group.GET("/:id", m.handler.GetClientByID)
	group.POST("", m.handler.CreateClient)
	group.PUT("/:id", m.handler.UpdateClient)

	group.POST("/:id/contacts", m.handler.AddContact)
	group.PUT("/:id/contacts/:contactId", m.handler.UpdateContact)
	group.DELETE("/:id/contacts/:contactId", m.handler.RemoveContact)
	group.POST("/:id/contacts/:contactId/restore", m.handler.RestoreContact)
	group.POST("/:id/contacts/:contactId/billing-default", m.handler.SetBillingContact)
}

// RegisterHandlers subscribes to domain events driving client status.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.QuoteAccepted{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.QuoteAccepted:
		// A client with an accepted devis is no longer a prospect.
		// The engagement may reference a client deleted since; that
		// is not an error worth retrying.
		err := m.service.ActivateClient(ctx, e.ClientID)
		if apperr.GetKind(err) == apperr.KindNotFound {
			return nil
		}
		return err
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
