package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atelier_erp_backend/internal/clients/domain"
	"atelier_erp_backend/internal/clients/service"
	"atelier_erp_backend/internal/clients/transport"
	"atelier_erp_backend/platform/httpkit"
	"atelier_erp_backend/platform/validator"
)

// Handler handles HTTP requests for clients.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid client id"
	msgInvalidContactID = "invalid contact id"
)

// New creates a new clients handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ResolveLead resolves a lead identity into a client, creating one if the
// client base has no match.
// POST /api/v1/clients/resolve
func (h *Handler) ResolveLead(c *gin.Context) {
	var req transport.ResolveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.EnsureClientFromLead(c.Request.Context(), domain.LeadIdentity{
		Contact:    req.Contact,
		Company:    req.Company,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		SIRET:      req.SIRET,
		ClientType: req.ClientType,
		Tags:       req.Tags,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListClients retrieves clients.
// GET /api/v1/clients
func (h *Handler) ListClients(c *gin.Context) {
	var req transport.ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListClientsWithFilters(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetClientByID retrieves a client by ID.
// GET /api/v1/clients/:id
func (h *Handler) GetClientByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetClientByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateClient creates a client.
// POST /api/v1/clients
func (h *Handler) CreateClient(c *gin.Context) {
	var req transport.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateClient(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateClient updates a client.
// PUT /api/v1/clients/:id
func (h *Handler) UpdateClient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateClient(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AddContact creates a contact on a client.
// POST /api/v1/clients/:id/contacts
func (h *Handler) AddContact(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddContact(c.Request.Context(), clientID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateContact updates a contact.
// PUT /api/v1/clients/:id/contacts/:contactId
func (h *Handler) UpdateContact(c *gin.Context) {
	clientID, contactID, ok := h.contactIDs(c)
	if !ok {
		return
	}

	var req transport.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateContact(c.Request.Context(), clientID, contactID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RemoveContact soft-deletes a contact.
// DELETE /api/v1/clients/:id/contacts/:contactId
func (h *Handler) RemoveContact(c *gin.Context) {
	clientID, contactID, ok := h.contactIDs(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveContact(c.Request.Context(), clientID, contactID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// RestoreContact reactivates a soft-deleted contact.
// POST /api/v1/clients/:id/contacts/:contactId/restore
func (h *Handler) RestoreContact(c *gin.Context) {
	clientID, contactID, ok := h.contactIDs(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RestoreContact(c.Request.Context(), clientID, contactID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// SetBillingContact promotes a contact to billing default.
// POST /api/v1/clients/:id/contacts/:contactId/billing-default
func (h *Handler) SetBillingContact(c *gin.Context) {
	clientID, contactID, ok := h.contactIDs(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.SetBillingContact(c.Request.Context(), clientID, contactID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) contactIDs(c *gin.Context) (clientID, contactID uuid.UUID, ok bool) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, uuid.Nil, false
	}
	contactID, err = uuid.Parse(c.Param("contactId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidContactID, nil)
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, contactID, true
}
