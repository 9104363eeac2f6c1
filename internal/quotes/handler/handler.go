package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"atelier_erp_backend/internal/quotes/service"
	"atelier_erp_backend/internal/quotes/transport"
	"atelier_erp_backend/platform/httpkit"
	"atelier_erp_backend/platform/validator"
)

// Handler handles HTTP requests for engagements.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid engagement id"
)

// New creates a new engagements handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// ListEngagements retrieves engagements.
// GET /api/v1/engagements
func (h *Handler) ListEngagements(c *gin.Context) {
	var req transport.ListEngagementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ListEngagements(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetEngagementByID retrieves an engagement by ID.
// GET /api/v1/engagements/:id
func (h *Handler) GetEngagementByID(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetEngagementByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateEngagement creates a devis or a service.
// POST /api/v1/engagements
func (h *Handler) CreateEngagement(c *gin.Context) {
	var req transport.CreateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateEngagement(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateEngagement updates an engagement's editable fields.
// PUT /api/v1/engagements/:id
func (h *Handler) UpdateEngagement(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	var req transport.UpdateEngagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateEngagement(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteEngagement removes an engagement.
// DELETE /api/v1/engagements/:id
func (h *Handler) DeleteEngagement(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteEngagement(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// SendQuote records a devis send to the given contacts.
// POST /api/v1/engagements/:id/send
func (h *Handler) SendQuote(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	var req transport.SendQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.SendQuote(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AcceptQuote marks a sent devis accepted.
// POST /api/v1/engagements/:id/accept
func (h *Handler) AcceptQuote(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	result, err := h.svc.AcceptQuote(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// RefuseQuote marks a sent devis refused.
// POST /api/v1/engagements/:id/refuse
func (h *Handler) RefuseQuote(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	var req transport.RefuseQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.RefuseQuote(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ConvertQuote turns a devis into a realized service.
// POST /api/v1/engagements/:id/convert
func (h *Handler) ConvertQuote(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	var req transport.ConvertQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ConvertQuoteToService(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateStatus moves an engagement to another status.
// PUT /api/v1/engagements/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := h.engagementID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) engagementID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
