package transport

import (
	"time"

	"github.com/google/uuid"
)

// Engagement lines

type OptionOverridePayload struct {
	Quantity    *int     `json:"quantity,omitempty" validate:"omitempty,min=1"`
	UnitPriceHT *float64 `json:"unitPriceHT,omitempty" validate:"omitempty,min=0"`
	DurationMin *int     `json:"durationMin,omitempty" validate:"omitempty,min=0"`
}

type ServiceLinePayload struct {
	ServiceID       *uuid.UUID                          `json:"serviceId,omitempty"`
	OptionIDs       []uuid.UUID                         `json:"optionIds"`
	OptionOverrides map[uuid.UUID]OptionOverridePayload `json:"optionOverrides,omitempty" validate:"omitempty,dive"`
	MainCategoryID  *uuid.UUID                          `json:"mainCategoryId,omitempty"`
	SubCategoryID   *uuid.UUID                          `json:"subCategoryId,omitempty"`
	Quantity        int                                 `json:"quantity" validate:"omitempty,min=1"`
}

// Engagements

type CreateEngagementRequest struct {
	ClientID          uuid.UUID            `json:"clientId" validate:"required"`
	CompanyID         *uuid.UUID           `json:"companyId,omitempty"`
	Kind              string               `json:"kind" validate:"required,oneof=devis service"`
	Status            string               `json:"status" validate:"omitempty,oneof=brouillon envoyé planifié réalisé annulé"`
	QuoteName         *string              `json:"quoteName,omitempty" validate:"omitempty,max=200"`
	InvoiceVATEnabled *bool                `json:"invoiceVatEnabled,omitempty"`
	ScheduledAt       *time.Time           `json:"scheduledAt,omitempty"`
	Services          []ServiceLinePayload `json:"services" validate:"required,min=1,dive"`
	SupportType       string               `json:"supportType" validate:"omitempty,max=100"`
	SupportDetail     string               `json:"supportDetail" validate:"omitempty,max=300"`
	AdditionalCharge  float64              `json:"additionalCharge" validate:"min=0"`
	ContactIDs        []uuid.UUID          `json:"contactIds,omitempty"`
	AssignedUserIDs   []uuid.UUID          `json:"assignedUserIds,omitempty"`
}

type UpdateEngagementRequest struct {
	CompanyID         *uuid.UUID            `json:"companyId,omitempty"`
	QuoteName         *string               `json:"quoteName,omitempty" validate:"omitempty,max=200"`
	InvoiceVATEnabled *bool                 `json:"invoiceVatEnabled,omitempty"`
	ScheduledAt       *time.Time            `json:"scheduledAt,omitempty"`
	Services          *[]ServiceLinePayload `json:"services,omitempty" validate:"omitempty,min=1,dive"`
	SupportType       *string               `json:"supportType,omitempty" validate:"omitempty,max=100"`
	SupportDetail     *string               `json:"supportDetail,omitempty" validate:"omitempty,max=300"`
	AdditionalCharge  *float64              `json:"additionalCharge,omitempty" validate:"omitempty,min=0"`
	ContactIDs        []uuid.UUID           `json:"contactIds,omitempty"`
	AssignedUserIDs   []uuid.UUID           `json:"assignedUserIds,omitempty"`
}

type ListEngagementsRequest struct {
	ClientID  string `form:"clientId" validate:"omitempty,uuid"`
	Kind      string `form:"kind" validate:"omitempty,oneof=devis service"`
	Status    string `form:"status" validate:"omitempty,oneof=brouillon envoyé planifié réalisé annulé"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt scheduledAt updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type SendQuoteRequest struct {
	ContactIDs []uuid.UUID `json:"contactIds" validate:"required,min=1"`
	Subject    string      `json:"subject" validate:"omitempty,max=300"`
}

type RefuseQuoteRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ConvertQuoteRequest struct {
	RealizationDate time.Time `json:"realizationDate" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=brouillon envoyé planifié réalisé annulé"`
}

// Responses

type SendRecordResponse struct {
	SentAt     time.Time   `json:"sentAt"`
	ContactIDs []uuid.UUID `json:"contactIds"`
	Subject    string      `json:"subject,omitempty"`
}

type TotalsResponse struct {
	PriceHT        float64 `json:"priceHT"`
	DurationMin    int     `json:"durationMin"`
	Surcharge      float64 `json:"surcharge"`
	VATEnabled     bool    `json:"vatEnabled"`
	VATRatePercent float64 `json:"vatRatePercent"`
	TotalTTC       float64 `json:"totalTTC"`
}

type EngagementResponse struct {
	ID                uuid.UUID            `json:"id"`
	ClientID          uuid.UUID            `json:"clientId"`
	CompanyID         *uuid.UUID           `json:"companyId,omitempty"`
	Kind              string               `json:"kind"`
	Status            string               `json:"status"`
	QuoteStatus       *string              `json:"quoteStatus,omitempty"`
	QuoteNumber       *string              `json:"quoteNumber,omitempty"`
	QuoteName         *string              `json:"quoteName,omitempty"`
	InvoiceNumber     *string              `json:"invoiceNumber,omitempty"`
	InvoiceVATEnabled *bool                `json:"invoiceVatEnabled,omitempty"`
	ScheduledAt       *time.Time           `json:"scheduledAt,omitempty"`
	Services          []ServiceLinePayload `json:"services"`
	SupportType       string               `json:"supportType"`
	SupportDetail     string               `json:"supportDetail"`
	AdditionalCharge  float64              `json:"additionalCharge"`
	ContactIDs        []uuid.UUID          `json:"contactIds"`
	AssignedUserIDs   []uuid.UUID          `json:"assignedUserIds"`
	SendHistory       []SendRecordResponse `json:"sendHistory"`
	Totals            TotalsResponse       `json:"totals"`
	CreatedAt         string               `json:"createdAt"`
	UpdatedAt         string               `json:"updatedAt"`
}

type EngagementListResponse struct {
	Items      []EngagementResponse `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}
