// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"atelier_erp_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Phone  string    `json:"phone,omitempty"`
	Email  string    `json:"email,omitempty"`
	Source string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published when a lead moves along the pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadConverted is published when a lead is resolved into a client record.
type LeadConverted struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	ClientID  uuid.UUID `json:"clientId"`
	ContactID uuid.UUID `json:"contactId"`
	Matched   bool      `json:"matched"` // true when an existing client absorbed the lead
	MarkedWon bool      `json:"markedWon"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// LeadFollowUpDue is published by the scheduler when a lead's planned
// next step date has arrived without any recorded activity.
type LeadFollowUpDue struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	Name         string    `json:"name"`
	NextStepDate time.Time `json:"nextStepDate"`
}

func (e LeadFollowUpDue) EventName() string { return "leads.followup.due" }

// =============================================================================
// Engagements Domain Events
// =============================================================================

// QuoteSent is published when a devis is sent to its client.
type QuoteSent struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	ClientID     uuid.UUID `json:"clientId"`
	QuoteNumber  string    `json:"quoteNumber"`
	Channel      string    `json:"channel"` // "email" or "manual"
	TotalHT      float64   `json:"totalHT"`
}

func (e QuoteSent) EventName() string { return "engagements.quote.sent" }

// QuoteAccepted is published when a client accepts a devis.
type QuoteAccepted struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	ClientID     uuid.UUID `json:"clientId"`
	QuoteNumber  string    `json:"quoteNumber"`
	TotalHT      float64   `json:"totalHT"`
}

func (e QuoteAccepted) EventName() string { return "engagements.quote.accepted" }

// QuoteRefused is published when a client declines a devis.
type QuoteRefused struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	ClientID     uuid.UUID `json:"clientId"`
	QuoteNumber  string    `json:"quoteNumber"`
	Reason       string    `json:"reason,omitempty"`
}

func (e QuoteRefused) EventName() string { return "engagements.quote.refused" }

// QuoteConverted is published when an accepted devis becomes a service
// engagement. The conversion is one-way.
type QuoteConverted struct {
	BaseEvent
	EngagementID uuid.UUID `json:"engagementId"`
	ClientID     uuid.UUID `json:"clientId"`
	QuoteNumber  string    `json:"quoteNumber"`
	PlannedDate  time.Time `json:"plannedDate"`
}

func (e QuoteConverted) EventName() string { return "engagements.quote.converted" }

// ServiceRealized is published when a service engagement is marked as
// performed and its invoice number is allocated.
type ServiceRealized struct {
	BaseEvent
	EngagementID  uuid.UUID `json:"engagementId"`
	ClientID      uuid.UUID `json:"clientId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	TotalTTC      float64   `json:"totalTTC"`
}

func (e ServiceRealized) EventName() string { return "engagements.service.realized" }
