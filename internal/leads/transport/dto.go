package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	Company        string     `json:"company" validate:"omitempty,max=200"`
	Contact        string     `json:"contact" validate:"required,min=1,max=200"`
	Phone          string     `json:"phone" validate:"omitempty,max=30"`
	Email          string     `json:"email" validate:"omitempty,email"`
	Source         string     `json:"source" validate:"omitempty,max=100"`
	Segment        string     `json:"segment" validate:"omitempty,max=100"`
	Status         string     `json:"status" validate:"omitempty,oneof=Nouveau 'À contacter' 'En cours' 'Devis envoyé' Gagné Perdu"`
	NextStepDate   *time.Time `json:"nextStepDate,omitempty"`
	NextStepNote   string     `json:"nextStepNote" validate:"omitempty,max=500"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Owner          string     `json:"owner" validate:"omitempty,max=100"`
	Tags           []string   `json:"tags,omitempty"`
	Address        string     `json:"address" validate:"omitempty,max=300"`
	CompanyID      *uuid.UUID `json:"companyId,omitempty"`
	SupportType    string     `json:"supportType" validate:"omitempty,max=100"`
	SupportDetail  string     `json:"supportDetail" validate:"omitempty,max=300"`
	SIRET          *string    `json:"siret,omitempty" validate:"omitempty,max=20"`
	ClientType     *string    `json:"clientType,omitempty" validate:"omitempty,oneof=company individual"`
}

type UpdateLeadRequest struct {
	Company        *string    `json:"company,omitempty" validate:"omitempty,max=200"`
	Contact        *string    `json:"contact,omitempty" validate:"omitempty,min=1,max=200"`
	Phone          *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email          *string    `json:"email,omitempty" validate:"omitempty,email"`
	Source         *string    `json:"source,omitempty" validate:"omitempty,max=100"`
	Segment        *string    `json:"segment,omitempty" validate:"omitempty,max=100"`
	NextStepDate   *time.Time `json:"nextStepDate,omitempty"`
	ClearNextStep  bool       `json:"clearNextStep,omitempty"`
	NextStepNote   *string    `json:"nextStepNote,omitempty" validate:"omitempty,max=500"`
	EstimatedValue *float64   `json:"estimatedValue,omitempty" validate:"omitempty,min=0"`
	Owner          *string    `json:"owner,omitempty" validate:"omitempty,max=100"`
	Tags           []string   `json:"tags,omitempty"`
	Address        *string    `json:"address,omitempty" validate:"omitempty,max=300"`
	CompanyID      *uuid.UUID `json:"companyId,omitempty"`
	SupportType    *string    `json:"supportType,omitempty" validate:"omitempty,max=100"`
	SupportDetail  *string    `json:"supportDetail,omitempty" validate:"omitempty,max=300"`
	SIRET          *string    `json:"siret,omitempty" validate:"omitempty,max=20"`
	ClientType     *string    `json:"clientType,omitempty" validate:"omitempty,oneof=company individual"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Nouveau 'À contacter' 'En cours' 'Devis envoyé' Gagné Perdu"`
}

type RecordActivityRequest struct {
	Type    string `json:"type" validate:"required,oneof=note call"`
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

type ConvertLeadRequest struct {
	SIRET   *string `json:"siret,omitempty" validate:"omitempty,max=20"`
	MarkWon bool    `json:"markWon,omitempty"`
}

type ListLeadsRequest struct {
	Search    string `form:"search" validate:"omitempty,max=200"`
	Status    string `form:"status" validate:"omitempty,oneof=Nouveau 'À contacter' 'En cours' 'Devis envoyé' Gagné Perdu"`
	Owner     string `form:"owner" validate:"omitempty,max=100"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt nextStepDate estimatedValue updatedAt"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type ActivityResponse struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type LeadResponse struct {
	ID             uuid.UUID          `json:"id"`
	Company        string             `json:"company"`
	Contact        string             `json:"contact"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email"`
	Source         string             `json:"source"`
	Segment        string             `json:"segment"`
	Status         string             `json:"status"`
	NextStepDate   *time.Time         `json:"nextStepDate,omitempty"`
	NextStepNote   string             `json:"nextStepNote"`
	LastContact    *time.Time         `json:"lastContact,omitempty"`
	EstimatedValue *float64           `json:"estimatedValue,omitempty"`
	Owner          string             `json:"owner"`
	Tags           []string           `json:"tags"`
	Address        string             `json:"address"`
	CompanyID      *uuid.UUID         `json:"companyId,omitempty"`
	SupportType    string             `json:"supportType"`
	SupportDetail  string             `json:"supportDetail"`
	SIRET          *string            `json:"siret,omitempty"`
	ClientType     *string            `json:"clientType,omitempty"`
	Activities     []ActivityResponse `json:"activities"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ConvertLeadResponse struct {
	ClientID  uuid.UUID    `json:"clientId"`
	Matched   bool         `json:"matched"`
	MatchedBy string       `json:"matchedBy,omitempty"`
	Lead      LeadResponse `json:"lead"`
}
