// Package domain holds the pure client identity model. ResolveOrCreate
// decides, from a snapshot of clients, how a lead maps onto the client
// base without touching storage.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"atelier_erp_backend/platform/phone"
	"atelier_erp_backend/platform/sanitize"
)

// Contact roles.
const (
	RoleAchat       = "achat"
	RoleFacturation = "facturation"
	RoleTechnique   = "technique"
)

// Client types.
const (
	ClientTypeCompany    = "company"
	ClientTypeIndividual = "individual"
)

// Client statuses.
const (
	StatusProspect = "Prospect"
	StatusActif    = "Actif"
)

// Placeholders used when a lead arrives without coordinates, kept stable
// so repeated resolutions of the same lead stay idempotent.
const (
	placeholderEmail = "contact@client.fr"
	placeholderPhone = "+33 6 00 00 00 00"
	defaultBrand     = "Atelier"
)

// LeadIdentity is the identity slice of a lead handed to the resolver.
type LeadIdentity struct {
	Contact    string
	Company    string
	Email      string
	Phone      string
	Address    string
	City       string
	SIRET      string
	ClientType string
	Tags       []string
}

// Contact is a person attached to a client. Inactive contacts stay in the
// snapshot; deletion is always a soft-delete.
type Contact struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Mobile           string
	Roles            []string
	IsBillingDefault bool
	Active           bool
}

// Client is a snapshot row of the client base with its contacts.
type Client struct {
	ID          uuid.UUID
	Type        string
	Name        string
	CompanyName *string
	FirstName   *string
	LastName    *string
	SIRET       string
	Email       string
	Phone       string
	Address     string
	City        string
	Status      string
	Tags        []string
	Contacts    []Contact
}

// MatchKind says which identity signal matched an existing client.
type MatchKind string

const (
	MatchEmail       MatchKind = "email"
	MatchPhone       MatchKind = "phone"
	MatchSIRET       MatchKind = "siret"
	MatchCompanyName MatchKind = "companyName"
)

// ContactDraft is a contact to be created.
type ContactDraft struct {
	FirstName        string
	LastName         string
	Email            string
	Mobile           string
	Roles            []string
	IsBillingDefault bool
}

// ClientDraft is a client to be created, with its optional first contact.
type ClientDraft struct {
	Type         string
	Name         string
	CompanyName  *string
	FirstName    *string
	LastName     *string
	SIRET        string
	Email        string
	Phone        string
	Address      string
	City         string
	Status       string
	Tags         []string
	FirstContact *ContactDraft
}

// Resolution is the resolver's decision. Exactly one of the two shapes
// holds: Matched with an existing ClientID (plus at most one contact
// mutation), or a NewClient draft.
type Resolution struct {
	Matched          bool
	MatchedBy        MatchKind
	ClientID         uuid.UUID
	RestoreContactID *uuid.UUID
	NewContact       *ContactDraft
	NewClient        *ClientDraft
}

// ResolveOrCreate maps a lead onto the client snapshot. Match priority is
// email, then phone, then SIRET, then company name (the last two for
// company leads only). Running the resolver again on the snapshot that
// results from applying its decision yields a pure match with no further
// mutations.
func ResolveOrCreate(lead LeadIdentity, clients []Client, asOf time.Time) Resolution {
	normalizedEmail := sanitize.Email(lead.Email)
	normalizedPhone := phone.Normalize(lead.Phone)
	normalizedCompany := strings.ToLower(strings.TrimSpace(lead.Company))
	normalizedSIRET := strings.TrimSpace(lead.SIRET)
	isCompanyLead := lead.ClientType != ClientTypeIndividual

	byEmail := findByEmail(clients, normalizedEmail)
	byPhone := findByPhone(clients, normalizedPhone)

	var bySIRET, byCompany *Client
	if isCompanyLead {
		bySIRET = findBySIRET(clients, normalizedSIRET)
		byCompany = findByCompanyName(clients, normalizedCompany)
	}

	switch {
	case byEmail != nil:
		return resolveEmailMatch(byEmail, normalizedEmail)
	case byPhone != nil:
		return resolvePhoneMatch(byPhone, lead, normalizedEmail)
	case bySIRET != nil:
		return Resolution{Matched: true, MatchedBy: MatchSIRET, ClientID: bySIRET.ID}
	case byCompany != nil:
		return Resolution{Matched: true, MatchedBy: MatchCompanyName, ClientID: byCompany.ID}
	}

	return Resolution{NewClient: buildClientDraft(lead, asOf)}
}

// FindClient locates a matching client without ever deciding a creation.
func FindClient(lead LeadIdentity, clients []Client) (Client, MatchKind, bool) {
	res := ResolveOrCreate(lead, clients, time.Time{})
	if !res.Matched {
		return Client{}, "", false
	}
	for _, c := range clients {
		if c.ID == res.ClientID {
			return c, res.MatchedBy, true
		}
	}
	return Client{}, "", false
}

func findByEmail(clients []Client, email string) *Client {
	if email == "" {
		return nil
	}
	for i := range clients {
		for _, contact := range clients[i].Contacts {
			if sanitize.Email(contact.Email) == email {
				return &clients[i]
			}
		}
	}
	return nil
}

func findByPhone(clients []Client, normalized string) *Client {
	if normalized == "" {
		return nil
	}
	for i := range clients {
		for _, contact := range clients[i].Contacts {
			if phone.Normalize(contact.Mobile) == normalized {
				return &clients[i]
			}
		}
	}
	return nil
}

func findBySIRET(clients []Client, siret string) *Client {
	if siret == "" {
		return nil
	}
	for i := range clients {
		if clients[i].Type != ClientTypeCompany {
			continue
		}
		if strings.TrimSpace(clients[i].SIRET) == siret {
			return &clients[i]
		}
	}
	return nil
}

func findByCompanyName(clients []Client, name string) *Client {
	if name == "" {
		return nil
	}
	for i := range clients {
		c := &clients[i]
		if c.Type != ClientTypeCompany {
			continue
		}
		clientName := c.Name
		if c.CompanyName != nil && *c.CompanyName != "" {
			clientName = *c.CompanyName
		}
		if strings.ToLower(strings.TrimSpace(clientName)) == name {
			return c
		}
	}
	return nil
}

// resolveEmailMatch reactivates the matched contact when it was
// soft-deleted; an active match needs no mutation at all.
func resolveEmailMatch(client *Client, email string) Resolution {
	res := Resolution{Matched: true, MatchedBy: MatchEmail, ClientID: client.ID}
	for _, contact := range client.Contacts {
		if sanitize.Email(contact.Email) == email {
			if !contact.Active {
				id := contact.ID
				res.RestoreContactID = &id
			}
			break
		}
	}
	return res
}

// resolvePhoneMatch appends a billing contact carrying the lead's email
// when the client does not know it yet. The new contact becomes the
// billing default only if no active contact already holds that role, so
// the at-most-one invariant is preserved.
func resolvePhoneMatch(client *Client, lead LeadIdentity, normalizedEmail string) Resolution {
	res := Resolution{Matched: true, MatchedBy: MatchPhone, ClientID: client.ID}
	if normalizedEmail == "" {
		return res
	}

	firstName, lastName := SplitContactName(lead.Contact)
	if firstName == "" {
		firstName = firstNonEmpty(lead.Company, client.Name, "Contact")
	}

	hasActiveBillingDefault := false
	for _, contact := range client.Contacts {
		if contact.Active && contact.IsBillingDefault {
			hasActiveBillingDefault = true
			break
		}
	}

	res.NewContact = &ContactDraft{
		FirstName:        firstName,
		LastName:         lastName,
		Email:            firstNonEmpty(lead.Email, placeholderEmail),
		Mobile:           firstNonEmpty(lead.Phone, placeholderPhone),
		Roles:            []string{RoleFacturation},
		IsBillingDefault: !hasActiveBillingDefault,
	}
	return res
}

func buildClientDraft(lead LeadIdentity, asOf time.Time) *ClientDraft {
	firstName, lastName := SplitContactName(lead.Contact)

	draft := &ClientDraft{
		Email:   firstNonEmpty(lead.Email, placeholderEmail),
		Phone:   firstNonEmpty(lead.Phone, placeholderPhone),
		Address: lead.Address,
		City:    lead.City,
		Status:  StatusProspect,
		Tags:    lead.Tags,
	}

	if lead.ClientType == ClientTypeIndividual {
		draft.Type = ClientTypeIndividual
		name := strings.TrimSpace(firstName + " " + lastName)
		if name == "" {
			name = firstNonEmpty(lead.Contact, "Client "+defaultBrand)
		}
		draft.Name = name
		if firstName != "" {
			draft.FirstName = &firstName
		}
		if lastName != "" {
			draft.LastName = &lastName
		}
		draft.FirstContact = firstContactDraft(firstName, lastName, name, lead, draft.Email, draft.Phone)
		return draft
	}

	draft.Type = ClientTypeCompany
	fallbackName := firstNonEmpty(lead.Company, lead.Contact, "Organisation "+defaultBrand)
	draft.Name = fallbackName
	draft.CompanyName = &fallbackName
	draft.SIRET = firstNonEmpty(strings.TrimSpace(lead.SIRET), syntheticSIRET(fallbackName, asOf))
	draft.FirstContact = firstContactDraft(firstName, lastName, fallbackName, lead, draft.Email, draft.Phone)
	return draft
}

// firstContactDraft builds the first billing contact of a freshly created
// client. The contact must carry the lead's coordinates even when the lead
// has no contact name: matching scans contacts only, so without it a
// second resolution of the same lead would mint a second client.
func firstContactDraft(firstName, lastName, fallbackName string, lead LeadIdentity, email, mobile string) *ContactDraft {
	if firstName == "" && lastName == "" &&
		sanitize.Email(lead.Email) == "" && phone.Normalize(lead.Phone) == "" {
		return nil
	}
	return &ContactDraft{
		FirstName:        firstNonEmpty(firstName, fallbackName),
		LastName:         lastName,
		Email:            email,
		Mobile:           mobile,
		Roles:            []string{RoleFacturation},
		IsBillingDefault: true,
	}
}

// syntheticSIRET builds a placeholder SIRET for companies captured without
// one, unique enough to be replaced later by the real registration number.
func syntheticSIRET(name string, asOf time.Time) string {
	slug := sanitize.Slug(name)
	if len(slug) > 8 {
		slug = slug[:8]
	}
	if slug == "" {
		slug = "client"
	}
	return fmt.Sprintf("TMP-%s-%d", slug, asOf.UnixMilli())
}

// SplitContactName splits a free-form contact name into first and last
// parts. A single token is a first name; everything after the first token
// joins into the last name.
func SplitContactName(contact string) (firstName, lastName string) {
	parts := strings.Fields(contact)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
