package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

var asOf = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

func activeContact(email, mobile string, billingDefault bool) Contact {
	return Contact{
		ID:               uuid.New(),
		FirstName:        "Jean",
		LastName:         "Dupont",
		Email:            email,
		Mobile:           mobile,
		Roles:            []string{RoleFacturation},
		IsBillingDefault: billingDefault,
		Active:           true,
	}
}

func TestResolveMatchesByEmailFirst(t *testing.T) {
	emailClient := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "Garage Martin",
		Contacts: []Contact{activeContact("jean@garage-martin.fr", "+33611111111", true)}}
	phoneClient := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "Autre Garage",
		Contacts: []Contact{activeContact("autre@garage.fr", "+33622222222", true)}}

	lead := LeadIdentity{
		Contact: "Jean Dupont",
		Email:   "Jean@Garage-Martin.FR ",
		Phone:   "06 22 22 22 22", // matches the other client's phone
	}

	res := ResolveOrCreate(lead, []Client{phoneClient, emailClient}, asOf)
	if !res.Matched || res.MatchedBy != MatchEmail {
		t.Fatalf("resolution = %+v, want email match", res)
	}
	if res.ClientID != emailClient.ID {
		t.Errorf("ClientID = %s, want email-matched client %s", res.ClientID, emailClient.ID)
	}
	if res.RestoreContactID != nil || res.NewContact != nil || res.NewClient != nil {
		t.Errorf("active email match must decide no mutation, got %+v", res)
	}
}

func TestResolveEmailMatchRestoresInactiveContact(t *testing.T) {
	contact := activeContact("marie@client.fr", "+33633333333", true)
	contact.Active = false
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "SARL Durand", Contacts: []Contact{contact}}

	res := ResolveOrCreate(LeadIdentity{Email: "marie@client.fr"}, []Client{client}, asOf)
	if !res.Matched || res.MatchedBy != MatchEmail {
		t.Fatalf("resolution = %+v, want email match", res)
	}
	if res.RestoreContactID == nil || *res.RestoreContactID != contact.ID {
		t.Errorf("RestoreContactID = %v, want %s", res.RestoreContactID, contact.ID)
	}
}

func TestResolvePhoneMatchAppendsBillingContact(t *testing.T) {
	existing := activeContact("ancien@client.fr", "06 44 44 44 44", true)
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "Transports Leroy", Contacts: []Contact{existing}}

	lead := LeadIdentity{
		Contact: "Paul Leroy",
		Email:   "paul@transports-leroy.fr",
		Phone:   "+33644444444",
	}

	res := ResolveOrCreate(lead, []Client{client}, asOf)
	if !res.Matched || res.MatchedBy != MatchPhone {
		t.Fatalf("resolution = %+v, want phone match", res)
	}
	if res.NewContact == nil {
		t.Fatal("phone match with unknown email must append a contact")
	}
	if res.NewContact.Email != "paul@transports-leroy.fr" {
		t.Errorf("contact email = %q", res.NewContact.Email)
	}
	if res.NewContact.FirstName != "Paul" || res.NewContact.LastName != "Leroy" {
		t.Errorf("contact name = %q %q, want Paul Leroy", res.NewContact.FirstName, res.NewContact.LastName)
	}
	if res.NewContact.IsBillingDefault {
		t.Error("client already has an active billing default, new contact must not take it")
	}
}

func TestResolvePhoneMatchTakesBillingDefaultWhenNoneActive(t *testing.T) {
	existing := activeContact("ancien@client.fr", "0655555555", true)
	existing.Active = false
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "Clim Sud", Contacts: []Contact{existing}}

	res := ResolveOrCreate(LeadIdentity{Email: "new@climsud.fr", Phone: "0655555555"}, []Client{client}, asOf)
	if res.NewContact == nil {
		t.Fatal("expected appended contact")
	}
	if !res.NewContact.IsBillingDefault {
		t.Error("with no active billing default the new contact must take the role")
	}
}

func TestResolvePhoneMatchWithoutEmailDecidesNothing(t *testing.T) {
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "Garage Nord",
		Contacts: []Contact{activeContact("n@garage-nord.fr", "0666666666", true)}}

	res := ResolveOrCreate(LeadIdentity{Phone: "06 66 66 66 66"}, []Client{client}, asOf)
	if !res.Matched || res.MatchedBy != MatchPhone {
		t.Fatalf("resolution = %+v, want phone match", res)
	}
	if res.NewContact != nil || res.RestoreContactID != nil {
		t.Errorf("phone match without email must not mutate, got %+v", res)
	}
}

func TestResolveMatchesBySIRETForCompanyLeads(t *testing.T) {
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "BTP Ouest", SIRET: "73282932000074"}

	res := ResolveOrCreate(LeadIdentity{Company: "Nouveau Nom", SIRET: "73282932000074", ClientType: ClientTypeCompany}, []Client{client}, asOf)
	if !res.Matched || res.MatchedBy != MatchSIRET {
		t.Fatalf("resolution = %+v, want siret match", res)
	}

	// An individual lead never matches by SIRET.
	res = ResolveOrCreate(LeadIdentity{Contact: "Luc Morel", SIRET: "73282932000074", ClientType: ClientTypeIndividual}, []Client{client}, asOf)
	if res.Matched {
		t.Errorf("individual lead matched by siret: %+v", res)
	}
}

func TestResolveMatchesByCompanyName(t *testing.T) {
	companyName := "Peinture Rivière"
	client := Client{ID: uuid.New(), Type: ClientTypeCompany, Name: "ignored", CompanyName: &companyName}

	res := ResolveOrCreate(LeadIdentity{Company: "  peinture rivière ", ClientType: ClientTypeCompany}, []Client{client}, asOf)
	if !res.Matched || res.MatchedBy != MatchCompanyName {
		t.Fatalf("resolution = %+v, want company name match", res)
	}
}

func TestResolveCreatesCompanyClient(t *testing.T) {
	lead := LeadIdentity{
		Contact:    "Sophie Bernard",
		Company:    "Flotte & Co",
		Email:      "sophie@flotte.co",
		Phone:      "06 77 77 77 77",
		Address:    "4 rue des Lilas",
		City:       "Lyon",
		ClientType: ClientTypeCompany,
	}

	res := ResolveOrCreate(lead, nil, asOf)
	if res.Matched || res.NewClient == nil {
		t.Fatalf("resolution = %+v, want creation", res)
	}

	draft := res.NewClient
	if draft.Type != ClientTypeCompany || draft.Name != "Flotte & Co" {
		t.Errorf("draft = %q/%q", draft.Type, draft.Name)
	}
	if draft.Status != StatusProspect {
		t.Errorf("Status = %q, want %q", draft.Status, StatusProspect)
	}
	if !strings.HasPrefix(draft.SIRET, "TMP-flotteco-") {
		t.Errorf("SIRET = %q, want TMP-flotteco- prefix", draft.SIRET)
	}
	if draft.FirstContact == nil {
		t.Fatal("company draft with a named contact must carry a first contact")
	}
	if !draft.FirstContact.IsBillingDefault {
		t.Error("first contact must be the billing default")
	}
}

func TestResolveCreatesIndividualClient(t *testing.T) {
	res := ResolveOrCreate(LeadIdentity{Contact: "Luc Morel", ClientType: ClientTypeIndividual}, nil, asOf)
	if res.NewClient == nil {
		t.Fatal("want creation")
	}
	draft := res.NewClient
	if draft.Type != ClientTypeIndividual || draft.Name != "Luc Morel" {
		t.Errorf("draft = %q/%q", draft.Type, draft.Name)
	}
	if draft.SIRET != "" {
		t.Errorf("individual draft must have no SIRET, got %q", draft.SIRET)
	}
	if draft.FirstName == nil || *draft.FirstName != "Luc" {
		t.Errorf("FirstName = %v", draft.FirstName)
	}
}

func TestResolveKeepsLeadSIRETWhenPresent(t *testing.T) {
	res := ResolveOrCreate(LeadIdentity{Company: "Toiture Pro", SIRET: " 12345678900011 ", ClientType: ClientTypeCompany}, nil, asOf)
	if res.NewClient == nil {
		t.Fatal("want creation")
	}
	if res.NewClient.SIRET != "12345678900011" {
		t.Errorf("SIRET = %q, want the lead's own", res.NewClient.SIRET)
	}
}

// Applying a resolution and resolving again must converge to a pure match.
func TestResolveIsIdempotent(t *testing.T) {
	lead := LeadIdentity{
		Contact:    "Anne Petit",
		Company:    "Petit Nettoyage",
		Email:      "anne@petit-nettoyage.fr",
		Phone:      "06 88 88 88 88",
		ClientType: ClientTypeCompany,
	}

	first := ResolveOrCreate(lead, nil, asOf)
	if first.NewClient == nil {
		t.Fatal("first resolution must create")
	}

	created := applyDraft(*first.NewClient)
	second := ResolveOrCreate(lead, []Client{created}, asOf.Add(time.Hour))
	if !second.Matched {
		t.Fatalf("second resolution = %+v, want match", second)
	}
	if second.ClientID != created.ID {
		t.Errorf("ClientID = %s, want %s", second.ClientID, created.ID)
	}
	if second.NewContact != nil || second.RestoreContactID != nil || second.NewClient != nil {
		t.Errorf("second resolution must decide no mutation, got %+v", second)
	}

	// Phone-only then email convergence: strip the email from the snapshot
	// contact, resolve, apply, resolve again.
	noEmail := created
	noEmail.Contacts = []Contact{{
		ID: uuid.New(), FirstName: "Anne", Email: "autre@petit-nettoyage.fr",
		Mobile: "0688888888", Roles: []string{RoleFacturation}, IsBillingDefault: true, Active: true,
	}}

	third := ResolveOrCreate(lead, []Client{noEmail}, asOf)
	if !third.Matched || third.MatchedBy != MatchPhone || third.NewContact == nil {
		t.Fatalf("third resolution = %+v, want phone match with appended contact", third)
	}

	noEmail.Contacts = append(noEmail.Contacts, Contact{
		ID: uuid.New(), FirstName: third.NewContact.FirstName, LastName: third.NewContact.LastName,
		Email: third.NewContact.Email, Mobile: third.NewContact.Mobile,
		Roles: third.NewContact.Roles, IsBillingDefault: third.NewContact.IsBillingDefault, Active: true,
	})

	fourth := ResolveOrCreate(lead, []Client{noEmail}, asOf)
	if !fourth.Matched || fourth.MatchedBy != MatchEmail || fourth.NewContact != nil {
		t.Errorf("fourth resolution = %+v, want pure email match", fourth)
	}
}

// A lead without a contact name still has its coordinates land on a
// contact, so resolving it a second time matches instead of creating.
func TestResolveIsIdempotentWithoutContactName(t *testing.T) {
	leads := []LeadIdentity{
		{Email: "solo@exemple.fr", ClientType: ClientTypeIndividual},
		{Company: "Sans Nom SARL", Email: "contact@sans-nom.fr", ClientType: ClientTypeCompany},
		{Phone: "06 99 99 99 99", ClientType: ClientTypeIndividual},
	}

	for _, lead := range leads {
		first := ResolveOrCreate(lead, nil, asOf)
		if first.NewClient == nil {
			t.Fatalf("lead %+v: first resolution must create", lead)
		}
		if first.NewClient.FirstContact == nil {
			t.Fatalf("lead %+v: draft must carry a first contact holding the lead's coordinates", lead)
		}

		created := applyDraft(*first.NewClient)
		second := ResolveOrCreate(lead, []Client{created}, asOf.Add(time.Hour))
		if !second.Matched || second.NewClient != nil {
			t.Errorf("lead %+v: second resolution = %+v, want pure match", lead, second)
		}
		if second.Matched && second.ClientID != created.ID {
			t.Errorf("lead %+v: ClientID = %s, want %s", lead, second.ClientID, created.ID)
		}
	}
}

func applyDraft(draft ClientDraft) Client {
	client := Client{
		ID:          uuid.New(),
		Type:        draft.Type,
		Name:        draft.Name,
		CompanyName: draft.CompanyName,
		FirstName:   draft.FirstName,
		LastName:    draft.LastName,
		SIRET:       draft.SIRET,
		Email:       draft.Email,
		Phone:       draft.Phone,
		Address:     draft.Address,
		City:        draft.City,
		Status:      draft.Status,
		Tags:        draft.Tags,
	}
	if draft.FirstContact != nil {
		client.Contacts = []Contact{{
			ID:               uuid.New(),
			FirstName:        draft.FirstContact.FirstName,
			LastName:         draft.FirstContact.LastName,
			Email:            draft.FirstContact.Email,
			Mobile:           draft.FirstContact.Mobile,
			Roles:            draft.FirstContact.Roles,
			IsBillingDefault: draft.FirstContact.IsBillingDefault,
			Active:           true,
		}}
	}
	return client
}

func TestSplitContactName(t *testing.T) {
	tests := []struct {
		in              string
		first, last     string
	}{
		{"", "", ""},
		{"   ", "", ""},
		{"Jean", "Jean", ""},
		{"Jean Dupont", "Jean", "Dupont"},
		{"Jean  de la Fontaine", "Jean", "de la Fontaine"},
	}
	for _, tt := range tests {
		first, last := SplitContactName(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitContactName(%q) = %q/%q, want %q/%q", tt.in, first, last, tt.first, tt.last)
		}
	}
}
