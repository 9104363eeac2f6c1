package domain

import (
	"time"

	"atelier_erp_backend/platform/apperr"
)

// quoteTransitions is the devis state machine: a draft is sent, a sent
// devis is accepted or refused. Terminal states never revert here; a
// re-send of an accepted devis keeps its status.
var quoteTransitions = map[string][]string{
	QuoteBrouillon: {QuoteEnvoye},
	QuoteEnvoye:    {QuoteAccepte, QuoteRefuse},
}

// CanTransitionQuote reports whether a devis may move between two statuses.
func CanTransitionQuote(from, to string) bool {
	for _, allowed := range quoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// MarkQuoteSent appends a send record (newest first) and moves the devis
// to envoyé unless it already reached a terminal status. Re-sending is
// always recorded, whatever the status.
func MarkQuoteSent(e Engagement, record SendRecord) (Engagement, error) {
	if e.Kind != KindDevis {
		return Engagement{}, apperr.Validation("only a devis can be sent")
	}

	e.SendHistory = append([]SendRecord{record}, e.SendHistory...)
	if e.QuoteStatus != nil && (*e.QuoteStatus == QuoteAccepte || *e.QuoteStatus == QuoteRefuse) {
		return e, nil
	}
	status := QuoteEnvoye
	e.QuoteStatus = &status
	return e, nil
}

// AcceptQuote moves a sent devis to accepté.
func AcceptQuote(e Engagement) (Engagement, error) {
	return transitionQuote(e, QuoteAccepte)
}

// RefuseQuote moves a sent devis to refusé.
func RefuseQuote(e Engagement) (Engagement, error) {
	return transitionQuote(e, QuoteRefuse)
}

func transitionQuote(e Engagement, to string) (Engagement, error) {
	if e.Kind != KindDevis {
		return Engagement{}, apperr.Validation("engagement is not a devis")
	}
	from := QuoteBrouillon
	if e.QuoteStatus != nil {
		from = *e.QuoteStatus
	}
	if from == to {
		return e, nil
	}
	if !CanTransitionQuote(from, to) {
		return Engagement{}, apperr.Conflict("devis cannot move from " + from + " to " + to)
	}
	e.QuoteStatus = &to
	return e, nil
}

// ConvertQuoteToService turns a devis into a realized service engagement.
// The realization date is mandatory; without it nothing is mutated. The
// conversion is one-way: the devis number and name survive on the service
// so the document trail stays intact, while the devis status is cleared.
func ConvertQuoteToService(e Engagement, realizationDate time.Time) (Engagement, error) {
	if e.Kind != KindDevis {
		return Engagement{}, apperr.Validation("only a devis can be converted to a service")
	}
	if realizationDate.IsZero() {
		return Engagement{}, apperr.Validation("realization date is required")
	}

	e.Kind = KindService
	e.Status = StatusRealise
	e.ScheduledAt = &realizationDate
	e.QuoteStatus = nil
	return e, nil
}

// ValidStatus reports whether a status belongs to the engagement set.
func ValidStatus(status string) bool {
	switch status {
	case StatusBrouillon, StatusEnvoye, StatusPlanifie, StatusRealise, StatusAnnule:
		return true
	}
	return false
}
