// Package domain holds the lead pipeline model. Statuses carry the
// labels the sales team works with; transitions are advisory, a lead
// can be moved anywhere by hand.
package domain

// Lead statuses, in pipeline order.
const (
	StatusNouveau     = "Nouveau"
	StatusAContacter  = "À contacter"
	StatusEnCours     = "En cours"
	StatusDevisEnvoye = "Devis envoyé"
	StatusGagne       = "Gagné"
	StatusPerdu       = "Perdu"
)

// Activity types.
const (
	ActivityNote = "note"
	ActivityCall = "call"
)

// pipeline is the advisory happy path a lead walks when nobody
// intervenes: each Advance moves one step toward Gagné.
var pipeline = []string{
	StatusNouveau,
	StatusAContacter,
	StatusEnCours,
	StatusDevisEnvoye,
	StatusGagne,
}

// ValidStatus reports whether a status belongs to the lead set.
func ValidStatus(status string) bool {
	switch status {
	case StatusNouveau, StatusAContacter, StatusEnCours, StatusDevisEnvoye, StatusGagne, StatusPerdu:
		return true
	}
	return false
}

// Terminal reports whether a status ends the pipeline.
func Terminal(status string) bool {
	return status == StatusGagne || status == StatusPerdu
}

// Advance returns the next status on the happy path. Terminal and
// unknown statuses stay where they are.
func Advance(status string) string {
	for i, s := range pipeline {
		if s == status && i+1 < len(pipeline) {
			return pipeline[i+1]
		}
	}
	return status
}

// MarkWon closes a lead as Gagné from any status.
func MarkWon(string) string { return StatusGagne }

// MarkLost closes a lead as Perdu from any status.
func MarkLost(string) string { return StatusPerdu }

// ValidActivityType reports whether an activity type is known.
func ValidActivityType(t string) bool {
	return t == ActivityNote || t == ActivityCall
}

// StampsLastContact reports whether recording this activity type counts
// as having reached the lead. Notes are internal and do not.
func StampsLastContact(t string) bool {
	return t == ActivityCall
}
