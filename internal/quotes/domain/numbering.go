package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	quoteNumberPattern   = regexp.MustCompile(`^DEV-(\d{6})-(\d{4})$`)
	invoiceNumberPattern = regexp.MustCompile(`^FAC-(\d{6})-(\d{4})$`)
)

// NextQuoteNumber allocates the next devis number for the month of asOf,
// format DEV-yyyyMM-0001. It scans the existing engagements for the
// highest suffix of the same month and never reuses a number it was
// shown; malformed or other-month numbers are ignored.
func NextQuoteNumber(existing []Engagement, asOf time.Time) string {
	monthToken := asOf.Format("200601")
	highest := 0
	for _, e := range existing {
		if e.QuoteNumber == nil {
			continue
		}
		if seq, ok := sequenceForMonth(quoteNumberPattern, *e.QuoteNumber, monthToken); ok && seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("DEV-%s-%04d", monthToken, highest+1)
}

// NextInvoiceNumber allocates the next invoice number for the month of
// asOf, format FAC-yyyyMM-0001, scanning invoice numbers the same way.
func NextInvoiceNumber(existing []Engagement, asOf time.Time) string {
	monthToken := asOf.Format("200601")
	highest := 0
	for _, e := range existing {
		if e.InvoiceNumber == nil {
			continue
		}
		if seq, ok := sequenceForMonth(invoiceNumberPattern, *e.InvoiceNumber, monthToken); ok && seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("FAC-%s-%04d", monthToken, highest+1)
}

func sequenceForMonth(pattern *regexp.Regexp, number, monthToken string) (int, bool) {
	match := pattern.FindStringSubmatch(strings.TrimSpace(number))
	if match == nil || match[1] != monthToken {
		return 0, false
	}
	seq, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	return seq, true
}
