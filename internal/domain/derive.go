package domain

import (
	"math"
	"strings"
)

// Confidence below this threshold always routes an offer to manual review.
const reviewConfidenceThreshold = 0.70

// Error flags recorded on an OfferItem when critical fields are missing or
// could not be resolved. The flag strings are part of the output contract.
const (
	FlagMissingProductName = "missing_product_name"
	FlagMissingPrice       = "missing_price"
	FlagMissingCurrency    = "missing_currency"
	FlagAttachmentFailed   = "attachment_download_failed"
)

// ProductKey builds the stable lowercase slug identifying a product within
// an offer: brand, product name, and packaging joined by underscores, with
// runs of non-alphanumeric characters collapsed to single underscores.
func ProductKey(brand, productName, packaging string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{brand, productName, packaging} {
		if s := slugify(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "_")
}

// slugify lowercases s and collapses every run of non-alphanumeric
// characters to a single underscore.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // suppress a leading underscore
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// DerivePricing fills in the price fields that follow from the extracted
// ones: per-unit price from the case price and case size, and EUR
// equivalents using the FX rate. Existing values are never overwritten.
func (o *OfferItem) DerivePricing() {
	if o.PricePerUnit == nil && o.PricePerCase != nil && o.UnitsPerCase != nil && *o.UnitsPerCase > 0 {
		perUnit := round4(*o.PricePerCase / float64(*o.UnitsPerCase))
		o.PricePerUnit = &perUnit
	}

	// EUR-denominated offers are their own EUR equivalents; anything else
	// converts through the FX rate when one was extracted.
	isEUR := o.Currency != nil && strings.EqualFold(*o.Currency, "EUR")
	switch {
	case isEUR:
		if o.PricePerCaseEUR == nil && o.PricePerCase != nil {
			v := *o.PricePerCase
			o.PricePerCaseEUR = &v
		}
		if o.PricePerUnitEUR == nil && o.PricePerUnit != nil {
			v := *o.PricePerUnit
			o.PricePerUnitEUR = &v
		}
	case o.FXRate != nil && *o.FXRate > 0:
		if o.PricePerCaseEUR == nil && o.PricePerCase != nil {
			v := round4(*o.PricePerCase * *o.FXRate)
			o.PricePerCaseEUR = &v
		}
		if o.PricePerUnitEUR == nil && o.PricePerUnit != nil {
			v := round4(*o.PricePerUnit * *o.FXRate)
			o.PricePerUnitEUR = &v
		}
	}
}

// FlagMissingFields appends error flags for absent critical fields and
// returns the updated flag list.
func (o *OfferItem) FlagMissingFields() {
	if o.ProductName == "" {
		o.addFlag(FlagMissingProductName)
	}
	if o.PricePerCase == nil && o.PricePerUnit == nil {
		o.addFlag(FlagMissingPrice)
	}
	if o.Currency == nil || *o.Currency == "" {
		o.addFlag(FlagMissingCurrency)
	}
}

// ResolveReview sets NeedsManualReview from the confidence score and the
// accumulated error flags. Call after extraction and flagging are done.
func (o *OfferItem) ResolveReview() {
	o.NeedsManualReview = o.ConfidenceScore < reviewConfidenceThreshold || len(o.ErrorFlags) > 0
}

// addFlag appends a flag unless it is already present.
func (o *OfferItem) addFlag(flag string) {
	for _, f := range o.ErrorFlags {
		if f == flag {
			return
		}
	}
	o.ErrorFlags = append(o.ErrorFlags, flag)
}

// AddErrorFlag records a processing-level error flag (for example a failed
// attachment download) on the item.
func (o *OfferItem) AddErrorFlag(flag string) {
	o.addFlag(flag)
}

// round4 rounds to four decimal places, the precision the pricing contract
// uses for per-unit values.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
