package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProcessingVersion is stamped onto every OfferItem so downstream consumers
// can tell which extraction pipeline produced a row.
const ProcessingVersion = "1.0.0"

// Common validation errors for OfferItem
var (
	ErrEmptyOfferUID        = errors.New("offer UID cannot be empty")
	ErrEmptyProductName     = errors.New("offer product name cannot be empty")
	ErrInvalidConfidence    = errors.New("offer confidence score must be between 0 and 1")
	ErrEmptyOfferProductKey = errors.New("offer product key cannot be empty")
)

// OfferItem is the structured JSON output of AI-powered offer parsing.
// One submission can yield several items (an offer sheet usually lists
// multiple products). Pointer fields are genuinely optional and serialize
// as null when absent.
type OfferItem struct {
	UID              string  `json:"uid"`
	ProductName      string  `json:"product_name"`
	ProductKey       string  `json:"product_key"`
	Brand            *string `json:"brand"`
	Category         *string `json:"category"`
	SubCategory      *string `json:"sub_category"`
	ProductReference *string `json:"product_reference"`

	Packaging       *string `json:"packaging"`
	PackagingRaw    *string `json:"packaging_raw"`
	BottleOrCanType *string `json:"bottle_or_can_type"`
	GiftBox         *bool   `json:"gift_box"`
	UnitVolumeML    *int    `json:"unit_volume_ml"`
	UnitsPerCase    *int    `json:"units_per_case"`
	CasesPerPallet  *int    `json:"cases_per_pallet"`
	QuantityCase    *int    `json:"quantity_case"`
	MOQCases        *int    `json:"moq_cases"`

	PricePerCase    *float64 `json:"price_per_case"`
	PricePerUnit    *float64 `json:"price_per_unit"`
	PricePerCaseEUR *float64 `json:"price_per_case_eur"`
	PricePerUnitEUR *float64 `json:"price_per_unit_eur"`
	Currency        *string  `json:"currency"`
	FXRate          *float64 `json:"fx_rate"`
	FXDate          *string  `json:"fx_date"`

	Incoterm      *string `json:"incoterm"`
	Location      *string `json:"location"`
	LeadTime      *string `json:"lead_time"`
	OriginCountry *string `json:"origin_country"`

	EANCode          *string `json:"ean_code"`
	AlcoholPercent   *string `json:"alcohol_percent"`
	Vintage          *string `json:"vintage"`
	BestBeforeDate   *string `json:"best_before_date"`
	ValidUntil       *string `json:"valid_until"`
	RefillableStatus *string `json:"refillable_status"`
	LabelLanguage    *string `json:"label_language"`
	CustomStatus     *string `json:"custom_status"`

	SupplierName      *string `json:"supplier_name"`
	SupplierEmail     *string `json:"supplier_email"`
	SupplierCountry   *string `json:"supplier_country"`
	SupplierReference *string `json:"supplier_reference"`

	SourceChannel   string `json:"source_channel"`
	SourceMessageID string `json:"source_message_id"`
	SourceFilename  string `json:"source_filename"`

	ConfidenceScore   float64  `json:"confidence_score"`
	ErrorFlags        []string `json:"error_flags"`
	NeedsManualReview bool     `json:"needs_manual_review"`
	ProcessingVersion string   `json:"processing_version"`

	DateReceived time.Time `json:"date_received"`
	OfferDate    time.Time `json:"offer_date"`
}

// Validate checks that an OfferItem satisfies the output contract.
func (o *OfferItem) Validate() error {
	if o.UID == "" {
		return ErrEmptyOfferUID
	}
	if _, err := uuid.Parse(o.UID); err != nil {
		return ErrEmptyOfferUID
	}
	if o.ProductName == "" {
		return ErrEmptyProductName
	}
	if o.ProductKey == "" {
		return ErrEmptyOfferProductKey
	}
	if o.ConfidenceScore < 0 || o.ConfidenceScore > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// OfferResponse is the envelope the results endpoint returns once a job
// has completed.
type OfferResponse struct {
	Data []*OfferItem `json:"data"`
}
