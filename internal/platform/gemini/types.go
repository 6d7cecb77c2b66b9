// Package gemini provides implementations for the extraction interface using Google's Gemini API.
package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	// Filename is the name of the source document, or empty for a message body
	Filename string

	// DocumentText is the raw text content to extract offer data from
	DocumentText string
}

// ResponseSchema represents the expected structure of the Gemini API response
type ResponseSchema struct {
	// Items is the array of offer lines found in the document
	Items []ItemSchema `json:"items"`
}

// ItemSchema represents a single extracted offer line in the API response.
// Only fields the model could actually read from the document are set;
// derived fields (product key, per-unit pricing, review flags) are computed
// downstream.
type ItemSchema struct {
	ProductName      string  `json:"product_name"`
	Brand            *string `json:"brand,omitempty"`
	Category         *string `json:"category,omitempty"`
	SubCategory      *string `json:"sub_category,omitempty"`
	ProductReference *string `json:"product_reference,omitempty"`

	Packaging       *string `json:"packaging,omitempty"`
	PackagingRaw    *string `json:"packaging_raw,omitempty"`
	BottleOrCanType *string `json:"bottle_or_can_type,omitempty"`
	GiftBox         *bool   `json:"gift_box,omitempty"`
	UnitVolumeML    *int    `json:"unit_volume_ml,omitempty"`
	UnitsPerCase    *int    `json:"units_per_case,omitempty"`
	CasesPerPallet  *int    `json:"cases_per_pallet,omitempty"`
	QuantityCase    *int    `json:"quantity_case,omitempty"`
	MOQCases        *int    `json:"moq_cases,omitempty"`

	PricePerCase *float64 `json:"price_per_case,omitempty"`
	Currency     *string  `json:"currency,omitempty"`

	Incoterm      *string `json:"incoterm,omitempty"`
	Location      *string `json:"location,omitempty"`
	LeadTime      *string `json:"lead_time,omitempty"`
	OriginCountry *string `json:"origin_country,omitempty"`

	EANCode          *string `json:"ean_code,omitempty"`
	AlcoholPercent   *string `json:"alcohol_percent,omitempty"`
	Vintage          *string `json:"vintage,omitempty"`
	BestBeforeDate   *string `json:"best_before_date,omitempty"`
	ValidUntil       *string `json:"valid_until,omitempty"`
	RefillableStatus *string `json:"refillable_status,omitempty"`
	LabelLanguage    *string `json:"label_language,omitempty"`
	CustomStatus     *string `json:"custom_status,omitempty"`

	SupplierName    *string `json:"supplier_name,omitempty"`
	SupplierEmail   *string `json:"supplier_email,omitempty"`
	SupplierCountry *string `json:"supplier_country,omitempty"`

	ConfidenceScore float64 `json:"confidence_score"`
}
