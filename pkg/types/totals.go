package types

import "github.com/angelmondragon/storemock-backend/pkg/enums"

// TotalEntry is one row of a totals array on checkouts, orders and options.
type TotalEntry struct {
	Type        enums.TotalType `json:"type"`
	DisplayText string          `json:"display_text,omitempty"`
	Amount      int             `json:"amount"`
}

// AppliedDiscount is the per-code breakdown shown on a checkout.
type AppliedDiscount struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Amount int    `json:"amount"`
}

// DiscountsBlock groups applied discount codes for the response shape.
type DiscountsBlock struct {
	Codes   []string          `json:"codes"`
	Applied []AppliedDiscount `json:"applied"`
}
