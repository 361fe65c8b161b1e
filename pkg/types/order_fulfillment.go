package types

import "github.com/angelmondragon/storemock-backend/pkg/enums"

// OrderFulfillment is the jsonb payload stored on an order: its planned
// expectations plus the append-only event log.
type OrderFulfillment struct {
	Expectations []FulfillmentExpectation `json:"expectations"`
	Events       []FulfillmentEvent       `json:"events"`
}

// FulfillmentExpectation is the planned commitment for a set of order line
// items before any shipment event occurs.
type FulfillmentExpectation struct {
	ID          string                      `json:"id"`
	LineItems   []ExpectationLineItem       `json:"line_items"`
	MethodType  enums.FulfillmentMethodType `json:"method_type"`
	Destination FulfillmentDestination      `json:"destination"`
	Description string                      `json:"description,omitempty"`
}

// ExpectationLineItem references an order line item within an expectation.
type ExpectationLineItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// FulfillmentEvent records something that happened to a shipment.
type FulfillmentEvent struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Timestamp string           `json:"timestamp"`
	Tracking  *TrackingDetails `json:"tracking,omitempty"`
}

// TrackingDetails carries carrier tracking info on a shipped event.
type TrackingDetails struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
	TrackingURL    string `json:"tracking_url"`
}

// OrderAdjustment is an append-only post-placement amendment (e.g. a refund).
type OrderAdjustment = JSONMap
