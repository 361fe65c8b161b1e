package enums

// TotalType labels entries in a totals array.
type TotalType string

const (
	TotalTypeSubtotal    TotalType = "subtotal"
	TotalTypeDiscount    TotalType = "discount"
	TotalTypeFulfillment TotalType = "fulfillment"
	TotalTypeTotal       TotalType = "total"
)

// WebhookEventType labels events dispatched to agent webhook endpoints.
type WebhookEventType string

const (
	WebhookEventOrderPlaced  WebhookEventType = "order_placed"
	WebhookEventOrderShipped WebhookEventType = "order_shipped"
)
