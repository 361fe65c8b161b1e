package checkout

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storemock-backend/internal/pricing"
	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

type checkoutView struct {
	ID          string                  `json:"id"`
	Status      enums.CheckoutStatus    `json:"status"`
	Currency    string                  `json:"currency"`
	Buyer       *types.JSONMap          `json:"buyer,omitempty"`
	LineItems   []lineItemView          `json:"line_items"`
	Totals      []types.TotalEntry      `json:"totals"`
	Discounts   *types.DiscountsBlock   `json:"discounts,omitempty"`
	Fulfillment *types.FulfillmentState `json:"fulfillment"`
	Links       []linkView              `json:"links"`
	UCP         types.UCPEnvelope       `json:"ucp"`
	Payment     paymentView             `json:"payment"`
	Order       *orderRefView           `json:"order,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

type lineItemView struct {
	ID       string             `json:"id"`
	Item     itemView           `json:"item"`
	Quantity int                `json:"quantity"`
	Totals   []types.TotalEntry `json:"totals"`
}

type itemView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

type linkView struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

type paymentView struct {
	Handlers []paymentHandlerView `json:"handlers"`

	// Instruments is always an empty array, never null.
	Instruments          []types.JSONMap `json:"instruments"`
	SelectedInstrumentID *string         `json:"selected_instrument_id"`
}

type paymentHandlerView struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Version           string        `json:"version"`
	Spec              string        `json:"spec"`
	ConfigSchema      string        `json:"config_schema"`
	InstrumentSchemas []string      `json:"instrument_schemas"`
	Config            types.JSONMap `json:"config,omitempty"`
}

type orderRefView struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	PermalinkURL string `json:"permalink_url"`
}

var mockPaymentHandlers = []paymentHandlerView{{
	ID:                "mock_payment_handler",
	Name:              "dev.ucp.mock_payment",
	Version:           types.UCPVersion,
	Spec:              "https://ucp.dev/handlers/mock-payment",
	ConfigSchema:      "https://ucp.dev/handlers/mock-payment/config.json",
	InstrumentSchemas: []string{"https://ucp.dev/handlers/mock-payment/instrument.json"},
	Config:            types.JSONMap{"auto_approve": true},
}}

func newCheckoutView(checkout *models.Checkout, baseURL string) checkoutView {
	if checkout == nil {
		return checkoutView{}
	}

	result := pricing.Result{
		SubtotalCents: checkout.SubtotalCents,
		DiscountCents: checkout.DiscountsCents,
		TotalCents:    checkout.TotalCents,
	}

	return checkoutView{
		ID:          checkout.ID.String(),
		Status:      checkout.Status.Public(),
		Currency:    checkout.Currency,
		Buyer:       checkout.Buyer,
		LineItems:   newLineItemViews(checkout.Items),
		Totals:      pricing.BuildTotals(result, checkout.FulfillmentCents),
		Discounts:   pricing.BuildDiscounts(checkout.SubtotalCents, toPricingDiscounts(checkout.Discounts)),
		Fulfillment: fulfillmentView(checkout),
		Links:       legalLinks(baseURL),
		UCP:         types.NewUCPEnvelope(types.CapabilityCheckout),
		Payment: paymentView{
			Handlers:             mockPaymentHandlers,
			Instruments:          []types.JSONMap{},
			SelectedInstrumentID: checkout.PaymentInstrumentID,
		},
		CreatedAt: checkout.CreatedAt,
		UpdatedAt: checkout.UpdatedAt,
	}
}

func newCompletedCheckoutView(checkout *models.Checkout, order *models.Order, baseURL string) checkoutView {
	view := newCheckoutView(checkout, baseURL)
	if order != nil {
		view.Order = &orderRefView{
			ID:           order.ID.String(),
			Status:       string(order.Status),
			PermalinkURL: baseURL + "/orders/" + order.ID.String(),
		}
	}
	return view
}

func newLineItemViews(items []models.CheckoutLineItem) []lineItemView {
	views := make([]lineItemView, 0, len(items))
	for _, item := range items {
		lineTotal := item.UnitPriceCents * item.Quantity
		views = append(views, lineItemView{
			ID: item.ID.String(),
			Item: itemView{
				ID:    item.ProductID,
				Title: item.Title,
				Price: item.UnitPriceCents,
			},
			Quantity: item.Quantity,
			Totals: []types.TotalEntry{
				{Type: enums.TotalTypeSubtotal, DisplayText: "Subtotal", Amount: lineTotal},
				{Type: enums.TotalTypeTotal, DisplayText: "Total", Amount: lineTotal},
			},
		})
	}
	return views
}

// fulfillmentView guarantees the response always carries one method with
// destination and group arrays present, even before any fulfillment data
// has been stored.
func fulfillmentView(checkout *models.Checkout) *types.FulfillmentState {
	if checkout.Fulfillment != nil && len(checkout.Fulfillment.Methods) > 0 {
		return checkout.Fulfillment
	}
	itemIDs := make([]string, 0, len(checkout.Items))
	for _, item := range checkout.Items {
		itemIDs = append(itemIDs, item.ID.String())
	}
	return &types.FulfillmentState{
		Methods: []types.FulfillmentMethod{{
			ID:           "shipping_method_0",
			Type:         enums.FulfillmentMethodTypeShipping,
			LineItemIDs:  itemIDs,
			Destinations: []types.FulfillmentDestination{},
			Groups:       []types.FulfillmentGroup{},
		}},
	}
}

func legalLinks(baseURL string) []linkView {
	privacy := "https://example.com/privacy"
	terms := "https://example.com/terms"
	if baseURL != "" {
		privacy = baseURL + "/legal/privacy"
		terms = baseURL + "/legal/terms"
	}
	return []linkView{
		{Type: "privacy_policy", URL: privacy, Title: "Privacy Policy"},
		{Type: "terms_of_service", URL: terms, Title: "Terms of Service"},
	}
}

func toPricingDiscounts(discounts []models.CheckoutDiscount) []pricing.Discount {
	out := make([]pricing.Discount, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, pricing.Discount{Code: d.Code, Type: d.Type, Value: d.Value})
	}
	return out
}

func requestBaseURL(r *http.Request) string {
	if r == nil || r.Host == "" {
		return ""
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		scheme = forwarded
	}
	return scheme + "://" + r.Host
}
