package orders

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

type orderView struct {
	UCP          types.UCPEnvelope       `json:"ucp"`
	ID           string                  `json:"id"`
	CheckoutID   string                  `json:"checkout_id"`
	Status       enums.OrderStatus       `json:"status"`
	Currency     string                  `json:"currency"`
	BuyerID      *string                 `json:"buyer_id,omitempty"`
	PermalinkURL string                  `json:"permalink_url"`
	LineItems    []orderLineItemView     `json:"line_items"`
	Fulfillment  orderFulfillmentView    `json:"fulfillment"`
	Totals       []types.TotalEntry      `json:"totals"`
	Adjustments  []types.OrderAdjustment `json:"adjustments,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

type orderLineItemView struct {
	ID       string             `json:"id"`
	Item     orderItemView      `json:"item"`
	Quantity orderQuantityView  `json:"quantity"`
	Totals   []types.TotalEntry `json:"totals"`
	Status   string             `json:"status"`
}

type orderItemView struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Price int    `json:"price"`
}

type orderQuantityView struct {
	Total     int `json:"total"`
	Fulfilled int `json:"fulfilled"`
}

type orderFulfillmentView struct {
	// Both lists are always arrays in the response, never null.
	Expectations []types.FulfillmentExpectation `json:"expectations"`
	Events       []types.FulfillmentEvent       `json:"events"`
}

type orderListView struct {
	Orders []orderView `json:"orders"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func newOrderView(order *models.Order, baseURL string) orderView {
	if order == nil {
		return orderView{}
	}

	fulfilled := 0
	if order.Status == enums.OrderStatusShipped || order.Status == enums.OrderStatusDelivered {
		fulfilled = 1
	}

	items := make([]orderLineItemView, 0, len(order.Items))
	for _, item := range order.Items {
		lineTotal := item.UnitPriceCents * item.Quantity
		lineFulfilled := 0
		if fulfilled > 0 {
			lineFulfilled = item.Quantity
		}
		items = append(items, orderLineItemView{
			ID: item.ID.String(),
			Item: orderItemView{
				ID:    item.ProductID,
				Title: item.Title,
				Price: item.UnitPriceCents,
			},
			Quantity: orderQuantityView{Total: item.Quantity, Fulfilled: lineFulfilled},
			Totals: []types.TotalEntry{
				{Type: enums.TotalTypeSubtotal, Amount: lineTotal},
				{Type: enums.TotalTypeTotal, Amount: lineTotal},
			},
			Status: "processing",
		})
	}

	return orderView{
		UCP:          types.NewUCPEnvelope(types.CapabilityOrder),
		ID:           order.ID.String(),
		CheckoutID:   order.CheckoutID.String(),
		Status:       order.Status,
		Currency:     order.Currency,
		BuyerID:      order.BuyerID,
		PermalinkURL: baseURL + "/orders/" + order.ID.String(),
		LineItems:    items,
		Fulfillment: orderFulfillmentView{
			Expectations: emptyIfNilExpectations(order.Fulfillment.Expectations),
			Events:       emptyIfNilEvents(order.Fulfillment.Events),
		},
		Totals:      orderTotals(order),
		Adjustments: order.Adjustments,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

func newOrderListView(orders []models.Order, limit, offset int, baseURL string) orderListView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, newOrderView(&orders[i], baseURL))
	}
	return orderListView{Orders: views, Limit: limit, Offset: offset}
}

func orderTotals(order *models.Order) []types.TotalEntry {
	totals := []types.TotalEntry{
		{Type: enums.TotalTypeSubtotal, Amount: order.SubtotalCents},
	}
	if order.DiscountsCents > 0 {
		totals = append(totals, types.TotalEntry{Type: enums.TotalTypeDiscount, Amount: order.DiscountsCents})
	}
	if order.FulfillmentCents > 0 {
		totals = append(totals, types.TotalEntry{Type: enums.TotalTypeFulfillment, Amount: order.FulfillmentCents})
	}
	totals = append(totals, types.TotalEntry{Type: enums.TotalTypeTotal, Amount: order.TotalCents})
	return totals
}

func emptyIfNilExpectations(expectations []types.FulfillmentExpectation) []types.FulfillmentExpectation {
	if expectations == nil {
		return []types.FulfillmentExpectation{}
	}
	return expectations
}

func emptyIfNilEvents(events []types.FulfillmentEvent) []types.FulfillmentEvent {
	if events == nil {
		return []types.FulfillmentEvent{}
	}
	return events
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
