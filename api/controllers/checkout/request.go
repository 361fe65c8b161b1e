package checkout

import (
	"github.com/google/uuid"

	checkoutsvc "github.com/angelmondragon/storemock-backend/internal/checkout"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

type itemRequest struct {
	ID        string  `json:"id" validate:"required"`
	Title     *string `json:"title,omitempty"`
	UnitPrice *int    `json:"unit_price,omitempty"`
}

type lineItemRequest struct {
	Item     itemRequest `json:"item" validate:"required"`
	Quantity int         `json:"quantity"`
}

type paymentRequest struct {
	HandlerID            *string        `json:"handler_id,omitempty"`
	SelectedInstrumentID *string        `json:"selected_instrument_id,omitempty"`
	Instrument           *types.JSONMap `json:"instrument,omitempty"`
}

type createCheckoutRequest struct {
	Currency    string                  `json:"currency"`
	Buyer       *types.JSONMap          `json:"buyer,omitempty"`
	LineItems   []lineItemRequest       `json:"line_items" validate:"omitempty,dive"`
	Fulfillment *types.FulfillmentState `json:"fulfillment,omitempty"`
	Payment     *paymentRequest         `json:"payment,omitempty"`
}

type lineItemPatchRequest struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Quantity int       `json:"quantity"`
}

type updateCheckoutRequest struct {
	Currency      *string                 `json:"currency,omitempty"`
	Buyer         *types.JSONMap          `json:"buyer,omitempty"`
	LineItems     []lineItemPatchRequest  `json:"line_items" validate:"omitempty,dive"`
	Fulfillment   *types.FulfillmentState `json:"fulfillment,omitempty"`
	DiscountCodes []string                `json:"discount_codes,omitempty"`
}

type addLineItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type updateLineItemRequest struct {
	Quantity int `json:"quantity"`
}

type applyDiscountRequest struct {
	Code string `json:"code" validate:"required"`
}

type setFulfillmentRequest struct {
	MethodID string                        `json:"method_id"`
	Address  *types.FulfillmentDestination `json:"address,omitempty"`
}

type setPaymentRequest struct {
	HandlerID  string         `json:"handler_id" validate:"required"`
	Instrument *types.JSONMap `json:"instrument,omitempty"`
}

type completeCheckoutRequest struct {
	Buyer       *types.JSONMap  `json:"buyer,omitempty"`
	Payment     *paymentRequest `json:"payment,omitempty"`
	PaymentData *types.JSONMap  `json:"payment_data,omitempty"`
}

func (r createCheckoutRequest) toInput(agentProfileURL string) checkoutsvc.CreateInput {
	input := checkoutsvc.CreateInput{
		Currency:    r.Currency,
		Buyer:       r.Buyer,
		Fulfillment: r.Fulfillment,
	}
	for _, line := range r.LineItems {
		quantity := line.Quantity
		if quantity == 0 {
			quantity = 1
		}
		input.Items = append(input.Items, checkoutsvc.LineItemInput{
			ProductID: line.Item.ID,
			Quantity:  quantity,
		})
	}
	if r.Payment != nil {
		input.PaymentHandler = r.Payment.HandlerID
		input.InstrumentID = paymentInstrumentID(r.Payment)
	}
	if agentProfileURL != "" {
		input.AgentProfileURL = &agentProfileURL
	}
	return input
}

func (r updateCheckoutRequest) toInput() checkoutsvc.UpdateInput {
	input := checkoutsvc.UpdateInput{
		Currency:      r.Currency,
		Buyer:         r.Buyer,
		Fulfillment:   r.Fulfillment,
		DiscountCodes: r.DiscountCodes,
	}
	for _, patch := range r.LineItems {
		input.Items = append(input.Items, checkoutsvc.LineItemPatch{
			ID:       patch.ID,
			Quantity: patch.Quantity,
		})
	}
	return input
}

func (r completeCheckoutRequest) toInput(agentProfileURL string) checkoutsvc.CompleteInput {
	input := checkoutsvc.CompleteInput{Buyer: r.Buyer}
	if r.PaymentData != nil {
		if id := r.PaymentData.StringField("id"); id != "" {
			input.InstrumentID = &id
		}
	}
	if input.InstrumentID == nil && r.Payment != nil {
		input.InstrumentID = paymentInstrumentID(r.Payment)
	}
	if agentProfileURL != "" {
		input.AgentProfileURL = &agentProfileURL
	}
	return input
}

func paymentInstrumentID(payment *paymentRequest) *string {
	if payment == nil {
		return nil
	}
	if payment.SelectedInstrumentID != nil && *payment.SelectedInstrumentID != "" {
		return payment.SelectedInstrumentID
	}
	if payment.Instrument != nil {
		if id := payment.Instrument.StringField("id"); id != "" {
			return &id
		}
	}
	return nil
}
