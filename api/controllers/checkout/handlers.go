package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/api/middleware"
	"github.com/angelmondragon/storemock-backend/api/responses"
	"github.com/angelmondragon/storemock-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/storemock-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
)

// Create opens a new checkout session, optionally seeded with line items,
// buyer and fulfillment data.
func Create(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), payload.toInput(middleware.AgentProfileURLFromContext(r.Context())))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutView(created, requestBaseURL(r)))
	}
}

// Fetch returns a checkout with freshly computed fulfillment options and
// totals.
func Fetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		checkout, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(checkout, requestBaseURL(r)))
	}
}

// Update applies a partial checkout patch: currency, buyer, line item
// quantities, fulfillment and discount codes.
func Update(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// AddLineItem appends a product line, merging quantity when the product is
// already present.
func AddLineItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addLineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		updated, err := svc.AddLineItem(r.Context(), id, checkoutsvc.LineItemInput{
			ProductID: payload.ProductID,
			Quantity:  quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// UpdateLineItem changes a line's quantity. Zero or below removes the line.
func UpdateLineItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemID", "invalid line item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateLineItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateLineItem(r.Context(), id, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// RemoveLineItem deletes a line from the checkout.
func RemoveLineItem(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := parseUUIDParam(r, "itemID", "invalid line item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.RemoveLineItem(r.Context(), id, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// ApplyDiscount applies a discount code to the checkout.
func ApplyDiscount(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload applyDiscountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.ApplyDiscount(r.Context(), id, payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// SetFulfillment selects a shipping option and/or records a destination
// address.
func SetFulfillment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setFulfillmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.MethodID == "" && payload.Address == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "method_id or address required"))
			return
		}

		updated, err := svc.SetFulfillment(r.Context(), id, checkoutsvc.FulfillmentInput{
			SelectedOptionID: payload.MethodID,
			Address:          payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// SetPayment binds a payment handler and instrument to the checkout.
func SetPayment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.PaymentInput{HandlerID: payload.HandlerID}
		if payload.Instrument != nil {
			if instrumentID := payload.Instrument.StringField("id"); instrumentID != "" {
				input.InstrumentID = &instrumentID
			}
		}

		updated, err := svc.SetPayment(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(updated, requestBaseURL(r)))
	}
}

// Complete runs the completion gates and, on success, returns the sealed
// checkout with its order reference attached.
func Complete(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The completion body is optional.
		var payload completeCheckoutRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		completed, order, err := svc.Complete(r.Context(), id, payload.toInput(middleware.AgentProfileURLFromContext(r.Context())))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCompletedCheckoutView(completed, order, requestBaseURL(r)))
	}
}

// Cancel moves an open checkout to its canceled terminal state.
func Cancel(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseCheckoutID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		canceled, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutView(canceled, requestBaseURL(r)))
	}
}

func parseCheckoutID(r *http.Request) (uuid.UUID, error) {
	return parseUUIDParam(r, "id", "invalid checkout id")
}

func parseUUIDParam(r *http.Request, param, message string) (uuid.UUID, error) {
	value, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, message)
	}
	return value, nil
}
