package orders

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storemock-backend/api/middleware"
	"github.com/angelmondragon/storemock-backend/api/responses"
	"github.com/angelmondragon/storemock-backend/api/validators"
	ordersvc "github.com/angelmondragon/storemock-backend/internal/orders"
	"github.com/angelmondragon/storemock-backend/pkg/config"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	simulationSecretHeader = "Simulation-Secret"
)

type orderFulfillmentPatch struct {
	Expectations []types.FulfillmentExpectation `json:"expectations,omitempty"`
	Events       []types.FulfillmentEvent       `json:"events,omitempty"`
}

type updateOrderRequest struct {
	Fulfillment *orderFulfillmentPatch  `json:"fulfillment,omitempty"`
	Adjustments []types.OrderAdjustment `json:"adjustments,omitempty"`
	Status      *string                 `json:"status,omitempty"`
}

// Fetch returns one order by id.
func Fetch(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order, requestBaseURL(r)))
	}
}

// List returns orders newest first, optionally filtered by buyer_id.
func List(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultListLimit, 1, maxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.ListInput{Limit: limit, Offset: offset}
		if buyerID := strings.TrimSpace(r.URL.Query().Get("buyer_id")); buyerID != "" {
			input.BuyerID = &buyerID
		}

		orders, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListView(orders, limit, offset, requestBaseURL(r)))
	}
}

// Update patches an order's fulfillment events, expectations, adjustments
// and status.
func Update(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := ordersvc.UpdateInput{Adjustments: payload.Adjustments}
		if payload.Fulfillment != nil {
			input.Events = payload.Fulfillment.Events
			input.Expectations = payload.Fulfillment.Expectations
		}
		if payload.Status != nil {
			status := enums.OrderStatus(*payload.Status)
			input.Status = &status
		}

		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(updated, requestBaseURL(r)))
	}
}

// Cancel cancels an order while it is still pending or confirmed.
func Cancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		canceled, err := svc.Cancel(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(canceled, requestBaseURL(r)))
	}
}

// SimulateShipping appends a mock shipped event to the order and fires the
// order_shipped webhook toward the requesting agent. When a simulation
// secret is configured the request must present it.
func SimulateShipping(svc ordersvc.Service, cfg config.SimulationConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.Secret != "" {
			provided := r.Header.Get(simulationSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Secret)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "invalid simulation secret"))
				return
			}
		}

		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, _, err := svc.SimulateShipping(r.Context(), id, middleware.AgentProfileURLFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderView(order, requestBaseURL(r)))
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	value, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	return value, nil
}
