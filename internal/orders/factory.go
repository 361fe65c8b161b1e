package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

const initialExpectationID = "exp_1"

// Factory turns a completing checkout into its order snapshot.
type Factory struct {
	repo Repository
}

// NewFactory builds an order factory.
func NewFactory(repo Repository) (*Factory, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &Factory{repo: repo}, nil
}

// CreateFromCheckout freezes the checkout into an order inside the caller's
// transaction. Line items get fresh ids, and the initial fulfillment
// expectation references those ids together with the selected destination and
// option title.
func (f *Factory) CreateFromCheckout(ctx context.Context, tx *gorm.DB, checkout *models.Checkout) (*models.Order, error) {
	repo := f.repo.WithTx(tx)

	order := &models.Order{
		ID:               uuid.New(),
		CheckoutID:       checkout.ID,
		Status:           enums.OrderStatusConfirmed,
		Currency:         checkout.Currency,
		SubtotalCents:    checkout.SubtotalCents,
		DiscountsCents:   checkout.DiscountsCents,
		FulfillmentCents: checkout.FulfillmentCents,
		TotalCents:       checkout.TotalCents,
	}
	if checkout.Buyer != nil {
		if buyerID := checkout.Buyer.StringField("id"); buyerID != "" {
			order.BuyerID = &buyerID
		}
	}

	expectationItems := make([]types.ExpectationLineItem, 0, len(checkout.Items))
	for _, item := range checkout.Items {
		line := models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Title:          item.Title,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		}
		order.Items = append(order.Items, line)
		expectationItems = append(expectationItems, types.ExpectationLineItem{
			ID:       line.ID.String(),
			Quantity: item.Quantity,
		})
	}

	expectation := types.FulfillmentExpectation{
		ID:         initialExpectationID,
		LineItems:  expectationItems,
		MethodType: enums.FulfillmentMethodTypeShipping,
	}
	if method := selectedCheckoutMethod(checkout.Fulfillment); method != nil {
		if method.Type != "" {
			expectation.MethodType = method.Type
		}
		if destination := method.SelectedDestination(); destination != nil {
			expectation.Destination = *destination
		}
		for _, group := range method.Groups {
			if group.SelectedOptionTitle != nil && *group.SelectedOptionTitle != "" {
				expectation.Description = *group.SelectedOptionTitle
				break
			}
		}
	}
	order.Fulfillment = types.OrderFulfillment{
		Expectations: []types.FulfillmentExpectation{expectation},
		Events:       []types.FulfillmentEvent{},
	}

	if err := repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return order, nil
}

func selectedCheckoutMethod(state *types.FulfillmentState) *types.FulfillmentMethod {
	if state == nil {
		return nil
	}
	for i := range state.Methods {
		if state.Methods[i].SelectedDestinationID != nil {
			return &state.Methods[i]
		}
	}
	if len(state.Methods) > 0 {
		return &state.Methods[0]
	}
	return nil
}
