package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/internal/fulfillment"
	"github.com/angelmondragon/storemock-backend/internal/pricing"
	"github.com/angelmondragon/storemock-backend/internal/products"
	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	"github.com/angelmondragon/storemock-backend/pkg/metrics"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

// PaymentFailureSentinel is the instrument id that deterministically fails
// completion without touching checkout state.
const PaymentFailureSentinel = "instr_fail"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderFactory materializes an order from a completed checkout inside the
// completing transaction.
type OrderFactory interface {
	CreateFromCheckout(ctx context.Context, tx *gorm.DB, checkout *models.Checkout) (*models.Order, error)
}

// OrderNotifier delivers order lifecycle webhooks after commit. Delivery is
// fire-and-forget.
type OrderNotifier interface {
	NotifyOrderPlaced(ctx context.Context, profileURL string, checkoutID uuid.UUID, order *models.Order)
}

// LineItemInput names a product and quantity for checkout creation.
type LineItemInput struct {
	ProductID string
	Quantity  int
}

// LineItemPatch adjusts an existing line by id. Quantity zero or below
// removes the line.
type LineItemPatch struct {
	ID       uuid.UUID
	Quantity int
}

// CreateInput carries the initial checkout payload.
type CreateInput struct {
	Currency        string
	Buyer           *types.JSONMap
	Items           []LineItemInput
	Fulfillment     *types.FulfillmentState
	PaymentHandler  *string
	InstrumentID    *string
	AgentProfileURL *string
}

// UpdateInput is a partial checkout patch. Nil fields are left untouched.
type UpdateInput struct {
	Currency      *string
	Buyer         *types.JSONMap
	Items         []LineItemPatch
	Fulfillment   *types.FulfillmentState
	DiscountCodes []string
}

// FulfillmentInput selects a shipping option and/or supplies a destination
// address in one call.
type FulfillmentInput struct {
	SelectedOptionID string
	Address          *types.FulfillmentDestination
}

// PaymentInput binds a payment handler and instrument to the checkout.
type PaymentInput struct {
	HandlerID    string
	InstrumentID *string
}

// CompleteInput carries the completion-time payment data and optional buyer
// refresh.
type CompleteInput struct {
	InstrumentID    *string
	Buyer           *types.JSONMap
	AgentProfileURL *string
}

// Service owns the checkout session lifecycle: creation, mutation, totals
// upkeep and the completion state machine.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Checkout, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Checkout, error)
	AddLineItem(ctx context.Context, id uuid.UUID, input LineItemInput) (*models.Checkout, error)
	UpdateLineItem(ctx context.Context, id, itemID uuid.UUID, quantity int) (*models.Checkout, error)
	RemoveLineItem(ctx context.Context, id, itemID uuid.UUID) (*models.Checkout, error)
	ApplyDiscount(ctx context.Context, id uuid.UUID, code string) (*models.Checkout, error)
	SetFulfillment(ctx context.Context, id uuid.UUID, input FulfillmentInput) (*models.Checkout, error)
	SetPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Checkout, error)
	Complete(ctx context.Context, id uuid.UUID, input CompleteInput) (*models.Checkout, *models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Checkout, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	products products.Repository
	resolver *fulfillment.Resolver
	orders   OrderFactory
	notifier OrderNotifier
	locks    *keyedMutex
	metrics  *metrics.CommerceMetrics
	logg     *logger.Logger
}

// NewService builds the checkout service with its required collaborators.
// The notifier and metrics are optional.
func NewService(tx txRunner, repo Repository, productRepo products.Repository, resolver *fulfillment.Resolver, orders OrderFactory, notifier OrderNotifier, commerceMetrics *metrics.CommerceMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("fulfillment resolver required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order factory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		products: productRepo,
		resolver: resolver,
		orders:   orders,
		notifier: notifier,
		locks:    newKeyedMutex(),
		metrics:  commerceMetrics,
		logg:     logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Checkout, error) {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	checkout := &models.Checkout{
		ID:                  uuid.New(),
		Status:              enums.CheckoutStatusIncomplete,
		Currency:            currency,
		Buyer:               input.Buyer,
		PaymentHandler:      input.PaymentHandler,
		PaymentInstrumentID: input.InstrumentID,
		AgentProfileURL:     input.AgentProfileURL,
	}

	state := fulfillment.Merge(nil, input.Fulfillment)
	fulfillment.AssignDestinationIDs(state)
	checkout.Fulfillment = state

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		for _, line := range input.Items {
			item, err := s.buildLineItem(ctx, productRepo, checkout.ID, line)
			if err != nil {
				return err
			}
			checkout.Items = append(checkout.Items, *item)
		}

		if err := repo.Create(ctx, checkout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create checkout")
		}
		if err := s.recalculate(ctx, tx, checkout); err != nil {
			return err
		}
		return repo.Save(ctx, checkout)
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithCheckoutID(ctx, checkout.ID.String())
	s.logg.Info(ctx, "checkout created")
	return checkout, nil
}

// Get loads a checkout and, while it is still open, refreshes fulfillment
// options and totals against the current rate table without persisting.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	checkout, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout")
	}
	if checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	if checkout.Status == enums.CheckoutStatusIncomplete {
		if err := s.recalculate(ctx, nil, checkout); err != nil {
			return nil, err
		}
	}
	return checkout, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		if input.Currency != nil {
			currency := strings.ToUpper(strings.TrimSpace(*input.Currency))
			if len(currency) != 3 {
				return pkgerrors.New(pkgerrors.CodeValidation, "currency must be a 3-letter code")
			}
			checkout.Currency = currency
		}
		if input.Buyer != nil {
			checkout.Buyer = input.Buyer
		}

		productRepo := s.products.WithTx(tx)
		for _, patch := range input.Items {
			if err := s.applyLineItemPatch(ctx, repo, productRepo, checkout, patch); err != nil {
				return err
			}
		}

		if input.Fulfillment != nil {
			merged := fulfillment.Merge(checkout.Fulfillment, input.Fulfillment)
			fulfillment.AssignDestinationIDs(merged)
			checkout.Fulfillment = merged
		}

		for _, code := range input.DiscountCodes {
			if err := s.applyDiscountCode(ctx, repo, checkout, code); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *service) AddLineItem(ctx context.Context, id uuid.UUID, input LineItemInput) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		productRepo := s.products.WithTx(tx)

		// Adding an already-present product merges into the existing line.
		for i := range checkout.Items {
			if checkout.Items[i].ProductID != input.ProductID {
				continue
			}
			quantity := checkout.Items[i].Quantity + input.Quantity
			if err := s.checkStock(ctx, productRepo, input.ProductID, quantity); err != nil {
				return err
			}
			if err := repo.UpdateLineItemQuantity(ctx, checkout.ID, checkout.Items[i].ID, quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
			}
			checkout.Items[i].Quantity = quantity
			return nil
		}

		item, err := s.buildLineItem(ctx, productRepo, checkout.ID, input)
		if err != nil {
			return err
		}
		if err := repo.AddLineItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add line item")
		}
		checkout.Items = append(checkout.Items, *item)
		return nil
	})
}

func (s *service) UpdateLineItem(ctx context.Context, id, itemID uuid.UUID, quantity int) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		return s.applyLineItemPatch(ctx, repo, s.products.WithTx(tx), checkout, LineItemPatch{ID: itemID, Quantity: quantity})
	})
}

func (s *service) RemoveLineItem(ctx context.Context, id, itemID uuid.UUID) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		if findLineItem(checkout, itemID) < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return s.removeLineItem(ctx, repo, checkout, itemID)
	})
}

func (s *service) ApplyDiscount(ctx context.Context, id uuid.UUID, code string) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		return s.applyDiscountCode(ctx, repo, checkout, code)
	})
}

func (s *service) SetFulfillment(ctx context.Context, id uuid.UUID, input FulfillmentInput) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		state := fulfillment.Merge(checkout.Fulfillment, nil)

		if input.Address != nil {
			destination := *input.Address
			incoming := &types.FulfillmentState{
				Methods: []types.FulfillmentMethod{{
					Type:         enums.FulfillmentMethodTypeShipping,
					Destinations: []types.FulfillmentDestination{destination},
				}},
			}
			state = fulfillment.Merge(state, incoming)
			fulfillment.AssignDestinationIDs(state)
			if len(state.Methods) > 0 && len(state.Methods[0].Destinations) > 0 {
				last := state.Methods[0].Destinations[len(state.Methods[0].Destinations)-1]
				state.Methods[0].SelectedDestinationID = &last.ID
			}
		}

		if input.SelectedOptionID != "" {
			// Options live on groups, which only exist once a destination is
			// selected and the state has been refreshed.
			itemIDs, productIDs, priceItems := collectItems(checkout.Items)
			refreshed, err := s.boundResolver(tx).Refresh(ctx, state, itemIDs, productIDs, sumSubtotal(priceItems))
			if err != nil {
				return err
			}
			state = refreshed
			if len(state.Methods) == 0 || len(state.Methods[0].Groups) == 0 {
				return pkgerrors.New(pkgerrors.CodeFulfillmentRequired, "select a destination before choosing an option")
			}
			optionID := input.SelectedOptionID
			state.Methods[0].Groups[0].SelectedOptionID = &optionID
		}

		checkout.Fulfillment = state
		return nil
	})
}

func (s *service) SetPayment(ctx context.Context, id uuid.UUID, input PaymentInput) (*models.Checkout, error) {
	return s.mutate(ctx, id, func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error {
		if strings.TrimSpace(input.HandlerID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment handler id required")
		}
		handler := input.HandlerID
		checkout.PaymentHandler = &handler
		checkout.PaymentInstrumentID = input.InstrumentID
		return nil
	})
}

// Complete runs the completion gates in order: the checkout must be open and
// non-empty, carry a selected destination and a selected option, and the
// payment instrument must not be the failure sentinel. Only then is the order
// written and the checkout sealed.
func (s *service) Complete(ctx context.Context, id uuid.UUID, input CompleteInput) (*models.Checkout, *models.Order, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var checkout *models.Checkout
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOpen(ctx, repo, id)
		if err != nil {
			return err
		}

		if input.Buyer != nil {
			loaded.Buyer = input.Buyer
		}
		if input.AgentProfileURL != nil {
			loaded.AgentProfileURL = input.AgentProfileURL
		}
		if err := s.recalculate(ctx, tx, loaded); err != nil {
			return err
		}

		if len(loaded.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout has no line items")
		}
		method := selectedMethod(loaded.Fulfillment)
		if method == nil || method.SelectedDestination() == nil {
			return pkgerrors.New(pkgerrors.CodeFulfillmentRequired, "fulfillment destination required")
		}
		if !method.HasSelectedOption() {
			return pkgerrors.New(pkgerrors.CodeFulfillmentRequired, "fulfillment option required")
		}

		if input.InstrumentID != nil {
			loaded.PaymentInstrumentID = input.InstrumentID
		}
		if loaded.PaymentInstrumentID != nil && *loaded.PaymentInstrumentID == PaymentFailureSentinel {
			return pkgerrors.New(pkgerrors.CodePaymentFailure, "payment was declined")
		}

		created, err := s.orders.CreateFromCheckout(ctx, tx, loaded)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		loaded.Status = enums.CheckoutStatusCompleted
		loaded.CompletedAt = &now
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout")
		}

		checkout = loaded
		order = created
		return nil
	})
	if err != nil {
		s.recordCompletion(err)
		return nil, nil, err
	}
	s.recordCompletion(nil)

	ctx = s.logg.WithFields(ctx, map[string]any{
		"checkout_id": checkout.ID.String(),
		"order_id":    order.ID.String(),
	})
	s.logg.Info(ctx, "checkout completed")

	if s.notifier != nil && checkout.AgentProfileURL != nil && *checkout.AgentProfileURL != "" {
		s.notifier.NotifyOrderPlaced(ctx, *checkout.AgentProfileURL, checkout.ID, order)
	}
	return checkout, order, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Checkout, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var checkout *models.Checkout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOpen(ctx, repo, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		loaded.Status = enums.CheckoutStatusCanceled
		loaded.CanceledAt = &now
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout")
		}
		checkout = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithCheckoutID(ctx, checkout.ID.String())
	s.logg.Info(ctx, "checkout canceled")
	return checkout, nil
}

// mutate wraps a change to an open checkout: lock, load, apply, recompute
// totals and fulfillment, persist. The whole sequence runs in one
// transaction.
func (s *service) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, tx *gorm.DB, repo Repository, checkout *models.Checkout) error) (*models.Checkout, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	var checkout *models.Checkout
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.loadOpen(ctx, repo, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, tx, repo, loaded); err != nil {
			return err
		}
		if err := s.recalculate(ctx, tx, loaded); err != nil {
			return err
		}
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save checkout")
		}
		checkout = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return checkout, nil
}

func (s *service) loadOpen(ctx context.Context, repo Repository, id uuid.UUID) (*models.Checkout, error) {
	checkout, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout")
	}
	if checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout not found")
	}
	if checkout.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("checkout is %s", checkout.Status))
	}
	return checkout, nil
}

// recalculate refreshes fulfillment options against the rate table, resolves
// the selected option price and recomputes the cached totals.
func (s *service) recalculate(ctx context.Context, tx *gorm.DB, checkout *models.Checkout) error {
	resolver := s.boundResolver(tx)
	itemIDs, productIDs, priceItems := collectItems(checkout.Items)
	subtotal := sumSubtotal(priceItems)

	state, err := resolver.Refresh(ctx, checkout.Fulfillment, itemIDs, productIDs, subtotal)
	if err != nil {
		return err
	}
	fulfillmentCents, err := resolver.ApplySelections(ctx, state, productIDs, subtotal)
	if err != nil {
		return err
	}

	result := pricing.Recalculate(priceItems, toPricingDiscounts(checkout.Discounts), fulfillmentCents)
	checkout.Fulfillment = state
	checkout.SubtotalCents = result.SubtotalCents
	checkout.DiscountsCents = result.DiscountCents
	checkout.FulfillmentCents = fulfillmentCents
	checkout.TotalCents = result.TotalCents
	return nil
}

func (s *service) boundResolver(tx *gorm.DB) *fulfillment.Resolver {
	if tx == nil {
		return s.resolver
	}
	return s.resolver.WithTx(tx)
}

func (s *service) buildLineItem(ctx context.Context, productRepo products.Repository, checkoutID uuid.UUID, input LineItemInput) (*models.CheckoutLineItem, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product %s", input.ProductID))
	}
	if err := s.checkStock(ctx, productRepo, input.ProductID, input.Quantity); err != nil {
		return nil, err
	}
	return &models.CheckoutLineItem{
		ID:             uuid.New(),
		CheckoutID:     checkoutID,
		ProductID:      product.ID,
		Title:          product.Title,
		UnitPriceCents: product.PriceCents,
		Quantity:       input.Quantity,
	}, nil
}

func (s *service) checkStock(ctx context.Context, productRepo products.Repository, productID string, quantity int) error {
	available, err := productRepo.Available(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check inventory")
	}
	if available < quantity {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("insufficient stock for %s", productID)).
			WithDetails(map[string]any{"requested": quantity, "available": available})
	}
	return nil
}

func (s *service) applyLineItemPatch(ctx context.Context, repo Repository, productRepo products.Repository, checkout *models.Checkout, patch LineItemPatch) error {
	idx := findLineItem(checkout, patch.ID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	if patch.Quantity <= 0 {
		return s.removeLineItem(ctx, repo, checkout, patch.ID)
	}
	if err := s.checkStock(ctx, productRepo, checkout.Items[idx].ProductID, patch.Quantity); err != nil {
		return err
	}
	if err := repo.UpdateLineItemQuantity(ctx, checkout.ID, patch.ID, patch.Quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update line item")
	}
	checkout.Items[idx].Quantity = patch.Quantity
	return nil
}

func (s *service) removeLineItem(ctx context.Context, repo Repository, checkout *models.Checkout, itemID uuid.UUID) error {
	if err := repo.RemoveLineItem(ctx, checkout.ID, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove line item")
	}
	items := checkout.Items[:0]
	for _, item := range checkout.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	checkout.Items = items
	return nil
}

func (s *service) applyDiscountCode(ctx context.Context, repo Repository, checkout *models.Checkout, rawCode string) error {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	record, err := repo.FindDiscountCode(ctx, code)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up discount code")
	}
	if record == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown discount code %s", code))
	}

	for _, applied := range checkout.Discounts {
		if applied.Code == code {
			return nil
		}
	}

	discount := &models.CheckoutDiscount{
		ID:         uuid.New(),
		CheckoutID: checkout.ID,
		Code:       code,
		Title:      record.Title,
		Type:       record.Type,
		Value:      record.Value,
	}
	if err := repo.UpsertDiscount(ctx, discount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply discount")
	}
	checkout.Discounts = append(checkout.Discounts, *discount)
	return nil
}

func (s *service) recordCompletion(err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.IncCompletion("completed")
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncCompletion(string(typed.Code()))
		return
	}
	s.metrics.IncCompletion(string(pkgerrors.CodeInternal))
}

func selectedMethod(state *types.FulfillmentState) *types.FulfillmentMethod {
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

func findLineItem(checkout *models.Checkout, itemID uuid.UUID) int {
	for i := range checkout.Items {
		if checkout.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func collectItems(items []models.CheckoutLineItem) (itemIDs, productIDs []string, priceItems []pricing.LineItem) {
	for _, item := range items {
		itemIDs = append(itemIDs, item.ID.String())
		productIDs = append(productIDs, item.ProductID)
		priceItems = append(priceItems, pricing.LineItem{
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return itemIDs, productIDs, priceItems
}

func sumSubtotal(items []pricing.LineItem) int {
	subtotal := 0
	for _, item := range items {
		subtotal += item.UnitPriceCents * item.Quantity
	}
	return subtotal
}

func toPricingDiscounts(discounts []models.CheckoutDiscount) []pricing.Discount {
	out := make([]pricing.Discount, 0, len(discounts))
	for _, d := range discounts {
		out = append(out, pricing.Discount{Code: d.Code, Type: d.Type, Value: d.Value})
	}
	return out
}
