package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storemock-backend/pkg/db/models"
	"github.com/angelmondragon/storemock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storemock-backend/pkg/errors"
	"github.com/angelmondragon/storemock-backend/pkg/logger"
	"github.com/angelmondragon/storemock-backend/pkg/types"
)

const mockCarrier = "Mock Carrier"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ShippedNotifier delivers order_shipped webhooks after commit.
type ShippedNotifier interface {
	NotifyOrderShipped(ctx context.Context, profileURL string, checkoutID uuid.UUID, order *models.Order)
}

// UpdateInput is a partial order patch. Nil fields are left untouched;
// provided event and expectation lists replace the stored ones.
type UpdateInput struct {
	Events       []types.FulfillmentEvent
	Expectations []types.FulfillmentExpectation
	Adjustments  []types.OrderAdjustment
	Status       *enums.OrderStatus
}

// ListInput filters and paginates order listings.
type ListInput struct {
	BuyerID *string
	Limit   int
	Offset  int
}

// Service owns the post-placement order lifecycle.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListInput) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SimulateShipping(ctx context.Context, id uuid.UUID, profileURL string) (*models.Order, *types.FulfillmentEvent, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	notifier ShippedNotifier
	logg     *logger.Logger
}

// NewService builds the order service. The notifier is optional.
func NewService(tx txRunner, repo Repository, notifier ShippedNotifier, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{tx: tx, repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Order, error) {
	orders, err := s.repo.List(ctx, input.BuyerID, input.Limit, input.Offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return orders, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		if input.Events != nil {
			loaded.Fulfillment.Events = input.Events
		}
		if input.Expectations != nil {
			loaded.Fulfillment.Expectations = input.Expectations
		}
		if input.Adjustments != nil {
			loaded.Adjustments = input.Adjustments
		}
		if input.Status != nil {
			if !input.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %s", *input.Status))
			}
			loaded.Status = *input.Status
		}

		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}
		if !loaded.Status.Cancelable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s", loaded.Status))
		}

		now := time.Now().UTC()
		loaded.Status = enums.OrderStatusCanceled
		loaded.CanceledAt = &now
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order canceled")
	return order, nil
}

// SimulateShipping appends a shipped event with mock tracking details, moves
// the order to shipped and fires the order_shipped webhook when an agent
// profile is known.
func (s *service) SimulateShipping(ctx context.Context, id uuid.UUID, profileURL string) (*models.Order, *types.FulfillmentEvent, error) {
	var order *models.Order
	var event *types.FulfillmentEvent
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := s.load(ctx, repo, id)
		if err != nil {
			return err
		}

		shipped := shippedEvent(loaded.ID)
		loaded.Fulfillment.Events = append(loaded.Fulfillment.Events, shipped)
		loaded.Status = enums.OrderStatusShipped
		if err := repo.Save(ctx, loaded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save order")
		}
		order = loaded
		event = &shipped
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order shipped")

	if s.notifier != nil && profileURL != "" {
		s.notifier.NotifyOrderShipped(ctx, profileURL, order.CheckoutID, order)
	}
	return order, event, nil
}

func (s *service) load(ctx context.Context, repo Repository, id uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func shippedEvent(orderID uuid.UUID) types.FulfillmentEvent {
	trackingNumber := "MOCK" + strings.ToUpper(orderID.String()[:8])
	return types.FulfillmentEvent{
		ID:        fmt.Sprintf("event_%s_shipped", orderID),
		Type:      "shipped",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tracking: &types.TrackingDetails{
			Carrier:        mockCarrier,
			TrackingNumber: trackingNumber,
			TrackingURL:    "https://example.com/track/" + trackingNumber,
		},
	}
}
